package sqlite_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/pulsekit/pulse/adapters/sqlite"
	"github.com/pulsekit/pulse/domain/project"
	"github.com/pulsekit/pulse/ports"
)

func setupTestDB(t *testing.T) (*sqlite.DB, func()) {
	t.Helper()

	// Create temp file for test database
	f, err := os.CreateTemp("", "pulse-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	path := f.Name()
	f.Close()

	db, err := sqlite.Open(path)
	if err != nil {
		os.Remove(path)
		t.Fatalf("open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		os.Remove(path)
		t.Fatalf("migrate: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.Remove(path)
	}

	return db, cleanup
}

func seedUser(t *testing.T, db *sqlite.DB, id, email string) {
	t.Helper()
	store := sqlite.NewUserStore(db)
	u := ports.User{ID: id, Email: email, Name: "Test User", PasswordHash: []byte("hash")}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedProject(t *testing.T, db *sqlite.DB, id, trackingID, userID string) {
	t.Helper()
	store := sqlite.NewProjectStore(db)
	p := project.Project{ID: id, Name: "Test Project", TrackingID: trackingID, UserID: userID, CreatedAt: time.Now().UTC()}
	if err := store.Create(context.Background(), p); err != nil {
		t.Fatalf("seed project %s: %v", id, err)
	}
}

// -----------------------------------------------------------------------------
// UserStore Tests
// -----------------------------------------------------------------------------

func TestUserStore_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	user := ports.User{
		ID:           "user-1",
		Email:        "test@example.com",
		Name:         "Test User",
		PasswordHash: []byte("bcrypt-hash"),
	}

	if err := store.Create(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	got, err := store.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}

	if got.ID != user.ID {
		t.Errorf("ID = %s, want %s", got.ID, user.ID)
	}
	if got.Email != user.Email {
		t.Errorf("Email = %s, want %s", got.Email, user.Email)
	}
	if string(got.PasswordHash) != "bcrypt-hash" {
		t.Errorf("PasswordHash = %s, want bcrypt-hash", got.PasswordHash)
	}
}

func TestUserStore_GetByEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "lookup@example.com")

	got, err := store.GetByEmail(ctx, "lookup@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID = %s, want user-1", got.ID)
	}
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "dupe@example.com")

	err := store.Create(ctx, ports.User{ID: "user-2", Email: "dupe@example.com", PasswordHash: []byte("h")})
	if !errors.Is(err, sqlite.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserStore_Update(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "update@example.com")

	u, _ := store.Get(ctx, "user-1")
	u.Name = "Renamed"
	if err := store.Update(ctx, u); err != nil {
		t.Fatalf("update user: %v", err)
	}

	got, _ := store.Get(ctx, "user-1")
	if got.Name != "Renamed" {
		t.Errorf("Name = %s, want Renamed", got.Name)
	}
}

func TestUserStore_NotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewUserStore(db)
	ctx := context.Background()

	_, err := store.Get(ctx, "nonexistent")
	if !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// ProjectStore Tests
// -----------------------------------------------------------------------------

func TestProjectStore_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewProjectStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "owner@example.com")

	p := project.Project{
		ID:          "proj-1",
		Name:        "My App",
		Description: "A web app",
		TrackingID:  "trk-1",
		UserID:      "user-1",
		CreatedAt:   time.Now().UTC(),
	}

	if err := store.Create(ctx, p); err != nil {
		t.Fatalf("create project: %v", err)
	}

	got, err := store.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if got.Name != p.Name {
		t.Errorf("Name = %s, want %s", got.Name, p.Name)
	}
	if got.TrackingID != p.TrackingID {
		t.Errorf("TrackingID = %s, want %s", got.TrackingID, p.TrackingID)
	}
}

func TestProjectStore_GetByTrackingID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewProjectStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "owner@example.com")
	seedProject(t, db, "proj-1", "trk-abc", "user-1")

	got, err := store.GetByTrackingID(ctx, "trk-abc")
	if err != nil {
		t.Fatalf("get by tracking id: %v", err)
	}
	if got.ID != "proj-1" {
		t.Errorf("ID = %s, want proj-1", got.ID)
	}

	_, err = store.GetByTrackingID(ctx, "trk-unknown")
	if !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProjectStore_ListByUser(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewProjectStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "a@example.com")
	seedUser(t, db, "user-2", "b@example.com")
	seedProject(t, db, "proj-1", "trk-1", "user-1")
	seedProject(t, db, "proj-2", "trk-2", "user-1")
	seedProject(t, db, "proj-3", "trk-3", "user-2")

	projects, err := store.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("list by user: %v", err)
	}
	if len(projects) != 2 {
		t.Errorf("len = %d, want 2", len(projects))
	}
}

func TestProjectStore_DuplicateTrackingID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewProjectStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "owner@example.com")
	seedProject(t, db, "proj-1", "trk-same", "user-1")

	p := project.Project{ID: "proj-2", Name: "Other", TrackingID: "trk-same", UserID: "user-1"}
	err := store.Create(ctx, p)
	if !errors.Is(err, sqlite.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestProjectStore_DeleteCascadesEvents(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	projects := sqlite.NewProjectStore(db)
	events := sqlite.NewEventStore(db)
	ctx := context.Background()

	seedUser(t, db, "user-1", "owner@example.com")
	seedProject(t, db, "proj-1", "trk-1", "user-1")
	seedEvents(t, db, "proj-1", 3)

	if err := projects.Delete(ctx, "proj-1"); err != nil {
		t.Fatalf("delete project: %v", err)
	}

	count, err := events.CountByProject(ctx, "proj-1")
	if err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 0 {
		t.Errorf("event count after delete = %d, want 0", count)
	}
}

func TestProjectStore_DeleteNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	store := sqlite.NewProjectStore(db)
	ctx := context.Background()

	err := store.Delete(ctx, "nonexistent")
	if !errors.Is(err, sqlite.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// -----------------------------------------------------------------------------
// Migration Tests
// -----------------------------------------------------------------------------

func TestMigration_Idempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	// Run migrations again - should be idempotent
	if err := db.Migrate(); err != nil {
		t.Fatalf("second migration: %v", err)
	}
}
