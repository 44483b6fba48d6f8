package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pulsekit/pulse/adapters/memory"
	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/domain/project"
	"github.com/pulsekit/pulse/domain/window"
	"github.com/pulsekit/pulse/ports"
)

func TestUserStore_CreateGetDelete(t *testing.T) {
	store := memory.NewUserStore()
	ctx := context.Background()

	u := ports.User{ID: "u1", Email: "a@example.com", PasswordHash: []byte("h")}
	if err := store.Create(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetByEmail(ctx, "a@example.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("get by email: %v, got %+v", err, got)
	}

	err = store.Create(ctx, ports.User{ID: "u2", Email: "a@example.com"})
	if !errors.Is(err, memory.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "u1"); !errors.Is(err, memory.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestProjectStore_DeleteCascade(t *testing.T) {
	events := memory.NewEventStore()
	projects := memory.NewProjectStore(events)
	ctx := context.Background()

	p := project.Project{ID: "p1", Name: "App", TrackingID: "trk-1", UserID: "u1", CreatedAt: time.Now()}
	if err := projects.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	events.RecordBatch(ctx, []event.Event{
		{ID: "e1", ProjectID: "p1", Name: "click", UserID: "alice", Timestamp: time.Now()},
	})

	if err := projects.Delete(ctx, "p1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	count, _ := events.CountByProject(ctx, "p1")
	if count != 0 {
		t.Errorf("event count after cascade = %d, want 0", count)
	}
}

func TestEventStore_AggregationsMatchSQLiteSemantics(t *testing.T) {
	store := memory.NewEventStore()
	ctx := context.Background()

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	store.RecordBatch(ctx, []event.Event{
		{ID: "e1", ProjectID: "p1", Name: "click", UserID: "alice", Timestamp: day.Add(9 * time.Hour)},
		{ID: "e2", ProjectID: "p1", Name: "click", UserID: "alice", AnonymousID: "a9", Timestamp: day.Add(9*time.Hour + 30*time.Minute)},
		{ID: "e3", ProjectID: "p1", Name: "view", AnonymousID: "anon-1", Timestamp: day.Add(14 * time.Hour)},
		{ID: "e4", ProjectID: "p1", Name: "click", Timestamp: day}, // no identity
	})

	active, err := store.ActiveUsers(ctx, "p1", day, day.AddDate(0, 0, 1))
	if err != nil || active != 2 {
		t.Errorf("active users = %d (%v), want 2", active, err)
	}

	buckets, err := store.Frequency(ctx, "p1", window.ByHour, day, "click")
	if err != nil {
		t.Fatalf("frequency: %v", err)
	}
	if len(buckets) != 2 || buckets[0].Label != "00:00" || buckets[1].Label != "09:00" {
		t.Errorf("unexpected buckets: %+v", buckets)
	}

	top, err := store.TopEvents(ctx, "p1", 10)
	if err != nil {
		t.Fatalf("top events: %v", err)
	}
	if len(top) != 2 || top[0].Name != "click" || top[0].Count != 3 {
		t.Errorf("unexpected top events: %+v", top)
	}

	totals, _ := store.IdentityTotals(ctx, "p1")
	if len(totals) != 2 {
		t.Errorf("identity totals = %+v, want alice and anon-1", totals)
	}

	days, _ := store.IdentityDays(ctx, "p1", day.AddDate(0, 0, -1))
	if len(days) != 2 {
		t.Errorf("identity days = %+v, want 2 distinct pairs", days)
	}
}

func TestEventStore_ConcurrentRecord(t *testing.T) {
	store := memory.NewEventStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.RecordBatch(ctx, []event.Event{
				{ID: "e", ProjectID: "p1", Name: "click", UserID: "u", Timestamp: time.Now()},
			})
		}(i)
	}
	wg.Wait()

	count, _ := store.CountByProject(ctx, "p1")
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}
