package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/ports"
	"github.com/rs/zerolog"
)

// maxBatchSize bounds a single ingestion request.
const maxBatchSize = 100

// ErrUnknownTrackingID is returned when no project matches the submitted
// tracking token.
var ErrUnknownTrackingID = fmt.Errorf("unknown tracking id")

// EventInput is one raw event as submitted by a tracking client.
type EventInput struct {
	EventName   string          `json:"event_name"`
	Properties  json.RawMessage `json:"properties"`
	UserID      string          `json:"user_id"`
	AnonymousID string          `json:"anonymous_id"`
	Timestamp   string          `json:"timestamp"`
}

// IngestService accepts raw events from tracking clients, resolves the
// tracking token to a project, and hands normalized events to the recorder.
type IngestService struct {
	projects ports.ProjectStore
	recorder ports.EventRecorder
	ids      ports.IDGenerator
	clock    ports.Clock
	logger   zerolog.Logger
}

// NewIngestService creates a new ingestion service.
func NewIngestService(projects ports.ProjectStore, recorder ports.EventRecorder, ids ports.IDGenerator, clock ports.Clock, logger zerolog.Logger) *IngestService {
	return &IngestService{
		projects: projects,
		recorder: recorder,
		ids:      ids,
		clock:    clock,
		logger:   logger,
	}
}

// Ingest validates a batch against its tracking token and records it.
// Returns the project ID and the number of events accepted. Events with a
// missing name are skipped, not rejected; one bad event in a beacon batch
// should not lose the rest.
func (s *IngestService) Ingest(ctx context.Context, trackingID string, batch []EventInput) (string, int, error) {
	if trackingID == "" {
		return "", 0, fmt.Errorf("tracking id is required")
	}
	if len(batch) == 0 {
		return "", 0, fmt.Errorf("no events in batch")
	}
	if len(batch) > maxBatchSize {
		return "", 0, fmt.Errorf("batch exceeds %d events", maxBatchSize)
	}

	p, err := s.projects.GetByTrackingID(ctx, trackingID)
	if err != nil {
		return "", 0, ErrUnknownTrackingID
	}

	receivedAt := s.clock.Now()
	accepted := 0
	for _, in := range batch {
		name := strings.TrimSpace(in.EventName)
		if name == "" {
			continue
		}
		ts := event.ParseTimestamp(in.Timestamp, receivedAt)
		s.recorder.Record(event.New(s.ids.New(), p.ID, name, in.Properties, in.UserID, in.AnonymousID, ts, receivedAt))
		accepted++
	}

	s.logger.Debug().Str("project_id", p.ID).Int("accepted", accepted).Int("batch", len(batch)).Msg("events ingested")
	return p.ID, accepted, nil
}
