package bootstrap

import (
	"context"
	"sync"
	"time"

	"github.com/pulsekit/pulse/adapters/metrics"
	"github.com/pulsekit/pulse/domain/event"
	"github.com/pulsekit/pulse/ports"
)

// BufferedRecorder buffers ingested events and writes them to the store in
// batches, keeping database writes off the beacon request path.
type BufferedRecorder struct {
	store         ports.EventStore
	buffer        []event.Event
	mu            sync.Mutex
	batchSize     int
	flushInterval time.Duration
	metrics       *metrics.Collector
	stopCh        chan struct{}
	wg            sync.WaitGroup
	closeOnce     sync.Once
}

// NewBufferedRecorder creates a new buffered event recorder. m may be nil
// when metrics are disabled.
func NewBufferedRecorder(store ports.EventStore, batchSize int, flushInterval time.Duration, m *metrics.Collector) *BufferedRecorder {
	if batchSize == 0 {
		batchSize = 100
	}
	if flushInterval == 0 {
		flushInterval = 5 * time.Second
	}

	r := &BufferedRecorder{
		store:         store,
		buffer:        make([]event.Event, 0, batchSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
		metrics:       m,
		stopCh:        make(chan struct{}),
	}

	r.wg.Add(1)
	go r.flushLoop()

	return r
}

// Record queues an event for writing.
func (r *BufferedRecorder) Record(e event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, e)
	if r.metrics != nil {
		r.metrics.RecorderBufferSize.Set(float64(len(r.buffer)))
	}

	if len(r.buffer) >= r.batchSize {
		r.flushLocked()
	}
}

// Flush forces immediate writing of queued events.
func (r *BufferedRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
	return nil
}

func (r *BufferedRecorder) flushLocked() {
	if len(r.buffer) == 0 {
		return
	}

	events := make([]event.Event, len(r.buffer))
	copy(events, r.buffer)
	r.buffer = r.buffer[:0]

	if r.metrics != nil {
		r.metrics.RecorderBufferSize.Set(0)
		r.metrics.RecorderFlushes.Inc()
	}

	// Write in background to not block the ingestion path. The writer
	// joins the WaitGroup so Close does not return while a batch is
	// still in flight.
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := r.store.RecordBatch(ctx, events); err != nil && r.metrics != nil {
			r.metrics.EventsDropped.WithLabelValues("store_error").Add(float64(len(events)))
		}
	}()
}

func (r *BufferedRecorder) flushLoop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.Flush(context.Background())
		case <-r.stopCh:
			return
		}
	}
}

// Close stops the recorder and synchronously writes remaining events.
func (r *BufferedRecorder) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.stopCh)
		r.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		r.mu.Lock()
		defer r.mu.Unlock()

		if len(r.buffer) > 0 {
			err = r.store.RecordBatch(ctx, r.buffer)
			r.buffer = r.buffer[:0]
		}
	})
	return err
}

// Ensure interface compliance.
var _ ports.EventRecorder = (*BufferedRecorder)(nil)
