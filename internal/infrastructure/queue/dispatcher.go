package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/metalprofile/corporate-site/internal/core/domain"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
)

// AuditWriter is the durable destination of mirrored audit entries.
type AuditWriter interface {
	Insert(ctx context.Context, entry domain.AuditLogEntry) error
}

// Dispatcher mirrors audit entries to an AuditWriter from a fixed set of
// workers. Entries are sharded by actor id, so each actor's entries are
// written in the order they were recorded.
type Dispatcher struct {
	workers []chan domain.AuditLogEntry
	writer  AuditWriter
	log     zerolog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, writer AuditWriter, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuditLogEntry, numWorkers),
		writer:  writer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditLogEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers exit when their channel is
// closed by Close; ctx is passed to every write.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands the entry to its worker without blocking. When the worker's
// buffer is full or the dispatcher is closed the entry is dropped from the
// mirror; the in-memory log still has it.
func (d *Dispatcher) Enqueue(entry domain.AuditLogEntry) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn().Str("entry_id", entry.ID).Msg("audit mirror closed, entry not mirrored")
		return
	}

	select {
	case d.workers[d.shardIndex(entry.UserID)] <- entry:
	default:
		d.log.Warn().Str("entry_id", entry.ID).Str("action", string(entry.Action)).Msg("audit mirror queue full, entry dropped")
	}
}

// Close stops accepting entries and waits until queued ones are written.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an actor id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditLogEntry) {
	defer d.wg.Done()
	for entry := range ch {
		if err := d.writer.Insert(ctx, entry); err != nil {
			d.log.Error().Err(err).
				Str("entry_id", entry.ID).
				Int("worker_id", id).
				Msg("audit mirror write failed")
		}
	}
}
