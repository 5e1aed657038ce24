package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/ssea/accreditation-api/internal/core/domain"
	"github.com/ssea/accreditation-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// AuditRecorder writes audit entries off the request path. Entries are
// routed to a fixed set of workers by hashing the phase id, so entries for
// the same phase land in the log in the order they were recorded.
type AuditRecorder struct {
	workers []chan domain.AuditEntry
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditRecorder creates a recorder with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditRecorder(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditRecorder {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &AuditRecorder{
		workers: make([]chan domain.AuditEntry, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *AuditRecorder) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Record sends an entry to the worker responsible for its phase. The call
// is non-blocking up to channelBuffer capacity.
func (r *AuditRecorder) Record(entry domain.AuditEntry) {
	r.workers[r.shardIndex(entry.PhaseID)] <- entry
}

// shardIndex maps a phase id deterministically to a worker index.
func (r *AuditRecorder) shardIndex(phaseID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(phaseID))
	return int(h.Sum32()) % len(r.workers)
}

func (r *AuditRecorder) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			if err := r.repo.Insert(ctx, &entry); err != nil {
				r.log.Error().Err(err).
					Str("phase_id", entry.PhaseID).
					Str("action", string(entry.Action)).
					Int("worker_id", id).
					Msg("audit write failed")
			}
		}
	}
}
