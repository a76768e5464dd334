package service

import (
	"context"
	"fmt"

	"github.com/pagehub/contentd/cmd/contentd/models"
	"github.com/pagehub/contentd/common/logger"
)

// CounterStore applies a batch of counter increments atomically
type CounterStore interface {
	ApplyIncrements(ctx context.Context, refs []models.ContentReference) (int, error)
}

// CounterService consumes queued reference batches and propagates view
// counter increments to the source of record. Each batch is applied
// all-or-nothing: a store failure rolls the whole batch back so counter
// totals stay consistent with the reads that produced them.
type CounterService struct {
	counters CounterStore
	log      *logger.Logger
}

// NewCounterService creates a new counter service
func NewCounterService(counters CounterStore, log *logger.Logger) *CounterService {
	return &CounterService{
		counters: counters,
		log:      log,
	}
}

// HandleMessage is the queue subscriber entry point. The payload may be
// a single reference, a flat list, or nested lists.
func (s *CounterService) HandleMessage(ctx context.Context, message []byte) error {
	return s.Propagate(ctx, FlattenRefs(message))
}

// Propagate increments the view counter of every valid reference once.
// Malformed references are skipped with a log entry, never fatal to the
// batch; references are intentionally not deduplicated, since each one
// represents a real view.
func (s *CounterService) Propagate(ctx context.Context, refs []models.ContentReference) error {
	valid := make([]models.ContentReference, 0, len(refs))
	for _, ref := range refs {
		if _, err := models.ParseContentKind(string(ref.Kind)); err != nil || ref.ID <= 0 {
			s.log.Warn("skipping malformed content reference", "kind", ref.Kind, "id", ref.ID)
			continue
		}
		valid = append(valid, ref)
	}

	if len(valid) == 0 {
		return nil
	}

	applied, err := s.counters.ApplyIncrements(ctx, valid)
	if err != nil {
		return fmt.Errorf("propagate counters: %w", err)
	}

	if applied < len(valid) {
		s.log.Warn("counter targets missing", "requested", len(valid), "applied", applied)
	}
	s.log.Debug("counters propagated", "refs", len(valid), "applied", applied)

	return nil
}
