package output

import (
	"context"
	"errors"
	"sync"

	"github.com/opportunity-hack/grantfinder/internal/domain"
)

// Sink matches the crawler's record sink contract.
type Sink interface {
	Write(ctx context.Context, records []*domain.OpportunityRecord) error
	Close() error
}

// MultiSink fans each batch out to every wrapped sink. Delivery is tracked
// per sink: a sink that fails keeps its share of the batch pending and
// receives it again on the next write, while sinks that already accepted the
// records are never handed them twice.
type MultiSink struct {
	mu      sync.Mutex
	sinks   []Sink
	pending [][]*domain.OpportunityRecord
}

// NewMultiSink wraps the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{
		sinks:   sinks,
		pending: make([][]*domain.OpportunityRecord, len(sinks)),
	}
}

// Write delivers the batch to every sink, prepending any records the sink
// failed to accept earlier. A failing sink does not stop delivery to the
// others; errors are joined.
func (m *MultiSink) Write(ctx context.Context, records []*domain.OpportunityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i, sink := range m.sinks {
		batch := append(m.pending[i], records...)
		if len(batch) == 0 {
			continue
		}

		if err := sink.Write(ctx, batch); err != nil {
			m.pending[i] = batch
			errs = append(errs, err)
			continue
		}
		m.pending[i] = nil
	}

	return errors.Join(errs...)
}

// Close makes a final delivery attempt for any pending records, then closes
// every sink.
func (m *MultiSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for i, sink := range m.sinks {
		if len(m.pending[i]) > 0 {
			if err := sink.Write(context.Background(), m.pending[i]); err != nil {
				errs = append(errs, err)
			}
			m.pending[i] = nil
		}
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
