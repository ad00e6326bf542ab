package crawler

import (
	"context"
	"sync"

	"github.com/opportunity-hack/grantfinder/internal/domain"
	"github.com/opportunity-hack/grantfinder/internal/logger"
)

// RecordSink receives accepted opportunity records in batches.
type RecordSink interface {
	Write(ctx context.Context, records []*domain.OpportunityRecord) error
	Close() error
}

// emitter batches accepted records and flushes them to the sink, either when
// the batch fills or on the periodic flush tick. Each record is handed to the
// sink exactly once; retrying a partially failed delivery is the sink's
// concern, since only it knows which destinations already accepted the batch.
// A failed flush is logged and never stops the crawl.
type emitter struct {
	sink      RecordSink
	batchSize int
	log       logger.Interface

	mu    sync.Mutex
	batch []*domain.OpportunityRecord
}

func newEmitter(sink RecordSink, batchSize int, log logger.Interface) *emitter {
	return &emitter{
		sink:      sink,
		batchSize: batchSize,
		log:       log,
	}
}

// add queues a record, flushing when the batch is full.
func (e *emitter) add(ctx context.Context, record *domain.OpportunityRecord) {
	e.mu.Lock()
	e.batch = append(e.batch, record)
	full := len(e.batch) >= e.batchSize
	e.mu.Unlock()

	if full {
		e.flush(ctx)
	}
}

// flush writes the current batch to the sink. The batch is handed over
// whether or not the sink reports an error; re-sending it here would
// duplicate records at destinations that already accepted them.
func (e *emitter) flush(ctx context.Context) {
	e.mu.Lock()
	batch := e.batch
	e.batch = nil
	e.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	if err := e.sink.Write(ctx, batch); err != nil {
		e.log.Warn("record flush incomplete",
			"records", len(batch),
			"error", err.Error(),
		)
	}
}
