package output

import (
	"context"
	"io"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/opportunity-hack/grantfinder/internal/domain"
)

// Column widths for the summary table.
const (
	titleColumnWidth = 50
	urlColumnWidth   = 60
)

// CollectorSink retains records in memory so the run summary can rank them
// at the end. It is meant to be combined with a durable sink through
// MultiSink, not used alone.
type CollectorSink struct {
	mu      sync.Mutex
	records []*domain.OpportunityRecord
}

// NewCollectorSink creates an empty collector.
func NewCollectorSink() *CollectorSink {
	return &CollectorSink{}
}

// Write retains the batch.
func (c *CollectorSink) Write(_ context.Context, records []*domain.OpportunityRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, records...)
	return nil
}

// Close is a no-op; the collector holds no external resources.
func (c *CollectorSink) Close() error { return nil }

// Records returns the retained records sorted by descending score.
func (c *CollectorSink) Records() []*domain.OpportunityRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	sorted := make([]*domain.OpportunityRecord, len(c.records))
	copy(sorted, c.records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	return sorted
}

// RenderSummary prints the run statistics and the top accepted records.
func RenderSummary(w io.Writer, stats *domain.CrawlStats, records []*domain.OpportunityRecord, topN int) {
	statsTable := table.NewWriter()
	statsTable.SetOutputMirror(w)
	statsTable.SetStyle(table.StyleRounded)
	statsTable.AppendHeader(table.Row{"Metric", "Value"})
	statsTable.AppendRows([]table.Row{
		{"Elapsed", stats.Elapsed().Round(time.Second).String()},
		{"Pages fetched", stats.Fetched},
		{"Fetch failures", stats.Failed},
		{"Blocked", stats.Blocked},
		{"URLs enqueued", stats.Enqueued},
		{"Opportunities accepted", stats.Accepted},
		{"Pages dropped", stats.Dropped},
	})
	statsTable.Render()

	if len(records) == 0 {
		return
	}

	if topN > 0 && len(records) > topN {
		records = records[:topN]
	}

	resultTable := table.NewWriter()
	resultTable.SetOutputMirror(w)
	resultTable.SetStyle(table.StyleRounded)
	resultTable.Style().Options.SeparateRows = true
	resultTable.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: titleColumnWidth},
		{Number: 4, WidthMax: urlColumnWidth},
	})
	resultTable.AppendHeader(table.Row{"#", "Score", "Title", "URL", "Funding", "Deadline"})

	for i, record := range records {
		resultTable.AppendRow(table.Row{
			i + 1,
			strconv.FormatFloat(record.Score, 'f', 2, 64),
			record.Title,
			record.URL,
			record.FundingString(),
			record.Fields.Deadline,
		})
	}

	resultTable.Render()
}
