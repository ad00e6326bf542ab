package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/opportunity-hack/grantfinder/internal/domain"
)

var csvHeader = []string{
	"id", "url", "source_name", "title", "relevance_score",
	"funding_amount", "deadline", "application_url", "eligibility",
	"tech_focus", "nonprofit_sectors", "volunteer_component",
	"hackathon_eligible", "source_kind", "depth", "found_at",
}

// CSVSink appends records to a CSV file, writing the header once for new
// files. Safe for concurrent writers.
type CSVSink struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVSink opens (or creates) the file for appending. The header row is
// written only when the file starts empty.
func NewCSVSink(path string) (*CSVSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv output: %w", err)
	}

	sink := &CSVSink{file: file, writer: csv.NewWriter(file)}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat csv output: %w", err)
	}

	if info.Size() == 0 {
		if err := sink.writer.Write(csvHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		sink.writer.Flush()
	}

	return sink, nil
}

// Write appends a batch of records.
func (s *CSVSink) Write(_ context.Context, records []*domain.OpportunityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if err := s.writer.Write(recordRow(record)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("flush csv output: %w", err)
	}

	return s.file.Close()
}

func recordRow(r *domain.OpportunityRecord) []string {
	return []string{
		r.ID,
		r.URL,
		r.SourceName,
		r.Title,
		strconv.FormatFloat(r.Score, 'f', 4, 64),
		r.FundingString(),
		r.Fields.Deadline,
		r.Fields.ApplicationURL,
		r.Fields.Eligibility,
		strings.Join(r.Fields.TechFocus, "; "),
		strings.Join(r.Fields.NonprofitSectors, "; "),
		strconv.FormatBool(r.Fields.VolunteerComponent),
		strconv.FormatBool(r.Fields.HackathonEligible),
		string(r.Source),
		strconv.Itoa(r.Depth),
		r.FoundAt.Format(time.RFC3339),
	}
}
