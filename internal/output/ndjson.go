// Package output writes accepted opportunity records to local files and
// renders the end-of-run summary.
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/opportunity-hack/grantfinder/internal/domain"
)

// NDJSONSink appends records to a newline-delimited JSON file, one record
// per line. Safe for concurrent writers.
type NDJSONSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewNDJSONSink opens (or creates) the file for appending.
func NewNDJSONSink(path string) (*NDJSONSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ndjson output: %w", err)
	}

	return &NDJSONSink{file: file, enc: json.NewEncoder(file)}, nil
}

// Write appends a batch of records.
func (s *NDJSONSink) Write(_ context.Context, records []*domain.OpportunityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if err := s.enc.Encode(record); err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
	}

	return nil
}

// Close syncs and closes the file.
func (s *NDJSONSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return fmt.Errorf("sync ndjson output: %w", err)
	}

	return s.file.Close()
}
