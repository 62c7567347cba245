// Package audit provides audit sink adapters: an in-memory sink for tests
// and development, a SQLite-backed append-only sink, and a PHI-masking
// middleware that wraps any sink.
package audit

import (
	"context"
	"sync"

	"github.com/caregate/caregate/pkg/domain"
)

// MemorySink stores records in memory. Safe for concurrent use.
type MemorySink struct {
	mu      sync.RWMutex
	records []domain.AuditRecord
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends one audit record.
func (s *MemorySink) Record(ctx context.Context, rec domain.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// Recent returns up to n records, newest first.
func (s *MemorySink) Recent(ctx context.Context, n int) ([]domain.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]domain.AuditRecord, 0, n)
	for i := len(s.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// Len returns the number of stored records.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
