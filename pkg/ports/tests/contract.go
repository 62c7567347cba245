package tests

import (
	"context"
	"testing"
	"time"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/ports"
)

// AuditSinkContractTest is a reusable suite verifying an adapter complies
// with ports.AuditSink. If the sink also implements ports.AuditReader, the
// suite verifies records come back intact and in order.
func AuditSinkContractTest(t *testing.T, sink ports.AuditSink) {
	t.Helper()
	ctx := context.Background()

	records := []domain.AuditRecord{
		{ID: "a-1", UserID: "u-1", Action: "tool_execute", Resource: "sofa_calculator", CreatedAt: time.Now().UTC()},
		{ID: "a-2", UserID: "u-1", Action: "emergency_escalation", Resource: "escalation", PHIAccessed: true, CreatedAt: time.Now().UTC()},
		{ID: "a-3", UserID: "u-2", Action: "generation_escalation", Resource: "sandwich", Metadata: map[string]any{"stage": "pre_check_failed"}, CreatedAt: time.Now().UTC()},
	}

	t.Run("Record_Appends", func(t *testing.T) {
		for _, rec := range records {
			if err := sink.Record(ctx, rec); err != nil {
				t.Fatalf("unexpected error recording %s: %v", rec.ID, err)
			}
		}
	})

	reader, ok := sink.(ports.AuditReader)
	if !ok {
		return
	}

	t.Run("Recent_ReturnsNewestFirst", func(t *testing.T) {
		got, err := reader.Recent(ctx, len(records))
		if err != nil {
			t.Fatalf("unexpected error reading back: %v", err)
		}
		if len(got) != len(records) {
			t.Fatalf("expected %d records, got %d", len(records), len(got))
		}
		// Newest first.
		for i, rec := range got {
			want := records[len(records)-1-i]
			if rec.ID != want.ID {
				t.Errorf("record %d: got ID %q, want %q", i, rec.ID, want.ID)
			}
			if rec.Action != want.Action {
				t.Errorf("record %d: got action %q, want %q", i, rec.Action, want.Action)
			}
			if rec.PHIAccessed != want.PHIAccessed {
				t.Errorf("record %d: PHIAccessed = %v, want %v", i, rec.PHIAccessed, want.PHIAccessed)
			}
		}
	})

	t.Run("Recent_Truncates", func(t *testing.T) {
		got, err := reader.Recent(ctx, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
	})
}
