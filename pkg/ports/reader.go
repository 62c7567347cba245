package ports

import (
	"context"

	"github.com/caregate/caregate/pkg/domain"
)

// AuditReader is implemented by sinks that can serve back recent records
// (dashboards, incident review). Optional; the core only writes.
type AuditReader interface {
	Recent(ctx context.Context, n int) ([]domain.AuditRecord, error)
}
