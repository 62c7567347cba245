package ports

import (
	"context"

	"github.com/caregate/caregate/pkg/domain"
)

// AuditSink appends immutable audit records. Implementations must be safe
// for concurrent use. An audit write already issued for a completed stage
// must be allowed to finish even if the request is cancelled.
type AuditSink interface {
	Record(ctx context.Context, rec domain.AuditRecord) error
}
