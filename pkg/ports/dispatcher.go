package ports

import (
	"context"
	"time"

	"github.com/caregate/caregate/pkg/domain"
)

// Dispatcher executes one escalation action against the notification or
// dispatch transport (paging, 911 bridge, director alerts). Real
// integrations live outside this core; the shipped adapter logs.
type Dispatcher interface {
	Dispatch(ctx context.Context, action domain.EscalationAction, ec domain.EscalationContext) error
}

// IncidentDeduper reserves an incident ID for a deduplication key.
// Reserve returns the incident ID that owns the key and whether the
// reservation is new. A repeated signal within the TTL window returns the
// original incident ID with created=false.
type IncidentDeduper interface {
	Reserve(ctx context.Context, key, incidentID string, ttl time.Duration) (owner string, created bool, err error)
}
