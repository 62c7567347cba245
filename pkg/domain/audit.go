package domain

import "time"

// AuditRecord is an append-only entry for the audit sink. Metadata must
// never contain raw parameter values for PHI-bearing tools, only counts
// and flags.
type AuditRecord struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Action      string         `json:"action"`
	Resource    string         `json:"resource"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	PHIAccessed bool           `json:"phi_accessed,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
