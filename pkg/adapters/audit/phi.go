package audit

import (
	"context"
	"regexp"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/ports"
)

// Middleware wraps an audit sink with additional behavior.
type Middleware func(ports.AuditSink) ports.AuditSink

type phiMasking struct {
	next     ports.AuditSink
	patterns []*regexp.Regexp
}

// NewPHIMasking creates a middleware that masks metadata values whose keys
// match any of the patterns before the record reaches the sink. The
// original record owned by the caller is never mutated.
func NewPHIMasking(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.AuditSink) ports.AuditSink {
		return &phiMasking{next: next, patterns: patterns}
	}
}

func (m *phiMasking) Record(ctx context.Context, rec domain.AuditRecord) error {
	if rec.Metadata != nil {
		// Deep copy before masking so the caller's record is untouched.
		cloned := deepCopyMap(rec.Metadata)
		maskMap(cloned, m.patterns)
		rec.Metadata = cloned
	}
	return m.next.Record(ctx, rec)
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
