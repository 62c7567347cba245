package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/schema"
)

// ClinicalTool is the uniform contract every deterministic clinical
// calculator implements: metadata, an ordered parameter schema, parameter
// validation, and the domain computation itself.
type ClinicalTool interface {
	Metadata() domain.ToolMetadata
	Schema() schema.Fields
	Validate(params map[string]any) domain.ValidationResult
	Execute(ctx context.Context, params map[string]any) (*domain.ToolOutput, error)
}

// ToolInfo is the listing shape: metadata plus the parameter schema.
type ToolInfo struct {
	domain.ToolMetadata
	Parameters []map[string]any `json:"parameters"`
}

// tierAllowList maps subscription tiers onto the tool IDs they may use.
// FREE is a subset of PROFESSIONAL is a subset of INSTITUTIONAL. IDs listed
// here but not registered are silently dropped.
var tierAllowList = map[domain.SubscriptionTier][]string{
	domain.TierFree: {
		"lab_interpreter",
	},
	domain.TierProfessional: {
		"lab_interpreter",
		"drug_interaction_checker",
		"dosage_calculator",
	},
	domain.TierInstitutional: {
		"lab_interpreter",
		"drug_interaction_checker",
		"dosage_calculator",
		"sofa_calculator",
	},
}

// Registry holds the clinical tools. It is built once at process start and
// append-only thereafter; lookups need no locking after initialization, but
// the mutex keeps Register safe if wiring happens late.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]ClinicalTool
	order []string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ClinicalTool),
	}
}

// Register adds a tool under its metadata ID. Duplicate IDs are a
// configuration error and fail fast rather than overwriting.
func (r *Registry) Register(tool ClinicalTool) error {
	id := tool.Metadata().ID
	if id == "" {
		return fmt.Errorf("registering tool: empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[id]; exists {
		return fmt.Errorf("registering tool %q: %w", id, domain.ErrDuplicateTool)
	}
	r.tools[id] = tool
	r.order = append(r.order, id)
	return nil
}

// MustRegister registers a set of tools, panicking on duplicates. Intended
// for process-startup wiring where a duplicate ID is a programming error.
func (r *Registry) MustRegister(tools ...ClinicalTool) {
	for _, tool := range tools {
		if err := r.Register(tool); err != nil {
			panic(err)
		}
	}
}

// Get resolves a tool by ID.
func (r *Registry) Get(id string) (ClinicalTool, error) {
	r.mu.RLock()
	tool, ok := r.tools[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, id)
	}
	return tool, nil
}

// List returns every registered tool's metadata plus its parameter schema,
// in registration order. No side effects.
func (r *Registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolInfo, 0, len(r.order))
	for _, id := range r.order {
		tool := r.tools[id]
		out = append(out, ToolInfo{
			ToolMetadata: tool.Metadata(),
			Parameters:   tool.Schema().Describe(),
		})
	}
	return out
}

// Info returns metadata plus schema for one tool.
// Returns domain.ErrToolNotFound for unregistered IDs.
func (r *Registry) Info(id string) (ToolInfo, error) {
	tool, err := r.Get(id)
	if err != nil {
		return ToolInfo{}, err
	}
	return ToolInfo{
		ToolMetadata: tool.Metadata(),
		Parameters:   tool.Schema().Describe(),
	}, nil
}

// ByTier filters the registry through the static tier allow-list.
func (r *Registry) ByTier(tier domain.SubscriptionTier) []ToolInfo {
	allowed := tierAllowList[tier]

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ToolInfo, 0, len(allowed))
	for _, id := range allowed {
		tool, ok := r.tools[id]
		if !ok {
			// Allow-listed but never registered: dropped, not an error.
			continue
		}
		out = append(out, ToolInfo{
			ToolMetadata: tool.Metadata(),
			Parameters:   tool.Schema().Describe(),
		})
	}
	return out
}

// Statistics returns the tool count per category, computed on demand.
func (r *Registry) Statistics() map[string]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]int)
	for _, tool := range r.tools {
		stats[tool.Metadata().Category]++
	}
	return stats
}

// IDs returns the registered tool IDs sorted lexicographically.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.tools))
	for id := range r.tools {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
