package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/atelabs/atelier/pkg/domain"
)

// BodyFunc is the normalized entry-point shape every workflow is registered
// under. ExpandedArgs workflows are adapted through Expanded at registration.
type BodyFunc func(ctx context.Context, ec *ExecContext, body map[string]any) (*domain.WorkflowResult, error)

// Definition declares one workflow for registration.
type Definition struct {
	Info       domain.WorkflowInfo
	Patterns   []string
	Convention domain.CallConvention

	// Blocking entry points run on the worker pool instead of the
	// caller's goroutine.
	Blocking bool

	Entry BodyFunc
}

// Descriptor is a compiled, immutable registry entry.
type Descriptor struct {
	Definition
	patterns []*regexp.Regexp
}

// Registry is the static workflow table, built once at startup and read-only
// thereafter.
type Registry struct {
	byID    map[string]*Descriptor
	ordered []*Descriptor
}

// NewRegistry compiles and validates the definitions. Pattern syntax errors,
// duplicate ids, and missing entry points are registration-time failures.
func NewRegistry(defs []Definition) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Descriptor, len(defs))}

	for _, def := range defs {
		if err := validateDefinition(def); err != nil {
			return nil, fmt.Errorf("workflow %q: %w", def.Info.ID, err)
		}
		if _, dup := r.byID[def.Info.ID]; dup {
			return nil, fmt.Errorf("duplicate workflow id: %s", def.Info.ID)
		}

		desc := &Descriptor{Definition: def}
		for _, p := range def.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("workflow %q: pattern %q: %w", def.Info.ID, p, err)
			}
			desc.patterns = append(desc.patterns, re)
		}

		r.byID[def.Info.ID] = desc
		r.ordered = append(r.ordered, desc)
	}

	return r, nil
}

// Get looks up a descriptor by id.
func (r *Registry) Get(id string) (*Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// List returns all descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	return r.ordered
}

// Infos returns caller-visible summaries in registration order.
func (r *Registry) Infos() []domain.WorkflowInfo {
	infos := make([]domain.WorkflowInfo, 0, len(r.ordered))
	for _, d := range r.ordered {
		infos = append(infos, d.Info)
	}
	return infos
}

// Expanded adapts a typed entry point to the registry's body shape. The
// input body is decoded into the workflow's args struct; a body that does
// not decode is an entry-point failure, not a panic.
func Expanded[A any](fn func(ctx context.Context, ec *ExecContext, args A) (*domain.WorkflowResult, error)) BodyFunc {
	return func(ctx context.Context, ec *ExecContext, body map[string]any) (*domain.WorkflowResult, error) {
		var args A
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode input: %w", err)
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return nil, fmt.Errorf("bind input: %w", err)
		}
		return fn(ctx, ec, args)
	}
}
