package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Registry is the immutable, fully-indexed result of Load. All exported
// methods are read-only and safe for concurrent use without locking.
type Registry struct {
	byName    map[string]*Operation
	byProduct map[string][]*Operation
	byMethod  map[string][]*Operation
	all       []*Operation
	digest    string
}

func newRegistry(operations []*Operation) *Registry {
	sort.Slice(operations, func(i, j int) bool { return operations[i].ToolName < operations[j].ToolName })

	r := &Registry{
		byName:    make(map[string]*Operation, len(operations)),
		byProduct: make(map[string][]*Operation),
		byMethod:  make(map[string][]*Operation),
		all:       operations,
	}
	for _, op := range operations {
		r.byName[op.ToolName] = op
		r.byProduct[op.Product] = append(r.byProduct[op.Product], op)
		r.byMethod[op.Method] = append(r.byMethod[op.Method], op)
	}
	r.digest = computeDigest(operations)
	return r
}

// Get returns the operation registered under the given tool name.
func (r *Registry) Get(toolName string) (*Operation, bool) {
	op, ok := r.byName[toolName]
	return op, ok
}

// All returns every operation in stable tool-name order.
func (r *Registry) All() []*Operation {
	return r.all
}

// Filter narrows a Search call. A zero-value Filter matches everything.
type Filter struct {
	Product string
	Method  string
	// Query is matched, case-insensitively, against tool name, operation
	// ID, and summary.
	Query string
	// PaginatedOnly, when true, restricts results to operations with
	// SupportsPagination == true.
	PaginatedOnly bool
}

// Search returns operations matching every non-empty field of f, in stable
// tool-name order.
func (r *Registry) Search(f Filter) []*Operation {
	candidates := r.all
	if f.Product != "" {
		candidates = r.byProduct[f.Product]
	}

	out := make([]*Operation, 0, len(candidates))
	query := strings.ToLower(f.Query)
	for _, op := range candidates {
		if f.PaginatedOnly && !op.SupportsPagination {
			continue
		}
		if f.Method != "" && !strings.EqualFold(op.Method, f.Method) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(op.ToolName), query) &&
			!strings.Contains(strings.ToLower(op.OperationID), query) &&
			!strings.Contains(strings.ToLower(op.Summary), query) {
			continue
		}
		out = append(out, op)
	}
	return out
}

// Stats summarizes a loaded registry for the registry_stats meta-tool and
// for --dry-run-registry diagnostics.
type Stats struct {
	TotalOperations int            `json:"totalOperations"`
	ByProduct       map[string]int `json:"byProduct"`
	ByMethod        map[string]int `json:"byMethod"`
	Paginated       int            `json:"paginated"`
	Digest          string         `json:"digest"`
}

// Stats computes a snapshot summary. Digest is a deterministic hash of the
// loaded operation set (stable across runs given identical input specs),
// standing in for a generatedAt timestamp since this package must stay
// free of wall-clock dependencies.
func (r *Registry) Stats() Stats {
	s := Stats{
		TotalOperations: len(r.all),
		ByProduct:       make(map[string]int, len(r.byProduct)),
		ByMethod:        make(map[string]int, len(r.byMethod)),
		Digest:          r.digest,
	}
	for product, ops := range r.byProduct {
		s.ByProduct[product] = len(ops)
	}
	for method, ops := range r.byMethod {
		s.ByMethod[method] = len(ops)
	}
	for _, op := range r.all {
		if op.SupportsPagination {
			s.Paginated++
		}
	}
	return s
}

// computeDigest hashes the sorted tool names and methods of a loaded
// registry so two loads of the same catalog produce the same digest (spec
// §3.1 invariant 2: determinism), while any change to the operation set
// changes it.
func computeDigest(operations []*Operation) string {
	h := sha256.New()
	for _, op := range operations {
		h.Write([]byte(op.ToolName))
		h.Write([]byte{0})
		h.Write([]byte(op.Method))
		h.Write([]byte{0})
		h.Write([]byte(op.Path))
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
