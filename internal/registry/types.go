package registry

// ParamLocation is where a parameter is carried on the wire.
type ParamLocation string

const (
	LocationPath   ParamLocation = "path"
	LocationQuery  ParamLocation = "query"
	LocationHeader ParamLocation = "header"
)

// SchemaKind is the closed tagged-variant used in place of reflecting
// arbitrary JSON Schema into the type system (Design Notes §9 — "Dynamic
// schema handling"). Validation against it is interpretive, not generative.
type SchemaKind string

const (
	SchemaScalar    SchemaKind = "scalar"
	SchemaObject    SchemaKind = "object"
	SchemaArray     SchemaKind = "array"
	SchemaEnum      SchemaKind = "enum"
	SchemaUnknown   SchemaKind = "unknown"
	SchemaRecursive SchemaKind = "recursive"
)

// Schema is an opaque, interpretive descriptor for a JSON Schema fragment.
// Recursive $ref cycles are broken by a depth cap (see refresolver.go); the
// resulting descriptor is tagged SchemaRecursive with Truncated set but
// remains well-formed — callers can still print or validate against it.
type Schema struct {
	Kind       SchemaKind
	Type       string // JSON Schema "type" (string, integer, number, boolean, object, array)
	Enum       []string
	Items      *Schema
	Properties map[string]*Schema
	Truncated  bool
}

// ParameterDescriptor describes one path, query, or header parameter. By
// the time it is attached to an Operation, any $ref in its schema has been
// fully inlined (spec §3.1 invariant: "no $ref remains after load").
type ParameterDescriptor struct {
	Name        string
	Location    ParamLocation
	Required    bool
	Schema      Schema
	Description string
	Default     interface{}
}

// RequestBodyDescriptor describes an operation's JSON request body.
type RequestBodyDescriptor struct {
	Required    bool
	ContentType string
	Schema      Schema
}

// ResponseDescriptor describes one status-class entry of an operation's
// responses object (e.g. "200", "4XX", "default").
type ResponseDescriptor struct {
	Description string
	Schema      Schema
}

// PaginationKind is the closed variant Design Notes §9 calls for
// ("Pagination polymorphism"): detection populates exactly one of these.
type PaginationKind string

const (
	PaginationNone       PaginationKind = "none"
	PaginationOffsetSet  PaginationKind = "offset_limit"
	PaginationPageNumber PaginationKind = "page_number"
	PaginationCursor     PaginationKind = "cursor"
)

// Operation is one (method, path) pair declared by an OpenAPI document,
// fully resolved and indexed (spec §3.1).
type Operation struct {
	OperationID string
	ToolName    string
	Method      string
	Path        string
	Product     string
	Version     string

	PathParams   []ParameterDescriptor
	QueryParams  []ParameterDescriptor
	HeaderParams []ParameterDescriptor
	RequestBody  *RequestBodyDescriptor
	Responses    map[string]ResponseDescriptor

	Tags            []string
	SecuritySchemes []string
	Servers         []string

	SupportsPagination bool
	Pagination         PaginationKind
	// CursorParam is the query parameter name used to advance pagination,
	// populated whenever Pagination != PaginationNone.
	CursorParam string

	Description string
	Summary     string
}

// AllParams returns the path, query, and header parameters of an operation
// in that order — convenient for validation passes that don't care about
// location grouping.
func (o *Operation) AllParams() []ParameterDescriptor {
	out := make([]ParameterDescriptor, 0, len(o.PathParams)+len(o.QueryParams)+len(o.HeaderParams))
	out = append(out, o.PathParams...)
	out = append(out, o.QueryParams...)
	out = append(out, o.HeaderParams...)
	return out
}

// recognizedPaginationParams is the small set from spec §4.H step 5.
var recognizedPaginationParams = map[string]PaginationKind{
	"limit":              PaginationOffsetSet,
	"offset":             PaginationOffsetSet,
	"page":               PaginationPageNumber,
	"pageSize":           PaginationPageNumber,
	"cursor":             PaginationCursor,
	"continuationToken":  PaginationCursor,
}
