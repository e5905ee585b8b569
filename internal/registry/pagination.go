package registry

// detectPagination implements spec §4.H step 5: an operation supports
// pagination iff it is a GET and at least one of its query parameters is
// named in the recognized set. The first recognized name found in
// queryParams (which buildOperations has sorted by name) decides which PaginationKind and cursor
// parameter the executor's pagination driver will use.
func detectPagination(method string, queryParams []ParameterDescriptor) (supports bool, kind PaginationKind, cursorParam string) {
	if method != "GET" {
		return false, PaginationNone, ""
	}
	for _, p := range queryParams {
		if k, ok := recognizedPaginationParams[p.Name]; ok {
			return true, k, p.Name
		}
	}
	return false, PaginationNone, ""
}
