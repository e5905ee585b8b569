package registry

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"akamai-mcp-gateway/pkg/logging"
)

var httpMethods = []string{"get", "post", "put", "patch", "delete", "head", "options"}

// specFile is one discovered OpenAPI document, product-tagged by the name
// of the directory immediately under the catalog root that contains it
// (spec §4.H step 1: "product is derived from the directory the spec file
// lives in, not from any field inside the document").
type specFile struct {
	path    string
	product string
}

// discoverSpecFiles looks for *.json files directly inside each directory
// immediately under root, matching the flat per-product layout the vendor
// catalog ships with. Files at root itself and in deeper subdirectories are
// not picked up.
func discoverSpecFiles(root string) ([]specFile, error) {
	entries, err := osReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading catalog root %s: %w", root, err)
	}

	var out []specFile
	for _, productDir := range entries {
		if !productDir.IsDir() {
			continue
		}
		product := productDir.Name()
		productPath := filepath.Join(root, product)
		files, err := osReadDir(productPath)
		if err != nil {
			logging.WarnFields("Registry", "skipping unreadable product directory", map[string]interface{}{
				"product": product, "error": err.Error(),
			})
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
				continue
			}
			out = append(out, specFile{path: filepath.Join(productPath, f.Name()), product: product})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].product != out[j].product {
			return out[i].product < out[j].product
		}
		return out[i].path < out[j].path
	})
	return out, nil
}

type parsedDoc struct {
	doc map[string]interface{}
	err error
}

// prefetchDocs reads and JSON-decodes every discovered spec file
// concurrently, since the files are independent until merged. Results are
// returned in the same order as files so the caller can fold them back in
// sequentially — tool-name collision suffixes depend on processing order,
// so the fan-in must stay deterministic even though the fan-out doesn't.
func prefetchDocs(files []specFile) []parsedDoc {
	out := make([]parsedDoc, len(files))
	var g errgroup.Group
	for i, sf := range files {
		i, sf := i, sf
		g.Go(func() error {
			doc, err := readAndParseDoc(sf.path)
			out[i] = parsedDoc{doc: doc, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Load discovers every OpenAPI spec file under root, resolves it, and builds
// an immutable Registry. It never returns a Registry with zero operations —
// that is treated as a fatal misconfiguration (spec §4.H step 6).
func Load(root string) (*Registry, error) {
	files, err := discoverSpecFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("registry: no spec files found under %s", root)
	}

	aliases, err := loadProductAliases(root)
	if err != nil {
		return nil, err
	}
	applyAliases(files, aliases)
	sort.Slice(files, func(i, j int) bool {
		if files[i].product != files[j].product {
			return files[i].product < files[j].product
		}
		return files[i].path < files[j].path
	})

	docs := newDocSet()
	res := newResolver(docs)
	namer := newToolNamer()

	parsed := prefetchDocs(files)

	var operations []*Operation
	for i, sf := range files {
		if parsed[i].err != nil {
			logging.WarnFields("Registry", "skipping malformed spec file", map[string]interface{}{
				"path": sf.path, "error": parsed[i].err.Error(),
			})
			continue
		}
		docs.warm(sf.path, parsed[i].doc)
		ops, err := buildOperations(parsed[i].doc, sf, res, namer)
		if err != nil {
			logging.WarnFields("Registry", "skipping spec file with invalid paths", map[string]interface{}{
				"path": sf.path, "error": err.Error(),
			})
			continue
		}
		operations = append(operations, ops...)
	}

	if len(operations) == 0 {
		return nil, fmt.Errorf("registry: zero operations ingested from %s", root)
	}

	return newRegistry(operations), nil
}

func buildOperations(doc map[string]interface{}, sf specFile, res *resolver, namer *toolNamer) ([]*Operation, error) {
	var version string
	if info, ok := doc["info"].(map[string]interface{}); ok {
		version, _ = info["version"].(string)
	}

	paths, _ := doc["paths"].(map[string]interface{})
	if paths == nil {
		return nil, fmt.Errorf("no paths object")
	}

	pathKeys := make([]string, 0, len(paths))
	for p := range paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	var out []*Operation
	for _, path := range pathKeys {
		pathItem, ok := paths[path].(map[string]interface{})
		if !ok {
			continue
		}

		pathLevelParams := extractParams(pathItem["parameters"], sf.path, res)

		for _, method := range httpMethods {
			opNode, hasOp := pathItem[method]
			if !hasOp {
				continue
			}
			opMap, ok := opNode.(map[string]interface{})
			if !ok {
				continue
			}

			opID, _ := opMap["operationId"].(string)
			if opID == "" {
				opID = fallbackOperationID(method, path)
			}

			opLevelParams := extractParams(opMap["parameters"], sf.path, res)
			merged := mergeParams(pathLevelParams, opLevelParams)

			op := &Operation{
				OperationID: opID,
				ToolName:    namer.Name(sf.product, opID),
				Method:      strings.ToUpper(method),
				Path:        path,
				Product:     sf.product,
				Version:     version,
				Description: stringField(opMap, "description"),
				Summary:     stringField(opMap, "summary"),
				Tags:        stringSliceField(opMap["tags"]),
				Responses:   buildResponses(opMap["responses"], sf.path, res),
			}

			for _, p := range merged {
				switch p.Location {
				case LocationPath:
					op.PathParams = append(op.PathParams, p)
				case LocationQuery:
					op.QueryParams = append(op.QueryParams, p)
				case LocationHeader:
					op.HeaderParams = append(op.HeaderParams, p)
				}
			}
			sortParams(op.PathParams)
			sortParams(op.QueryParams)
			sortParams(op.HeaderParams)

			op.RequestBody = buildRequestBody(opMap["requestBody"], sf.path, res)

			supports, kind, cursor := detectPagination(op.Method, op.QueryParams)
			op.SupportsPagination = supports
			op.Pagination = kind
			op.CursorParam = cursor

			out = append(out, op)
		}
	}
	return out, nil
}

func sortParams(params []ParameterDescriptor) {
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
}

func fallbackOperationID(method, path string) string {
	slug := nonAlnumRun.ReplaceAllString(strings.ToLower(path), "_")
	return strings.ToLower(method) + "_" + strings.Trim(slug, "_")
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func stringSliceField(v interface{}) []string {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, e := range arr {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// extractParams dereferences a raw "parameters" array (which may itself
// contain $ref entries pointing at shared components) into descriptors.
func extractParams(node interface{}, currentFile string, res *resolver) []ParameterDescriptor {
	arr, ok := node.([]interface{})
	if !ok {
		return nil
	}
	out := make([]ParameterDescriptor, 0, len(arr))
	for _, raw := range arr {
		obj, file, ok := res.derefObject(raw, currentFile, map[string]bool{}, 0)
		if !ok {
			continue
		}
		name, _ := obj["name"].(string)
		if name == "" {
			continue
		}
		loc := ParamLocation(stringField(obj, "in"))
		if loc != LocationPath && loc != LocationQuery && loc != LocationHeader {
			continue
		}
		required, _ := obj["required"].(bool)
		if loc == LocationPath {
			required = true
		}
		schema := res.resolveSchema(obj["schema"], file, map[string]bool{}, 0)
		out = append(out, ParameterDescriptor{
			Name:        name,
			Location:    loc,
			Required:    required,
			Schema:      *schema,
			Description: stringField(obj, "description"),
			Default:     obj["default"],
		})
	}
	return out
}

// mergeParams overlays operation-level parameters on path-level ones,
// matching by (name, location) — an operation-level entry shadows a
// path-level entry of the same name and location (spec §4.H step 3).
func mergeParams(pathLevel, opLevel []ParameterDescriptor) []ParameterDescriptor {
	key := func(p ParameterDescriptor) string { return string(p.Location) + "\x00" + p.Name }

	byKey := make(map[string]ParameterDescriptor, len(pathLevel)+len(opLevel))
	order := make([]string, 0, len(pathLevel)+len(opLevel))
	for _, p := range pathLevel {
		k := key(p)
		if _, exists := byKey[k]; !exists {
			order = append(order, k)
		}
		byKey[k] = p
	}
	for _, p := range opLevel {
		k := key(p)
		if _, exists := byKey[k]; !exists {
			order = append(order, k)
		}
		byKey[k] = p
	}

	out := make([]ParameterDescriptor, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

func buildRequestBody(node interface{}, currentFile string, res *resolver) *RequestBodyDescriptor {
	obj, file, ok := res.derefObject(node, currentFile, map[string]bool{}, 0)
	if !ok {
		return nil
	}
	required, _ := obj["required"].(bool)
	content, _ := obj["content"].(map[string]interface{})

	contentType := "application/json"
	mediaNode, hasJSON := content[contentType]
	if !hasJSON {
		for ct, node := range content {
			contentType = ct
			mediaNode = node
			break
		}
	}
	if mediaNode == nil {
		return &RequestBodyDescriptor{Required: required, ContentType: contentType}
	}
	media, _ := mediaNode.(map[string]interface{})
	schema := res.resolveSchema(media["schema"], file, map[string]bool{}, 0)
	return &RequestBodyDescriptor{Required: required, ContentType: contentType, Schema: *schema}
}

func buildResponses(node interface{}, currentFile string, res *resolver) map[string]ResponseDescriptor {
	raw, ok := node.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]ResponseDescriptor, len(raw))
	for status, respNode := range raw {
		obj, file, ok := res.derefObject(respNode, currentFile, map[string]bool{}, 0)
		if !ok {
			continue
		}
		desc := ResponseDescriptor{Description: stringField(obj, "description")}
		if content, ok := obj["content"].(map[string]interface{}); ok {
			if media, ok := content["application/json"].(map[string]interface{}); ok {
				schema := res.resolveSchema(media["schema"], file, map[string]bool{}, 0)
				desc.Schema = *schema
			}
		}
		out[status] = desc
	}
	return out
}
