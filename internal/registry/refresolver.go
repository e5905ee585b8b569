package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// docSet caches parsed OpenAPI documents by absolute file path, so
// inter-file $ref targets are parsed at most once per registry Load.
type docSet struct {
	docs map[string]map[string]interface{}
}

func newDocSet() *docSet {
	return &docSet{docs: make(map[string]map[string]interface{})}
}

func (ds *docSet) load(path string) (map[string]interface{}, error) {
	if doc, ok := ds.docs[path]; ok {
		return doc, nil
	}
	doc, err := readAndParseDoc(path)
	if err != nil {
		return nil, err
	}
	ds.docs[path] = doc
	return doc, nil
}

// warm registers a document already parsed by a concurrent prefetch, so a
// later call to load for the same path is a cache hit rather than re-reading
// the file.
func (ds *docSet) warm(path string, doc map[string]interface{}) {
	ds.docs[path] = doc
}

func readAndParseDoc(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// resolver resolves $ref links, both intra-file JSON Pointer and inter-file
// (spec §4.H step 2), with cycle protection via a visited-set keyed by the
// fully-qualified pointer (Design Notes §9 — "Cyclic $ref graphs").
type resolver struct {
	docs     *docSet
	maxDepth int
}

func newResolver(docs *docSet) *resolver {
	return &resolver{docs: docs, maxDepth: 40}
}

// splitRef splits a $ref value into the absolute file it targets and the
// JSON Pointer fragment within it, resolved relative to currentFile.
func (r *resolver) splitRef(ref, currentFile string) (file, pointer string) {
	if strings.HasPrefix(ref, "#") {
		return currentFile, strings.TrimPrefix(ref, "#")
	}
	parts := strings.SplitN(ref, "#", 2)
	targetFile := parts[0]
	if !filepath.IsAbs(targetFile) {
		targetFile = filepath.Join(filepath.Dir(currentFile), targetFile)
	}
	if len(parts) == 2 {
		return targetFile, parts[1]
	}
	return targetFile, ""
}

func unescapeToken(tok string) string {
	tok = strings.ReplaceAll(tok, "~1", "/")
	tok = strings.ReplaceAll(tok, "~0", "~")
	return tok
}

func (r *resolver) lookupPointer(file, pointer string) (interface{}, error) {
	doc, err := r.docs.load(file)
	if err != nil {
		return nil, err
	}
	if pointer == "" || pointer == "/" {
		return doc, nil
	}
	var cur interface{} = doc
	for _, tok := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		tok = unescapeToken(tok)
		switch v := cur.(type) {
		case map[string]interface{}:
			next, ok := v[tok]
			if !ok {
				return nil, fmt.Errorf("pointer %s#%s: no key %q", file, pointer, tok)
			}
			cur = next
		case []interface{}:
			idx, err := strconv.Atoi(tok)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("pointer %s#%s: bad index %q", file, pointer, tok)
			}
			cur = v[idx]
		default:
			return nil, fmt.Errorf("pointer %s#%s: cannot descend into scalar", file, pointer)
		}
	}
	return cur, nil
}

// derefObject follows a chain of $ref until it lands on a non-$ref JSON
// object (or a cycle/depth-cap is hit, in which case ok is false). Used for
// dereferencing parameter, request-body, and path-item nodes, none of which
// are represented by Schema.
func (r *resolver) derefObject(node interface{}, currentFile string, visiting map[string]bool, depth int) (obj map[string]interface{}, file string, ok bool) {
	if depth > r.maxDepth {
		return nil, currentFile, false
	}
	m, isMap := node.(map[string]interface{})
	if !isMap {
		return nil, currentFile, false
	}
	refVal, hasRef := m["$ref"]
	if !hasRef {
		return m, currentFile, true
	}
	refStr, _ := refVal.(string)
	targetFile, pointer := r.splitRef(refStr, currentFile)
	key := targetFile + "#" + pointer
	if visiting[key] {
		return nil, currentFile, false
	}
	target, err := r.lookupPointer(targetFile, pointer)
	if err != nil {
		return nil, currentFile, false
	}
	visiting[key] = true
	defer delete(visiting, key)
	return r.derefObject(target, targetFile, visiting, depth+1)
}

// resolveSchema converts a raw JSON Schema-ish node into the opaque Schema
// variant (Design Notes §9), fully inlining any $ref. Cycles are broken
// with SchemaRecursive, matching spec §4.H step 2's truncation-but-valid
// contract.
func (r *resolver) resolveSchema(node interface{}, currentFile string, visiting map[string]bool, depth int) *Schema {
	if node == nil {
		return &Schema{Kind: SchemaUnknown}
	}
	if depth > r.maxDepth {
		return &Schema{Kind: SchemaRecursive, Truncated: true}
	}

	m, isMap := node.(map[string]interface{})
	if !isMap {
		return &Schema{Kind: SchemaUnknown}
	}

	if refVal, hasRef := m["$ref"]; hasRef {
		refStr, _ := refVal.(string)
		targetFile, pointer := r.splitRef(refStr, currentFile)
		key := targetFile + "#" + pointer
		if visiting[key] {
			return &Schema{Kind: SchemaRecursive, Truncated: true}
		}
		target, err := r.lookupPointer(targetFile, pointer)
		if err != nil {
			return &Schema{Kind: SchemaUnknown}
		}
		visiting[key] = true
		defer delete(visiting, key)
		return r.resolveSchema(target, targetFile, visiting, depth+1)
	}

	// allOf/oneOf/anyOf: merge object-shaped members shallowly rather than
	// modeling the full union — the executor only needs enough shape to
	// validate presence/enum/type, not perfect polymorphism fidelity.
	for _, combinator := range []string{"allOf", "oneOf", "anyOf"} {
		if subs, ok := m[combinator].([]interface{}); ok && len(subs) > 0 {
			merged := &Schema{Kind: SchemaObject, Properties: map[string]*Schema{}}
			for _, sub := range subs {
				resolved := r.resolveSchema(sub, currentFile, visiting, depth+1)
				for name, prop := range resolved.Properties {
					merged.Properties[name] = prop
				}
			}
			return merged
		}
	}

	if enumVals, ok := m["enum"].([]interface{}); ok && len(enumVals) > 0 {
		enum := make([]string, 0, len(enumVals))
		for _, v := range enumVals {
			enum = append(enum, fmt.Sprintf("%v", v))
		}
		typ, _ := m["type"].(string)
		return &Schema{Kind: SchemaEnum, Type: typ, Enum: enum}
	}

	typ, _ := m["type"].(string)
	switch typ {
	case "array":
		items := r.resolveSchema(m["items"], currentFile, visiting, depth+1)
		return &Schema{Kind: SchemaArray, Type: typ, Items: items}
	case "object":
		return &Schema{Kind: SchemaObject, Type: typ, Properties: r.resolveProperties(m, currentFile, visiting, depth)}
	case "":
		if _, hasProps := m["properties"]; hasProps {
			return &Schema{Kind: SchemaObject, Properties: r.resolveProperties(m, currentFile, visiting, depth)}
		}
		if _, hasItems := m["items"]; hasItems {
			items := r.resolveSchema(m["items"], currentFile, visiting, depth+1)
			return &Schema{Kind: SchemaArray, Items: items}
		}
		return &Schema{Kind: SchemaUnknown}
	default:
		return &Schema{Kind: SchemaScalar, Type: typ}
	}
}

func (r *resolver) resolveProperties(m map[string]interface{}, currentFile string, visiting map[string]bool, depth int) map[string]*Schema {
	props, _ := m["properties"].(map[string]interface{})
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]*Schema, len(props))
	for name, propNode := range props {
		out[name] = r.resolveSchema(propNode, currentFile, visiting, depth+1)
	}
	return out
}
