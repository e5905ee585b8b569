package executor

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"akamai-mcp-gateway/internal/registry"
)

// validateParams checks every required parameter is present and every
// enum-typed parameter's value is one of the declared choices. It does not
// attempt full JSON Schema validation — only the presence/enum checks the
// gateway needs to fail fast on an obviously bad call.
func validateParams(op *registry.Operation, args map[string]interface{}) error {
	for _, p := range op.AllParams() {
		v, present := args[p.Name]
		if !present {
			if p.Required {
				return newError(KindValidation, fmt.Sprintf("missing required parameter %q", p.Name))
			}
			continue
		}
		if p.Schema.Kind == registry.SchemaEnum && len(p.Schema.Enum) > 0 {
			str := fmt.Sprintf("%v", v)
			if !containsString(p.Schema.Enum, str) {
				return newError(KindValidation, fmt.Sprintf("parameter %q value %q not in enum %v", p.Name, str, p.Schema.Enum))
			}
		}
	}
	return nil
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// buildPath substitutes every {placeholder} in op.Path with the
// URL-encoded value of the matching path parameter.
func buildPath(op *registry.Operation, args map[string]interface{}) (string, error) {
	path := op.Path
	for _, p := range op.PathParams {
		placeholder := "{" + p.Name + "}"
		if !strings.Contains(path, placeholder) {
			continue
		}
		v, present := args[p.Name]
		if !present {
			return "", newError(KindValidation, fmt.Sprintf("missing path parameter %q", p.Name))
		}
		path = strings.ReplaceAll(path, placeholder, url.PathEscape(stringifyScalar(v)))
	}
	return path, nil
}

// buildQuery renders query parameters into a url.Values, repeating the key
// once per array element and rendering booleans as the literal strings
// "true"/"false" rather than Go's default formatting.
func buildQuery(op *registry.Operation, args map[string]interface{}) url.Values {
	values := url.Values{}
	for _, p := range op.QueryParams {
		v, present := args[p.Name]
		if !present {
			if p.Default != nil {
				values.Add(p.Name, stringifyScalar(p.Default))
			}
			continue
		}
		if arr, ok := v.([]interface{}); ok {
			for _, item := range arr {
				values.Add(p.Name, stringifyScalar(item))
			}
			continue
		}
		values.Add(p.Name, stringifyScalar(v))
	}
	return values
}

func stringifyScalar(v interface{}) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
