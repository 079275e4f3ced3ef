// File: settings/path.go
package settings

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractParams parses "{name}" placeholders out of a path template,
// left to right. An unterminated "{" yields no parameter rather than an
// error, and an empty "{}" is skipped. Each name appears at most once in
// the result.
func ExtractParams(template string) []string {
	var params []string
	seen := make(map[string]bool)

	rest := template
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start+1:], '}')
		if end < 0 {
			// Unterminated brace, nothing more to find.
			break
		}
		name := rest[start+1 : start+1+end]
		if name != "" && !seen[name] {
			seen[name] = true
			params = append(params, name)
		}
		rest = rest[start+1+end+1:]
	}

	return params
}

// ResolveTemplate substitutes every placeholder in template with the string
// form of the corresponding field of instance. It fails with
// ErrMissingParam when a placeholder field is absent from the instance's
// serialized shape, and ErrEmptyParam when the field is nil or
// all-whitespace. Validation always runs before any write.
func ResolveTemplate(template string, instance any) (string, error) {
	params := ExtractParams(template)
	if len(params) == 0 {
		return template, nil
	}

	tree, err := toValueTree(instance)
	if err != nil {
		return "", err
	}
	fields, ok := tree.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: instance is not an object", ErrMissingParam)
	}

	if err := verifyParams(fields, params); err != nil {
		return "", err
	}

	resolved := template
	for _, param := range params {
		resolved = strings.ReplaceAll(resolved, "{"+param+"}", paramString(fields[param]))
	}
	return resolved, nil
}

// verifyParams checks that every declared placeholder field is present and
// non-empty in the serialized instance.
func verifyParams(fields map[string]any, params []string) error {
	for _, param := range params {
		value, exists := fields[param]
		if !exists {
			return fmt.Errorf("%w: %q", ErrMissingParam, param)
		}
		if isEmptyParamValue(value) {
			return fmt.Errorf("%w: %q", ErrEmptyParam, param)
		}
	}
	return nil
}

func isEmptyParamValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// paramString renders a placeholder field value for use in a file path.
func paramString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// stripParams removes placeholder fields from a delta. They belong to the
// file location, not the file contents. A delta left empty by the strip
// collapses to nil so the caller deletes the file instead of writing an
// empty object.
func stripParams(delta any, params []string) any {
	if delta == nil || len(params) == 0 {
		return delta
	}
	deltaMap, ok := delta.(map[string]any)
	if !ok {
		return delta
	}
	for _, param := range params {
		delete(deltaMap, param)
	}
	if len(deltaMap) == 0 {
		return nil
	}
	return deltaMap
}

// copyParams carries placeholder fields from the pre-load snapshot into a
// freshly merged instance, so identity fields (a chosen save-slot id, say)
// survive a reset to defaults. The target passes through the value tree so
// the copy works for any serializable field type.
func copyParams(sourceFields map[string]any, target any, params []string) error {
	if len(params) == 0 || sourceFields == nil {
		return nil
	}

	targetTree, err := toValueTree(target)
	if err != nil {
		return err
	}
	targetFields, ok := targetTree.(map[string]any)
	if !ok {
		return nil
	}

	copied := false
	for _, param := range params {
		if value, exists := sourceFields[param]; exists {
			targetFields[param] = cloneValue(value)
			copied = true
		}
	}
	if !copied {
		return nil
	}

	return decodeValueTree(targetFields, target)
}
