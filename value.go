// File: settings/value.go
package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// The engine operates on a canonical value tree: nested map[string]any and
// []any with scalar leaves restricted to nil, bool, int64, uint64, float64,
// and string. Every codec and every struct conversion funnels through
// normalizeValue so diff, merge, and equality behave identically regardless
// of where a value came from.

// toValueTree serializes an instance into the canonical tree. The JSON
// round-trip uses UseNumber to preserve the integer/float distinction.
func toValueTree(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, serializationError("value encode", err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var tree any
	if err := decoder.Decode(&tree); err != nil {
		return nil, serializationError("value decode", err)
	}

	return normalizeValue(tree), nil
}

// decodeValueTree decodes a canonical tree into the target struct pointer.
// Unknown keys in the tree are ignored, which is what lets stale delta
// fields survive a merge without breaking the load.
func decodeValueTree(tree any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "json",
		WeaklyTypedInput: true,
		// A null leaf in the tree must reset the field, not leave the
		// previous value in place.
		ZeroFields: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return serializationError("decoder setup", err)
	}

	if err := decoder.Decode(tree); err != nil {
		return serializationError("value decode", err)
	}

	return nil
}

// normalizeValue coerces codec-specific representations into the canonical
// leaf set. YAML hands back map[any]any, CBOR and msgpack produce sized
// integer types, JSON produces json.Number.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case bool, string, int64, float64:
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case uint64:
		if val <= math.MaxInt64 {
			return int64(val)
		}
		return val
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return normalizeValue(uint64(val))
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case float32:
		return float64(val)
	case map[string]any:
		normalized := make(map[string]any, len(val))
		for key, item := range val {
			normalized[key] = normalizeValue(item)
		}
		return normalized
	case []any:
		normalized := make([]any, len(val))
		for i, item := range val {
			normalized[i] = normalizeValue(item)
		}
		return normalized
	}

	// Remaining container kinds (typed slices from TOML, map[any]any from
	// YAML and CBOR) are converted reflectively.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		normalized := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				key = fmt.Sprintf("%v", iter.Key().Interface())
			}
			normalized[key] = normalizeValue(iter.Value().Interface())
		}
		return normalized
	case reflect.Slice, reflect.Array:
		normalized := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			normalized[i] = normalizeValue(rv.Index(i).Interface())
		}
		return normalized
	}

	return v
}

// valueEqual reports deep equality of two canonical trees. Integer and
// floating-point leaves compare numerically so a TOML-decoded int64 matches
// a struct-derived float64 holding the same whole number.
func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for key, item := range av {
			other, exists := bv[key]
			if !exists || !valueEqual(item, other) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, item := range av {
			if !valueEqual(item, bv[i]) {
				return false
			}
		}
		return true
	}

	if an, aok := numericValue(a); aok {
		bn, bok := numericValue(b)
		return bok && an == bn
	}

	return a == b
}

// numericValue widens any canonical numeric leaf to float64 for comparison.
func numericValue(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// cloneValue returns an independently owned copy of a canonical tree.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		clone := make(map[string]any, len(val))
		for key, item := range val {
			clone[key] = cloneValue(item)
		}
		return clone
	case []any:
		clone := make([]any, len(val))
		for i, item := range val {
			clone[i] = cloneValue(item)
		}
		return clone
	}
	return v
}
