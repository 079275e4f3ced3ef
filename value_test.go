// FILE: settings/value_test.go
package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  any
	}{
		{"Nil", nil, nil},
		{"Bool", true, true},
		{"JSONNumberInt", json.Number("42"), int64(42)},
		{"JSONNumberFloat", json.Number("0.5"), 0.5},
		{"Int", int(7), int64(7)},
		{"Uint32", uint32(7), int64(7)},
		{"SmallUint64", uint64(7), int64(7)},
		{"Float32", float32(1.5), float64(1.5)},
		{"AnyKeyMap", map[any]any{"a": 1}, map[string]any{"a": int64(1)}},
		{"TypedSlice", []int{1, 2}, []any{int64(1), int64(2)}},
		{"NestedMixed",
			map[string]any{"inner": map[any]any{"n": uint8(3)}},
			map[string]any{"inner": map[string]any{"n": int64(3)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeValue(tt.input))
		})
	}
}

func TestValueEqualNumericLeaves(t *testing.T) {
	assert.True(t, valueEqual(int64(5), 5.0), "whole-number float equals integer")
	assert.True(t, valueEqual(uint64(5), int64(5)))
	assert.False(t, valueEqual(int64(5), 5.5))
	assert.False(t, valueEqual(int64(5), "5"))
	assert.True(t, valueEqual(
		map[string]any{"a": []any{int64(1)}},
		map[string]any{"a": []any{1.0}},
	))
	assert.False(t, valueEqual(
		map[string]any{"a": int64(1)},
		map[string]any{"a": int64(1), "b": int64(2)},
	))
}

func TestToValueTreePreservesIntegerDistinction(t *testing.T) {
	type mixed struct {
		Count int     `json:"count"`
		Ratio float64 `json:"ratio"`
	}

	tree, err := toValueTree(mixed{Count: 3, Ratio: 0.25})
	require.NoError(t, err)

	root, ok := tree.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(3), root["count"])
	assert.Equal(t, 0.25, root["ratio"])
}

func TestCloneValueIsIndependent(t *testing.T) {
	original := map[string]any{"nested": map[string]any{"a": int64(1)}, "list": []any{int64(1)}}
	clone := cloneValue(original).(map[string]any)

	clone["nested"].(map[string]any)["a"] = int64(99)
	clone["list"].([]any)[0] = int64(99)

	assert.Equal(t, int64(1), original["nested"].(map[string]any)["a"])
	assert.Equal(t, int64(1), original["list"].([]any)[0])
}
