// FILE: settings/path_test.go
package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractParams(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     []string
	}{
		{"NoParams", "settings/config.toml", nil},
		{"SingleParam", "saves/{id}.json", []string{"id"}},
		{"MultipleParams", "saves/{slot}/{profile}/game.json", []string{"slot", "profile"}},
		{"UnterminatedBrace", "saves/{id.json", nil},
		{"UnterminatedAfterValid", "saves/{id}/{broken.json", []string{"id"}},
		{"EmptyBraces", "saves/{}.json", nil},
		{"DuplicateParam", "{id}/{id}.json", []string{"id"}},
		{"AdjacentParams", "{a}{b}.bin", []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractParams(tt.template))
		})
	}
}

type saveIdentity struct {
	SlotID string  `json:"slot_id"`
	Volume float64 `json:"volume"`
}

func TestResolveTemplate(t *testing.T) {
	t.Run("Substitutes", func(t *testing.T) {
		path, err := ResolveTemplate("saves/{slot_id}/game.json", saveIdentity{SlotID: "slot_1"})
		require.NoError(t, err)
		assert.Equal(t, "saves/slot_1/game.json", path)
	})

	t.Run("NoPlaceholders", func(t *testing.T) {
		path, err := ResolveTemplate("settings/game.json", saveIdentity{})
		require.NoError(t, err)
		assert.Equal(t, "settings/game.json", path)
	})

	t.Run("MissingParam", func(t *testing.T) {
		_, err := ResolveTemplate("saves/{unknown}/game.json", saveIdentity{SlotID: "slot_1"})
		assert.ErrorIs(t, err, ErrMissingParam)
	})

	t.Run("EmptyParam", func(t *testing.T) {
		_, err := ResolveTemplate("saves/{slot_id}/game.json", saveIdentity{SlotID: "   "})
		assert.ErrorIs(t, err, ErrEmptyParam)
	})

	t.Run("NumericParam", func(t *testing.T) {
		type numbered struct {
			Slot int `json:"slot"`
		}
		path, err := ResolveTemplate("saves/{slot}.json", numbered{Slot: 3})
		require.NoError(t, err)
		assert.Equal(t, "saves/3.json", path)
	})
}

func TestStripParams(t *testing.T) {
	t.Run("RemovesParamFields", func(t *testing.T) {
		delta := map[string]any{"slot_id": "slot_1", "volume": 0.5}
		stripped := stripParams(delta, []string{"slot_id"})
		assert.Equal(t, map[string]any{"volume": 0.5}, stripped)
	})

	t.Run("EmptyAfterStripIsNil", func(t *testing.T) {
		delta := map[string]any{"slot_id": "slot_1"}
		assert.Nil(t, stripParams(delta, []string{"slot_id"}))
	})

	t.Run("NilDelta", func(t *testing.T) {
		assert.Nil(t, stripParams(nil, []string{"slot_id"}))
	})
}
