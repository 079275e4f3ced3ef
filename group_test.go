// FILE: settings/group_test.go
package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gameSave struct {
	SlotID string  `json:"slot_id"`
	Level  int     `json:"level"`
	Health float64 `json:"health"`
}

func defaultGameSave() gameSave {
	return gameSave{Level: 1, Health: 100}
}

func saveTemplate(dir string) string {
	return filepath.Join(dir, "saves", "{slot_id}", "game.json")
}

func TestGroupSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	template := saveTemplate(dir)
	defaults := defaultGameSave()

	current := gameSave{SlotID: "slot_1", Level: 5, Health: 62.5}
	require.NoError(t, SaveGroup(template, defaults, current))
	require.FileExists(t, filepath.Join(dir, "saves", "slot_1", "game.json"))

	loaded := gameSave{SlotID: "slot_1"}
	require.NoError(t, LoadGroup(template, defaults, &loaded))
	assert.Equal(t, current, loaded)
}

func TestGroupParamsNeverPersisted(t *testing.T) {
	dir := t.TempDir()
	template := saveTemplate(dir)
	defaults := defaultGameSave()

	current := gameSave{SlotID: "slot_1", Level: 3, Health: 100}
	require.NoError(t, SaveGroup(template, defaults, current))

	data, err := os.ReadFile(filepath.Join(dir, "saves", "slot_1", "game.json"))
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(data, &stored))
	assert.NotContains(t, stored, "slot_id")
	assert.Contains(t, stored, "level")
	assert.NotContains(t, stored, "health")
}

func TestGroupPathParamSurvivesReset(t *testing.T) {
	dir := t.TempDir()
	template := saveTemplate(dir)
	defaults := defaultGameSave()
	path := filepath.Join(dir, "saves", "slot_1", "game.json")

	// Persist a non-default state first.
	modified := gameSave{SlotID: "slot_1", Level: 7, Health: 12}
	require.NoError(t, SaveGroup(template, defaults, modified))
	require.FileExists(t, path)

	// Reset everything except the identity field back to defaults: the
	// file must disappear since the remaining delta is only the param.
	reset := defaultGameSave()
	reset.SlotID = "slot_1"
	require.NoError(t, SaveGroup(template, defaults, reset))
	assert.NoFileExists(t, path)

	// A reload must still carry the slot id even though it was never in
	// the persisted payload.
	loaded := gameSave{SlotID: "slot_1"}
	require.NoError(t, LoadGroup(template, defaults, &loaded))
	assert.Equal(t, "slot_1", loaded.SlotID)
	assert.Equal(t, defaults.Level, loaded.Level)
	assert.Equal(t, defaults.Health, loaded.Health)
}

func TestGroupMissingFileLoadsDefaults(t *testing.T) {
	dir := t.TempDir()
	defaults := defaultGameSave()

	loaded := gameSave{SlotID: "slot_9"}
	require.NoError(t, LoadGroup(saveTemplate(dir), defaults, &loaded))
	assert.Equal(t, "slot_9", loaded.SlotID)
	assert.Equal(t, 1, loaded.Level)
}

func TestGroupParamValidationBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	template := saveTemplate(dir)
	defaults := defaultGameSave()

	t.Run("EmptyParam", func(t *testing.T) {
		err := SaveGroup(template, defaults, gameSave{Level: 2})
		assert.ErrorIs(t, err, ErrEmptyParam)
	})

	t.Run("MissingParam", func(t *testing.T) {
		badTemplate := filepath.Join(dir, "saves", "{missing}", "game.json")
		err := SaveGroup(badTemplate, defaults, gameSave{SlotID: "slot_1", Level: 2})
		assert.ErrorIs(t, err, ErrMissingParam)
	})

	t.Run("NothingWritten", func(t *testing.T) {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "failed validation must not touch disk")
	})
}

func TestGroupUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "{slot_id}", "game.xml")
	defaults := defaultGameSave()

	err := SaveGroup(template, defaults, gameSave{SlotID: "slot_1", Level: 2})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = LoadGroup(template, defaults, &gameSave{SlotID: "slot_1"})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestGroupTOMLTemplate(t *testing.T) {
	dir := t.TempDir()
	template := filepath.Join(dir, "{slot_id}.toml")
	defaults := defaultGameSave()

	current := gameSave{SlotID: "slot_2", Level: 9, Health: 33}
	require.NoError(t, SaveGroup(template, defaults, current))
	require.FileExists(t, filepath.Join(dir, "slot_2.toml"))

	loaded := gameSave{SlotID: "slot_2"}
	require.NoError(t, LoadGroup(template, defaults, &loaded))
	assert.Equal(t, current, loaded)
}
