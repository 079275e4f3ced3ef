// File: settings/group.go
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Group mode persists a single section in its own file whose location is
// derived from the instance's own fields via a path template, e.g.
// "saves/{slot_id}/game.json". The placeholder fields belong to the file
// location, so they are stripped from the persisted delta and preserved
// across loads instead.

// SaveGroup writes v to the location resolved from template, storing only
// the delta against defaults. Placeholder params are validated before
// anything touches disk; a path or serialization failure leaves the
// on-disk state as it was. When the stripped delta is empty the file is
// removed rather than written.
func SaveGroup(template string, defaults, v any) error {
	params := ExtractParams(template)

	path, err := ResolveTemplate(template, v)
	if err != nil {
		return err
	}
	format, err := FormatForExtension(filepath.Ext(path))
	if err != nil {
		return err
	}

	delta, err := ComputeDelta(v, defaults)
	if err != nil {
		return err
	}
	delta = stripParams(delta, params)

	if delta == nil {
		if err := removeIfExists(path); err != nil {
			return err
		}
		log.WithField("file", path).Debug("settings at defaults, file removed")
		return nil
	}

	data, err := Encode(delta, format)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	log.WithField("file", path).Debug("settings saved")
	return nil
}

// LoadGroup fills target (a struct pointer) from the file resolved via
// template. The pre-load contents of target supply the placeholder fields,
// and those fields survive into the result even when the file is missing
// and everything else resets to defaults.
func LoadGroup(template string, defaults, target any) error {
	params := ExtractParams(template)

	path, err := ResolveTemplate(template, target)
	if err != nil {
		return err
	}
	format, err := FormatForExtension(filepath.Ext(path))
	if err != nil {
		return err
	}

	// Snapshot the identity fields before the merge overwrites target.
	var preloadFields map[string]any
	if len(params) > 0 {
		tree, err := toValueTree(target)
		if err != nil {
			return err
		}
		preloadFields, _ = tree.(map[string]any)
	}

	var delta any
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.WithField("file", path).Debug("settings file not found, using defaults")
	case err != nil:
		return fmt.Errorf("failed to read settings file '%s': %w", path, err)
	default:
		delta, err = Decode(data, format)
		if err != nil {
			return err
		}
	}

	if err := MergeWithDefaults(delta, defaults, target); err != nil {
		return err
	}
	return copyParams(preloadFields, target, params)
}
