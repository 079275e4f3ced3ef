// File: settings/section.go
package settings

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// versionsKey is the reserved root key holding the per-section version
// side table. No section may register under it.
const versionsKey = "_versions"

// Section describes one independently keyed, independently versioned
// configuration schema within a Store. Sections are registered once at
// store construction time; the explicit record replaces any need for
// open-ended dynamic dispatch over section types.
type Section struct {
	// Key is the section's name in the store file. Empty means the
	// lowercase struct type name of Defaults.
	Key string

	// Defaults is a struct value (or pointer to one) carrying the
	// compiled-in default configuration. Its type defines the section's
	// schema.
	Defaults any

	// Version is an optional semantic version tag ("2.0.0") recorded in
	// the file's version side table and handed to Migrate on load.
	Version string

	// PathParams names identity fields that are never persisted: they are
	// stripped from the section's delta on save and carried over from the
	// pre-load instance on load, so they survive a reset to defaults.
	PathParams []string

	// Migrate optionally rewrites an old on-disk delta before it is
	// merged. See MigrateFunc.
	Migrate MigrateFunc
}

// sectionRecord is the resolved registration entry the store dispatches
// through: key, defaults, version, migration hook, and the live instance.
type sectionRecord struct {
	key      string
	defaults any
	typ      reflect.Type
	version  *semver.Version
	migrate  MigrateFunc
	params   []string

	// live is a *T holding the current in-process value for this section.
	live any
}

func newSectionRecord(sec Section) (*sectionRecord, error) {
	if sec.Defaults == nil {
		return nil, fmt.Errorf("section %q: defaults must not be nil", sec.Key)
	}

	typ := reflect.TypeOf(sec.Defaults)
	defaults := sec.Defaults
	if typ.Kind() == reflect.Pointer {
		value := reflect.ValueOf(sec.Defaults)
		if value.IsNil() {
			return nil, fmt.Errorf("section %q: defaults must not be nil", sec.Key)
		}
		typ = typ.Elem()
		defaults = value.Elem().Interface()
	}
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("section %q: defaults must be a struct, got %s", sec.Key, typ.Kind())
	}

	key := sec.Key
	if key == "" {
		key = strings.ToLower(typ.Name())
	}
	if key == versionsKey {
		return nil, fmt.Errorf("%w: %q", ErrReservedKey, key)
	}

	var version *semver.Version
	if sec.Version != "" {
		parsed, err := semver.NewVersion(sec.Version)
		if err != nil {
			return nil, fmt.Errorf("section %q: invalid version %q: %w", key, sec.Version, err)
		}
		version = parsed
	}

	record := &sectionRecord{
		key:      key,
		defaults: defaults,
		typ:      typ,
		version:  version,
		migrate:  sec.Migrate,
		params:   sec.PathParams,
	}

	live, err := record.defaultInstance()
	if err != nil {
		return nil, err
	}
	record.live = live

	return record, nil
}

// defaultInstance builds a fresh *T equal to the section defaults. The
// defaults are round-tripped through the value tree so the result is
// identical to what merging an absent delta produces.
func (r *sectionRecord) defaultInstance() (any, error) {
	instance := reflect.New(r.typ).Interface()
	if err := MergeWithDefaults(nil, r.defaults, instance); err != nil {
		return nil, fmt.Errorf("section %q: %w", r.key, err)
	}
	return instance, nil
}
