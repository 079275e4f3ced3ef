// File: settings/store.go
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
)

// Store persists any number of registered sections in one physical file:
// a root object holding each section's delta under its key, plus the
// "_versions" side table. A store whose name is wrapped in brackets
// ("[slot1]") uses a second naming scheme instead: every section gets its
// own file with the bracket token as filename prefix ("slot1_audio.json").
//
// All I/O is synchronous and blocking. One mutex serializes the live
// section map and the shared delta aggregate, so concurrent in-process
// observers land in a single full-file rewrite per flush.
type Store struct {
	name     string
	format   Format
	basePath string

	mu       sync.Mutex
	order    []string
	sections map[string]*sectionRecord

	// aggregate holds the last computed delta per section key. A
	// per-section save swaps its own entry here, then the whole aggregate
	// is re-encoded and rewritten.
	aggregate map[string]any
}

// StoreOption configures a Store at construction time.
type StoreOption func(*Store)

// WithFormat selects the serialization format (and file extension).
func WithFormat(format Format) StoreOption {
	return func(s *Store) { s.format = format }
}

// WithBasePath sets the directory settings files are stored under.
// The default is "settings".
func WithBasePath(path string) StoreOption {
	return func(s *Store) { s.basePath = path }
}

// NewStore creates a store. The name becomes the filename of the unified
// settings file ("GameSettings" -> "GameSettings.json").
func NewStore(name string, opts ...StoreOption) *Store {
	s := &Store{
		name:      name,
		format:    FormatJSON,
		basePath:  "settings",
		sections:  make(map[string]*sectionRecord),
		aggregate: make(map[string]any),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a section to the store. The key must be unique and must
// not collide with the reserved version table key; collisions are rejected
// here rather than surfacing as file corruption later.
func (s *Store) Register(sec Section) error {
	record, err := newSectionRecord(sec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sections[record.key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, record.key)
	}
	s.sections[record.key] = record
	s.order = append(s.order, record.key)
	return nil
}

// MustRegister is like Register but panics on error, for fluent
// construction-time chaining.
func (s *Store) MustRegister(sec Section) *Store {
	if err := s.Register(sec); err != nil {
		panic(fmt.Sprintf("settings: registration failed: %v", err))
	}
	return s
}

// Keys returns the registered section keys in registration order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.order))
	copy(keys, s.order)
	return keys
}

// Get returns the live instance for a section as a *T, or false if the
// key is not registered. Before the first Load the instance equals the
// section defaults.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, exists := s.sections[key]
	if !exists {
		return nil, false
	}
	return record.live, true
}

// MustGet is like Get but panics on an unregistered key.
func (s *Store) MustGet(key string) any {
	instance, exists := s.Get(key)
	if !exists {
		panic(fmt.Sprintf("settings: %v: %q", ErrNotRegistered, key))
	}
	return instance
}

// Set replaces a section's live instance with a copy of value (a T or *T
// of the registered type). It does not persist; call SaveSection or Save.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.sections[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotRegistered, key)
	}

	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return fmt.Errorf("section %q: value must not be nil", key)
		}
		v = v.Elem()
	}
	if v.Type() != record.typ {
		return fmt.Errorf("section %q: expected %s, got %T", key, record.typ, value)
	}

	ptr := reflect.New(record.typ)
	ptr.Elem().Set(v)
	record.live = ptr.Interface()
	return nil
}

// Load reads the store's file(s) and rebuilds every section's live
// instance by merging its stored delta onto fresh defaults. A missing file
// is not an error: every section simply resolves to its defaults. One
// section's malformed data never prevents the others from loading; the
// broken section is logged and substituted with defaults.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	deltas, versions, err := s.readAllLocked()
	if err != nil {
		return err
	}

	s.aggregate = make(map[string]any)
	for _, key := range s.order {
		record := s.sections[key]
		delta := deltas[key]

		if delta != nil {
			delta = runMigration(key, record.migrate, versions[key], record.version, delta)
		}

		// Identity fields live in the pre-load instance, not the file.
		var preloadFields map[string]any
		if len(record.params) > 0 && record.live != nil {
			if tree, treeErr := toValueTree(record.live); treeErr == nil {
				preloadFields, _ = tree.(map[string]any)
			}
		}

		instance, err := record.defaultInstance()
		if err != nil {
			return err
		}
		if delta != nil {
			if mergeErr := MergeWithDefaults(delta, record.defaults, instance); mergeErr != nil {
				log.WithField("section", key).Warnf("failed to apply stored settings, using defaults: %v", mergeErr)
				// Keep the stored delta in the aggregate so a flush
				// triggered by another section does not wipe it.
				instance, err = record.defaultInstance()
				if err != nil {
					return err
				}
			}
			s.aggregate[key] = delta
		}
		if copyErr := copyParams(preloadFields, instance, record.params); copyErr != nil {
			log.WithField("section", key).Warnf("failed to restore identity fields: %v", copyErr)
		}
		record.live = instance
		log.WithField("section", key).Debug("settings loaded")
	}

	return nil
}

// Save recomputes every section's delta from its live instance and
// rewrites the store file. When every section equals its defaults the file
// is deleted instead; an "empty" representation is never written.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.order {
		record := s.sections[key]
		delta, err := ComputeDelta(record.live, record.defaults)
		if err != nil {
			return fmt.Errorf("section %q: %w", key, err)
		}
		delta = stripParams(delta, record.params)
		if delta == nil {
			delete(s.aggregate, key)
		} else {
			s.aggregate[key] = delta
		}
	}

	return s.flushLocked()
}

// SaveSection recomputes one section's delta, swaps it into the shared
// aggregate, and rewrites the whole file. Every section change causes a
// full-file rewrite; there are no partial or append writes.
func (s *Store) SaveSection(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.sections[key]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotRegistered, key)
	}

	delta, err := ComputeDelta(record.live, record.defaults)
	if err != nil {
		return fmt.Errorf("section %q: %w", key, err)
	}
	delta = stripParams(delta, record.params)
	if delta == nil {
		delete(s.aggregate, key)
	} else {
		s.aggregate[key] = delta
	}

	return s.flushLocked()
}

// Delete removes the store's file(s) from disk. Live instances are left
// untouched.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prefix, ok := s.slotPrefix(); ok {
		for _, key := range s.order {
			if err := removeIfExists(s.sectionPath(prefix, key)); err != nil {
				return err
			}
		}
		return nil
	}
	return removeIfExists(s.unifiedPath())
}

// Path returns the location of the unified settings file. In bracket
// prefix mode it returns the base directory instead, since sections live
// in separate files there.
func (s *Store) Path() string {
	if _, ok := s.slotPrefix(); ok {
		return s.basePath
	}
	return s.unifiedPath()
}

// slotPrefix recognizes the "[slot1]" store naming convention and returns
// the token inside the brackets.
func (s *Store) slotPrefix() (string, bool) {
	if strings.HasPrefix(s.name, "[") && strings.HasSuffix(s.name, "]") && len(s.name) > 2 {
		return s.name[1 : len(s.name)-1], true
	}
	return "", false
}

func (s *Store) unifiedPath() string {
	return filepath.Join(s.basePath, s.name+"."+s.format.Extension())
}

func (s *Store) sectionPath(prefix, key string) string {
	return filepath.Join(s.basePath, prefix+"_"+key+"."+s.format.Extension())
}

// readAllLocked reads and decodes the store's file(s) into per-section
// deltas and version tags. Missing files yield empty maps. A file that
// decodes but is not an object, or does not decode at all, is logged and
// treated as absent so the sections fall back to defaults.
func (s *Store) readAllLocked() (map[string]any, map[string]*semver.Version, error) {
	deltas := make(map[string]any)
	versions := make(map[string]*semver.Version)

	if prefix, ok := s.slotPrefix(); ok {
		for _, key := range s.order {
			if err := s.readDocument(s.sectionPath(prefix, key), deltas, versions); err != nil {
				return nil, nil, err
			}
		}
		return deltas, versions, nil
	}

	if err := s.readDocument(s.unifiedPath(), deltas, versions); err != nil {
		return nil, nil, err
	}
	return deltas, versions, nil
}

// readDocument decodes one store file and splits its root object into the
// version side table and section deltas.
func (s *Store) readDocument(path string, deltas map[string]any, versions map[string]*semver.Version) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	decoded, err := Decode(data, s.format)
	if err != nil {
		log.Warnf("failed to decode settings file '%s', using defaults: %v", path, err)
		return nil
	}
	root, ok := decoded.(map[string]any)
	if !ok {
		log.Warnf("settings file '%s' is not an object, using defaults", path)
		return nil
	}

	if rawVersions, exists := root[versionsKey]; exists {
		if versionTable, ok := rawVersions.(map[string]any); ok {
			for key, tag := range versionTable {
				if str, ok := tag.(string); ok {
					if v := parseVersionTag(key, str); v != nil {
						versions[key] = v
					}
				}
			}
		}
		delete(root, versionsKey)
	}

	for key, delta := range root {
		deltas[key] = delta
	}
	return nil
}

// flushLocked encodes the current aggregate and rewrites the store
// file(s). An empty aggregate deletes the file. Version tags are written
// for every registered section that declares one, even when its delta is
// currently absent, so a delta that reappears later is still gated
// correctly.
func (s *Store) flushLocked() error {
	if prefix, ok := s.slotPrefix(); ok {
		for _, key := range s.order {
			record := s.sections[key]
			delta := s.aggregate[key]
			path := s.sectionPath(prefix, key)
			if delta == nil {
				if err := removeIfExists(path); err != nil {
					return err
				}
				continue
			}

			root := map[string]any{key: delta}
			if record.version != nil {
				root[versionsKey] = map[string]any{key: record.version.String()}
			}
			if err := s.writeDocument(path, root); err != nil {
				return err
			}
		}
		return nil
	}

	path := s.unifiedPath()
	if len(s.aggregate) == 0 {
		return removeIfExists(path)
	}

	root := make(map[string]any, len(s.aggregate)+1)
	versionTable := make(map[string]any)
	for _, key := range s.order {
		record := s.sections[key]
		if record.version != nil {
			versionTable[key] = record.version.String()
		}
		if delta, exists := s.aggregate[key]; exists {
			root[key] = delta
		}
	}
	if len(versionTable) > 0 {
		root[versionsKey] = versionTable
	}

	return s.writeDocument(path, root)
}

func (s *Store) writeDocument(path string, root map[string]any) error {
	data, err := Encode(root, s.format)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}
	log.WithField("file", path).Debug("settings saved")
	return nil
}

// writeFileAtomic writes data through a temp file in the target directory
// and renames it into place, so a crash mid-write never leaves a truncated
// settings file behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory '%s': %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary settings file in '%s': %w", dir, err)
	}

	tempFilePath := tempFile.Name()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tempFilePath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write temp settings file '%s': %w", tempFilePath, err)
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to sync temp settings file '%s': %w", tempFilePath, err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp settings file '%s': %w", tempFilePath, err)
	}
	if err := os.Chmod(tempFilePath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on temp settings file '%s': %w", tempFilePath, err)
	}

	if err := os.Rename(tempFilePath, path); err != nil {
		return fmt.Errorf("failed to rename temp file '%s' to '%s': %w", tempFilePath, path, err)
	}
	renamed = true
	return nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove settings file '%s': %w", path, err)
	}
	return nil
}
