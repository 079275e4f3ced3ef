// File: settings/migrate.go
package settings

import (
	"github.com/Masterminds/semver/v3"
)

// MigrateFunc rewrites a decoded delta so that merging it onto current
// defaults produces a value compatible with the current schema. fileVersion
// is the tag recorded in the file for this section; nil means no version
// was recorded, which is treated as older than everything. The function
// returns the (possibly rewritten) delta and whether it changed anything.
//
// The returned changed flag is advisory: it is logged but does not itself
// trigger a re-save. The migrated shape reaches disk on the next flush.
//
// Migration cannot distinguish a field the user deliberately removed after
// a previous migration from one that never existed; once fileVersion meets
// the threshold the gate no longer fires and both cases merge back to the
// schema default.
type MigrateFunc func(fileVersion, targetVersion *semver.Version, delta any) (any, bool, error)

// runMigration applies a section's migration hook to a present delta.
// Failures are soft: the error is logged and the un-migrated delta is used
// as-is, which may later fail the merge decode. That risk is accepted
// rather than silently corrected.
func runMigration(key string, fn MigrateFunc, fileVersion, targetVersion *semver.Version, delta any) any {
	if fn == nil || delta == nil {
		return delta
	}

	migrated, changed, err := fn(fileVersion, targetVersion, delta)
	if err != nil {
		log.WithField("section", key).Warnf("migration failed, using stored delta unchanged: %v", err)
		return delta
	}
	if changed {
		log.WithField("section", key).Infof("migrated settings from %s to %s",
			versionString(fileVersion), versionString(targetVersion))
	}
	return migrated
}

// parseVersionTag parses a stored version string. Invalid tags are logged
// and treated as unversioned rather than failing the load.
func parseVersionTag(key, tag string) *semver.Version {
	if tag == "" {
		return nil
	}
	v, err := semver.NewVersion(tag)
	if err != nil {
		log.WithField("section", key).Warnf("invalid version tag %q, treating as unversioned: %v", tag, err)
		return nil
	}
	return v
}

func versionString(v *semver.Version) string {
	if v == nil {
		return "unversioned"
	}
	return v.String()
}
