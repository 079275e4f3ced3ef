// File: settings/doc.go

// Package settings persists application and game configuration using delta
// encoding: only the fields that differ from a type's compiled-in defaults
// are written to disk, and a stored delta is merged back onto fresh defaults
// on load.
//
// Features:
//   - Recursive structural diff against defaults; nested single-field
//     changes persist without dragging sibling fields along
//   - Unified store: one file holding many independently keyed sections
//     plus a per-section version side table
//   - Version-gated migration hooks that rewrite an old on-disk shape
//     before it is merged
//   - Multiple on-disk formats selected by file extension: JSON, TOML,
//     YAML, CBOR, and compact MessagePack binary
//   - Path templates ("saves/{slot_id}/game.json") that derive a file
//     location from a section's own fields
//
// Quick Start:
//
//	type Audio struct {
//	    Master float64 `json:"master"`
//	    Muted  bool    `json:"muted"`
//	}
//
//	store := settings.NewStore("GameSettings",
//	    settings.WithFormat(settings.FormatJSON),
//	    settings.WithBasePath("config"),
//	)
//	if err := store.Register(settings.Section{Defaults: Audio{Master: 1.0}}); err != nil {
//	    log.Fatal(err)
//	}
//	if err := store.Load(); err != nil {
//	    log.Fatal(err)
//	}
//
//	audio := store.MustGet("audio").(*Audio)
//	audio.Master = 0.8
//	_ = store.SaveSection("audio")
//
// A section whose live value equals its defaults contributes nothing to the
// file; when every section is at its defaults the file is removed entirely.
//
// Thread Safety:
// A Store serializes access to its live section map and delta aggregate
// with a mutex, so multiple in-process observers may report changes
// concurrently. Cross-process file locking is out of scope.
package settings
