// File: settings/delta.go
package settings

// ComputeDelta returns the minimal substructure of current that differs
// from defaults, as a canonical value tree, or nil when the two are
// structurally equal. Objects are diffed recursively; scalars and
// sequences are copied whole when they differ (a changed slice is never
// diffed element-wise). Keys present in current but absent from defaults
// are copied verbatim.
func ComputeDelta(current, defaults any) (any, error) {
	currentTree, err := toValueTree(current)
	if err != nil {
		return nil, err
	}
	defaultTree, err := toValueTree(defaults)
	if err != nil {
		return nil, err
	}

	if valueEqual(currentTree, defaultTree) {
		return nil, nil
	}

	delta, _ := diffValue(currentTree, defaultTree)
	return delta, nil
}

// diffValue computes the recursive difference of two canonical trees.
// The changed flag separates "nothing differs" from "the difference is
// null" (a field explicitly set to null over a non-null default). An
// object whose recursive diff is empty is omitted entirely, so a leaf
// change bubbles up without producing empty parent objects.
func diffValue(current, defaultValue any) (any, bool) {
	currentMap, currentIsMap := current.(map[string]any)
	defaultMap, defaultIsMap := defaultValue.(map[string]any)

	if !currentIsMap || !defaultIsMap {
		if valueEqual(current, defaultValue) {
			return nil, false
		}
		return cloneValue(current), true
	}

	delta := make(map[string]any)
	for key, currentItem := range currentMap {
		defaultItem, exists := defaultMap[key]
		if !exists {
			// Only in current, keep it whole.
			delta[key] = cloneValue(currentItem)
			continue
		}
		if nested, changed := diffValue(currentItem, defaultItem); changed {
			delta[key] = nested
		}
	}

	if len(delta) == 0 {
		return nil, false
	}
	return delta, true
}

// MergeWithDefaults overlays a stored delta onto a defaults instance and
// decodes the result into target (a struct pointer). A nil delta still
// round-trips the defaults through serialization so the outcome is
// identical whether or not a file existed. Delta keys unknown to the
// target's schema survive the merge and are silently dropped by the
// decode, which keeps old files forward-compatible.
//
// A decode failure (a delta value incompatible with the target's shape) is
// fatal for this call; there is no field-by-field recovery.
func MergeWithDefaults(delta any, defaults any, target any) error {
	defaultTree, err := toValueTree(defaults)
	if err != nil {
		return err
	}

	merged := defaultTree
	if delta != nil {
		merged = mergeValue(defaultTree, normalizeValue(delta))
	}

	return decodeValueTree(merged, target)
}

// mergeValue recursively overlays source onto target and returns the
// result. Object/object pairs merge key-by-key; any other pairing replaces
// the target outright. Source keys absent from the target are inserted.
func mergeValue(target, source any) any {
	targetMap, targetIsMap := target.(map[string]any)
	sourceMap, sourceIsMap := source.(map[string]any)

	if !targetIsMap || !sourceIsMap {
		return cloneValue(source)
	}

	for key, sourceItem := range sourceMap {
		if targetItem, exists := targetMap[key]; exists {
			targetMap[key] = mergeValue(targetItem, sourceItem)
		} else {
			targetMap[key] = cloneValue(sourceItem)
		}
	}
	return targetMap
}
