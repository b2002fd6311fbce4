package tokens

// Merge layers override on top of base and returns a new document. Groups
// present on both sides merge recursively; anything else in override
// replaces the base entry wholesale, so a token never merges into a group or
// the other way round. $schema is copied verbatim; other metadata objects
// such as $extensions merge key by key.
//
// The result shares no nodes with its inputs.
func Merge(base, override *Group) *Group {
	result := base.Clone()
	if result == nil {
		result = NewGroup()
	}
	if override == nil {
		return result
	}
	for _, key := range override.keys {
		incoming := override.children[key]
		existing, _ := result.Get(key)
		if IsMetaKey(key) {
			result.Set(key, mergeMeta(key, existing, incoming))
			continue
		}
		existingGroup, baseIsGroup := existing.(*Group)
		incomingGroup, overrideIsGroup := incoming.(*Group)
		if baseIsGroup && overrideIsGroup {
			result.Set(key, Merge(existingGroup, incomingGroup))
			continue
		}
		result.Set(key, incoming.cloneNode())
	}
	return result
}

func mergeMeta(key string, existing, incoming Node) Node {
	base, _ := existing.(*Scalar)
	override, _ := incoming.(*Scalar)
	if key == KeySchema || base == nil || override == nil {
		return incoming.cloneNode()
	}
	baseObj, ok := base.Value.(*Object)
	overrideObj, ok2 := override.Value.(*Object)
	if !ok || !ok2 {
		return incoming.cloneNode()
	}
	return &Scalar{Value: mergeObjects(baseObj, overrideObj)}
}

// mergeObjects deep-merges raw JSON objects; override wins on conflicts.
func mergeObjects(base, override *Object) *Object {
	result := base.Clone()
	override.Range(func(key string, value any) bool {
		existing, _ := result.Get(key)
		existingObj, ok := existing.(*Object)
		incomingObj, ok2 := value.(*Object)
		if ok && ok2 {
			result.Set(key, mergeObjects(existingObj, incomingObj))
			return true
		}
		result.Set(key, cloneValue(value))
		return true
	})
	return result
}

// MergeAll folds docs left to right, so later documents win. Nil documents
// are skipped.
func MergeAll(docs ...*Group) *Group {
	merged := NewGroup()
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		merged = Merge(merged, doc)
	}
	return merged
}
