package tokens

import "fmt"

// SetToken stores leaf at path, creating intermediate groups as needed. A
// token or loose value sitting where a group is needed is replaced.
func (g *Group) SetToken(path string, leaf *Leaf) error {
	if !validPath(path) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if leaf == nil {
		return fmt.Errorf("tokens: nil token for %q", path)
	}
	parts := SplitPath(path)
	current := g
	for _, part := range parts[:len(parts)-1] {
		child, ok := current.Get(part)
		next, isGroup := child.(*Group)
		if !ok || !isGroup {
			next = NewGroup()
			current.Set(part, next)
		}
		current = next
	}
	current.Set(parts[len(parts)-1], leaf)
	return nil
}

// DeleteToken removes the token or loose value at path. Groups left without
// entries are removed too. It reports whether anything was deleted; groups
// are never deleted directly.
func (g *Group) DeleteToken(path string) bool {
	if !validPath(path) {
		return false
	}
	return deleteIn(g, SplitPath(path))
}

func deleteIn(group *Group, parts []string) bool {
	child, ok := group.Get(parts[0])
	if !ok {
		return false
	}
	if len(parts) == 1 {
		if child.Kind() == KindGroup {
			return false
		}
		return group.Delete(parts[0])
	}
	next, ok := child.(*Group)
	if !ok || !deleteIn(next, parts[1:]) {
		return false
	}
	if next.Len() == 0 {
		group.Delete(parts[0])
	}
	return true
}

// Unflatten rebuilds a document from rows. Each row becomes a token with its
// value, type and description. The root metadata of original ($schema and
// other top-level $ keys) is carried over first.
func Unflatten(rows []Row, original *Group) (*Group, error) {
	doc := NewGroup()
	if original != nil {
		for _, key := range original.keys {
			if IsMetaKey(key) {
				doc.Set(key, original.children[key].cloneNode())
			}
		}
	}
	for _, row := range rows {
		value, err := Normalize(row.Value)
		if err != nil {
			return nil, fmt.Errorf("tokens: row %s: %w", row.Path, err)
		}
		if err := doc.SetToken(row.Path, NewLeaf(value, row.Type, row.Description)); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
