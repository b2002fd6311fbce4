package tokens

import "strings"

// PathSeparator joins keys into a token path.
const PathSeparator = "."

// JoinPath appends segment to prefix.
func JoinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, PathSeparator)
}

// SplitPath splits a token path into keys. It returns nil for an empty path.
func SplitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, PathSeparator)
}

// Lookup descends group by group and returns the node at path. Any
// intermediate node that is not a group ends the lookup.
func (g *Group) Lookup(path string) (Node, bool) {
	parts := SplitPath(path)
	if len(parts) == 0 || g == nil {
		return nil, false
	}
	current := g
	for i, part := range parts {
		if part == "" || IsMetaKey(part) {
			return nil, false
		}
		child, ok := current.Get(part)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return child, true
		}
		next, ok := child.(*Group)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// LookupToken returns the token at path.
func (g *Group) LookupToken(path string) (*Leaf, bool) {
	node, ok := g.Lookup(path)
	if !ok {
		return nil, false
	}
	leaf, ok := node.(*Leaf)
	return leaf, ok
}

// Paths lists every token path (leaves and loose scalars) in document order.
func (g *Group) Paths() []string {
	var paths []string
	walkTokens(g, "", func(path string, _ Node) {
		paths = append(paths, path)
	})
	return paths
}

func validPath(path string) bool {
	parts := SplitPath(path)
	if len(parts) == 0 {
		return false
	}
	for _, part := range parts {
		if part == "" || IsMetaKey(part) {
			return false
		}
	}
	return true
}
