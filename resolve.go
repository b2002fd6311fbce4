package tokens

import (
	"fmt"
	"regexp"
)

// ReferencePattern matches a whole-string reference such as "{color.base}".
const ReferencePattern = `^\{([^{}]+)\}$`

var referencePattern = regexp.MustCompile(ReferencePattern)

// ParseReference returns the target path of a reference string such as
// "{color.base}".
func ParseReference(value string) (string, bool) {
	match := referencePattern.FindStringSubmatch(value)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// IsReference reports whether value is a reference string.
func IsReference(value any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	_, ok = ParseReference(s)
	return ok
}

// ResolveStatus describes the outcome of resolving a value.
type ResolveStatus int

const (
	// ResolveLiteral means the value was not a reference.
	ResolveLiteral ResolveStatus = iota
	// ResolveOK means the reference chain ended in a concrete value.
	ResolveOK
	// ResolveMissing means a target path does not exist.
	ResolveMissing
	// ResolveNotToken means a target path names a group or a loose value.
	ResolveNotToken
	// ResolveCircular means the chain revisited a target.
	ResolveCircular
)

func (s ResolveStatus) String() string {
	switch s {
	case ResolveLiteral:
		return "literal"
	case ResolveOK:
		return "ok"
	case ResolveMissing:
		return "missing"
	case ResolveNotToken:
		return "not-token"
	case ResolveCircular:
		return "circular"
	default:
		return "unknown"
	}
}

// Resolution is the typed result of Resolve. On failure Value holds the
// original, unresolved input.
type Resolution struct {
	Value  any
	Status ResolveStatus
	// Target is the path that could not be resolved, when Status is a failure.
	Target string
	// Chain lists every target path followed, in order.
	Chain []string
}

// OK reports whether resolution produced a concrete value.
func (r Resolution) OK() bool {
	return r.Status == ResolveLiteral || r.Status == ResolveOK
}

// Err describes a failed resolution, or returns nil.
func (r Resolution) Err() error {
	switch r.Status {
	case ResolveMissing:
		return fmt.Errorf("tokens: missing reference target %q", r.Target)
	case ResolveNotToken:
		return fmt.Errorf("tokens: reference target %q is not a token", r.Target)
	case ResolveCircular:
		return fmt.Errorf("tokens: circular reference through %q", r.Target)
	default:
		return nil
	}
}

// Resolve follows value through doc until it reaches a concrete value.
// References may chain through other references. Lookups always run against
// doc, which is normally the merged tree, so references cross layers freely.
// Resolve never panics; failures are reported through Status.
func Resolve(value any, doc *Group) Resolution {
	var chain []string
	visited := map[string]struct{}{}
	current := value
	for {
		s, ok := current.(string)
		if !ok {
			return settled(current, chain)
		}
		target, ok := ParseReference(s)
		if !ok {
			return settled(current, chain)
		}
		if _, seen := visited[target]; seen {
			return Resolution{Value: value, Status: ResolveCircular, Target: target, Chain: chain}
		}
		visited[target] = struct{}{}
		chain = append(chain, target)

		node, found := doc.Lookup(target)
		if !found {
			return Resolution{Value: value, Status: ResolveMissing, Target: target, Chain: chain}
		}
		leaf, ok := node.(*Leaf)
		if !ok {
			return Resolution{Value: value, Status: ResolveNotToken, Target: target, Chain: chain}
		}
		current = leaf.Value()
	}
}

func settled(value any, chain []string) Resolution {
	if len(chain) == 0 {
		return Resolution{Value: value, Status: ResolveLiteral}
	}
	return Resolution{Value: value, Status: ResolveOK, Chain: chain}
}

// ResolveDisplay returns the resolved value of value, or value itself when
// it cannot be resolved.
func ResolveDisplay(value any, doc *Group) any {
	return Resolve(value, doc).Value
}
