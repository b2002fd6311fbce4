package tokens

// Reserved token keys.
const (
	KeyValue       = "$value"
	KeyType        = "$type"
	KeyDescription = "$description"
	KeySchema      = "$schema"
	KeyExtensions  = "$extensions"
)

// Kind classifies a node of a token document.
type Kind int

const (
	// KindScalar is a bare string, number, boolean, null or array.
	KindScalar Kind = iota
	// KindLeaf is an object carrying $value.
	KindLeaf
	// KindGroup is an object without $value.
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "leaf"
	case KindGroup:
		return "group"
	default:
		return "scalar"
	}
}

// Node is a classified document entry. The concrete types are *Group, *Leaf
// and *Scalar; classification happens once, when the document is decoded.
type Node interface {
	Kind() Kind
	raw() any
	cloneNode() Node
}

var metaKeys = map[string]struct{}{
	KeySchema:      {},
	KeyType:        {},
	KeyDescription: {},
	KeyExtensions:  {},
}

// IsMetaKey reports whether key is group metadata: $schema, $type,
// $description or $extensions. Metadata never forms part of a token path;
// any other key, "$"-prefixed or not, names a token or group.
func IsMetaKey(key string) bool {
	_, ok := metaKeys[key]
	return ok
}

// Scalar is a value that is neither a token nor a group.
type Scalar struct {
	Value any
}

func (*Scalar) Kind() Kind { return KindScalar }

func (s *Scalar) raw() any { return s.Value }

func (s *Scalar) cloneNode() Node { return &Scalar{Value: cloneValue(s.Value)} }

// Leaf is a design token: an object with $value and optional $type and
// $description. Any other properties ($extensions, ...) are kept in order.
type Leaf struct {
	props *Object
}

// NewLeaf builds a token. Empty tokenType or description are omitted.
func NewLeaf(value any, tokenType, description string) *Leaf {
	leaf := &Leaf{props: NewObject()}
	leaf.props.Set(KeyValue, value)
	leaf.SetType(tokenType)
	leaf.SetDescription(description)
	return leaf
}

func (*Leaf) Kind() Kind { return KindLeaf }

func (l *Leaf) raw() any { return l.props }

func (l *Leaf) cloneNode() Node { return &Leaf{props: l.props.Clone()} }

// Value returns the raw $value.
func (l *Leaf) Value() any {
	value, _ := l.props.Get(KeyValue)
	return value
}

// HasValue reports whether $value is present and not null.
func (l *Leaf) HasValue() bool {
	value, ok := l.props.Get(KeyValue)
	return ok && value != nil
}

// Type returns $type, or "" when it is missing or not a string.
func (l *Leaf) Type() string {
	value, _ := l.props.Get(KeyType)
	s, _ := value.(string)
	return s
}

// RawType returns the undecoded $type value.
func (l *Leaf) RawType() (any, bool) {
	return l.props.Get(KeyType)
}

// Description returns $description, or "" when missing.
func (l *Leaf) Description() string {
	value, _ := l.props.Get(KeyDescription)
	s, _ := value.(string)
	return s
}

// SetValue replaces $value.
func (l *Leaf) SetValue(value any) {
	l.props.Set(KeyValue, value)
}

// SetType replaces $type; an empty string removes it.
func (l *Leaf) SetType(tokenType string) {
	if tokenType == "" {
		l.props.Delete(KeyType)
		return
	}
	l.props.Set(KeyType, tokenType)
}

// SetDescription replaces $description; an empty string removes it.
func (l *Leaf) SetDescription(description string) {
	if description == "" {
		l.props.Delete(KeyDescription)
		return
	}
	l.props.Set(KeyDescription, description)
}

// Props returns a copy of every property of the token, in order.
func (l *Leaf) Props() *Object {
	return l.props.Clone()
}

// Group is a nested container of tokens and groups.
type Group struct {
	keys     []string
	children map[string]Node
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{children: map[string]Node{}}
}

func (*Group) Kind() Kind { return KindGroup }

func (g *Group) raw() any {
	obj := NewObject()
	if g == nil {
		return obj
	}
	for _, key := range g.keys {
		obj.Set(key, g.children[key].raw())
	}
	return obj
}

func (g *Group) cloneNode() Node { return g.Clone() }

// Len reports the number of direct entries, metadata included.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Keys returns direct entry keys in document order.
func (g *Group) Keys() []string {
	if g == nil {
		return nil
	}
	out := make([]string, len(g.keys))
	copy(out, g.keys)
	return out
}

// Get returns the direct child stored under key.
func (g *Group) Get(key string) (Node, bool) {
	if g == nil {
		return nil, false
	}
	node, ok := g.children[key]
	return node, ok
}

// Set stores node under key; existing keys keep their position.
func (g *Group) Set(key string, node Node) {
	if g.children == nil {
		g.children = map[string]Node{}
	}
	if _, exists := g.children[key]; !exists {
		g.keys = append(g.keys, key)
	}
	g.children[key] = node
}

// Delete removes the direct child under key.
func (g *Group) Delete(key string) bool {
	if g == nil {
		return false
	}
	if _, ok := g.children[key]; !ok {
		return false
	}
	delete(g.children, key)
	for i, k := range g.keys {
		if k == key {
			g.keys = append(g.keys[:i], g.keys[i+1:]...)
			break
		}
	}
	return true
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	clone := &Group{
		keys:     make([]string, len(g.keys)),
		children: make(map[string]Node, len(g.children)),
	}
	copy(clone.keys, g.keys)
	for key, child := range g.children {
		clone.children[key] = child.cloneNode()
	}
	return clone
}

// Schema returns the $schema value when present.
func (g *Group) Schema() (any, bool) {
	node, ok := g.Get(KeySchema)
	if !ok {
		return nil, false
	}
	return node.raw(), true
}

// MarshalJSON encodes the group compactly, preserving key order.
func (g *Group) MarshalJSON() ([]byte, error) {
	return g.raw().(*Object).MarshalJSON()
}

// UnmarshalJSON decodes and classifies a token document.
func (g *Group) UnmarshalJSON(data []byte) error {
	doc, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*g = *doc
	return nil
}

// Classify turns a raw JSON value into a node. Leaf is checked before group
// because a token is structurally also an object.
func Classify(value any) Node {
	obj, ok := value.(*Object)
	if !ok {
		return &Scalar{Value: value}
	}
	if obj.Has(KeyValue) {
		return &Leaf{props: obj}
	}
	return groupFromObject(obj)
}

func groupFromObject(obj *Object) *Group {
	group := NewGroup()
	obj.Range(func(key string, value any) bool {
		if IsMetaKey(key) {
			group.Set(key, &Scalar{Value: value})
			return true
		}
		group.Set(key, Classify(value))
		return true
	})
	return group
}

// ParseDocument decodes a token document. The top-level value must be an
// object.
func ParseDocument(data []byte) (*Group, error) {
	value, err := decodeJSON(data)
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	obj, ok := value.(*Object)
	if !ok {
		return nil, &SyntaxError{Err: errNotObject(value)}
	}
	return groupFromObject(obj), nil
}

// EncodeDocument renders doc with two-space indentation and a trailing
// newline, keeping the original key order.
func EncodeDocument(doc *Group) ([]byte, error) {
	if doc == nil {
		doc = NewGroup()
	}
	data, err := encodeIndented(doc.raw())
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// walkTokens visits every leaf and every loose scalar in document order,
// skipping group metadata.
func walkTokens(group *Group, prefix string, fn func(path string, node Node)) {
	if group == nil {
		return
	}
	for _, key := range group.keys {
		if IsMetaKey(key) {
			continue
		}
		path := JoinPath(prefix, key)
		switch child := group.children[key].(type) {
		case *Group:
			walkTokens(child, path, fn)
		default:
			fn(path, child)
		}
	}
}
