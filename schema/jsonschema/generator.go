// Package jsonschema derives a JSON Schema (draft 2020-12) from a merged
// token tree. Every group becomes an object schema and every token a
// reference to a shared per-type definition that constrains $value.
package jsonschema

import (
	"encoding/json"
	"errors"

	"github.com/stoewer/go-strcase"

	tokens "github.com/goliatone/go-tokens"
)

// Generator builds schemas for token documents.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator.
func NewGenerator(opts ...GeneratorOption) Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return Generator{config: cfg}
}

// Generate returns the schema for doc.
func (g Generator) Generate(doc *tokens.Group) (map[string]any, error) {
	if doc == nil {
		return nil, errors.New("jsonschema: nil document")
	}
	b := builder{config: g.config, defs: newDefsRegistry()}
	root := b.group(doc).toMap()
	root["$schema"] = Draft
	if g.config.id != "" {
		root["$id"] = g.config.id
	}
	if g.config.title != "" {
		root["title"] = g.config.title
	}
	if g.config.description != "" {
		root["description"] = g.config.description
	}
	if defs := b.defs.defs(); defs != nil {
		root["$defs"] = defs
	}
	return root, nil
}

// Marshal returns the schema for doc as indented JSON.
func (g Generator) Marshal(doc *tokens.Group) ([]byte, error) {
	schema, err := g.Generate(doc)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

type builder struct {
	config generatorConfig
	defs   *defsRegistry
}

func (b *builder) group(group *tokens.Group) *schemaNode {
	node := newObjectNode()
	for _, key := range group.Keys() {
		if tokens.IsMetaKey(key) {
			continue
		}
		child, _ := group.Get(key)
		switch typed := child.(type) {
		case *tokens.Group:
			node.Properties[key] = b.group(typed)
		case *tokens.Leaf:
			node.Properties[key] = b.token(typed.Type())
		default:
			node.Properties[key] = &schemaNode{}
		}
		if b.config.required {
			node.Required = append(node.Required, key)
		}
	}
	return node
}

func (b *builder) token(tokenType string) *schemaNode {
	node := newObjectNode()
	node.Required = []string{tokens.KeyValue}
	node.Properties[tokens.KeyValue] = b.value(tokenType)
	node.Properties[tokens.KeyDescription] = &schemaNode{Type: "string"}
	typeNode := &schemaNode{Type: "string"}
	if b.config.strictTypes && tokenType != "" {
		typeNode.Const = tokenType
		node.Required = append(node.Required, tokens.KeyType)
	}
	node.Properties[tokens.KeyType] = typeNode
	return refNode(b.defs.register(strcase.UpperCamelCase(tokenType)+"Token", node))
}

func (b *builder) value(tokenType string) *schemaNode {
	reference := refNode(b.defs.register("Reference", &schemaNode{
		Type:    "string",
		Pattern: tokens.ReferencePattern,
	}))
	switch tokenType {
	case tokens.TypeColor:
		return &schemaNode{AnyOf: []*schemaNode{
			{Type: "string", Pattern: tokens.HexColorPattern},
			{Type: "string", Pattern: `^rgba?\(`},
			reference,
		}}
	case tokens.TypeDimension:
		return &schemaNode{AnyOf: []*schemaNode{
			{Type: "string", Pattern: tokens.DimensionPattern},
			reference,
		}}
	case tokens.TypeNumber:
		return &schemaNode{AnyOf: []*schemaNode{{Type: "number"}, reference}}
	case tokens.TypeBoolean:
		return &schemaNode{AnyOf: []*schemaNode{{Type: "boolean"}, reference}}
	case tokens.TypeString:
		return &schemaNode{Type: "string"}
	default:
		return &schemaNode{}
	}
}
