package jsonschema

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

type schemaNode struct {
	Type        string
	Const       any
	Pattern     string
	Description string
	Ref         string
	Properties  map[string]*schemaNode
	Required    []string
	AnyOf       []*schemaNode
}

func newObjectNode() *schemaNode {
	return &schemaNode{
		Type:       "object",
		Properties: map[string]*schemaNode{},
	}
}

func refNode(ref string) *schemaNode {
	return &schemaNode{Ref: ref}
}

func (n *schemaNode) toMap() map[string]any {
	result := map[string]any{}
	if n.Ref != "" {
		result["$ref"] = n.Ref
		return result
	}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Const != nil {
		result["const"] = n.Const
	}
	if n.Pattern != "" {
		result["pattern"] = n.Pattern
	}
	if n.Description != "" {
		result["description"] = n.Description
	}
	if n.Type == "object" {
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = child.toMap()
		}
		result["properties"] = props
	}
	if len(n.Required) > 0 {
		names := append([]string{}, n.Required...)
		sort.Strings(names)
		result["required"] = names
	}
	if len(n.AnyOf) > 0 {
		options := make([]any, len(n.AnyOf))
		for i, option := range n.AnyOf {
			options[i] = option.toMap()
		}
		result["anyOf"] = options
	}
	return result
}

// Digest identifies structurally equal nodes.
func (n *schemaNode) Digest() string {
	data, err := json.Marshal(n.toMap())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
