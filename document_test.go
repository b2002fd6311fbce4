package tokens

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParse(t *testing.T, raw string) *Group {
	t.Helper()
	doc, err := ParseDocument([]byte(raw))
	if err != nil {
		t.Fatalf("parse document: %v", err)
	}
	return doc
}

func TestParseDocumentClassifiesNodes(t *testing.T) {
	doc := mustParse(t, `{
		"$schema": "https://example.com/s.json",
		"color": {
			"$type": "color",
			"base": {"$value": "#fff", "$type": "color", "$extensions": {"x": 1}},
			"loose": "#000",
			"nested": {"deep": {"$value": 4, "$type": "number"}}
		},
		"flag": true
	}`)

	if diff := cmp.Diff([]string{"$schema", "color", "flag"}, doc.Keys()); diff != "" {
		t.Fatalf("root keys mismatch (-want +got):\n%s", diff)
	}
	cases := map[string]Kind{
		"color":             KindGroup,
		"color.base":        KindLeaf,
		"color.loose":       KindScalar,
		"color.nested":      KindGroup,
		"color.nested.deep": KindLeaf,
		"flag":              KindScalar,
	}
	for path, want := range cases {
		node, ok := doc.Lookup(path)
		if !ok {
			t.Fatalf("lookup %s failed", path)
		}
		if node.Kind() != want {
			t.Fatalf("%s: expected %s, got %s", path, want, node.Kind())
		}
	}
	if _, ok := doc.Lookup("color.$type"); ok {
		t.Fatalf("metadata must not be addressable by path")
	}
	if schema, ok := doc.Schema(); !ok || schema != "https://example.com/s.json" {
		t.Fatalf("unexpected $schema %v", schema)
	}
	if diff := cmp.Diff([]string{"color.base", "color.loose", "color.nested.deep", "flag"}, doc.Paths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `{"a": }`, `"text"`, `{"a": 1} {}`} {
		_, err := ParseDocument([]byte(raw))
		var syntaxErr *SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Fatalf("%s: expected SyntaxError, got %v", raw, err)
		}
	}
}

func TestEncodeDocumentPreservesOrderAndFormat(t *testing.T) {
	raw := `{"z": {"$value": "<a&b>", "$type": "string"}, "a": {"b": {"$type": "number", "$value": 1.50}}}`
	data, err := EncodeDocument(mustParse(t, raw))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := strings.Join([]string{
		`{`,
		`  "z": {`,
		`    "$value": "<a&b>",`,
		`    "$type": "string"`,
		`  },`,
		`  "a": {`,
		`    "b": {`,
		`      "$type": "number",`,
		`      "$value": 1.50`,
		`    }`,
		`  }`,
		`}`,
		``,
	}, "\n")
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("encoded mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeEmptyContainers(t *testing.T) {
	data, err := EncodeDocument(mustParse(t, `{"a": {}, "b": {"$value": []}}`))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := "{\n  \"a\": {},\n  \"b\": {\n    \"$value\": []\n  }\n}\n"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Fatalf("encoded mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	value, err := decodeJSON([]byte(`{"a": 1, "b": 2, "a": 3}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	obj := value.(*Object)
	if diff := cmp.Diff([]string{"a", "b"}, obj.Keys()); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got, _ := obj.Get("a"); got != json.Number("3") {
		t.Fatalf("expected last value to win, got %v", got)
	}
}

func TestObjectJSONRoundTrip(t *testing.T) {
	var obj Object
	if err := json.Unmarshal([]byte(`{"b": [1, {"c": null}], "a": false}`), &obj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	data, err := json.Marshal(&obj)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(data); got != `{"b":[1,{"c":null}],"a":false}` {
		t.Fatalf("unexpected encoding %s", got)
	}
}

func TestObjectNilReceiver(t *testing.T) {
	var nilObj *Object
	if nilObj.Len() != 0 || nilObj.Has("a") || nilObj.Delete("a") || nilObj.Clone() != nil {
		t.Fatalf("read accessors must treat nil as empty")
	}

	var zero Object
	zero.Set("a", 1)
	if v, ok := zero.Get("a"); !ok || v != 1 {
		t.Fatalf("zero Object should accept Set, got %v %v", v, ok)
	}

	defer func() {
		if r := recover(); r != "tokens: Set on nil *Object" {
			t.Fatalf("expected explicit panic, got %v", r)
		}
	}()
	nilObj.Set("a", 1)
}

func TestNormalizeSortsMapKeys(t *testing.T) {
	value, err := Normalize(map[string]any{"b": 1, "a": []any{"x", 2.5}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if got := encodeCompact(value); got != `{"a":["x",2.5],"b":1}` {
		t.Fatalf("unexpected normalized value %s", got)
	}
}

func TestLeafAccessors(t *testing.T) {
	leaf := NewLeaf("#fff", "color", "")
	if leaf.Description() != "" || leaf.Type() != "color" || !leaf.HasValue() {
		t.Fatalf("unexpected leaf %s", encodeCompact(leaf.Props()))
	}
	leaf.SetDescription("white")
	leaf.SetType("")
	if got := encodeCompact(leaf.Props()); got != `{"$value":"#fff","$description":"white"}` {
		t.Fatalf("unexpected props %s", got)
	}
	null := Classify(mustObject(t, `{"$value": null}`)).(*Leaf)
	if null.HasValue() {
		t.Fatalf("null $value must count as missing")
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := mustParse(t, `{"a": {"b": {"$value": {"x": 1}, "$type": "shadow"}}}`)
	clone := doc.Clone()
	leaf, _ := clone.LookupToken("a.b")
	leaf.Value().(*Object).Set("x", "changed")
	original, _ := doc.LookupToken("a.b")
	if got, _ := original.Value().(*Object).Get("x"); got != json.Number("1") {
		t.Fatalf("clone shares nested values with original")
	}
}

func mustObject(t *testing.T, raw string) *Object {
	t.Helper()
	value, err := decodeJSON([]byte(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return value.(*Object)
}
