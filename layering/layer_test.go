package layering

import (
	"reflect"
	"testing"
)

func TestParseLayer(t *testing.T) {
	cases := map[string]Layer{
		"core":  LayerCore,
		" BU ":  LayerBU,
		"Core":  LayerCore,
		"theme": LayerUnknown,
		"":      LayerUnknown,
	}
	for input, want := range cases {
		if got := ParseLayer(input); got != want {
			t.Errorf("ParseLayer(%q) = %q, want %q", input, got, want)
		}
	}
	if LayerUnknown.String() != "unknown" || LayerBU.String() != "bu" {
		t.Fatalf("unexpected layer strings")
	}
}

func TestLayerPrecedence(t *testing.T) {
	if !(LayerUnknown.Precedence() < LayerCore.Precedence() && LayerCore.Precedence() < LayerBU.Precedence()) {
		t.Fatalf("business unit must outrank core")
	}
}

func TestNewChainOrdering(t *testing.T) {
	chain := NewChain(
		Source{Layer: LayerBU, File: "/t/acme/tokens.json"},
		Source{Layer: LayerCore, File: "/t/_core/space.json"},
		Source{Layer: LayerUnknown, File: "/t/other.json"},
		Source{Layer: LayerCore, File: "/t/_brand/colors.json"},
		Source{Layer: LayerCore, File: ""},
		Source{Layer: LayerCore, File: "/t/_core/space.json"},
	)

	want := []Source{
		{Layer: LayerCore, File: "/t/_brand/colors.json"},
		{Layer: LayerCore, File: "/t/_core/space.json"},
		{Layer: LayerBU, File: "/t/acme/tokens.json"},
	}
	if got := chain.Ordered(); !reflect.DeepEqual(want, got) {
		t.Fatalf("unexpected merge order\nwant: %#v\n got: %#v", want, got)
	}
	if chain.Len() != 3 {
		t.Fatalf("expected 3 sources, got %d", chain.Len())
	}
	if weakest := chain.Weakest(); weakest != want[0] {
		t.Fatalf("expected weakest %#v, got %#v", want[0], weakest)
	}
	if strongest := chain.Strongest(); strongest != want[2] {
		t.Fatalf("expected strongest %#v, got %#v", want[2], strongest)
	}
}

func TestChainOrderedReturnsCopy(t *testing.T) {
	chain := CoreChain([]string{"/t/_core/a.json"}, "/t/acme/tokens.json")
	ordered := chain.Ordered()
	ordered[0] = Source{}
	if chain.Weakest().File != "/t/_core/a.json" {
		t.Fatalf("chain mutated through Ordered")
	}
}

func TestCoreChainFiles(t *testing.T) {
	chain := CoreChain([]string{"/t/_core/z.json", "/t/_core/a.json"}, "/t/acme/tokens.json")
	if got := chain.Files(LayerCore); !reflect.DeepEqual(got, []string{"/t/_core/a.json", "/t/_core/z.json"}) {
		t.Fatalf("unexpected core files %v", got)
	}
	if got := chain.Files(LayerBU); !reflect.DeepEqual(got, []string{"/t/acme/tokens.json"}) {
		t.Fatalf("unexpected bu files %v", got)
	}

	coreOnly := CoreChain(nil, "")
	if coreOnly.Len() != 0 {
		t.Fatalf("expected empty chain, got %d", coreOnly.Len())
	}
	if coreOnly.Strongest() != (Source{}) || coreOnly.Weakest() != (Source{}) {
		t.Fatalf("expected zero sources for empty chain")
	}
}
