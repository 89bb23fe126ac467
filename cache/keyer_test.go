package cache

import (
	"strings"
	"testing"
)

func TestHashKeyer_Deterministic(t *testing.T) {
	k := NewHashKeyer()

	a, err := k.Key("quotes", map[string]any{"pair": "EURUSD", "depth": 10})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}
	b, err := k.Key("quotes", map[string]any{"depth": 10, "pair": "EURUSD"})
	if err != nil {
		t.Fatalf("Key() error = %v", err)
	}

	if a != b {
		t.Errorf("map key order changed the key: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "cache:quotes:") {
		t.Errorf("key = %q, want cache:quotes: prefix", a)
	}
}

func TestHashKeyer_DistinctInputs(t *testing.T) {
	k := NewHashKeyer()

	a, _ := k.Key("quotes", map[string]any{"pair": "EURUSD"})
	b, _ := k.Key("quotes", map[string]any{"pair": "GBPUSD"})
	c, _ := k.Key("orders", map[string]any{"pair": "EURUSD"})

	if a == b {
		t.Error("different params produced the same key")
	}
	if a == c {
		t.Error("different pipelines produced the same key")
	}
}

func TestHashKeyer_NilAndNested(t *testing.T) {
	k := NewHashKeyer()

	if _, err := k.Key("p", nil); err != nil {
		t.Errorf("Key(nil) error = %v", err)
	}

	nested := map[string]any{
		"filters": map[string]any{"b": 2, "a": 1},
		"ids":     []any{"x", "y"},
	}
	a, err := k.Key("p", nested)
	if err != nil {
		t.Fatalf("Key(nested) error = %v", err)
	}
	b, _ := k.Key("p", map[string]any{
		"ids":     []any{"x", "y"},
		"filters": map[string]any{"a": 1, "b": 2},
	})
	if a != b {
		t.Errorf("nested canonicalization unstable: %q vs %q", a, b)
	}
}

func TestHashKeyer_Unserializable(t *testing.T) {
	k := NewHashKeyer()
	if _, err := k.Key("p", func() {}); err == nil {
		t.Error("Key with a func param did not error")
	}
}
