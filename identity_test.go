package builderopts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestOptionKeysMatchShippedSettings(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("testdata", "option_keys.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var fixtures []struct {
		Option string `json:"option"`
		Key    string `json:"key"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	ids := OptionIDs()
	if len(ids) != len(fixtures) {
		t.Fatalf("expected %d identities, got %d", len(fixtures), len(ids))
	}
	for i, fx := range fixtures {
		id := ids[i]
		if id.String() != fx.Option || id.Key() != fx.Key || id.Name() != fx.Name {
			t.Fatalf("identity %d: expected %s/%s/%s, got %s/%s/%s",
				i, fx.Option, fx.Key, fx.Name, id, id.Key(), id.Name())
		}
		if parsed, ok := ParseKey(fx.Key); !ok || parsed != id {
			t.Fatalf("ParseKey(%q) = %s, %v", fx.Key, parsed, ok)
		}
		if parsed, ok := ParseName(fx.Name); !ok || parsed != id {
			t.Fatalf("ParseName(%q) = %s, %v", fx.Name, parsed, ok)
		}
	}
}

func TestOptionKeysAreUnique(t *testing.T) {
	seen := map[string]OptionID{}
	for _, id := range OptionIDs() {
		if prev, dup := seen[id.Key()]; dup {
			t.Fatalf("%s and %s share key %q", prev, id, id.Key())
		}
		seen[id.Key()] = id
	}
}

func TestInvalidOptionIDs(t *testing.T) {
	for _, id := range []OptionID{NoOption, optionCount, -1} {
		if id.Valid() || id.Key() != "" || id.Name() != "" {
			t.Fatalf("%s should not be a valid identity", id)
		}
	}
	if NoOption.String() != "NONE" {
		t.Fatalf("expected NONE, got %q", NoOption.String())
	}
	if OptionID(42).String() != "OptionID(42)" {
		t.Fatalf("unexpected string %q", OptionID(42).String())
	}
	for _, key := range []string{"", "finalSetters", "GenerateInnerBuilder.setNotation", "Other.finalSetters"} {
		if _, ok := ParseKey(key); ok {
			t.Fatalf("ParseKey(%q) should fail", key)
		}
	}
}
