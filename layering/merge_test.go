package layering

import (
	"reflect"
	"testing"
)

type prefixSettings struct {
	Enabled map[string]bool
	Labels  []string
	Note    *string
}

func strPtr(v string) *string { return &v }

func TestMergeLayersMapsOverrideKeyByKey(t *testing.T) {
	settings := map[string]any{"withNotation": true}
	defaults := map[string]any{"withNotation": false, "setNotation": false, "withJavadoc": false}

	got := MergeLayers(settings, defaults)

	want := map[string]any{"withNotation": true, "setNotation": false, "withJavadoc": false}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("merged mismatch:\nwant: %#v\n got: %#v", want, got)
	}
	if _, ok := settings["setNotation"]; ok {
		t.Fatalf("strong layer must not be mutated")
	}
}

func TestMergeLayersThreeLayersStrongestWins(t *testing.T) {
	project := map[string]any{"finalSetters": true}
	app := map[string]any{"finalSetters": false, "finalFields": true}
	defaults := map[string]any{"finalSetters": false, "finalFields": false, "withJavadoc": false}

	got := MergeLayers(project, app, defaults)
	if got["finalSetters"] != true || got["finalFields"] != true || got["withJavadoc"] != false {
		t.Fatalf("unexpected merge result %#v", got)
	}
}

func TestMergeLayersStructs(t *testing.T) {
	strong := prefixSettings{Enabled: map[string]bool{"with": true}}
	weak := prefixSettings{
		Enabled: map[string]bool{"with": false, "set": false},
		Labels:  []string{"None", "'with'"},
		Note:    strPtr("weak"),
	}

	got := MergeLayers(strong, weak)
	if !got.Enabled["with"] || got.Enabled["set"] {
		t.Fatalf("unexpected map merge %#v", got.Enabled)
	}
	if len(got.Labels) != 2 || got.Note == nil || *got.Note != "weak" {
		t.Fatalf("expected weak fallbacks, got %#v", got)
	}
	*got.Note = "changed"
	if *weak.Note != "weak" {
		t.Fatalf("merged pointer must be detached from weak layer")
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	type sample struct {
		Value int
	}
	var zero sample
	if got := MergeLayers[sample](); got != zero {
		t.Fatalf("expected MergeLayers() to return zero value, got %+v", got)
	}
}

func TestCloneDetachesNestedValues(t *testing.T) {
	original := map[string]any{
		"groups": map[string]any{"prefix": []any{"None", "'with'"}},
	}
	clone := Clone(original)
	clone["groups"].(map[string]any)["prefix"].([]any)[0] = "changed"

	if original["groups"].(map[string]any)["prefix"].([]any)[0] != "None" {
		t.Fatalf("clone must not share nested storage")
	}
}
