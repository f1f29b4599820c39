package hydrate

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type settings struct {
	FinalSetters bool `json:"finalSetters"`
	WithNotation bool `json:"withNotation"`
	WithJavadoc  bool `json:"withJavadoc"`
}

type fixtureCase struct {
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	Options   []string       `json:"options"`
	Expect    settings       `json:"expect"`
	ExpectErr string         `json:"expectErr"`
}

func TestDecoderFromFixtures(t *testing.T) {
	var fx struct {
		Cases []fixtureCase `json:"cases"`
	}
	raw, err := os.ReadFile(filepath.Join("testdata", "hydrate_settings.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}

	for _, tc := range fx.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			var opts []DecoderOption[settings]
			for _, name := range tc.Options {
				if name == "strict" {
					opts = append(opts, WithStrict[settings]())
				}
			}
			got, err := NewDecoder(opts...).Decode(Context{Source: "settings"}, tc.Input)
			if tc.ExpectErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.ExpectErr) {
					t.Fatalf("expected error containing %q, got %v", tc.ExpectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if diff := cmp.Diff(tc.Expect, got); diff != "" {
				t.Fatalf("decoded settings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecoderHooks(t *testing.T) {
	input := map[string]any{"withNotation": true}
	decoder := NewDecoder(
		WithPreHook[settings](func(_ Context, snapshot map[string]any) (map[string]any, error) {
			snapshot["withJavadoc"] = true
			return snapshot, nil
		}),
		WithPostHook[settings](func(_ Context, s *settings) error {
			s.FinalSetters = true
			return nil
		}),
	)
	got, err := decoder.Decode(Context{Source: "settings"}, input)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := settings{FinalSetters: true, WithNotation: true, WithJavadoc: true}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if _, touched := input["withJavadoc"]; touched {
		t.Fatalf("pre-hook must not modify the caller's snapshot")
	}
}

func TestDecoderHookErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewDecoder(WithPostHook[settings](func(Context, *settings) error { return boom })).
		Decode(Context{Source: "settings"}, map[string]any{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected post-hook error, got %v", err)
	}
	if _, err := NewDecoder[settings]().Decode(Context{Source: "settings"}, nil); err == nil {
		t.Fatalf("expected nil snapshot to fail")
	}
}
