package builderopts

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-builder-options/internal/hydrate"
)

// ErrConflictingPrefix reports persisted settings with both method prefixes
// enabled, which no selection session can produce.
var ErrConflictingPrefix = errors.New("builderopts: withNotation and setNotation are mutually exclusive")

// Fully qualified nullability annotations emitted by the generator.
const (
	JSR305Nonnull   = "javax.annotation.Nonnull"
	FindbugsNonNull = "edu.umd.cs.findbugs.annotations.NonNull"
)

// GeneratorSettings is the typed form of resolved option values consumed by
// the code generator.
type GeneratorSettings struct {
	FinalSetters       bool `json:"finalSetters"`
	NewBuilderMethod   bool `json:"newBuilderMethod"`
	CopyConstructor    bool `json:"copyConstructor"`
	WithNotation       bool `json:"withNotation"`
	SetNotation        bool `json:"setNotation"`
	JSR305Annotations  bool `json:"useJSR305Annotations"`
	FindbugsAnnotation bool `json:"useFindbugsAnnotation"`
	WithJavadoc        bool `json:"withJavadoc"`
	MakeFieldsFinal    bool `json:"finalFields"`
}

// DecodeGeneratorSettings hydrates a resolved snapshot keyed by option name.
// Unknown names are rejected so a renamed option cannot be silently dropped.
func DecodeGeneratorSettings(snapshot map[string]any) (GeneratorSettings, error) {
	decoder := hydrate.NewDecoder(
		hydrate.WithStrict[GeneratorSettings](),
		hydrate.WithPostHook[GeneratorSettings](func(_ hydrate.Context, s *GeneratorSettings) error {
			return s.Validate()
		}),
	)
	return decoder.Decode(hydrate.Context{Source: "generator settings"}, snapshot)
}

// Settings hydrates the values into GeneratorSettings.
func (v Values) Settings() (GeneratorSettings, error) {
	return DecodeGeneratorSettings(v.Snapshot())
}

// Validate rejects combinations the choice groups forbid.
func (s GeneratorSettings) Validate() error {
	if s.WithNotation && s.SetNotation {
		return ErrConflictingPrefix
	}
	return nil
}

// Enabled reports the value for id.
func (s GeneratorSettings) Enabled(id OptionID) bool {
	switch id {
	case FinalSetters:
		return s.FinalSetters
	case NewBuilderMethod:
		return s.NewBuilderMethod
	case CopyConstructor:
		return s.CopyConstructor
	case WithNotation:
		return s.WithNotation
	case SetNotation:
		return s.SetNotation
	case JSR305Annotations:
		return s.JSR305Annotations
	case FindbugsAnnotation:
		return s.FindbugsAnnotation
	case WithJavadoc:
		return s.WithJavadoc
	case MakeFieldsFinal:
		return s.MakeFieldsFinal
	default:
		return false
	}
}

// MethodPrefix returns "with", "set" or "" for bare field-named methods.
func (s GeneratorSettings) MethodPrefix() string {
	switch {
	case s.WithNotation:
		return "with"
	case s.SetNotation:
		return "set"
	default:
		return ""
	}
}

// MethodName returns the builder method name for field.
func (s GeneratorSettings) MethodName(field string) string {
	return prefixedName(s.MethodPrefix(), field)
}

// NullabilityAnnotations lists the annotations to place on generated methods
// and parameters. Both families may be enabled together.
func (s GeneratorSettings) NullabilityAnnotations() []string {
	return nullabilityAnnotations(s.JSR305Annotations, s.FindbugsAnnotation)
}

// AnnotationSimpleNames returns the annotations as written in source, e.g. "@Nonnull".
func (s GeneratorSettings) AnnotationSimpleNames() []string {
	names := s.NullabilityAnnotations()
	for i, fqn := range names {
		names[i] = "@" + simpleName(fqn)
	}
	return names
}

func prefixedName(prefix, field string) string {
	if prefix == "" || field == "" {
		return field
	}
	r, size := utf8.DecodeRuneInString(field)
	return prefix + string(unicode.ToUpper(r)) + field[size:]
}

func simpleName(qualified string) string {
	return qualified[strings.LastIndex(qualified, ".")+1:]
}

func nullabilityAnnotations(jsr305, findbugs bool) []string {
	var out []string
	if jsr305 {
		out = append(out, JSR305Nonnull)
	}
	if findbugs {
		out = append(out, FindbugsNonNull)
	}
	return out
}
