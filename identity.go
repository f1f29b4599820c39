package builderopts

import (
	"fmt"
	"strings"
)

// KeyNamespace prefixes every persisted settings key.
const KeyNamespace = "GenerateInnerBuilder"

// OptionID identifies one configurable generator setting. The set is closed;
// the zero value NoOption is the "none" sentinel used by choice groups.
type OptionID int

const (
	// NoOption marks a choice alternative that activates no identity.
	NoOption OptionID = iota
	FinalSetters
	NewBuilderMethod
	CopyConstructor
	WithNotation
	SetNotation
	JSR305Annotations
	FindbugsAnnotation
	WithJavadoc
	MakeFieldsFinal

	optionCount
)

type optionMeta struct {
	// setting is the persisted suffix. Shipped values must never change.
	setting string
	name    string
	label   string
}

var optionTable = [optionCount]optionMeta{
	NoOption:           {label: "NONE"},
	FinalSetters:       {setting: "finalSetters", name: "finalSetters", label: "FINAL_SETTERS"},
	NewBuilderMethod:   {setting: "newBuilderMethod", name: "newBuilderMethod", label: "NEW_BUILDER_METHOD"},
	CopyConstructor:    {setting: "copyConstructor", name: "copyConstructor", label: "COPY_CONSTRUCTOR"},
	WithNotation:       {setting: "withNotation", name: "withNotation", label: "WITH_NOTATION"},
	SetNotation:        {setting: "setNotatinon", name: "setNotation", label: "SET_NOTATION"},
	JSR305Annotations:  {setting: "useJSR305Annotations", name: "useJSR305Annotations", label: "JSR305_ANNOTATIONS"},
	FindbugsAnnotation: {setting: "useFindbugsAnnotation", name: "useFindbugsAnnotation", label: "FINDBUGS_ANNOTATION"},
	WithJavadoc:        {setting: "withJavadoc", name: "withJavadoc", label: "WITH_JAVADOC"},
	MakeFieldsFinal:    {setting: "finalFields", name: "finalFields", label: "MAKE_FIELDS_FINAL"},
}

// OptionIDs returns every identity in declaration order.
func OptionIDs() []OptionID {
	out := make([]OptionID, 0, optionCount-1)
	for id := NoOption + 1; id < optionCount; id++ {
		out = append(out, id)
	}
	return out
}

// Valid reports whether id is a real identity (not NoOption, not out of range).
func (id OptionID) Valid() bool {
	return id > NoOption && id < optionCount
}

// Key returns the namespaced storage key, e.g. "GenerateInnerBuilder.finalSetters".
// It returns an empty string for NoOption and unknown values.
func (id OptionID) Key() string {
	if !id.Valid() {
		return ""
	}
	return KeyNamespace + "." + optionTable[id].setting
}

// Name returns the identifier used for resolved values, rule variables and
// schema properties.
func (id OptionID) Name() string {
	if !id.Valid() {
		return ""
	}
	return optionTable[id].name
}

func (id OptionID) String() string {
	if id >= NoOption && id < optionCount {
		return optionTable[id].label
	}
	return fmt.Sprintf("OptionID(%d)", int(id))
}

// ParseKey maps a storage key back to its identity.
func ParseKey(key string) (OptionID, bool) {
	setting, ok := strings.CutPrefix(key, KeyNamespace+".")
	if !ok {
		return NoOption, false
	}
	for id := NoOption + 1; id < optionCount; id++ {
		if optionTable[id].setting == setting {
			return id, true
		}
	}
	return NoOption, false
}

// ParseName maps a value name (see Name) back to its identity.
func ParseName(name string) (OptionID, bool) {
	for id := NoOption + 1; id < optionCount; id++ {
		if optionTable[id].name == name {
			return id, true
		}
	}
	return NoOption, false
}
