package model

import "strings"

// Kind is the category of a documented Python element.
type Kind int

const (
	KindPackage Kind = iota
	KindNamespacePackage
	KindModule
	KindClass
	KindException
	KindClassMethod
	KindStaticMethod
	KindMethod
	KindFunction
	KindClassVariable
	KindSchemaField
	KindAttribute
	KindInstanceVariable
	KindProperty
	KindVariable
	KindConstant
	KindTypeAlias
	KindTypeVariable
)

var kindNames = [...]string{
	KindPackage:          "PACKAGE",
	KindNamespacePackage: "NAMESPACE_PACKAGE",
	KindModule:           "MODULE",
	KindClass:            "CLASS",
	KindException:        "EXCEPTION",
	KindClassMethod:      "CLASS_METHOD",
	KindStaticMethod:     "STATIC_METHOD",
	KindMethod:           "METHOD",
	KindFunction:         "FUNCTION",
	KindClassVariable:    "CLASS_VARIABLE",
	KindSchemaField:      "SCHEMA_FIELD",
	KindAttribute:        "ATTRIBUTE",
	KindInstanceVariable: "INSTANCE_VARIABLE",
	KindProperty:         "PROPERTY",
	KindVariable:         "VARIABLE",
	KindConstant:         "CONSTANT",
	KindTypeAlias:        "TYPE_ALIAS",
	KindTypeVariable:     "TYPE_VARIABLE",
}

// String returns the serialized kind name, e.g. "CLASS_VARIABLE".
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "UNKNOWN"
	}
	return kindNames[k]
}

// IsClassLike reports whether the kind is a class or exception.
func (k Kind) IsClassLike() bool {
	return k == KindClass || k == KindException
}

// IsFunctionLike reports whether the kind is any callable defined with def.
func (k Kind) IsFunctionLike() bool {
	switch k {
	case KindFunction, KindMethod, KindClassMethod, KindStaticMethod, KindProperty:
		return true
	}
	return false
}

// IsAttributeLike reports whether the kind is any kind of data attribute.
func (k Kind) IsAttributeLike() bool {
	switch k {
	case KindAttribute, KindConstant, KindVariable, KindTypeAlias, KindTypeVariable,
		KindClassVariable, KindInstanceVariable, KindSchemaField:
		return true
	}
	return false
}

// IsModuleLike reports whether the kind is a module or package.
func (k Kind) IsModuleLike() bool {
	switch k {
	case KindModule, KindPackage, KindNamespacePackage:
		return true
	}
	return false
}

// ParameterKind mirrors the five ways a Python parameter can be passed.
type ParameterKind int

const (
	PositionalOnly ParameterKind = iota
	PositionalOrKeyword
	VarPositional
	KeywordOnly
	VarKeyword
)

var parameterKindNames = [...]string{
	PositionalOnly:      "POSITIONAL_ONLY",
	PositionalOrKeyword: "POSITIONAL_OR_KEYWORD",
	VarPositional:       "VAR_POSITIONAL",
	KeywordOnly:         "KEYWORD_ONLY",
	VarKeyword:          "VAR_KEYWORD",
}

func (k ParameterKind) String() string {
	if k < 0 || int(k) >= len(parameterKindNames) {
		return "UNKNOWN"
	}
	return parameterKindNames[k]
}

// PrivacyClass controls whether an object is shown and how it is flagged.
type PrivacyClass int

const (
	Public PrivacyClass = iota
	Private
	Hidden
)

var privacyNames = [...]string{
	Public:  "PUBLIC",
	Private: "PRIVATE",
	Hidden:  "HIDDEN",
}

func (p PrivacyClass) String() string {
	if p < 0 || int(p) >= len(privacyNames) {
		return "UNKNOWN"
	}
	return privacyNames[p]
}

// ParsePrivacyClass parses "PUBLIC", "PRIVATE" or "HIDDEN" (case-insensitive).
func ParsePrivacyClass(s string) (PrivacyClass, bool) {
	for i, name := range privacyNames {
		if strings.EqualFold(name, s) {
			return PrivacyClass(i), true
		}
	}
	return Public, false
}
