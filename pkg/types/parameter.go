package types

import (
	"encoding/json"

	"github.com/dshills/componentsgen/pkg/ast"
)

// RangeKind discriminates parameter ranges
type RangeKind string

const (
	// Terminal in both unresolved and resolved form
	RangeRaw      RangeKind = "raw"
	RangeOverride RangeKind = "override"

	// Unresolved only
	RangeInterface RangeKind = "interface"
	RangeHash      RangeKind = "hash"

	// Resolved only
	RangeClass  RangeKind = "class"
	RangeNested RangeKind = "nested"
)

// UnresolvedRange is a parameter type as declared
type UnresolvedRange struct {
	Kind  RangeKind
	Value string    // primitive, override or interface name
	Hash  *ast.Node // object_type node for RangeHash
}

// RawRange is a primitive type such as string or number
func RawRange(primitive string) UnresolvedRange {
	return UnresolvedRange{Kind: RangeRaw, Value: primitive}
}

// OverrideRange is a type taken from a @range directive
func OverrideRange(typeName string) UnresolvedRange {
	return UnresolvedRange{Kind: RangeOverride, Value: typeName}
}

// InterfaceRange is a named type reference that still has to be loaded
func InterfaceRange(name string) UnresolvedRange {
	return UnresolvedRange{Kind: RangeInterface, Value: name}
}

// HashRange is an inline anonymous object type
func HashRange(objectType *ast.Node) UnresolvedRange {
	return UnresolvedRange{Kind: RangeHash, Hash: objectType}
}

// ResolvedRange is a parameter type after resolution
type ResolvedRange struct {
	Kind   RangeKind
	Value  string              // primitive or override type name
	Entity *DeclaredEntity     // referenced class-like entity for RangeClass
	Fields []ResolvedParameter // nested fields for RangeNested
}

// IsTerminal reports whether the range needs no further expansion
func (r ResolvedRange) IsTerminal() bool {
	switch r.Kind {
	case RangeRaw, RangeOverride, RangeClass:
		return true
	}
	return false
}

// MarshalJSON renders the range as {"type": ..., "value": ...}
func (r ResolvedRange) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{"type": r.Kind}
	switch r.Kind {
	case RangeRaw, RangeOverride:
		out["value"] = r.Value
	case RangeClass:
		if r.Entity != nil {
			ref := r.Entity.Reference()
			out["value"] = map[string]string{
				"kind":      string(r.Entity.Kind),
				"localName": ref.LocalName,
				"fileName":  ref.FileName,
			}
		}
	case RangeNested:
		fields := r.Fields
		if fields == nil {
			fields = []ResolvedParameter{}
		}
		out["value"] = fields
	}
	return json.Marshal(out)
}

// UnresolvedParameter is a constructor parameter or field before type resolution
type UnresolvedParameter struct {
	Name     string
	Comment  string
	Required bool // no optional marker and no default value
	Unique   bool // declared type is not an array
	Range    UnresolvedRange
}

// ResolvedParameter is a constructor parameter or field with a fully resolved range
type ResolvedParameter struct {
	Name     string        `json:"name"`
	Comment  string        `json:"comment,omitempty"`
	Required bool          `json:"required"`
	Unique   bool          `json:"unique"`
	Range    ResolvedRange `json:"range"`
}

// ConstructorData holds the parameters of one class constructor
type ConstructorData[P any] struct {
	Parameters []P `json:"parameters"`

	// Owner is the class that declares the constructor, which may be an
	// ancestor of the class the data was requested for. Nil when no class
	// in the chain declares a constructor.
	Owner *ClassEntity `json:"-"`
}
