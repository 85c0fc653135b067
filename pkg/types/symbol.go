package types

import (
	"fmt"

	"github.com/dshills/componentsgen/pkg/ast"
)

// SymbolReference is a lookup key: a name plus the file it is declared or re-exported from
type SymbolReference struct {
	LocalName string // Name of the symbol within the file
	FileName  string // Normalized path without the .d.ts suffix
}

func (r SymbolReference) String() string {
	return fmt.Sprintf("%s in %s", r.LocalName, r.FileName)
}

// NamedExports maps externally visible export names to their declarations
type NamedExports map[string]SymbolReference

// ExportName returns the export name under which ref is visible, falling back to its local name.
// When a declaration is exported under several names the smallest one wins.
func (e NamedExports) ExportName(ref SymbolReference) string {
	found := ""
	for name, exported := range e {
		if exported == ref && (found == "" || name < found) {
			found = name
		}
	}
	if found == "" {
		return ref.LocalName
	}
	return found
}

// EntityKind discriminates DeclaredEntity
type EntityKind string

const (
	EntityClass     EntityKind = "class"
	EntityInterface EntityKind = "interface"
)

// ClassEntity is a loaded class declaration
type ClassEntity struct {
	SymbolReference
	Declaration *ast.Node
	Abstract    bool
	SuperClass  *SymbolReference // nil when the class has no extends clause
}

// InterfaceEntity is a loaded interface declaration.
// SuperInterfaces is only populated when the interface was loaded with its
// superinterface chain, and is never modified after that.
type InterfaceEntity struct {
	SymbolReference
	Declaration     *ast.Node
	SuperInterfaces []*InterfaceEntity
}

// DeclaredEntity is either a class or an interface
type DeclaredEntity struct {
	Kind      EntityKind
	Class     *ClassEntity
	Interface *InterfaceEntity
}

// NewClassEntity wraps a class
func NewClassEntity(c *ClassEntity) DeclaredEntity {
	return DeclaredEntity{Kind: EntityClass, Class: c}
}

// NewInterfaceEntity wraps an interface
func NewInterfaceEntity(i *InterfaceEntity) DeclaredEntity {
	return DeclaredEntity{Kind: EntityInterface, Interface: i}
}

// Reference returns the reference of the wrapped declaration
func (e DeclaredEntity) Reference() SymbolReference {
	switch e.Kind {
	case EntityClass:
		return e.Class.SymbolReference
	case EntityInterface:
		return e.Interface.SymbolReference
	}
	return SymbolReference{}
}

// Declaration returns the syntax node of the wrapped declaration
func (e DeclaredEntity) Declaration() *ast.Node {
	switch e.Kind {
	case EntityClass:
		return e.Class.Declaration
	case EntityInterface:
		return e.Interface.Declaration
	}
	return nil
}

// ClassChain is a class together with its superclasses, nearest first
type ClassChain struct {
	Class     *ClassEntity
	Ancestors []*ClassEntity
}

// Classes returns the class followed by its ancestors
func (c *ClassChain) Classes() []*ClassEntity {
	out := make([]*ClassEntity, 0, len(c.Ancestors)+1)
	out = append(out, c.Class)
	return append(out, c.Ancestors...)
}

// ClassIndex maps class names to per-class data
type ClassIndex[T any] map[string]T
