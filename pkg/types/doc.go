// Package types provides the shared data model of componentsgen.
//
// # Entities
//
// A DeclaredEntity is a closed variant over a loaded class or interface:
//
//	switch entity.Kind {
//	case types.EntityClass:
//	    fmt.Println("class", entity.Class.LocalName)
//	case types.EntityInterface:
//	    fmt.Println("interface", entity.Interface.LocalName)
//	}
//
// Entities are looked up by SymbolReference, a local name plus the declaration
// file path without its .d.ts suffix.
//
// # Parameters and Ranges
//
// Constructor parameters and interface fields are first extracted as
// UnresolvedParameter values whose UnresolvedRange is one of raw, override,
// interface or hash. Resolution turns them into ResolvedParameter values whose
// ResolvedRange is one of raw, override, class or nested:
//
//	{Name: "fieldA", Comment: "desc", Required: true, Unique: true,
//	 Range: ResolvedRange{Kind: RangeRaw, Value: "string"}}
//
// # Errors
//
// Failures wrap one of the sentinel errors in errors.go and can be tested with
// errors.Is. Syntax errors are reported as *ParseError, which carries the file,
// line and column and unwraps to ErrSyntax.
package types
