// Package parse analyzes the declaration files of a TypeScript package and
// resolves the constructors of its exported classes.
//
// The work is split over small loaders, each usable on its own:
//
//   - ClassFinder builds the export index, starting at index.d.ts and
//     following `export { A as B } from` and `export * from` statements.
//   - ClassLoader loads class and interface declarations by name and file,
//     following relative imports to the declaring file.
//   - ClassIndexer loads a class with its superclass chain.
//   - ConstructorLoader finds the nearest constructor in a chain and turns its
//     parameters and doc comment into unresolved parameters.
//   - ParameterLoader does the same for interface members and inline object types.
//   - ParameterResolver resolves every range to a primitive, an override, a
//     class reference, or nested fields.
//
// Analyzer wires them together:
//
//	rc := resolution.NewMemoryContext(files)
//	a := parse.NewAnalyzer(rc, parse.Options{})
//	schema, err := a.ResolveConstructorSchema(ctx, "/pkg", "MyClass")
//
// # Ranges
//
// Declared types map to ranges as follows. string, number and boolean (and
// their boxed names) are raw ranges. T[], Array<T> and ReadonlyArray<T> mark
// the parameter as not unique and use the range of T. Other named types are
// looked up relative to the declaring file: classes, and interfaces with a
// method, construct signature or function-typed property, become class
// references. Any other interface is expanded into nested fields, including
// the fields of its superinterfaces. Inline object types are expanded in place.
// A `@range {type}` doc comment tag replaces the declared type.
//
// # Concurrency
//
// Classes and parameters are resolved concurrently with errgroup. Loaded
// declarations are cached in write-once maps, so all branches share them.
// The first error cancels the rest of a batch.
//
// # Recursion
//
// A data interface that refers to itself expands without bound unless
// Options.MaxDepth is set, in which case deeper nesting fails with
// types.ErrRecursionLimit.
package parse
