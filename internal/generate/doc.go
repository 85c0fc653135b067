// Package generate runs the component generation pipeline for a package.
//
// A generation loads the package metadata, builds the export index, resolves
// the constructors of the requested classes and renders them as JSON-LD:
// one components file per declaration file, the components index named by
// lsd:components and a context with a shortcut per component.
//
// # Basic Usage
//
//	g := generate.New(generate.Config{Workers: 4, Logger: logger})
//	out, err := g.Generate(ctx, generate.Request{PackageRoot: "./my-package"})
//	if err != nil {
//	    return err
//	}
//	for _, path := range out.Written {
//	    fmt.Println(path)
//	}
//
// # Caching
//
// With a storage.Storage configured, every generation is recorded together
// with the SHA-256 of each file it read. A later request for the same package
// and class selection returns the stored documents when all recorded hashes
// still match. Files the generator writes itself are not recorded.
//
// Only one generation runs per Generator at a time; a concurrent call fails
// with ErrGenerationInProgress.
package generate
