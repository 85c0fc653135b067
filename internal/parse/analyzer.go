package parse

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/dshills/componentsgen/internal/resolution"
	"github.com/dshills/componentsgen/pkg/types"
)

// Analyzer resolves the constructors of a package's exported classes.
// An Analyzer caches loaded declarations, so it should be discarded when the
// package's files change.
type Analyzer struct {
	finder       *ClassFinder
	loader       *ClassLoader
	indexer      *ClassIndexer
	constructors *ConstructorLoader
	resolver     *ParameterResolver
	logger       *log.Logger
}

// Result is the outcome of resolving a set of classes
type Result struct {
	Exports      types.NamedExports
	Classes      types.ClassIndex[*types.ClassChain]
	Constructors types.ClassIndex[types.ConstructorData[types.ResolvedParameter]]
}

// NewAnalyzer wires the loaders together over rc
func NewAnalyzer(rc resolution.ResolutionContext, opts Options) *Analyzer {
	opts = opts.withDefaults()

	loader := NewClassLoader(rc)
	params := NewParameterLoader()
	return &Analyzer{
		finder:       NewClassFinder(rc, opts.Logger),
		loader:       loader,
		indexer:      NewClassIndexer(loader, opts.Workers),
		constructors: NewConstructorLoader(params, opts.Workers),
		resolver:     NewParameterResolver(loader, params, opts.Workers, opts.MaxDepth),
		logger:       opts.Logger,
	}
}

// ClassLoader returns the analyzer's declaration loader
func (a *Analyzer) ClassLoader() *ClassLoader { return a.loader }

// ClassIndexer returns the analyzer's class chain indexer
func (a *Analyzer) ClassIndexer() *ClassIndexer { return a.indexer }

// ConstructorLoader returns the analyzer's constructor extractor
func (a *Analyzer) ConstructorLoader() *ConstructorLoader { return a.constructors }

// ParameterResolver returns the analyzer's range resolver
func (a *Analyzer) ParameterResolver() *ParameterResolver { return a.resolver }

// GetPackageExports returns the export index of the package at packageRoot
func (a *Analyzer) GetPackageExports(ctx context.Context, packageRoot string) (types.NamedExports, error) {
	return a.finder.GetPackageExports(ctx, packageRoot)
}

// ResolveConstructorSchema fully resolves the constructor of one exported class.
// Fails with types.ErrClassNotFound when the package does not export className.
func (a *Analyzer) ResolveConstructorSchema(ctx context.Context, packageRoot, className string) (*types.ConstructorData[types.ResolvedParameter], error) {
	result, err := a.ResolveAll(ctx, packageRoot, []string{className})
	if err != nil {
		return nil, err
	}
	data := result.Constructors[className]
	return &data, nil
}

// ResolveAll resolves the constructors of the named exported classes, or of
// every exported class when classNames is empty
func (a *Analyzer) ResolveAll(ctx context.Context, packageRoot string, classNames []string) (*Result, error) {
	exports, err := a.finder.GetPackageExports(ctx, packageRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load exports of %s: %w", packageRoot, err)
	}

	selected, err := selectExports(exports, classNames)
	if err != nil {
		return nil, err
	}

	classes, err := a.indexer.CreateClassIndex(ctx, selected)
	if err != nil {
		return nil, err
	}

	unresolved, err := a.constructors.GetConstructors(ctx, classes)
	if err != nil {
		return nil, err
	}

	resolved, err := a.resolver.ResolveAllConstructorParameters(ctx, unresolved, classes)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("resolved constructors", "package", packageRoot, "classes", len(resolved))
	return &Result{Exports: exports, Classes: classes, Constructors: resolved}, nil
}

func selectExports(exports types.NamedExports, classNames []string) (types.NamedExports, error) {
	if len(classNames) == 0 {
		return exports, nil
	}

	selected := make(types.NamedExports, len(classNames))
	var missing []string
	for _, name := range classNames {
		ref, ok := exports[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		selected[name] = ref
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %s", types.ErrClassNotFound, strings.Join(missing, ", "))
	}
	return selected, nil
}
