package parse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/componentsgen/pkg/types"
)

// ClassIndexer loads classes together with their superclass chains
type ClassIndexer struct {
	loader  *ClassLoader
	workers int
}

// NewClassIndexer creates a ClassIndexer loading up to workers chains at once
func NewClassIndexer(loader *ClassLoader, workers int) *ClassIndexer {
	if workers <= 0 {
		workers = Options{}.withDefaults().Workers
	}
	return &ClassIndexer{loader: loader, workers: workers}
}

// LoadClassChain loads the class at ref and then each superclass in turn
// until a class without an extends clause is reached
func (i *ClassIndexer) LoadClassChain(ctx context.Context, ref types.SymbolReference) (*types.ClassChain, error) {
	class, err := i.loadClass(ctx, ref)
	if err != nil {
		return nil, err
	}

	chain := &types.ClassChain{Class: class}
	seen := map[types.SymbolReference]bool{class.SymbolReference: true}

	for current := class; current.SuperClass != nil; {
		super, err := i.loadClass(ctx, *current.SuperClass)
		if err != nil {
			return nil, err
		}
		if seen[super.SymbolReference] {
			return nil, fmt.Errorf("%w: class %s in %s extends itself", types.ErrCyclicHierarchy, class.LocalName, class.FileName)
		}
		seen[super.SymbolReference] = true
		chain.Ancestors = append(chain.Ancestors, super)
		current = super
	}

	return chain, nil
}

func (i *ClassIndexer) loadClass(ctx context.Context, ref types.SymbolReference) (*types.ClassEntity, error) {
	entity, err := i.loader.LoadClassDeclaration(ctx, ref, false)
	if err != nil {
		return nil, err
	}
	switch entity.Kind {
	case types.EntityClass:
		return entity.Class, nil
	case types.EntityInterface:
		return nil, fmt.Errorf("%w: %s is an interface, expected a class", types.ErrInvalidHierarchy, ref)
	}
	return nil, fmt.Errorf("%w: %s", types.ErrEntityNotFound, ref)
}

// CreateClassIndex loads the chain of every exported class concurrently.
// The first failure cancels the remaining loads and is returned.
func (i *ClassIndexer) CreateClassIndex(ctx context.Context, exports types.NamedExports) (types.ClassIndex[*types.ClassChain], error) {
	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)

	index := make(types.ClassIndex[*types.ClassChain], len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for _, name := range names {
		ref := exports[name]
		g.Go(func() error {
			chain, err := i.LoadClassChain(gctx, ref)
			if err != nil {
				return fmt.Errorf("failed to load class %s: %w", name, err)
			}
			mu.Lock()
			index[name] = chain
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return index, nil
}
