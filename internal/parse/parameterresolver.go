package parse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/componentsgen/pkg/types"
)

// ParameterResolver resolves declared parameter types into terminal or nested ranges
type ParameterResolver struct {
	loader   *ClassLoader
	params   *ParameterLoader
	workers  int
	maxDepth int

	// Interfaces with their superinterface chains attached
	linked sync.Map // types.SymbolReference -> *types.DeclaredEntity
}

// NewParameterResolver creates a ParameterResolver. maxDepth limits nested
// expansion; 0 means unlimited.
func NewParameterResolver(loader *ClassLoader, params *ParameterLoader, workers, maxDepth int) *ParameterResolver {
	if workers <= 0 {
		workers = Options{}.withDefaults().Workers
	}
	return &ParameterResolver{loader: loader, params: params, workers: workers, maxDepth: maxDepth}
}

// ResolveAllConstructorParameters resolves the constructors of every class
// concurrently. The first failure cancels the batch and no partial index is returned.
func (r *ParameterResolver) ResolveAllConstructorParameters(
	ctx context.Context,
	unresolved types.ClassIndex[types.ConstructorData[types.UnresolvedParameter]],
	classIndex types.ClassIndex[*types.ClassChain],
) (types.ClassIndex[types.ConstructorData[types.ResolvedParameter]], error) {
	names := make([]string, 0, len(unresolved))
	for name := range unresolved {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(types.ClassIndex[types.ConstructorData[types.ResolvedParameter]], len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, name := range names {
		if _, ok := classIndex[name]; !ok {
			return nil, fmt.Errorf("%w: %s", types.ErrClassNotFound, name)
		}
	}

	for _, name := range names {
		data, chain := unresolved[name], classIndex[name]
		g.Go(func() error {
			resolved, err := r.ResolveConstructorParameters(gctx, data, chain.Class)
			if err != nil {
				return fmt.Errorf("failed to resolve constructor of %s: %w", name, err)
			}
			mu.Lock()
			out[name] = resolved
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveConstructorParameters resolves one constructor. Types are looked up
// from the file of the class declaring the constructor, which is owningClass
// unless the constructor was inherited.
func (r *ParameterResolver) ResolveConstructorParameters(
	ctx context.Context,
	data types.ConstructorData[types.UnresolvedParameter],
	owningClass *types.ClassEntity,
) (types.ConstructorData[types.ResolvedParameter], error) {
	owner := owningClass
	if data.Owner != nil {
		owner = data.Owner
	}

	params, err := r.resolveParameterData(ctx, data.Parameters, owner.SymbolReference, 0)
	if err != nil {
		return types.ConstructorData[types.ResolvedParameter]{}, err
	}
	return types.ConstructorData[types.ResolvedParameter]{Parameters: params, Owner: owner}, nil
}

// ResolveParameterData resolves every parameter concurrently, keeping their order
func (r *ParameterResolver) ResolveParameterData(ctx context.Context, params []types.UnresolvedParameter, owner types.SymbolReference) ([]types.ResolvedParameter, error) {
	return r.resolveParameterData(ctx, params, owner, 0)
}

func (r *ParameterResolver) resolveParameterData(ctx context.Context, params []types.UnresolvedParameter, owner types.SymbolReference, depth int) ([]types.ResolvedParameter, error) {
	out := make([]types.ResolvedParameter, len(params))

	g, gctx := errgroup.WithContext(ctx)
	for i, param := range params {
		g.Go(func() error {
			rng, err := r.resolveRange(gctx, param.Range, owner, depth)
			if err != nil {
				return err
			}
			out[i] = types.ResolvedParameter{
				Name:     param.Name,
				Comment:  param.Comment,
				Required: param.Required,
				Unique:   param.Unique,
				Range:    rng,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveRange resolves a range declared in owner's file
func (r *ParameterResolver) ResolveRange(ctx context.Context, rng types.UnresolvedRange, owner types.SymbolReference) (types.ResolvedRange, error) {
	return r.resolveRange(ctx, rng, owner, 0)
}

func (r *ParameterResolver) resolveRange(ctx context.Context, rng types.UnresolvedRange, owner types.SymbolReference, depth int) (types.ResolvedRange, error) {
	if err := ctx.Err(); err != nil {
		return types.ResolvedRange{}, err
	}

	switch rng.Kind {
	case types.RangeRaw, types.RangeOverride:
		return types.ResolvedRange{Kind: rng.Kind, Value: rng.Value}, nil
	case types.RangeInterface:
		return r.resolveRangeInterface(ctx, rng.Value, owner, depth)
	case types.RangeHash:
		if err := r.checkDepth(depth+1, owner); err != nil {
			return types.ResolvedRange{}, err
		}
		fields, err := r.params.LoadHashFields(owner, rng.Hash)
		if err != nil {
			return types.ResolvedRange{}, err
		}
		resolved, err := r.resolveParameterData(ctx, fields, owner, depth+1)
		if err != nil {
			return types.ResolvedRange{}, err
		}
		return types.ResolvedRange{Kind: types.RangeNested, Fields: resolved}, nil
	}
	return types.ResolvedRange{}, fmt.Errorf("%w: unknown range kind %q", types.ErrUnsupportedType, rng.Kind)
}

// resolveRangeInterface resolves a named type to a class reference, or to the
// nested fields of a data interface
func (r *ParameterResolver) resolveRangeInterface(ctx context.Context, name string, owner types.SymbolReference, depth int) (types.ResolvedRange, error) {
	entity, err := r.LoadClassOrInterfacesChain(ctx, types.SymbolReference{LocalName: name, FileName: owner.FileName})
	if err != nil {
		return types.ResolvedRange{}, err
	}

	switch entity.Kind {
	case types.EntityClass:
		return types.ResolvedRange{Kind: types.RangeClass, Entity: entity}, nil
	case types.EntityInterface:
		if r.IsInterfaceImplicitClass(entity.Interface) {
			return types.ResolvedRange{Kind: types.RangeClass, Entity: entity}, nil
		}
		if err := r.checkDepth(depth+1, entity.Interface.SymbolReference); err != nil {
			return types.ResolvedRange{}, err
		}
		fields, err := r.nestedFieldsFromInterface(ctx, entity.Interface, depth+1)
		if err != nil {
			return types.ResolvedRange{}, err
		}
		return types.ResolvedRange{Kind: types.RangeNested, Fields: fields}, nil
	}
	return types.ResolvedRange{}, fmt.Errorf("%w: %s in %s", types.ErrEntityNotFound, name, owner.FileName)
}

// nestedFieldsFromInterface resolves the interface's own fields followed by
// the fields of each superinterface
func (r *ParameterResolver) nestedFieldsFromInterface(ctx context.Context, iface *types.InterfaceEntity, depth int) ([]types.ResolvedParameter, error) {
	own, err := r.params.LoadInterfaceFields(iface)
	if err != nil {
		return nil, err
	}
	fields, err := r.resolveParameterData(ctx, own, iface.SymbolReference, depth)
	if err != nil {
		return nil, err
	}

	for _, super := range iface.SuperInterfaces {
		inherited, err := r.nestedFieldsFromInterface(ctx, super, depth)
		if err != nil {
			return nil, err
		}
		fields = append(fields, inherited...)
	}
	return fields, nil
}

func (r *ParameterResolver) checkDepth(depth int, at types.SymbolReference) error {
	if r.maxDepth > 0 && depth > r.maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d at %s in %s", types.ErrRecursionLimit, r.maxDepth, at.LocalName, at.FileName)
	}
	return nil
}

// IsInterfaceImplicitClass reports whether an interface describes behavior
// rather than data: one of its own members is a method signature, a construct
// signature, or a property typed as a function
func (r *ParameterResolver) IsInterfaceImplicitClass(iface *types.InterfaceEntity) bool {
	for _, member := range InterfaceBody(iface.Declaration).NamedChildren() {
		switch member.Type {
		case "method_signature", "construct_signature":
			return true
		case "property_signature":
			if typ := annotatedType(member.ChildByField("type")); typ != nil && typ.Type == "function_type" {
				return true
			}
		}
	}
	return false
}

// LoadClassOrInterfacesChain loads a class, or an interface with its
// superinterfaces attached recursively. An interface extending a class fails
// with ErrInvalidHierarchy and an interface extending itself with ErrCyclicHierarchy.
func (r *ParameterResolver) LoadClassOrInterfacesChain(ctx context.Context, ref types.SymbolReference) (*types.DeclaredEntity, error) {
	return r.loadChain(ctx, ref, nil)
}

func (r *ParameterResolver) loadChain(ctx context.Context, ref types.SymbolReference, stack []types.SymbolReference) (*types.DeclaredEntity, error) {
	entity, err := r.loader.LoadClassDeclaration(ctx, ref, true)
	if err != nil {
		return nil, err
	}

	switch entity.Kind {
	case types.EntityClass:
		return entity, nil
	case types.EntityInterface:
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrEntityNotFound, ref)
	}

	iface := entity.Interface
	if linked, ok := r.linked.Load(iface.SymbolReference); ok {
		return linked.(*types.DeclaredEntity), nil
	}
	for _, visiting := range stack {
		if visiting == iface.SymbolReference {
			return nil, fmt.Errorf("%w: interface %s in %s extends itself", types.ErrCyclicHierarchy, iface.LocalName, iface.FileName)
		}
	}
	stack = append(stack[:len(stack):len(stack)], iface.SymbolReference)

	names := GetSuperInterfaceNames(iface.Declaration)
	supers := make([]*types.InterfaceEntity, 0, len(names))
	for _, name := range names {
		super, err := r.loadChain(ctx, types.SymbolReference{LocalName: name, FileName: iface.FileName}, stack)
		if err != nil {
			return nil, err
		}
		switch super.Kind {
		case types.EntityInterface:
			supers = append(supers, super.Interface)
		case types.EntityClass:
			return nil, fmt.Errorf("%w: detected interface %s extending from a class %s in %s",
				types.ErrInvalidHierarchy, iface.LocalName, name, iface.FileName)
		}
	}

	// The loader's entity stays unlinked; a fresh entity carries the chain
	linked := types.NewInterfaceEntity(&types.InterfaceEntity{
		SymbolReference: iface.SymbolReference,
		Declaration:     iface.Declaration,
		SuperInterfaces: supers,
	})
	actual, _ := r.linked.LoadOrStore(iface.SymbolReference, &linked)
	return actual.(*types.DeclaredEntity), nil
}
