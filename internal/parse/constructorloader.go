package parse

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/componentsgen/internal/parser"
	"github.com/dshills/componentsgen/pkg/ast"
	"github.com/dshills/componentsgen/pkg/types"
)

// Constructor is a constructor declaration and the class that declares it
type Constructor struct {
	Node  *ast.Node
	Owner *types.ClassEntity
}

// ConstructorLoader extracts constructor parameters from class chains
type ConstructorLoader struct {
	params   *ParameterLoader
	comments *CommentLoader
	workers  int
}

// NewConstructorLoader creates a ConstructorLoader processing up to workers classes at once
func NewConstructorLoader(params *ParameterLoader, workers int) *ConstructorLoader {
	if workers <= 0 {
		workers = Options{}.withDefaults().Workers
	}
	return &ConstructorLoader{params: params, comments: params.comments, workers: workers}
}

// GetConstructors extracts the unresolved constructor parameters of every
// class in index. The first failure cancels the batch.
func (c *ConstructorLoader) GetConstructors(ctx context.Context, index types.ClassIndex[*types.ClassChain]) (types.ClassIndex[types.ConstructorData[types.UnresolvedParameter]], error) {
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(types.ClassIndex[types.ConstructorData[types.UnresolvedParameter]], len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for _, name := range names {
		chain := index[name]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := c.LoadConstructorData(chain)
			if err != nil {
				return fmt.Errorf("failed to load constructor of %s: %w", name, err)
			}
			mu.Lock()
			out[name] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// LoadConstructorData extracts the parameters of the nearest constructor in
// chain. A chain without constructors yields no parameters.
func (c *ConstructorLoader) LoadConstructorData(chain *types.ClassChain) (types.ConstructorData[types.UnresolvedParameter], error) {
	ctor := c.GetConstructor(chain)
	if ctor == nil {
		return types.ConstructorData[types.UnresolvedParameter]{Parameters: []types.UnresolvedParameter{}}, nil
	}

	params, err := c.LoadConstructorFields(ctor)
	if err != nil {
		return types.ConstructorData[types.UnresolvedParameter]{}, err
	}
	return types.ConstructorData[types.UnresolvedParameter]{Parameters: params, Owner: ctor.Owner}, nil
}

// GetConstructor walks chain nearest-first and returns the first constructor
// found, or nil when no class in the chain declares one
func (c *ConstructorLoader) GetConstructor(chain *types.ClassChain) *Constructor {
	for _, class := range chain.Classes() {
		if node := c.GetConstructorInClass(class.Declaration); node != nil {
			return &Constructor{Node: node, Owner: class}
		}
	}
	return nil
}

// GetConstructorInClass returns the constructor among the class's own members
func (c *ConstructorLoader) GetConstructorInClass(classNode *ast.Node) *ast.Node {
	body := classNode.ChildByField("body")
	if body == nil {
		body = classNode.FirstChildOfType("class_body")
	}
	for _, member := range body.NamedChildren() {
		if member.Type != "method_definition" && member.Type != "method_signature" {
			continue
		}
		if member.ChildByField("name").Text() == "constructor" {
			return member
		}
	}
	return nil
}

// LoadConstructorFields converts the parameters of a constructor, in
// declaration order. Parameters tagged @ignored are dropped.
func (c *ConstructorLoader) LoadConstructorFields(ctor *Constructor) ([]types.UnresolvedParameter, error) {
	owner := ctor.Owner.SymbolReference

	comments, err := c.comments.ParseParamComments(parser.DocComment(ctor.Node))
	if err != nil {
		return nil, fmt.Errorf("%w in constructor of %s in %s", err, owner.LocalName, owner.FileName)
	}

	formal := ctor.Node.ChildByField("parameters")
	if formal == nil {
		formal = ctor.Node.FirstChildOfType("formal_parameters")
	}

	params := make([]types.UnresolvedParameter, 0, len(formal.NamedChildren()))
	for _, p := range formal.NamedChildren() {
		switch p.Type {
		case "required_parameter", "optional_parameter":
		case parser.NodeComment:
			continue
		default:
			return nil, fmt.Errorf("%w %s in constructor of %s in %s", types.ErrUnsupportedType, p.Type, owner.LocalName, owner.FileName)
		}

		pattern := p.ChildByField("pattern")
		if pattern == nil || pattern.Type != "identifier" {
			kind := "parameter"
			if pattern != nil {
				kind = pattern.Type
			}
			return nil, fmt.Errorf("%w %s in constructor of %s in %s", types.ErrUnsupportedType, kind, owner.LocalName, owner.FileName)
		}

		name := pattern.Text()
		comment := comments[name]
		if comment.Ignored {
			continue
		}

		required := p.Type == "required_parameter" && p.ChildByField("value") == nil
		param, err := c.params.LoadParameter(owner, name, required, p.ChildByField("type"), comment)
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}
