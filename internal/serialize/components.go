package serialize

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dshills/componentsgen/internal/metadata"
	"github.com/dshills/componentsgen/internal/parse"
	"github.com/dshills/componentsgen/internal/parser"
	"github.com/dshills/componentsgen/pkg/types"
)

// Component types
const (
	TypeClass         = "Class"
	TypeAbstractClass = "AbstractClass"
	TypeModule        = "Module"
)

// ComponentConstructor turns resolved constructors into component definitions
type ComponentConstructor struct {
	meta        *metadata.PackageMetadata
	packageRoot string
	prefix      string
	comments    *parse.CommentLoader
}

// NewComponentConstructor creates a ComponentConstructor for the package at packageRoot
func NewComponentConstructor(meta *metadata.PackageMetadata, packageRoot string) *ComponentConstructor {
	return &ComponentConstructor{
		meta:        meta,
		packageRoot: path.Clean(packageRoot),
		prefix:      PackageNamePrefix(meta.Name),
		comments:    &parse.CommentLoader{},
	}
}

// ModuleID is the id of the package module, such as npmd:my-package
func (c *ComponentConstructor) ModuleID() string {
	return "npmd:" + c.meta.Name
}

// ComponentContexts returns the contexts every components file refers to
func (c *ComponentConstructor) ComponentContexts() []string {
	contexts := make([]string, 0, len(c.meta.Contexts))
	for iri := range c.meta.Contexts {
		contexts = append(contexts, iri)
	}
	sort.Strings(contexts)
	return contexts
}

// ConstructComponents builds one components file per declaring source file,
// keyed by its output path without extension
func (c *ComponentConstructor) ConstructComponents(result *parse.Result) (ComponentDefinitions, error) {
	names := make([]string, 0, len(result.Classes))
	for name := range result.Classes {
		names = append(names, name)
	}
	sort.Strings(names)

	componentsDir := path.Dir(c.meta.ComponentsPath)
	defs := make(ComponentDefinitions)
	for _, name := range names {
		chain := result.Classes[name]
		data, ok := result.Constructors[name]
		if !ok {
			return nil, fmt.Errorf("%w: no constructor data for %s", types.ErrClassNotFound, name)
		}

		component, err := c.ConstructComponent(result.Exports, name, chain, data)
		if err != nil {
			return nil, err
		}

		key := path.Join(componentsDir, c.relativePath(chain.Class.FileName))
		file, ok := defs[key]
		if !ok {
			file = &ComponentsFile{
				Context: c.ComponentContexts(),
				ID:      c.ModuleID(),
			}
			defs[key] = file
		}
		file.Components = append(file.Components, component)
	}
	return defs, nil
}

// ConstructComponent builds the component of one exported class
func (c *ComponentConstructor) ConstructComponent(exports types.NamedExports, exportName string, chain *types.ClassChain, data types.ConstructorData[types.ResolvedParameter]) (*Component, error) {
	class := chain.Class
	id := c.componentIDAs(class.SymbolReference, exportName)

	component := &Component{
		ID:                   id,
		Type:                 TypeClass,
		RequireElement:       exportName,
		Parameters:           []*Parameter{},
		ConstructorArguments: []*ConstructorArgument{},
	}
	if class.Abstract {
		component.Type = TypeAbstractClass
	}

	if doc := parser.DocComment(class.Declaration); doc != "" {
		comment, err := c.comments.ParseFieldComment(doc)
		if err != nil {
			return nil, fmt.Errorf("invalid comment of class %s: %w", exportName, err)
		}
		component.Comment = comment.Description
	}

	for _, param := range data.Parameters {
		arg, err := c.constructParameter(exports, component, id+"_"+param.Name, param)
		if err != nil {
			return nil, fmt.Errorf("failed to construct component %s: %w", id, err)
		}
		component.ConstructorArguments = append(component.ConstructorArguments, arg)
	}
	return component, nil
}

// constructParameter appends the parameters for param and returns its constructor argument
func (c *ComponentConstructor) constructParameter(exports types.NamedExports, component *Component, id string, param types.ResolvedParameter) (*ConstructorArgument, error) {
	if param.Range.Kind == types.RangeNested {
		arg := &ConstructorArgument{ID: id + "__constructorArgument", Fields: []*ConstructorField{}}
		for _, field := range param.Range.Fields {
			value, err := c.constructParameter(exports, component, id+"_"+field.Name, field)
			if err != nil {
				return nil, err
			}
			arg.Fields = append(arg.Fields, &ConstructorField{KeyRaw: field.Name, Value: value})
		}
		return arg, nil
	}

	rng, err := c.rangeIRI(exports, param.Range)
	if err != nil {
		return nil, fmt.Errorf("parameter %s: %w", param.Name, err)
	}
	component.Parameters = append(component.Parameters, &Parameter{
		ID:       id,
		Range:    rng,
		Comment:  param.Comment,
		Unique:   param.Unique,
		Required: param.Required,
	})
	return &ConstructorArgument{ID: id}, nil
}

func (c *ComponentConstructor) rangeIRI(exports types.NamedExports, r types.ResolvedRange) (string, error) {
	switch r.Kind {
	case types.RangeRaw:
		return "xsd:" + r.Value, nil
	case types.RangeOverride:
		if r.Value == "json" {
			return "rdf:JSON", nil
		}
		return "xsd:" + r.Value, nil
	case types.RangeClass:
		if r.Entity == nil {
			return "", fmt.Errorf("%w: class range without entity", types.ErrInvalidRange)
		}
		return c.ComponentID(exports, r.Entity.Reference()), nil
	}
	return "", fmt.Errorf("%w: %s", types.ErrInvalidRange, r.Kind)
}

// ComponentID is the id of the component for ref: <prefix>:<file>#<export name>
func (c *ComponentConstructor) ComponentID(exports types.NamedExports, ref types.SymbolReference) string {
	return c.componentIDAs(ref, exports.ExportName(ref))
}

func (c *ComponentConstructor) componentIDAs(ref types.SymbolReference, name string) string {
	return fmt.Sprintf("%s:%s#%s", c.prefix, c.relativePath(ref.FileName), name)
}

// relativePath returns fileName relative to the package root
func (c *ComponentConstructor) relativePath(fileName string) string {
	rel, err := filepath.Rel(c.packageRoot, path.Clean(fileName))
	if err != nil || strings.HasPrefix(rel, "..") {
		return path.Base(fileName)
	}
	return filepath.ToSlash(rel)
}

// ConstructModule builds the components index that imports every components file
func (c *ComponentConstructor) ConstructModule(defs ComponentDefinitions) *Module {
	keys := make([]string, 0, len(defs))
	for key := range defs {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	imports := make([]string, 0, len(keys))
	for _, key := range keys {
		imports = append(imports, "files-"+c.prefix+":"+c.relativePath(key)+FileExtension)
	}
	return &Module{
		Context:     c.ComponentContexts(),
		ID:          c.ModuleID(),
		Type:        TypeModule,
		RequireName: c.meta.Name,
		Import:      imports,
	}
}
