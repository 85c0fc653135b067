package parse

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/componentsgen/internal/parser"
	"github.com/dshills/componentsgen/internal/resolution"
	"github.com/dshills/componentsgen/pkg/ast"
	"github.com/dshills/componentsgen/pkg/types"
)

// ClassLoader loads class and interface declarations by reference.
// Loaded entities are memoized for the lifetime of the loader, so loading the
// same declaration twice returns the same pointer.
type ClassLoader struct {
	rc       resolution.ResolutionContext
	entities sync.Map // loadKey -> *types.DeclaredEntity
}

type loadKey struct {
	ref        types.SymbolReference
	interfaces bool
}

// NewClassLoader creates a ClassLoader reading files through rc
func NewClassLoader(rc resolution.ResolutionContext) *ClassLoader {
	return &ClassLoader{rc: rc}
}

// LoadClassDeclaration loads the class named ref.LocalName as visible in
// ref.FileName. When considerInterfaces is set, interfaces match as well.
// Names imported or re-exported from another file of the package are followed
// to the declaring file, whose path becomes the entity's FileName.
func (l *ClassLoader) LoadClassDeclaration(ctx context.Context, ref types.SymbolReference, considerInterfaces bool) (*types.DeclaredEntity, error) {
	ref.FileName = resolution.Normalize(ref.FileName)
	key := loadKey{ref: ref, interfaces: considerInterfaces}
	if cached, ok := l.entities.Load(key); ok {
		return cached.(*types.DeclaredEntity), nil
	}

	decl, declaredIn, err := l.findDeclaration(ctx, ref, considerInterfaces)
	if err != nil {
		return nil, err
	}

	entity := newDeclaredEntity(decl, types.SymbolReference{LocalName: parser.DeclarationName(decl), FileName: declaredIn})

	// Classes are shared between interface and class lookups
	canonical := loadKey{ref: entity.Reference(), interfaces: entity.Kind == types.EntityInterface}
	actual, _ := l.entities.LoadOrStore(canonical, entity)
	if canonical != key {
		actual, _ = l.entities.LoadOrStore(key, actual)
	}
	return actual.(*types.DeclaredEntity), nil
}

func newDeclaredEntity(decl *ast.Node, ref types.SymbolReference) *types.DeclaredEntity {
	if parser.IsInterfaceDeclaration(decl) {
		entity := types.NewInterfaceEntity(&types.InterfaceEntity{SymbolReference: ref, Declaration: decl})
		return &entity
	}

	class := &types.ClassEntity{
		SymbolReference: ref,
		Declaration:     decl,
		Abstract:        decl.Type == parser.NodeAbstractClassDeclaration,
	}
	if super := GetSuperClassName(decl); super != "" {
		class.SuperClass = &types.SymbolReference{LocalName: super, FileName: ref.FileName}
	}
	entity := types.NewClassEntity(class)
	return &entity
}

// findDeclaration searches ref's file for the declaration, then follows
// relative imports and re-exports breadth-first until it is found
func (l *ClassLoader) findDeclaration(ctx context.Context, ref types.SymbolReference, considerInterfaces bool) (*ast.Node, string, error) {
	queue := []types.SymbolReference{ref}
	visited := map[types.SymbolReference]bool{ref: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		file, err := l.rc.ParseTypescriptFile(ctx, current.FileName)
		if err != nil {
			return nil, "", err
		}

		if decl := findLocalDeclaration(file, current.LocalName, considerInterfaces); decl != nil {
			return decl, current.FileName, nil
		}

		for _, next := range findForwards(file, current.LocalName) {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	kind := "class"
	if considerInterfaces {
		kind = "class or interface"
	}
	return nil, "", fmt.Errorf("%w: could not find %s %s in %s", types.ErrEntityNotFound, kind, ref.LocalName, ref.FileName)
}

// findLocalDeclaration returns the declaration of name in file, exported or not
func findLocalDeclaration(file *ast.File, name string, considerInterfaces bool) *ast.Node {
	for _, stmt := range file.Statements() {
		decl := parser.UnwrapDeclaration(stmt)
		if parser.IsClassDeclaration(decl) || (considerInterfaces && parser.IsInterfaceDeclaration(decl)) {
			if parser.DeclarationName(decl) == name {
				return decl
			}
		}
	}
	return nil
}

// findForwards returns the references name may be forwarded to from file:
// named imports and re-exports of that name, then wildcard re-exports
func findForwards(file *ast.File, name string) []types.SymbolReference {
	var named, wildcard []types.SymbolReference

	for _, stmt := range file.Statements() {
		source := parser.StringValue(stmt.ChildByField("source"))
		if !isRelativeSource(source) {
			continue
		}
		target := resolveSource(file.Path, source)

		switch stmt.Type {
		case parser.NodeImportStatement:
			for _, spec := range importSpecifiers(stmt) {
				if imported, local := specifierNames(spec); local == name {
					named = append(named, types.SymbolReference{LocalName: imported, FileName: target})
				}
			}
		case parser.NodeExportStatement:
			if isWildcardExport(stmt) {
				wildcard = append(wildcard, types.SymbolReference{LocalName: name, FileName: target})
				continue
			}
			for _, spec := range exportSpecifiers(stmt) {
				if local, exported := specifierNames(spec); exported == name {
					named = append(named, types.SymbolReference{LocalName: local, FileName: target})
				}
			}
		}
	}

	return append(named, wildcard...)
}

// GetSuperClassName returns the name in a class's extends clause, or "" when
// the class has no superclass
func GetSuperClassName(decl *ast.Node) string {
	heritage := decl.FirstChildOfType("class_heritage")
	if heritage == nil {
		return ""
	}
	extends := heritage.FirstChildOfType("extends_clause")
	if extends == nil {
		return ""
	}
	value := extends.ChildByField("value")
	if value == nil {
		for _, c := range extends.NamedChildren() {
			if c.Type != parser.NodeComment {
				value = c
				break
			}
		}
	}
	return value.Text()
}

// GetSuperInterfaceNames returns the names in an interface's extends clause,
// in declaration order. Type arguments are dropped.
func GetSuperInterfaceNames(decl *ast.Node) []string {
	clause := decl.FirstChildOfType("extends_type_clause", "extends_clause")
	if clause == nil {
		return nil
	}

	var names []string
	for _, c := range clause.NamedChildren() {
		switch c.Type {
		case "type_identifier", "identifier", "nested_type_identifier":
			names = append(names, c.Text())
		case "generic_type":
			if name := c.ChildByField("name"); name != nil {
				names = append(names, name.Text())
			} else if id := c.FirstChildOfType("type_identifier"); id != nil {
				names = append(names, id.Text())
			}
		}
	}
	return names
}
