package parse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/componentsgen/internal/parser"
	"github.com/dshills/componentsgen/pkg/ast"
	"github.com/dshills/componentsgen/pkg/types"
)

// ParameterLoader turns declared parameters and members into unresolved parameters
type ParameterLoader struct {
	comments *CommentLoader
}

// NewParameterLoader creates a ParameterLoader
func NewParameterLoader() *ParameterLoader {
	return &ParameterLoader{comments: &CommentLoader{}}
}

// LoadInterfaceFields converts the interface's own members. Inherited members
// are not included.
func (l *ParameterLoader) LoadInterfaceFields(iface *types.InterfaceEntity) ([]types.UnresolvedParameter, error) {
	return l.loadMembers(iface.SymbolReference, InterfaceBody(iface.Declaration))
}

// LoadHashFields converts the members of an inline object type declared in owner
func (l *ParameterLoader) LoadHashFields(owner types.SymbolReference, objectType *ast.Node) ([]types.UnresolvedParameter, error) {
	return l.loadMembers(owner, objectType)
}

// InterfaceBody returns the member list of an interface declaration
func InterfaceBody(decl *ast.Node) *ast.Node {
	if body := decl.ChildByField("body"); body != nil {
		return body
	}
	return decl.FirstChildOfType("interface_body", "object_type")
}

func (l *ParameterLoader) loadMembers(owner types.SymbolReference, body *ast.Node) ([]types.UnresolvedParameter, error) {
	if body == nil {
		return nil, nil
	}

	params := make([]types.UnresolvedParameter, 0, len(body.Children))
	for _, member := range body.NamedChildren() {
		var typeAnnotation *ast.Node
		switch member.Type {
		case "property_signature":
			typeAnnotation = member.ChildByField("type")
		case "method_signature":
			typeAnnotation = member.ChildByField("return_type")
		default:
			// index, call and construct signatures have no usable name
			continue
		}

		name := memberName(member)
		if name == "" {
			continue
		}

		comment, err := l.comments.ParseFieldComment(parser.DocComment(member))
		if err != nil {
			return nil, fmt.Errorf("%w for field %s of %s in %s", err, name, owner.LocalName, owner.FileName)
		}
		if comment.Ignored {
			continue
		}

		param, err := l.LoadParameter(owner, name, !member.HasChildOfType("?"), typeAnnotation, comment)
		if err != nil {
			// A method only becomes a field when its return type is a value
			if member.Type == "method_signature" &&
				(errors.Is(err, types.ErrUnsupportedType) || errors.Is(err, types.ErrMissingType)) {
				continue
			}
			return nil, err
		}
		params = append(params, param)
	}
	return params, nil
}

func memberName(member *ast.Node) string {
	name := member.ChildByField("name")
	if name == nil {
		return ""
	}
	switch name.Type {
	case "string":
		return parser.StringValue(name)
	case "computed_property_name":
		return ""
	}
	return name.Text()
}

// LoadParameter builds an unresolved parameter from its declared type
// annotation and doc comment. A @range override replaces the declared type.
func (l *ParameterLoader) LoadParameter(owner types.SymbolReference, name string, required bool, typeAnnotation *ast.Node, comment CommentData) (types.UnresolvedParameter, error) {
	param := types.UnresolvedParameter{
		Name:     name,
		Comment:  comment.Description,
		Required: required,
		Unique:   true,
	}

	declared := annotatedType(typeAnnotation)

	if comment.Range != "" {
		param.Range = types.OverrideRange(comment.Range)
		param.Unique = !isArrayType(declared)
		return param, nil
	}

	if declared == nil {
		return types.UnresolvedParameter{}, fmt.Errorf("%w for field %s of %s in %s",
			types.ErrMissingType, name, owner.LocalName, owner.FileName)
	}

	rng, unique, err := rangeFromType(declared)
	if err != nil {
		return types.UnresolvedParameter{}, fmt.Errorf("%w %s for field %s of %s in %s",
			err, declared.Type, name, owner.LocalName, owner.FileName)
	}
	param.Range = rng
	param.Unique = unique
	return param, nil
}

// annotatedType returns the type inside a `: T` annotation
func annotatedType(typeAnnotation *ast.Node) *ast.Node {
	if typeAnnotation == nil {
		return nil
	}
	if typeAnnotation.Type != "type_annotation" {
		return typeAnnotation
	}
	for _, c := range typeAnnotation.NamedChildren() {
		if c.Type != parser.NodeComment {
			return c
		}
	}
	return nil
}

// rangeFromType derives the range of a declared type. unique is false for
// array forms, whose element type determines the range.
func rangeFromType(typ *ast.Node) (types.UnresolvedRange, bool, error) {
	switch typ.Type {
	case "predefined_type":
		switch text := typ.Text(); text {
		case "boolean", "number", "string":
			return types.RawRange(text), true, nil
		}
	case "type_identifier":
		switch text := typ.Text(); text {
		case "Boolean", "Number", "String":
			return types.RawRange(strings.ToLower(text)), true, nil
		default:
			return types.InterfaceRange(text), true, nil
		}
	case "generic_type":
		name := typ.ChildByField("name").Text()
		if name == "Array" || name == "ReadonlyArray" {
			elem := firstTypeArgument(typ)
			if elem == nil {
				break
			}
			rng, _, err := rangeFromType(elem)
			return rng, false, err
		}
		if name != "" {
			return types.InterfaceRange(name), true, nil
		}
	case "array_type":
		if elem := firstNamed(typ); elem != nil {
			rng, _, err := rangeFromType(elem)
			return rng, false, err
		}
	case "readonly_type", "parenthesized_type":
		if inner := firstNamed(typ); inner != nil {
			return rangeFromType(inner)
		}
	case "object_type":
		return types.HashRange(typ), true, nil
	}
	return types.UnresolvedRange{}, false, types.ErrUnsupportedType
}

// isArrayType reports whether typ is an array form, without validating the element type
func isArrayType(typ *ast.Node) bool {
	if typ == nil {
		return false
	}
	switch typ.Type {
	case "array_type":
		return true
	case "generic_type":
		name := typ.ChildByField("name").Text()
		return name == "Array" || name == "ReadonlyArray"
	case "readonly_type", "parenthesized_type":
		return isArrayType(firstNamed(typ))
	}
	return false
}

func firstTypeArgument(generic *ast.Node) *ast.Node {
	args := generic.ChildByField("type_arguments")
	if args == nil {
		args = generic.FirstChildOfType("type_arguments")
	}
	if args == nil {
		return nil
	}
	return firstNamed(args)
}

func firstNamed(n *ast.Node) *ast.Node {
	for _, c := range n.NamedChildren() {
		if c.Type != parser.NodeComment {
			return c
		}
	}
	return nil
}
