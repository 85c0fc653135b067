package parser

import (
	"strings"

	"github.com/dshills/componentsgen/pkg/ast"
)

// Node types of the tree-sitter TypeScript grammar that the loaders dispatch on
const (
	NodeExportStatement          = "export_statement"
	NodeImportStatement          = "import_statement"
	NodeAmbientDeclaration       = "ambient_declaration"
	NodeClassDeclaration         = "class_declaration"
	NodeAbstractClassDeclaration = "abstract_class_declaration"
	NodeInterfaceDeclaration     = "interface_declaration"
	NodeComment                  = "comment"
)

// UnwrapDeclaration strips export and declare wrappers from a statement and
// returns the declaration inside, or the statement itself
func UnwrapDeclaration(stmt *ast.Node) *ast.Node {
	current := stmt
	for current != nil {
		switch current.Type {
		case NodeExportStatement:
			decl := current.ChildByField("declaration")
			if decl == nil {
				return current
			}
			current = decl
		case NodeAmbientDeclaration:
			var inner *ast.Node
			for _, c := range current.NamedChildren() {
				if c.Type != NodeComment {
					inner = c
					break
				}
			}
			if inner == nil {
				return current
			}
			current = inner
		default:
			return current
		}
	}
	return nil
}

// IsClassDeclaration reports whether decl declares a class
func IsClassDeclaration(decl *ast.Node) bool {
	return decl != nil && (decl.Type == NodeClassDeclaration || decl.Type == NodeAbstractClassDeclaration)
}

// IsInterfaceDeclaration reports whether decl declares an interface
func IsInterfaceDeclaration(decl *ast.Node) bool {
	return decl != nil && decl.Type == NodeInterfaceDeclaration
}

// DeclarationName returns the declared name, or "" for anonymous declarations
func DeclarationName(decl *ast.Node) string {
	return decl.ChildByField("name").Text()
}

// StringValue returns the contents of a string literal without its quotes
func StringValue(n *ast.Node) string {
	if n == nil {
		return ""
	}
	text := n.Text()
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return text[1 : len(text)-1]
		}
	}
	return text
}

// DocComment returns the /** */ comment directly preceding n. When n is wrapped
// in export or declare statements the comment before the outermost wrapper is used.
func DocComment(n *ast.Node) string {
	current := n
	for current != nil {
		if prev := current.PrevSibling(); prev != nil && prev.Type == NodeComment {
			text := prev.Text()
			if strings.HasPrefix(text, "/**") {
				return text
			}
			return ""
		}
		parent := current.Parent
		if parent == nil || (parent.Type != NodeExportStatement && parent.Type != NodeAmbientDeclaration) {
			return ""
		}
		current = parent
	}
	return ""
}
