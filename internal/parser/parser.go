package parser

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/dshills/componentsgen/pkg/ast"
	"github.com/dshills/componentsgen/pkg/types"
)

// DeclarationExtension is appended to normalized paths to locate declaration files
const DeclarationExtension = ".d.ts"

// Parser handles tree-sitter parsing of TypeScript declaration files
type Parser struct {
	language *sitter.Language
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{
		language: typescript.GetLanguage(),
	}
}

// Parse parses declaration source and lowers it into an immutable ast.File.
// path is the normalized path without the .d.ts suffix and is used for error reporting.
func (p *Parser) Parse(ctx context.Context, path string, content []byte) (*ast.File, error) {
	if !utf8.Valid(content) {
		return nil, &types.ParseError{File: path + DeclarationExtension, Line: 1, Column: 1, Message: "content is not valid UTF-8"}
	}

	// A tree-sitter parser is not safe for concurrent use, so each call gets its own
	tsParser := sitter.NewParser()
	defer tsParser.Close()
	tsParser.SetLanguage(p.language)

	tree, err := tsParser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path+DeclarationExtension, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, &types.ParseError{File: path + DeclarationExtension, Line: 1, Column: 1, Message: "empty syntax tree"}
	}

	if root.HasError() {
		return nil, syntaxError(path, root, content)
	}

	file := &ast.File{Path: path, Source: content}
	file.Root = lower(file, root)
	return file, nil
}

// lower copies the tree-sitter tree into ast nodes using a cursor, which is the
// only way to learn the field name of each child
func lower(file *ast.File, root *sitter.Node) *ast.Node {
	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()

	out := convertNode(file, cursor.CurrentNode(), "")
	lowerChildren(file, cursor, out)
	return out
}

func lowerChildren(file *ast.File, cursor *sitter.TreeCursor, parent *ast.Node) {
	if !cursor.GoToFirstChild() {
		return
	}
	for {
		child := convertNode(file, cursor.CurrentNode(), cursor.CurrentFieldName())
		parent.AppendChild(child)
		lowerChildren(file, cursor, child)
		if !cursor.GoToNextSibling() {
			break
		}
	}
	cursor.GoToParent()
}

func convertNode(file *ast.File, n *sitter.Node, field string) *ast.Node {
	node := ast.NewNode(file, n.Type(), n.IsNamed())
	node.Field = field
	node.Missing = n.IsMissing()
	node.StartByte = int(n.StartByte())
	node.EndByte = int(n.EndByte())
	node.Start = pointFromSitter(n.StartPoint())
	node.End = pointFromSitter(n.EndPoint())
	return node
}

func pointFromSitter(p sitter.Point) ast.Point {
	return ast.Point{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

// syntaxError locates the first ERROR or missing node in the tree
func syntaxError(path string, root *sitter.Node, content []byte) error {
	bad := findErrorNode(root)
	if bad == nil {
		bad = root
	}

	msg := "syntax error"
	if bad.IsMissing() {
		msg = fmt.Sprintf("syntax error: missing %q", bad.Type())
	} else if text := strings.TrimSpace(bad.Content(content)); text != "" {
		if len(text) > 40 {
			text = text[:40] + "..."
		}
		msg = fmt.Sprintf("syntax error: unexpected %q", text)
	}

	pos := pointFromSitter(bad.StartPoint())
	return &types.ParseError{
		File:    path + DeclarationExtension,
		Line:    pos.Line,
		Column:  pos.Column,
		Message: msg,
	}
}

func findErrorNode(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := findErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}
