package parser

import (
	"context"
	"errors"
	"testing"

	"github.com/dshills/componentsgen/pkg/ast"
	"github.com/dshills/componentsgen/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.NotNil(t, p.language)
}

func TestParse_ClassDeclaration(t *testing.T) {
	content := `/**
 * A component.
 */
export declare class A extends B {
    /**
     * @param fieldA - This is a great field!
     */
    constructor(fieldA: string, fieldB?: number[]);
}
`
	p := New()
	file, err := p.Parse(context.Background(), "/pkg/lib/A", []byte(content))
	require.NoError(t, err)

	assert.Equal(t, "/pkg/lib/A", file.Path)
	assert.Equal(t, "program", file.Root.Type)

	var classes []*ast.Node
	for _, stmt := range file.Statements() {
		if decl := UnwrapDeclaration(stmt); IsClassDeclaration(decl) {
			classes = append(classes, decl)
		}
	}
	require.Len(t, classes, 1)
	class := classes[0]
	assert.Equal(t, "A", DeclarationName(class))
	assert.Equal(t, 4, class.Start.Line)
	assert.Contains(t, DocComment(class), "A component.")

	var params []*ast.Node
	class.Walk(func(n *ast.Node) bool {
		if n.Type == "required_parameter" || n.Type == "optional_parameter" {
			params = append(params, n)
		}
		return true
	})
	require.Len(t, params, 2)
	assert.Equal(t, "fieldA", params[0].ChildByField("pattern").Text())
	assert.Equal(t, "optional_parameter", params[1].Type)
	assert.Equal(t, ": number[]", params[1].ChildByField("type").Text())
}

func TestParse_InterfaceDeclaration(t *testing.T) {
	content := `export interface I extends J, K<string> {
    a: string;
    b?: number;
}
`
	p := New()
	file, err := p.Parse(context.Background(), "/pkg/lib/I", []byte(content))
	require.NoError(t, err)

	stmts := file.Statements()
	require.Len(t, stmts, 1)
	decl := UnwrapDeclaration(stmts[0])
	assert.True(t, IsInterfaceDeclaration(decl))
	assert.False(t, IsClassDeclaration(decl))
	assert.Equal(t, "I", DeclarationName(decl))
	assert.Empty(t, DocComment(decl))
}

func TestParse_ParentLinks(t *testing.T) {
	p := New()
	file, err := p.Parse(context.Background(), "/pkg/index", []byte(`export * from "./a";`))
	require.NoError(t, err)

	file.Root.Walk(func(n *ast.Node) bool {
		for _, c := range n.Children {
			assert.Same(t, n, c.Parent)
			assert.Same(t, file, c.File())
		}
		return true
	})

	stmt := file.Statements()[0]
	assert.Equal(t, NodeExportStatement, stmt.Type)
	assert.Equal(t, "./a", StringValue(stmt.ChildByField("source")))
}

func TestParse_SyntaxError(t *testing.T) {
	p := New()
	_, err := p.Parse(context.Background(), "/pkg/lib/Broken", []byte("export class A {\n  constructor(a: string\n}\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSyntax))

	var parseErr *types.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "/pkg/lib/Broken.d.ts", parseErr.File)
	assert.GreaterOrEqual(t, parseErr.Line, 1)
	assert.GreaterOrEqual(t, parseErr.Column, 1)
	assert.Contains(t, err.Error(), "/pkg/lib/Broken.d.ts")
}

func TestParse_InvalidUTF8(t *testing.T) {
	p := New()
	_, err := p.Parse(context.Background(), "/pkg/bad", []byte{0xff, 0xfe})
	assert.ErrorIs(t, err, types.ErrSyntax)
}

func TestStringValue(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"double quotes", `"./a"`, "./a"},
		{"single quotes", `'./b'`, "./b"},
		{"unquoted", `c`, "c"},
		{"empty string", `""`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &ast.File{Source: []byte(tt.text)}
			n := ast.NewNode(file, "string", true)
			n.EndByte = len(tt.text)
			assert.Equal(t, tt.want, StringValue(n))
		})
	}
	assert.Equal(t, "", StringValue(nil))
}

func TestDocComment_OnlyJSDoc(t *testing.T) {
	content := `// plain comment
export declare class A {
}
`
	p := New()
	file, err := p.Parse(context.Background(), "/pkg/A", []byte(content))
	require.NoError(t, err)

	for _, stmt := range file.Statements() {
		if decl := UnwrapDeclaration(stmt); IsClassDeclaration(decl) {
			assert.Empty(t, DocComment(decl))
		}
	}
}
