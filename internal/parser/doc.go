// Package parser parses TypeScript declaration files (.d.ts) into immutable
// syntax trees.
//
// Parsing uses tree-sitter with the TypeScript grammar. The resulting tree-sitter
// tree is lowered into pkg/ast values right away and then released, so callers
// never share tree-sitter state between goroutines.
//
// # Basic Usage
//
//	p := parser.New()
//	file, err := p.Parse(ctx, "/pkg/lib/Foo", content)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, stmt := range file.Statements() {
//	    decl := parser.UnwrapDeclaration(stmt)
//	    if parser.IsClassDeclaration(decl) {
//	        fmt.Println("class", parser.DeclarationName(decl))
//	    }
//	}
//
// # Error Handling
//
// Unlike the tree-sitter parser itself, Parse does not tolerate syntax errors:
// a tree containing an ERROR or missing node yields a *types.ParseError with the
// file, line and column of the first problem. Declaration files are generated
// by the TypeScript compiler, so a broken file means a broken package.
//
//	_, err := p.Parse(ctx, "/pkg/broken", []byte("export class {"))
//	var parseErr *types.ParseError
//	if errors.As(err, &parseErr) {
//	    fmt.Printf("%s:%d:%d\n", parseErr.File, parseErr.Line, parseErr.Column)
//	}
package parser
