package parse

import (
	"path"
	"strings"

	"github.com/dshills/componentsgen/internal/parser"
	"github.com/dshills/componentsgen/internal/resolution"
	"github.com/dshills/componentsgen/pkg/ast"
)

// isRelativeSource reports whether an import or export source refers to a
// file inside the package rather than to another package
func isRelativeSource(source string) bool {
	return source == "." || source == ".." ||
		strings.HasPrefix(source, "./") || strings.HasPrefix(source, "../")
}

// resolveSource resolves a module source against the file it appears in.
// Script suffixes are dropped so the result names a declaration file.
func resolveSource(fileName, source string) string {
	for _, ext := range []string{parser.DeclarationExtension, ".js", ".ts"} {
		if strings.HasSuffix(source, ext) {
			source = strings.TrimSuffix(source, ext)
			break
		}
	}
	return resolution.Normalize(path.Join(path.Dir(fileName), source))
}

// specifierNames returns the (name, alias) pair of an import or export
// specifier. alias equals name when no "as" clause is present.
func specifierNames(spec *ast.Node) (string, string) {
	name := spec.ChildByField("name").Text()
	alias := spec.ChildByField("alias").Text()
	if alias == "" {
		alias = name
	}
	return name, alias
}

// exportSpecifiers returns the specifiers of an `export { ... }` clause
func exportSpecifiers(stmt *ast.Node) []*ast.Node {
	clause := stmt.FirstChildOfType("export_clause")
	if clause == nil {
		return nil
	}
	var out []*ast.Node
	for _, c := range clause.NamedChildren() {
		if c.Type == "export_specifier" {
			out = append(out, c)
		}
	}
	return out
}

// importSpecifiers returns the named specifiers of an import statement
func importSpecifiers(stmt *ast.Node) []*ast.Node {
	clause := stmt.FirstChildOfType("import_clause")
	if clause == nil {
		return nil
	}
	named := clause.FirstChildOfType("named_imports")
	if named == nil {
		return nil
	}
	var out []*ast.Node
	for _, c := range named.NamedChildren() {
		if c.Type == "import_specifier" {
			out = append(out, c)
		}
	}
	return out
}

// isWildcardExport reports whether stmt is `export * from "..."`
func isWildcardExport(stmt *ast.Node) bool {
	if stmt.Type != parser.NodeExportStatement || stmt.ChildByField("source") == nil {
		return false
	}
	for _, c := range stmt.Children {
		if c.Type == "*" {
			return true
		}
	}
	return false
}
