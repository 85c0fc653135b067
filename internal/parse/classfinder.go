package parse

import (
	"context"
	"fmt"
	"path"

	"github.com/charmbracelet/log"

	"github.com/dshills/componentsgen/internal/parser"
	"github.com/dshills/componentsgen/internal/resolution"
	"github.com/dshills/componentsgen/pkg/types"
)

// IndexFile is the declaration file a package's export traversal starts from
const IndexFile = "index"

// FileExports are the exports found in a single declaration file
type FileExports struct {
	Named types.NamedExports
	// Unnamed holds the resolved targets of `export * from` statements
	Unnamed []string
}

// ClassFinder builds the export index of a package
type ClassFinder struct {
	rc     resolution.ResolutionContext
	logger *log.Logger
}

// NewClassFinder creates a ClassFinder reading files through rc
func NewClassFinder(rc resolution.ResolutionContext, logger *log.Logger) *ClassFinder {
	if logger == nil {
		logger = Options{}.withDefaults().Logger
	}
	return &ClassFinder{rc: rc, logger: logger}
}

// GetPackageExports collects every class exported by the package at
// packageRoot, following wildcard re-exports breadth-first from index.d.ts.
// Each file is visited once, so circular `export *` chains terminate.
func (f *ClassFinder) GetPackageExports(ctx context.Context, packageRoot string) (types.NamedExports, error) {
	exports := make(types.NamedExports)

	start := resolution.Normalize(path.Join(packageRoot, IndexFile))
	queue := []string{start}
	visited := map[string]bool{start: true}

	for len(queue) > 0 {
		fileName := queue[0]
		queue = queue[1:]

		fileExports, err := f.GetFileExports(ctx, fileName)
		if err != nil {
			return nil, err
		}
		for name, ref := range fileExports.Named {
			exports[name] = ref
		}
		for _, target := range fileExports.Unnamed {
			if visited[target] {
				continue
			}
			visited[target] = true
			queue = append(queue, target)
		}
	}

	f.logger.Debug("built export index", "package", packageRoot, "files", len(visited), "exports", len(exports))
	return exports, nil
}

// GetFileExports returns the named and wildcard exports of one declaration file
func (f *ClassFinder) GetFileExports(ctx context.Context, fileName string) (*FileExports, error) {
	fileName = resolution.Normalize(fileName)
	file, err := f.rc.ParseTypescriptFile(ctx, fileName)
	if err != nil {
		return nil, err
	}

	result := &FileExports{Named: make(types.NamedExports)}
	declaredClasses := make(map[string]bool)
	var deferred [][2]string // (local, exported) pairs of `export { A as B }`

	for _, stmt := range file.Statements() {
		decl := parser.UnwrapDeclaration(stmt)

		if parser.IsClassDeclaration(decl) {
			name := parser.DeclarationName(decl)
			if stmt.Type == parser.NodeExportStatement {
				if name == "" {
					return nil, fmt.Errorf("%w: missing exported class name in %s on line %d column %d",
						types.ErrMalformedExport, fileName, decl.Start.Line, decl.Start.Column)
				}
				result.Named[name] = types.SymbolReference{LocalName: name, FileName: fileName}
			}
			if name != "" {
				declaredClasses[name] = true
			}
			continue
		}

		if stmt.Type != parser.NodeExportStatement {
			continue
		}

		source := parser.StringValue(stmt.ChildByField("source"))
		switch {
		case isWildcardExport(stmt):
			if !isRelativeSource(source) {
				f.logger.Debug("skipping external wildcard export", "file", fileName, "source", source)
				continue
			}
			result.Unnamed = append(result.Unnamed, resolveSource(fileName, source))
		case source != "":
			if !isRelativeSource(source) {
				f.logger.Debug("skipping external re-export", "file", fileName, "source", source)
				continue
			}
			target := resolveSource(fileName, source)
			for _, spec := range exportSpecifiers(stmt) {
				local, exported := specifierNames(spec)
				result.Named[exported] = types.SymbolReference{LocalName: local, FileName: target}
			}
		default:
			for _, spec := range exportSpecifiers(stmt) {
				local, exported := specifierNames(spec)
				deferred = append(deferred, [2]string{local, exported})
			}
		}
	}

	for _, pair := range deferred {
		if declaredClasses[pair[0]] {
			result.Named[pair[1]] = types.SymbolReference{LocalName: pair[0], FileName: fileName}
		}
	}

	return result, nil
}
