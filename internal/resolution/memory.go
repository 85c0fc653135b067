package resolution

import (
	"context"
	"fmt"

	"github.com/dshills/componentsgen/pkg/ast"
	"github.com/dshills/componentsgen/pkg/types"
)

// MemoryContext serves files from an in-memory map keyed by full path
// (including the .d.ts suffix for declaration files)
type MemoryContext struct {
	files  map[string]string
	parses *parseCache
}

// NewMemoryContext creates a context over files. The map must not be
// modified afterwards.
func NewMemoryContext(files map[string]string) *MemoryContext {
	normalized := make(map[string]string, len(files))
	for p, content := range files {
		normalized[Normalize(p)] = content
	}
	return &MemoryContext{files: normalized, parses: newParseCache()}
}

// GetFileContent implements ResolutionContext
func (c *MemoryContext) GetFileContent(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, ok := c.files[Normalize(path)]
	if !ok {
		return "", fmt.Errorf("%w: %s", types.ErrFileNotFound, Normalize(path))
	}
	return content, nil
}

// ParseTypescriptFile implements ResolutionContext
func (c *MemoryContext) ParseTypescriptFile(ctx context.Context, path string) (*ast.File, error) {
	return c.parses.parse(ctx, path, c.GetFileContent)
}
