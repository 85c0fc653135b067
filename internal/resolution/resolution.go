package resolution

import (
	"context"
	"path"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/componentsgen/internal/parser"
	"github.com/dshills/componentsgen/pkg/ast"
)

// ResolutionContext gives the loaders access to package files.
// Paths are slash-separated; declaration paths omit the .d.ts suffix.
type ResolutionContext interface {
	// GetFileContent returns the text of the file at path.
	// Fails with types.ErrFileNotFound when the file does not exist.
	GetFileContent(ctx context.Context, path string) (string, error)

	// ParseTypescriptFile parses the declaration file path + ".d.ts".
	// Fails with a *types.ParseError on malformed input.
	ParseTypescriptFile(ctx context.Context, path string) (*ast.File, error)
}

// Normalize cleans a slash-separated path so it can be used as a cache key
func Normalize(p string) string {
	if p == "" {
		return p
	}
	return path.Clean(p)
}

// parseCache parses each declaration file at most once, even when several
// goroutines ask for the same file at the same time
type parseCache struct {
	parser *parser.Parser
	group  singleflight.Group
	files  sync.Map // normalized path -> *ast.File
}

func newParseCache() *parseCache {
	return &parseCache{parser: parser.New()}
}

type readFunc func(ctx context.Context, path string) (string, error)

func (c *parseCache) parse(ctx context.Context, filePath string, read readFunc) (*ast.File, error) {
	key := Normalize(filePath)
	if cached, ok := c.files.Load(key); ok {
		return cached.(*ast.File), nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if cached, ok := c.files.Load(key); ok {
			return cached, nil
		}
		content, err := read(ctx, key+parser.DeclarationExtension)
		if err != nil {
			return nil, err
		}
		file, err := c.parser.Parse(ctx, key, []byte(content))
		if err != nil {
			return nil, err
		}
		c.files.Store(key, file)
		return file, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ast.File), nil
}

// cached reports how many files have been parsed
func (c *parseCache) len() int {
	n := 0
	c.files.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
