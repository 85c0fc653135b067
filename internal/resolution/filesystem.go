package resolution

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dshills/componentsgen/pkg/ast"
	"github.com/dshills/componentsgen/pkg/types"
)

// DefaultTextCacheSize is the number of file texts kept in memory
const DefaultTextCacheSize = 512

// FileSystemContext reads package files from disk. It remembers the SHA-256
// of every file it read so callers can detect later changes.
type FileSystemContext struct {
	texts  *lru.Cache[string, string]
	parses *parseCache
	logger *log.Logger

	mu     sync.Mutex
	hashes map[string][32]byte
}

// NewFileSystemContext creates a context backed by the local file system.
// A nil logger discards debug output.
func NewFileSystemContext(logger *log.Logger, cacheSize int) (*FileSystemContext, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultTextCacheSize
	}
	texts, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create text cache: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FileSystemContext{
		texts:  texts,
		parses: newParseCache(),
		logger: logger,
		hashes: make(map[string][32]byte),
	}, nil
}

// GetFileContent implements ResolutionContext
func (c *FileSystemContext) GetFileContent(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := Normalize(path)
	if text, ok := c.texts.Get(key); ok {
		return text, nil
	}

	data, err := os.ReadFile(filepath.FromSlash(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", types.ErrFileNotFound, key)
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	c.mu.Lock()
	c.hashes[key] = sha256.Sum256(data)
	c.mu.Unlock()

	text := string(data)
	c.texts.Add(key, text)
	c.logger.Debug("read file", "path", key, "bytes", len(data))
	return text, nil
}

// ParseTypescriptFile implements ResolutionContext
func (c *FileSystemContext) ParseTypescriptFile(ctx context.Context, path string) (*ast.File, error) {
	return c.parses.parse(ctx, path, c.GetFileContent)
}

// FileHashes returns the SHA-256 of every file read so far, keyed by path
func (c *FileSystemContext) FileHashes() map[string][32]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string][32]byte, len(c.hashes))
	for k, v := range c.hashes {
		out[k] = v
	}
	return out
}

// ReadFiles returns the sorted paths of every file read so far
func (c *FileSystemContext) ReadFiles() []string {
	hashes := c.FileHashes()
	paths := make([]string, 0, len(hashes))
	for p := range hashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ParsedFiles returns the number of declaration files parsed so far
func (c *FileSystemContext) ParsedFiles() int {
	return c.parses.len()
}
