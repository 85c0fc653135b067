package generate

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/componentsgen/internal/metadata"
	"github.com/dshills/componentsgen/internal/parse"
	"github.com/dshills/componentsgen/internal/resolution"
	"github.com/dshills/componentsgen/internal/serialize"
	"github.com/dshills/componentsgen/internal/storage"
)

// Version is recorded with every cached generation; a cache written by a
// different version is never reused
const Version = "0.1.0"

// ContextFile is the name of the generated context, written next to the components index
const ContextFile = "context.jsonld"

// ErrGenerationInProgress is returned when the generator is already running
var ErrGenerationInProgress = errors.New("generation already in progress")

// Config contains configuration for the generator
type Config struct {
	Workers   int             // Concurrent class loads (default: runtime.NumCPU())
	MaxDepth  int             // Nested expansion guard, 0 disables it
	CacheSize int             // File texts kept in memory per generation
	Storage   storage.Storage // Generation cache, nil disables caching
	Logger    *log.Logger
}

// Request describes one generation
type Request struct {
	PackageRoot string
	ClassNames  []string // empty for every exported class
	OutputPath  string   // directory the documents are written under, defaults to the package root
	Print       bool     // return the documents without writing them
}

// Output is the result of a generation
type Output struct {
	Documents []serialize.Document
	Cached    bool
	Written   []string
	Stats     Statistics
}

// Statistics contains statistics about a generation
type Statistics struct {
	Components  int
	FilesRead   int
	FilesParsed int
	Duration    time.Duration
}

// Generator coordinates the pipeline: metadata -> resolve -> serialize -> cache -> write
type Generator struct {
	config Config
	lock   GenerationLock
}

// New creates a new Generator instance
func New(config Config) *Generator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Generator{config: config}
}

// Generate produces the components of a package, reusing a cached generation
// when none of the files it was generated from changed
func (g *Generator) Generate(ctx context.Context, req Request) (*Output, error) {
	if !g.lock.TryAcquire() {
		return nil, ErrGenerationInProgress
	}
	defer g.lock.Release()

	startTime := time.Now()
	root, err := packageRoot(req.PackageRoot)
	if err != nil {
		return nil, err
	}
	selection := Selection(req.ClassNames)

	out, err := g.loadCached(ctx, root, selection)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out, err = g.generate(ctx, root, req.ClassNames, selection)
		if err != nil {
			return nil, err
		}
	}

	out.Documents = serialize.Relocate(out.Documents, root, req.OutputPath)
	if !req.Print {
		if out.Written, err = writeDocuments(out.Documents); err != nil {
			return nil, err
		}
	}

	out.Stats.Duration = time.Since(startTime)
	g.config.Logger.Info("generated components",
		"package", root,
		"components", out.Stats.Components,
		"documents", len(out.Documents),
		"cached", out.Cached,
		"duration", out.Stats.Duration)
	return out, nil
}

// generate runs the full pipeline and records the result in the cache
func (g *Generator) generate(ctx context.Context, root string, classNames []string, selection string) (*Output, error) {
	rc, err := resolution.NewFileSystemContext(g.config.Logger, g.config.CacheSize)
	if err != nil {
		return nil, err
	}

	meta, err := metadata.NewLoader(rc).Load(ctx, root)
	if err != nil {
		return nil, err
	}

	analyzer := parse.NewAnalyzer(rc, parse.Options{
		Workers:  g.config.Workers,
		MaxDepth: g.config.MaxDepth,
		Logger:   g.config.Logger,
	})
	result, err := analyzer.ResolveAll(ctx, root, classNames)
	if err != nil {
		return nil, err
	}

	docs, components, err := Serialize(result, meta, root)
	if err != nil {
		return nil, err
	}

	out := &Output{
		Documents: docs,
		Stats: Statistics{
			Components:  components,
			FilesRead:   len(rc.ReadFiles()),
			FilesParsed: rc.ParsedFiles(),
		},
	}

	if g.config.Storage != nil {
		if err := g.store(ctx, root, selection, meta, rc.FileHashes(), out); err != nil {
			return nil, fmt.Errorf("failed to cache generation: %w", err)
		}
	}
	return out, nil
}

// Serialize renders the component files, the components index and the context
// of a resolved package. It returns the documents and the number of components.
func Serialize(result *parse.Result, meta *metadata.PackageMetadata, root string) ([]serialize.Document, int, error) {
	components := serialize.NewComponentConstructor(meta, root)
	defs, err := components.ConstructComponents(result)
	if err != nil {
		return nil, 0, err
	}

	jsonldContext, err := serialize.NewContextConstructor(meta).ConstructContext(defs)
	if err != nil {
		return nil, 0, err
	}

	contextPath := path.Join(path.Dir(meta.ComponentsPath), ContextFile)
	docs, err := serialize.Render(defs, components.ConstructModule(defs), meta.ComponentsPath, jsonldContext, contextPath)
	if err != nil {
		return nil, 0, err
	}

	count := 0
	for _, file := range defs {
		count += len(file.Components)
	}
	return docs, count, nil
}

// loadCached returns the cached output for the selection, or nil when there
// is none or any recorded source file changed
func (g *Generator) loadCached(ctx context.Context, root, selection string) (*Output, error) {
	store := g.config.Storage
	if store == nil {
		return nil, nil
	}

	pkg, err := store.GetPackage(ctx, root)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	gen, err := store.GetGeneration(ctx, pkg.ID, selection)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if gen.GeneratorVersion != Version {
		g.config.Logger.Debug("dropping generation written by another version", "package", root, "version", gen.GeneratorVersion)
		if err := store.DeleteGeneration(ctx, gen.ID); err != nil {
			return nil, fmt.Errorf("failed to drop stale generation: %w", err)
		}
		return nil, nil
	}

	files, err := store.ListSourceFiles(ctx, gen.ID)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	for _, file := range files {
		hash, err := computeFileHash(file.FilePath)
		if err != nil || hash != file.ContentHash {
			g.config.Logger.Debug("source file changed", "path", file.FilePath)
			return nil, nil
		}
	}

	stored, err := store.ListDocuments(ctx, gen.ID)
	if err != nil {
		return nil, err
	}
	docs := make([]serialize.Document, len(stored))
	for i, doc := range stored {
		docs[i] = serialize.Document{Path: doc.OutputPath, Content: doc.Content}
	}

	g.config.Logger.Debug("using cached generation", "package", root, "selection", selection)
	return &Output{
		Documents: docs,
		Cached:    true,
		Stats:     Statistics{Components: gen.ComponentCount, FilesRead: len(files)},
	}, nil
}

// store records the generation, its source hashes and documents in one transaction
func (g *Generator) store(ctx context.Context, root, selection string, meta *metadata.PackageMetadata, hashes map[string][32]byte, out *Output) error {
	tx, err := g.config.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	pkg, err := tx.GetPackage(ctx, root)
	if errors.Is(err, storage.ErrNotFound) {
		pkg = &storage.Package{RootPath: root, Name: meta.Name, Version: meta.Version}
		err = tx.CreatePackage(ctx, pkg)
	}
	if err != nil {
		return err
	}

	pkg.Name = meta.Name
	pkg.Version = meta.Version
	pkg.LastGeneratedAt = time.Now()
	if err := tx.UpdatePackage(ctx, pkg); err != nil {
		return err
	}

	gen := &storage.Generation{
		PackageID:        pkg.ID,
		Selection:        selection,
		GeneratorVersion: Version,
		ComponentCount:   out.Stats.Components,
	}
	if err := tx.UpsertGeneration(ctx, gen); err != nil {
		return err
	}

	// Generated files may be read as inputs too, such as a context listed in
	// lsd:contexts; they are rewritten on every run and never invalidate the cache
	generated := make(map[string]bool, len(out.Documents))
	for _, doc := range out.Documents {
		generated[doc.Path] = true
	}
	paths := make([]string, 0, len(hashes))
	for p := range hashes {
		if !generated[p] {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	files := make([]*storage.SourceFile, len(paths))
	for i, p := range paths {
		files[i] = &storage.SourceFile{FilePath: p, ContentHash: hashes[p]}
	}
	if err := tx.ReplaceSourceFiles(ctx, gen.ID, files); err != nil {
		return err
	}

	docs := make([]*storage.Document, len(out.Documents))
	for i, doc := range out.Documents {
		docs[i] = &storage.Document{OutputPath: doc.Path, Content: doc.Content}
	}
	if err := tx.ReplaceDocuments(ctx, gen.ID, docs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Selection is the cache key of a class selection: sorted unique names joined by commas
func Selection(classNames []string) string {
	seen := make(map[string]bool, len(classNames))
	names := make([]string, 0, len(classNames))
	for _, name := range classNames {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

func packageRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("invalid package root %s: %w", root, err)
	}
	return filepath.ToSlash(abs), nil
}

func writeDocuments(docs []serialize.Document) ([]string, error) {
	written := make([]string, 0, len(docs))
	for _, doc := range docs {
		target := filepath.FromSlash(doc.Path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", doc.Path, err)
		}
		if err := os.WriteFile(target, doc.Content, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", doc.Path, err)
		}
		written = append(written, doc.Path)
	}
	return written, nil
}

// computeFileHash computes SHA-256 hash of a file
func computeFileHash(filePath string) ([32]byte, error) {
	file, err := os.Open(filepath.FromSlash(filePath))
	if err != nil {
		return [32]byte{}, err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return [32]byte{}, err
	}

	var result [32]byte
	copy(result[:], hash.Sum(nil))
	return result, nil
}
