package generate

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/componentsgen/internal/storage"
	"github.com/dshills/componentsgen/pkg/types"
)

const testContextIRI = "https://linkedsoftwaredependencies.org/bundles/npm/my-package/^1.0.0/components/context.jsonld"

var testPackage = map[string]string{
	"package.json": `{
  "name": "my-package",
  "version": "1.2.3",
  "lsd:module": "https://linkedsoftwaredependencies.org/bundles/npm/my-package",
  "lsd:components": "components/components.jsonld",
  "lsd:contexts": {
    "` + testContextIRI + `": "components/context.jsonld"
  }
}`,
	"components/context.jsonld": `{"@context": {}}`,
	"index.d.ts":                `export * from "./lib/A";
export * from "./lib/B";`,
	"lib/A.d.ts": `export declare class A {
    /**
     * @param name - the name
     */
    constructor(name: string);
}`,
	"lib/B.d.ts": `import { A } from "./A";
export declare class B {
    constructor(a: A, sizes?: number[]);
}`,
}

func writePackage(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		target := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
		require.NoError(t, os.WriteFile(target, []byte(content), 0o644))
	}
	return root
}

func setupTestStorage(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func documentPaths(out *Output) []string {
	paths := make([]string, len(out.Documents))
	for i, doc := range out.Documents {
		paths[i] = doc.Path
	}
	return paths
}

func TestGenerate_WritesDocuments(t *testing.T) {
	root := writePackage(t, testPackage)
	g := New(Config{Workers: 2})

	out, err := g.Generate(context.Background(), Request{PackageRoot: root})
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Equal(t, 2, out.Stats.Components)

	slashRoot := filepath.ToSlash(root)
	assert.Equal(t, []string{
		slashRoot + "/components/components.jsonld",
		slashRoot + "/components/context.jsonld",
		slashRoot + "/components/lib/A.jsonld",
		slashRoot + "/components/lib/B.jsonld",
	}, out.Written)

	content, err := os.ReadFile(filepath.Join(root, "components", "lib", "B.jsonld"))
	require.NoError(t, err)

	var file struct {
		Context    []string `json:"@context"`
		ID         string   `json:"@id"`
		Components []struct {
			ID         string `json:"@id"`
			Parameters []struct {
				ID    string `json:"@id"`
				Range string `json:"range"`
			} `json:"parameters"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(content, &file))
	assert.Equal(t, []string{testContextIRI}, file.Context)
	assert.Equal(t, "npmd:my-package", file.ID)
	require.Len(t, file.Components, 1)
	assert.Equal(t, "mp:lib/B#B", file.Components[0].ID)
	require.Len(t, file.Components[0].Parameters, 2)
	assert.Equal(t, "mp:lib/A#A", file.Components[0].Parameters[0].Range)
	assert.Equal(t, "xsd:number", file.Components[0].Parameters[1].Range)
}

func TestGenerate_Print(t *testing.T) {
	root := writePackage(t, testPackage)
	g := New(Config{})

	out, err := g.Generate(context.Background(), Request{PackageRoot: root, ClassNames: []string{"A"}, Print: true})
	require.NoError(t, err)
	assert.Empty(t, out.Written)
	assert.Equal(t, 1, out.Stats.Components)
	assert.Contains(t, documentPaths(out), filepath.ToSlash(root)+"/components/lib/A.jsonld")

	_, err = os.Stat(filepath.Join(root, "components", "lib", "A.jsonld"))
	assert.True(t, os.IsNotExist(err))
}

func TestGenerate_OutputPath(t *testing.T) {
	root := writePackage(t, testPackage)
	outDir := filepath.ToSlash(t.TempDir())
	g := New(Config{})

	out, err := g.Generate(context.Background(), Request{PackageRoot: root, OutputPath: outDir})
	require.NoError(t, err)
	for _, p := range out.Written {
		assert.Contains(t, p, outDir)
	}
	_, err = os.Stat(filepath.Join(filepath.FromSlash(outDir), "components", "lib", "A.jsonld"))
	assert.NoError(t, err)
}

func TestGenerate_UnknownClass(t *testing.T) {
	root := writePackage(t, testPackage)
	g := New(Config{})

	_, err := g.Generate(context.Background(), Request{PackageRoot: root, ClassNames: []string{"Missing"}, Print: true})
	assert.ErrorIs(t, err, types.ErrClassNotFound)
}

func TestGenerate_InvalidPackage(t *testing.T) {
	files := map[string]string{"index.d.ts": `export declare class A {}`, "package.json": `{"name": "x"}`}
	root := writePackage(t, files)
	g := New(Config{})

	_, err := g.Generate(context.Background(), Request{PackageRoot: root, Print: true})
	assert.ErrorContains(t, err, "missing 'lsd:module'")
}

func TestGenerate_Cache(t *testing.T) {
	root := writePackage(t, testPackage)
	store := setupTestStorage(t)
	g := New(Config{Storage: store})
	ctx := context.Background()

	first, err := g.Generate(ctx, Request{PackageRoot: root})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := g.Generate(ctx, Request{PackageRoot: root})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Documents, second.Documents)
	assert.Equal(t, 2, second.Stats.Components)

	// A different selection is cached separately
	selected, err := g.Generate(ctx, Request{PackageRoot: root, ClassNames: []string{"A"}, Print: true})
	require.NoError(t, err)
	assert.False(t, selected.Cached)

	// Changing a source file invalidates the generation
	changed := `export declare class A {
    constructor(name: string, count: number);
}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "A.d.ts"), []byte(changed), 0o644))

	third, err := g.Generate(ctx, Request{PackageRoot: root})
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.NotEqual(t, first.Documents, third.Documents)

	pkg, err := store.GetPackage(ctx, filepath.ToSlash(root))
	require.NoError(t, err)
	assert.Equal(t, "my-package", pkg.Name)
	gens, err := store.ListGenerations(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Len(t, gens, 2)
}

// recordingStorage records the generations the generator drops
type recordingStorage struct {
	storage.Storage
	deleted []int64
}

func (s *recordingStorage) DeleteGeneration(ctx context.Context, generationID int64) error {
	s.deleted = append(s.deleted, generationID)
	return s.Storage.DeleteGeneration(ctx, generationID)
}

func TestGenerate_StaleVersionIsDropped(t *testing.T) {
	root := writePackage(t, testPackage)
	store := &recordingStorage{Storage: setupTestStorage(t)}
	g := New(Config{Storage: store})
	ctx := context.Background()

	_, err := g.Generate(ctx, Request{PackageRoot: root, Print: true})
	require.NoError(t, err)

	pkg, err := store.GetPackage(ctx, filepath.ToSlash(root))
	require.NoError(t, err)
	stale := &storage.Generation{PackageID: pkg.ID, GeneratorVersion: "0.0.0-old", ComponentCount: 2}
	require.NoError(t, store.UpsertGeneration(ctx, stale))

	out, err := g.Generate(ctx, Request{PackageRoot: root, Print: true})
	require.NoError(t, err)
	assert.False(t, out.Cached)
	assert.Equal(t, []int64{stale.ID}, store.deleted)

	gens, err := store.ListGenerations(ctx, pkg.ID)
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, Version, gens[0].GeneratorVersion)

	status, err := store.GetStatus(ctx, pkg.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.GenerationsCount)
	assert.Positive(t, status.SourceFilesCount)
	assert.Equal(t, len(out.Documents), status.DocumentsCount)
}

func TestGenerate_InProgress(t *testing.T) {
	g := New(Config{})
	require.True(t, g.lock.TryAcquire())
	defer g.lock.Release()

	_, err := g.Generate(context.Background(), Request{PackageRoot: t.TempDir()})
	assert.ErrorIs(t, err, ErrGenerationInProgress)
}

func TestSelection(t *testing.T) {
	assert.Equal(t, "", Selection(nil))
	assert.Equal(t, "A,B", Selection([]string{"B", "A", "B", ""}))
}

func TestGenerationLock(t *testing.T) {
	var lock GenerationLock
	assert.True(t, lock.TryAcquire())
	assert.False(t, lock.TryAcquire())
	lock.Release()
	assert.True(t, lock.TryAcquire())
}
