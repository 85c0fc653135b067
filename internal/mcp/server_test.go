package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/componentsgen/internal/config"
)

var testPackage = map[string]string{
	"package.json": `{
  "name": "my-package",
  "version": "1.2.3",
  "lsd:module": "https://linkedsoftwaredependencies.org/bundles/npm/my-package",
  "lsd:components": "components/components.jsonld",
  "lsd:contexts": {
    "https://linkedsoftwaredependencies.org/bundles/npm/my-package/^1.0.0/components/context.jsonld": "components/context.jsonld"
  }
}`,
	"components/context.jsonld": `{"@context": {}}`,
	"index.d.ts": `export * from "./lib/Bus";
export { Actor as MyActor } from "./lib/Actor";`,
	"lib/Bus.d.ts": `export declare class Bus {}`,
	"lib/Actor.d.ts": `import { Bus } from "./Bus";
export declare class Actor {
    constructor(bus: Bus, name?: string);
}`,
}

func writePackage(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range testPackage {
		target := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
		require.NoError(t, os.WriteFile(target, []byte(content), 0o644))
	}
	return root
}

func newTestServer(t *testing.T, cache string) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Workers = 2
	cfg.Cache = cache
	server, err := NewServer(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Close() })
	return server
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Name = name
	request.Params.Arguments = args
	return request
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	var text string
	switch content := result.Content[0].(type) {
	case mcp.TextContent:
		text = content.Text
	case *mcp.TextContent:
		text = content.Text
	default:
		t.Fatalf("unexpected content type %T", content)
	}

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	return out
}

func requireMCPError(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.True(t, errors.As(err, &mcpErr), "expected MCPError, got %v", err)
	assert.Equal(t, code, mcpErr.Code)
}

func TestServer_Initialization(t *testing.T) {
	t.Run("without cache", func(t *testing.T) {
		server := newTestServer(t, "")
		assert.NotNil(t, server.mcp)
		assert.NotNil(t, server.generator)
		assert.Nil(t, server.storage)
	})

	t.Run("with cache creates the database directory", func(t *testing.T) {
		cache := filepath.Join(t.TempDir(), "nested", "cache.db")
		server := newTestServer(t, cache)
		assert.NotNil(t, server.storage)
		_, err := os.Stat(filepath.Dir(cache))
		assert.NoError(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Workers = 0
		_, err := NewServer(cfg, nil)
		assert.Error(t, err)
	})
}

func TestHandleListExports(t *testing.T) {
	server := newTestServer(t, "")
	root := writePackage(t)

	result, err := server.handleListExports(context.Background(), callRequest("list_exports", map[string]interface{}{"path": root}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, float64(2), out["count"])
	exports := out["exports"].([]interface{})
	first := exports[0].(map[string]interface{})
	assert.Equal(t, "Bus", first["name"])
	second := exports[1].(map[string]interface{})
	assert.Equal(t, "MyActor", second["name"])
	assert.Equal(t, "Actor", second["local_name"])
}

func TestHandleResolveConstructor(t *testing.T) {
	server := newTestServer(t, "")
	root := writePackage(t)

	result, err := server.handleResolveConstructor(context.Background(), callRequest("resolve_constructor", map[string]interface{}{
		"path":       root,
		"class_name": "MyActor",
	}))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, "MyActor", out["class"])
	params := out["parameters"].([]interface{})
	require.Len(t, params, 2)

	bus := params[0].(map[string]interface{})
	assert.Equal(t, "bus", bus["name"])
	assert.Equal(t, true, bus["required"])
	assert.Equal(t, "class", bus["range"].(map[string]interface{})["type"])

	name := params[1].(map[string]interface{})
	assert.Equal(t, false, name["required"])
	assert.Equal(t, "string", name["range"].(map[string]interface{})["value"])
}

func TestHandleResolveConstructor_Errors(t *testing.T) {
	server := newTestServer(t, "")
	root := writePackage(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
		code int
	}{
		{"missing path", map[string]interface{}{"class_name": "MyActor"}, ErrorCodeInvalidParams},
		{"relative path", map[string]interface{}{"path": "pkg", "class_name": "MyActor"}, ErrorCodeInvalidParams},
		{"no declarations", map[string]interface{}{"path": t.TempDir(), "class_name": "MyActor"}, ErrorCodePackageNotFound},
		{"missing class name", map[string]interface{}{"path": root}, ErrorCodeInvalidParams},
		{"unknown class", map[string]interface{}{"path": root, "class_name": "Missing"}, ErrorCodeClassNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.handleResolveConstructor(ctx, callRequest("resolve_constructor", tt.args))
			requireMCPError(t, err, tt.code)
		})
	}

	t.Run("non-object arguments", func(t *testing.T) {
		var request mcp.CallToolRequest
		request.Params.Arguments = "nope"
		_, err := server.handleResolveConstructor(ctx, request)
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})
}

func TestHandleResolveConstructor_SyntaxError(t *testing.T) {
	server := newTestServer(t, "")
	root := writePackage(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "Actor.d.ts"), []byte("export declare class Actor {"), 0o644))

	_, err := server.handleResolveConstructor(context.Background(), callRequest("resolve_constructor", map[string]interface{}{
		"path":       root,
		"class_name": "MyActor",
	}))
	requireMCPError(t, err, ErrorCodeInvalidDeclarations)
}

func TestHandleGenerateComponents(t *testing.T) {
	server := newTestServer(t, filepath.Join(t.TempDir(), "cache.db"))
	root := writePackage(t)
	ctx := context.Background()

	args := map[string]interface{}{"path": root, "class_names": []interface{}{"MyActor"}}
	result, err := server.handleGenerateComponents(ctx, callRequest("generate_components", args))
	require.NoError(t, err)

	out := resultJSON(t, result)
	assert.Equal(t, false, out["cached"])
	assert.Equal(t, float64(1), out["components"])
	assert.Nil(t, out["written"])

	documents := out["documents"].([]interface{})
	var actor map[string]interface{}
	for _, d := range documents {
		doc := d.(map[string]interface{})
		if doc["path"] == filepath.ToSlash(root)+"/components/lib/Actor.jsonld" {
			actor = doc["content"].(map[string]interface{})
		}
	}
	require.NotNil(t, actor)
	component := actor["components"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "mp:lib/Actor#MyActor", component["@id"])

	// Nothing changed, so the second call is served from the cache
	result, err = server.handleGenerateComponents(ctx, callRequest("generate_components", args))
	require.NoError(t, err)
	assert.Equal(t, true, resultJSON(t, result)["cached"])
}

func TestHandleGenerateComponents_InvalidClassNames(t *testing.T) {
	server := newTestServer(t, "")
	root := writePackage(t)

	_, err := server.handleGenerateComponents(context.Background(), callRequest("generate_components", map[string]interface{}{
		"path":        root,
		"class_names": []interface{}{"MyActor", 3},
	}))
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleGenerateComponents_InvalidMetadata(t *testing.T) {
	server := newTestServer(t, "")
	root := writePackage(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte(`{"name": "my-package"`), 0o644))

	_, err := server.handleGenerateComponents(context.Background(), callRequest("generate_components", map[string]interface{}{"path": root}))
	requireMCPError(t, err, ErrorCodeInvalidPackageMetadata)
}

func TestHandleGetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("cache disabled", func(t *testing.T) {
		server := newTestServer(t, "")
		root := writePackage(t)

		result, err := server.handleGetStatus(ctx, callRequest("get_status", map[string]interface{}{"path": root}))
		require.NoError(t, err)
		out := resultJSON(t, result)
		assert.Equal(t, false, out["cache_enabled"])
		assert.Equal(t, false, out["cached"])
	})

	t.Run("reports cached generations", func(t *testing.T) {
		server := newTestServer(t, filepath.Join(t.TempDir(), "cache.db"))
		root := writePackage(t)
		args := map[string]interface{}{"path": root}

		result, err := server.handleGetStatus(ctx, callRequest("get_status", args))
		require.NoError(t, err)
		out := resultJSON(t, result)
		assert.Equal(t, true, out["cache_enabled"])
		assert.Equal(t, false, out["cached"])

		_, err = server.handleGenerateComponents(ctx, callRequest("generate_components", args))
		require.NoError(t, err)
		_, err = server.handleGenerateComponents(ctx, callRequest("generate_components", map[string]interface{}{
			"path":        root,
			"class_names": []interface{}{"MyActor"},
		}))
		require.NoError(t, err)

		result, err = server.handleGetStatus(ctx, callRequest("get_status", args))
		require.NoError(t, err)
		out = resultJSON(t, result)
		assert.Equal(t, true, out["cached"])

		pkg := out["package"].(map[string]interface{})
		assert.Equal(t, filepath.ToSlash(root), pkg["path"])
		assert.Equal(t, "my-package", pkg["name"])
		assert.Equal(t, "1.2.3", pkg["version"])

		stats := out["statistics"].(map[string]interface{})
		assert.Equal(t, float64(2), stats["generations_count"])
		assert.Greater(t, stats["source_files_count"].(float64), float64(0))
		assert.Greater(t, stats["documents_count"].(float64), float64(0))

		generations := out["generations"].([]interface{})
		require.Len(t, generations, 2)
		all := generations[0].(map[string]interface{})
		assert.Equal(t, "*", all["selection"])
		assert.Equal(t, float64(2), all["components"])
		assert.Equal(t, true, all["current"])
		assert.Equal(t, "MyActor", generations[1].(map[string]interface{})["selection"])
	})

	t.Run("missing path", func(t *testing.T) {
		server := newTestServer(t, "")
		_, err := server.handleGetStatus(ctx, callRequest("get_status", map[string]interface{}{}))
		requireMCPError(t, err, ErrorCodeInvalidParams)
	})
}

func TestValidatePath(t *testing.T) {
	root := writePackage(t)

	assert.NoError(t, validatePath(root))
	assert.ErrorIs(t, validatePath(""), ErrPathRequired)
	assert.ErrorIs(t, validatePath("relative"), ErrPathNotAbsolute)
	assert.ErrorIs(t, validatePath(filepath.Join(root, "missing")), ErrPathNotFound)
	assert.ErrorIs(t, validatePath(filepath.Join(root, "index.d.ts")), ErrNotDirectory)
	assert.ErrorIs(t, validatePath(t.TempDir()), ErrNoDeclarations)
}
