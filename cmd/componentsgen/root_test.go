package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cliPackage = map[string]string{
	"package.json": `{
  "name": "my-package",
  "version": "2.0.1",
  "lsd:module": "https://linkedsoftwaredependencies.org/bundles/npm/my-package",
  "lsd:components": "components/components.jsonld",
  "lsd:contexts": {
    "https://linkedsoftwaredependencies.org/bundles/npm/my-package/^2.0.0/components/context.jsonld": "components/context.jsonld"
  }
}`,
	"components/context.jsonld": `{"@context": {}}`,
	"index.d.ts":                `export { Greeter as MyGreeter } from "./lib/Greeter";`,
	"lib/Greeter.d.ts": `/**
 * Says hello.
 */
export declare class Greeter {
    constructor(greeting: string, times?: number);
}`,
}

func writePackage(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range cliPackage {
		target := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(target), 0o755))
		require.NoError(t, os.WriteFile(target, []byte(content), 0o644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExportsCommand(t *testing.T) {
	root := writePackage(t)

	out, err := run(t, "exports", "-p", root, "-l", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "MyGreeter")
	assert.Contains(t, out, "Greeter")
	assert.Contains(t, out, "lib/Greeter")
}

func TestGenerateCommand_Print(t *testing.T) {
	root := writePackage(t)

	out, err := run(t, "generate", "-p", root, "--print", "-l", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"@id": "mp:lib/Greeter#MyGreeter"`)
	assert.Contains(t, out, `"comment": "Says hello."`)
	assert.Contains(t, out, `"requireName": "my-package"`)

	_, err = os.Stat(filepath.Join(root, "components", "lib", "Greeter.jsonld"))
	assert.True(t, os.IsNotExist(err), "print must not write files")
}

func TestGenerateCommand_Writes(t *testing.T) {
	root := writePackage(t)
	output := t.TempDir()
	cache := filepath.Join(t.TempDir(), "cache", "components.db")

	_, err := run(t, "generate", "-p", root, "-o", output, "--cache", cache, "-l", "error")
	require.NoError(t, err)

	for _, name := range []string{"components.jsonld", "context.jsonld", "lib/Greeter.jsonld"} {
		_, err := os.Stat(filepath.Join(output, "components", filepath.FromSlash(name)))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(cache)
	assert.NoError(t, err)
}

func TestGenerateCommand_UnknownClass(t *testing.T) {
	root := writePackage(t)

	_, err := run(t, "generate", "-p", root, "-c", "Missing", "--print", "-l", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, "exports", "--workers", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers")
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "componentsgen")
	assert.Contains(t, out, "SQLite Driver:")
}
