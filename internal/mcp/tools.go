package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/componentsgen/internal/generate"
	"github.com/dshills/componentsgen/internal/metadata"
	"github.com/dshills/componentsgen/internal/storage"
	"github.com/dshills/componentsgen/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams          = -32602 // Invalid method parameters
	ErrorCodeInternalError          = -32603 // Internal JSON-RPC error
	ErrorCodePackageNotFound        = -32001 // Path is not a package with declarations
	ErrorCodeClassNotFound          = -32002 // Requested class is not exported
	ErrorCodeGenerationInProgress   = -32003 // Another generation is already running
	ErrorCodeInvalidDeclarations    = -32004 // Declarations cannot be analyzed
	ErrorCodeInvalidPackageMetadata = -32005 // package.json or a context is invalid
)

// handleListExports handles the list_exports tool invocation
func (s *Server) handleListExports(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	analyzer, err := s.newAnalyzer()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to create analyzer", map[string]interface{}{
			"error": err.Error(),
		})
	}

	exports, err := analyzer.GetPackageExports(ctx, path)
	if err != nil {
		return nil, toMCPError("failed to list exports", err)
	}

	names := make([]string, 0, len(exports))
	for name := range exports {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		ref := exports[name]
		entries = append(entries, map[string]interface{}{
			"name":       name,
			"local_name": ref.LocalName,
			"file":       ref.FileName,
		})
	}

	response := map[string]interface{}{
		"path":    path,
		"count":   len(entries),
		"exports": entries,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleResolveConstructor handles the resolve_constructor tool invocation
func (s *Server) handleResolveConstructor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	className, ok := args["class_name"].(string)
	if !ok || className == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "class_name parameter is required", map[string]interface{}{
			"param":  "class_name",
			"reason": "missing or empty",
		})
	}

	analyzer, err := s.newAnalyzer()
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to create analyzer", map[string]interface{}{
			"error": err.Error(),
		})
	}

	schema, err := analyzer.ResolveConstructorSchema(ctx, path, className)
	if err != nil {
		return nil, toMCPError("failed to resolve constructor", err)
	}

	response := map[string]interface{}{
		"class":      className,
		"parameters": schema.Parameters,
	}
	if schema.Owner != nil {
		response["declared_in"] = map[string]interface{}{
			"class": schema.Owner.LocalName,
			"file":  schema.Owner.FileName,
		}
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGenerateComponents handles the generate_components tool invocation
func (s *Server) handleGenerateComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	classNames, err := getStringSlice(args, "class_names")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "class_names must be an array of strings", map[string]interface{}{
			"param":  "class_names",
			"reason": err.Error(),
		})
	}
	write := getBoolDefault(args, "write", false)

	out, err := s.generator.Generate(ctx, generate.Request{
		PackageRoot: path,
		ClassNames:  classNames,
		Print:       !write,
	})
	if err != nil {
		return nil, toMCPError("generation failed", err)
	}

	documents := make([]map[string]interface{}, 0, len(out.Documents))
	for _, doc := range out.Documents {
		documents = append(documents, map[string]interface{}{
			"path":    doc.Path,
			"content": json.RawMessage(doc.Content),
		})
	}

	response := map[string]interface{}{
		"cached":      out.Cached,
		"components":  out.Stats.Components,
		"documents":   documents,
		"written":     out.Written,
		"duration_ms": out.Stats.Duration.Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	if s.storage == nil {
		response := map[string]interface{}{
			"cache_enabled": false,
			"cached":        false,
			"path":          path,
			"message":       "Generation cache is disabled. Set the cache option to enable it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}

	pkg, err := s.storage.GetPackage(ctx, path)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"cache_enabled": true,
			"cached":        false,
			"path":          path,
			"message":       "Package not generated yet. Use generate_components tool to generate it.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get package status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, pkg.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	generations, err := s.storage.ListGenerations(ctx, pkg.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list generations", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, 0, len(generations))
	for _, gen := range generations {
		selection := gen.Selection
		if selection == "" {
			selection = "*"
		}
		entries = append(entries, map[string]interface{}{
			"selection":         selection,
			"generator_version": gen.GeneratorVersion,
			"current":           gen.GeneratorVersion == generate.Version,
			"components":        gen.ComponentCount,
			"generated_at":      gen.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	response := map[string]interface{}{
		"cache_enabled": true,
		"cached":        true,
		"package": map[string]interface{}{
			"path":              pkg.RootPath,
			"name":              pkg.Name,
			"version":           pkg.Version,
			"last_generated_at": pkg.LastGeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"generations_count":  status.GenerationsCount,
			"source_files_count": status.SourceFilesCount,
			"documents_count":    status.DocumentsCount,
			"cache_size_mb":      fmt.Sprintf("%.2f", status.CacheSizeMB),
		},
		"generations": entries,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// toMCPError maps analysis and generation failures onto MCP error codes
func toMCPError(message string, err error) error {
	code := ErrorCodeInternalError
	switch {
	case errors.Is(err, types.ErrClassNotFound):
		code = ErrorCodeClassNotFound
	case errors.Is(err, types.ErrFileNotFound):
		code = ErrorCodePackageNotFound
	case errors.Is(err, generate.ErrGenerationInProgress):
		code = ErrorCodeGenerationInProgress
	case errors.Is(err, metadata.ErrInvalidPackage), errors.Is(err, metadata.ErrInvalidContext):
		code = ErrorCodeInvalidPackageMetadata
	case errors.Is(err, types.ErrSyntax),
		errors.Is(err, types.ErrEntityNotFound),
		errors.Is(err, types.ErrInvalidHierarchy),
		errors.Is(err, types.ErrCyclicHierarchy),
		errors.Is(err, types.ErrUnsupportedType),
		errors.Is(err, types.ErrMissingType),
		errors.Is(err, types.ErrInvalidRange),
		errors.Is(err, types.ErrRecursionLimit),
		errors.Is(err, types.ErrMalformedExport):
		code = ErrorCodeInvalidDeclarations
	}
	return newMCPError(code, message, map[string]interface{}{
		"error": err.Error(),
	})
}

// requirePath extracts and validates the path parameter
func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNoDeclarations) {
			code = ErrorCodePackageNotFound
		}
		return "", newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return filepath.ToSlash(filepath.Clean(path)), nil
}

// validatePath checks that path is a readable package directory with an index.d.ts
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	if _, err := os.Stat(filepath.Join(path, "index.d.ts")); err != nil {
		return ErrNoDeclarations
	}
	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts an optional array of strings
func getStringSlice(args map[string]interface{}, key string) ([]string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch values := raw.(type) {
	case []string:
		return values, nil
	case []interface{}:
		out := make([]string, 0, len(values))
		for i, v := range values {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is not a string", i)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("expected array, got %T", raw)
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoDeclarations  = errors.New("directory does not contain index.d.ts")
)
