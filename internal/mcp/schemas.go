package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// listExportsTool returns the tool definition for list_exports
func listExportsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_exports",
		Description: "List the classes a TypeScript package exports from its index.d.ts",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the package root (must contain index.d.ts)",
				},
			},
			Required: []string{"path"},
		},
	}
}

// resolveConstructorTool returns the tool definition for resolve_constructor
func resolveConstructorTool() mcp.Tool {
	return mcp.Tool{
		Name:        "resolve_constructor",
		Description: "Resolve the constructor parameters of an exported class into a fully expanded schema",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the package root",
				},
				"class_name": map[string]interface{}{
					"type":        "string",
					"description": "Export name of the class",
				},
			},
			Required: []string{"path", "class_name"},
		},
	}
}

// generateComponentsTool returns the tool definition for generate_components
func generateComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "generate_components",
		Description: "Generate Components.js JSON-LD component files for a package",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the package root (must contain package.json and index.d.ts)",
				},
				"class_names": map[string]interface{}{
					"type":        "array",
					"description": "Export names of the classes to generate, all exported classes when omitted",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
				"write": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, write the documents into the package instead of only returning them",
					"default":     false,
				},
			},
			Required: []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query the generation cache for a package: cached class selections and their files",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the package root",
				},
			},
			Required: []string{"path"},
		},
	}
}
