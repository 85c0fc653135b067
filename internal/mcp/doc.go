// Package mcp implements the Model Context Protocol (MCP) server for componentsgen.
//
// The MCP server exposes four tools to AI coding assistants:
//   - list_exports: List the classes a package exports
//   - resolve_constructor: Resolve one class's constructor into a parameter schema
//   - generate_components: Generate Components.js JSON-LD for a package
//   - get_status: Report the cached generations of a package
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// # Basic Usage
//
// The MCP server is started via the serve command:
//
//	componentsgen serve
//
// # Tool: resolve_constructor
//
//	Request:
//	{
//	  "name": "resolve_constructor",
//	  "arguments": {
//	    "path": "/path/to/package",
//	    "class_name": "MyActor"
//	  }
//	}
//
//	Response:
//	{
//	  "class": "MyActor",
//	  "parameters": [
//	    {
//	      "name": "bus",
//	      "required": true,
//	      "unique": true,
//	      "range": {"type": "class", "value": {"kind": "class", "localName": "Bus", "fileName": "/path/to/package/lib/Bus"}}
//	    }
//	  ]
//	}
//
// # Tool: generate_components
//
// Returns the generated documents; with "write": true they are also written
// into the package. Results are served from the generation cache when the
// server runs with a cache database and no source file changed.
//
//	Request:
//	{
//	  "name": "generate_components",
//	  "arguments": {
//	    "path": "/path/to/package",
//	    "class_names": ["MyActor"]
//	  }
//	}
//
// # Error Handling
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error
//   - -32001: Path is not a package with an index.d.ts
//   - -32002: Class not exported by the package
//   - -32003: Generation in progress
//   - -32004: Declarations cannot be analyzed (syntax, unsupported types, broken hierarchies)
//   - -32005: Invalid package.json or JSON-LD context
//
// # Logging
//
// The server logs to stderr, stdout is reserved for the protocol:
//
//	COMPONENTSGEN_LOG_LEVEL=debug componentsgen serve
package mcp
