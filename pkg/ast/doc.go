// Package ast holds the immutable syntax tree of a TypeScript declaration file.
//
// Trees are produced by internal/parser, which lowers a tree-sitter parse into
// plain Go values once per file. Node types and field names are the tree-sitter
// TypeScript grammar's (class_declaration, interface_declaration, object_type,
// property_signature, ...). Because nothing refers back to the tree-sitter tree,
// nodes can be read from any number of goroutines.
package ast
