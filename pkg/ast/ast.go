package ast

import "strings"

// Point is a 1-based source position
type Point struct {
	Line   int
	Column int
}

// File is a parsed declaration file
type File struct {
	// Path is the normalized path without the .d.ts suffix
	Path   string
	Source []byte
	Root   *Node
}

// Node is an immutable syntax node. Nodes are safe for concurrent reads.
type Node struct {
	Type    string
	Field   string // field name in the parent, empty when unnamed
	Named   bool
	Missing bool

	Start     Point
	End       Point
	StartByte int
	EndByte   int

	Parent   *Node
	Children []*Node

	index int
	file  *File
}

// NewNode creates a node belonging to file. Used by the parser while lowering trees.
func NewNode(file *File, typ string, named bool) *Node {
	return &Node{Type: typ, Named: named, file: file}
}

// AppendChild attaches child as the last child of n
func (n *Node) AppendChild(child *Node) {
	child.Parent = n
	child.index = len(n.Children)
	n.Children = append(n.Children, child)
}

// File returns the file the node belongs to
func (n *Node) File() *File {
	return n.file
}

// Text returns the source text covered by the node
func (n *Node) Text() string {
	if n == nil || n.file == nil {
		return ""
	}
	return string(n.file.Source[n.StartByte:n.EndByte])
}

// ChildByField returns the first child assigned to the given field
func (n *Node) ChildByField(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// NamedChildren returns the named children, comments included
func (n *Node) NamedChildren() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Named {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildOfType returns the first child whose type is one of types
func (n *Node) FirstChildOfType(types ...string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		for _, t := range types {
			if c.Type == t {
				return c
			}
		}
	}
	return nil
}

// HasChildOfType reports whether any direct child has the given type
func (n *Node) HasChildOfType(typ string) bool {
	return n.FirstChildOfType(typ) != nil
}

// PrevSibling returns the sibling immediately before n
func (n *Node) PrevSibling() *Node {
	if n == nil || n.Parent == nil || n.index == 0 {
		return nil
	}
	return n.Parent.Children[n.index-1]
}

// Walk visits n and its descendants depth-first until fn returns false
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// String renders the node as an s-expression of named nodes, mostly for tests
func (n *Node) String() string {
	var b strings.Builder
	n.writeSExpr(&b)
	return b.String()
}

func (n *Node) writeSExpr(b *strings.Builder) {
	b.WriteString("(")
	if n.Field != "" {
		b.WriteString(n.Field)
		b.WriteString(": ")
	}
	b.WriteString(n.Type)
	for _, c := range n.Children {
		if !c.Named {
			continue
		}
		b.WriteString(" ")
		c.writeSExpr(b)
	}
	b.WriteString(")")
}

// Statements returns the top-level statements of the file
func (f *File) Statements() []*Node {
	if f == nil || f.Root == nil {
		return nil
	}
	return f.Root.NamedChildren()
}
