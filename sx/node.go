package sx

import (
	"fmt"
	"io"
	"strings"
)

type TreeNode struct {
	Parent, FirstChild, LastChild, PrevSibling, NextSibling *Node
}

// Node is a node of the generic bracket tree.
//
// A well formed node either has children or a leaf Token, except the synthetic
// root, which has an empty opener and any number of children.
type Node struct {
	TreeNode
	Open  string
	Close string
	Token *Token
	Pos   Pos
}

func newBracketNode(open string, pos Pos) *Node {
	return &Node{Open: open, Close: closerFor[open], Pos: pos}
}

func newLeafNode(tok Token) *Node {
	return &Node{Token: &tok, Pos: tok.Pos}
}

// AppendChild adds a node child as a child of parent.
//
// It will panic if child already has a parent or siblings.
func (parent *Node) AppendChild(child *Node) {
	if child.Parent != nil || child.PrevSibling != nil || child.NextSibling != nil {
		panic("AppendChild called for an already attached child Node")
	}
	last := parent.LastChild
	if last != nil {
		last.NextSibling = child
	} else {
		parent.FirstChild = child
	}
	parent.LastChild = child

	child.Parent = parent
	child.PrevSibling = last
}

// Children returns the children of the node in order
func (n *Node) Children() []*Node {
	var children []*Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children
}

// IsLeaf returns true if the node carries a token
func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

// IsSpace returns true for whitespace leaves
func (n *Node) IsSpace() bool {
	return n.Token.IsSpace()
}

// Text returns the text of the leaf token, or the empty string
func (n *Node) Text() string {
	if n.Token == nil {
		return ""
	}
	return n.Token.Text
}

// Dump writes an indented representation of the tree to w
func (n *Node) Dump(w io.Writer) {
	n.dump(w, 0)
}

func (n *Node) dump(w io.Writer, level int) {
	indentStr := strings.Repeat("  ", level)
	if n.Open != "" {
		fmt.Fprintf(w, "%s%s\n", indentStr, n.Open)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		c.dump(w, level+1)
	}
	if n.Close != "" {
		fmt.Fprintf(w, "%s%s\n", indentStr, n.Close)
	}
	if n.Token != nil {
		fmt.Fprintf(w, "%s%s\n", indentStr, n.Token)
	}
}
