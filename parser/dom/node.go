// Package dom is the node tree that the parser builds. It is a deliberately
// small slice of https://dom.whatwg.org/#node: elements, text, comments,
// doctypes and the document itself, with child-append, navigation and a
// html5lib-style dump used as the test oracle.
package dom

import (
	"sort"
	"strings"
)

type NodeType uint16

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	DocumentTypeNode
)

type NodeList []*Node

// Node is a single member of the document tree. Only the fields relevant to
// the node's type are populated: NodeName for elements and doctypes, Data for
// text and comments, Attributes for elements.
type Node struct {
	NodeType                                                        NodeType
	NodeName                                                        string
	Data                                                            string
	Attributes                                                      *AttributeMap
	ParentNode, FirstChild, LastChild, PreviousSibling, NextSibling *Node
	ChildNodes                                                      NodeList
}

func NewDocument() *Node {
	return &Node{NodeType: DocumentNode}
}

func NewElement(name string) *Node {
	return &Node{
		NodeType:   ElementNode,
		NodeName:   name,
		Attributes: NewAttributeMap(),
	}
}

func NewText(data string) *Node {
	return &Node{NodeType: TextNode, Data: data}
}

func NewComment(data string) *Node {
	return &Node{NodeType: CommentNode, Data: data}
}

func NewDocumentType(name string) *Node {
	return &Node{NodeType: DocumentTypeNode, NodeName: name}
}

// AppendChild adds on as the last child of n and fixes up the sibling links.
func (n *Node) AppendChild(on *Node) *Node {
	if n.LastChild != nil {
		on.PreviousSibling = n.LastChild
		n.LastChild.NextSibling = on
	}
	on.ParentNode = n
	n.LastChild = on
	if n.FirstChild == nil {
		n.FirstChild = on
	}
	n.ChildNodes = append(n.ChildNodes, on)
	return on
}

func (n *Node) HasChildNodes() bool {
	return len(n.ChildNodes) > 0
}

// FirstElementChild returns the first direct child that is an element, or nil.
func (n *Node) FirstElementChild() *Node {
	for _, child := range n.ChildNodes {
		if child.NodeType == ElementNode {
			return child
		}
	}
	return nil
}

// Query returns the first element in tree order whose tag name matches, or
// nil. The match is case-insensitive since tag names are stored lower-cased.
func (n *Node) Query(tag string) *Node {
	tag = strings.ToLower(tag)
	if n.NodeType == ElementNode && n.NodeName == tag {
		return n
	}
	for _, child := range n.ChildNodes {
		if found := child.Query(tag); found != nil {
			return found
		}
	}
	return nil
}

// TextContent concatenates the data of every text node under n.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	if n.NodeType == TextNode {
		b.WriteString(n.Data)
		return
	}
	for _, child := range n.ChildNodes {
		child.collectText(b)
	}
}

// CloneNode copies n. The copy has no parent or siblings so it can be handed
// to a caller without tying it to the source tree. With deep set, the whole
// subtree is copied.
func (n *Node) CloneNode(deep bool) *Node {
	copied := &Node{
		NodeType: n.NodeType,
		NodeName: n.NodeName,
		Data:     n.Data,
	}
	if n.Attributes != nil {
		copied.Attributes = n.Attributes.clone()
	}
	if deep {
		for _, child := range n.ChildNodes {
			copied.AppendChild(child.CloneNode(true))
		}
	}
	return copied
}

func serializeNodeType(node *Node, ident int) string {
	switch node.NodeType {
	case ElementNode:
		e := "<" + node.NodeName + ">"
		if node.Attributes != nil && node.Attributes.Len() != 0 {
			keys := node.Attributes.Names()
			sort.Strings(keys)
			spaces := "| "
			for i := 1; i < ident; i++ {
				spaces += "  "
			}
			for _, name := range keys {
				value, _ := node.Attributes.Get(name)
				e += "\n" + spaces + name + "=\"" + value + "\""
			}
		}
		return e
	case TextNode:
		return "\"" + node.Data + "\""
	case CommentNode:
		return "<!-- " + node.Data + " -->"
	case DocumentTypeNode:
		return "<!DOCTYPE " + node.NodeName + ">"
	case DocumentNode:
		return "#document"
	default:
		return ""
	}
}

func (n *Node) serialize(ident int) string {
	ser := serializeNodeType(n, ident+1) + "\n"
	if n.NodeType != DocumentNode {
		spaces := "| "
		for i := 1; i < ident; i++ {
			spaces += "  "
		}
		ser = spaces + ser
	}
	for _, child := range n.ChildNodes {
		ser += child.serialize(ident + 1)
	}
	return ser
}

// String renders the subtree in the html5lib tree-dump format.
func (n *Node) String() string {
	return strings.TrimRight(n.serialize(0), "\n")
}
