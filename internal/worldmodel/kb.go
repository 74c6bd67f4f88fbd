// Package worldmodel holds the typed knowledge-base tree of world objects:
// nodes carry a kind tag, a name attribute, and arbitrary typed attributes
// including nested child collections. Once loaded the tree is immutable.
package worldmodel

import "fmt"

// Value is one attribute value: a scalar (string/float64/bool), or a
// collection of child Nodes keyed by the attribute name that introduced
// them.
type Value struct {
	Scalar   any
	Children []*Node
}

// IsCollection reports whether this value holds a child collection rather
// than a scalar.
func (v Value) IsCollection() bool {
	return v.Children != nil
}

// Node is one element of the knowledge-base tree: a kind (the source
// element name, e.g. "room", "robot"), an identity name, and an attribute
// map that may itself hold nested collections of further Nodes.
type Node struct {
	Kind       string
	Name       string
	Attributes map[string]Value
}

// NewNode constructs a leaf node with no attributes yet set.
func NewNode(kind, name string) *Node {
	return &Node{Kind: kind, Name: name, Attributes: map[string]Value{}}
}

// SetScalar records a scalar-valued attribute.
func (n *Node) SetScalar(attr string, v any) {
	n.Attributes[attr] = Value{Scalar: v}
}

// AddChild appends c to the named child collection, creating it if absent.
func (n *Node) AddChild(attr string, c *Node) {
	existing := n.Attributes[attr]
	existing.Children = append(existing.Children, c)
	n.Attributes[attr] = existing
}

// Attr looks up an attribute by name.
func (n *Node) Attr(name string) (Value, bool) {
	v, ok := n.Attributes[name]
	return v, ok
}

// Children returns the child collection for the named attribute, or nil if
// absent or scalar-valued.
func (n *Node) Children(attr string) []*Node {
	return n.Attributes[attr].Children
}

// KnowledgeBase is the immutable root of the world object tree.
type KnowledgeBase struct {
	Root *Node
}

// New wraps root as a KnowledgeBase.
func New(root *Node) *KnowledgeBase {
	return &KnowledgeBase{Root: root}
}

// FindByAttrPath descends from start through a sequence of attribute
// names, returning the child collection reached at the final step. Used by
// the task-instance manager to resolve a Query goal's path expression by
// descending attribute-by-attribute from a previously bound variable.
func (kb *KnowledgeBase) FindByAttrPath(start *Node, path []string) ([]*Node, error) {
	cur := []*Node{start}
	for _, attr := range path {
		var next []*Node
		for _, n := range cur {
			next = append(next, n.Children(attr)...)
		}
		if next == nil {
			return nil, fmt.Errorf("worldmodel: attribute path %v: %q yields no children at %q", path, attr, nodeLabel(cur))
		}
		cur = next
	}
	return cur, nil
}

func nodeLabel(nodes []*Node) string {
	if len(nodes) == 0 {
		return "<empty>"
	}
	return nodes[0].Kind
}
