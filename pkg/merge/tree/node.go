// Package tree models the hierarchical data a template is merged with.
//
// A Node is a scalar, an ordered sequence, or a mapping with unique keys kept
// in source order. Parsers are provided for JSON, YAML and TOML documents and
// for plain Go values (maps, slices, numbers, strings, booleans).
package tree

import (
	"strconv"
	"strings"
)

// Kind is the shape of a Node
type Kind int

const (
	Null Kind = iota
	Scalar
	Sequence
	Mapping
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// ScalarType records what a scalar was written as
type ScalarType int

const (
	String ScalarType = iota
	Number
	Bool
)

// Node is one value of a data tree
type Node struct {
	Kind Kind
	// Type and Value are set for scalars. Value holds the canonical text:
	// numbers in shortest form, booleans as "true" or "false".
	Type  ScalarType
	Value string
	// Items holds sequence elements
	Items []*Node
	// Fields holds mapping entries in source order
	Fields []Field
}

// Field is one key of a mapping
type Field struct {
	Key   string
	Value *Node
}

// NewString returns a string scalar
func NewString(s string) *Node {
	return &Node{Kind: Scalar, Type: String, Value: s}
}

// NewNumber returns a number scalar from its textual form. The text is
// canonicalized, so "1.50" and "1.5" bind identically.
func NewNumber(text string) *Node {
	return &Node{Kind: Scalar, Type: Number, Value: canonicalNumber(text)}
}

// NewBool returns a boolean scalar
func NewBool(b bool) *Node {
	return &Node{Kind: Scalar, Type: Bool, Value: strconv.FormatBool(b)}
}

// NewNull returns a null node
func NewNull() *Node {
	return &Node{Kind: Null}
}

// NewSequence returns a sequence of the given items
func NewSequence(items ...*Node) *Node {
	return &Node{Kind: Sequence, Items: items}
}

// NewMapping returns a mapping of the given fields. A repeated key replaces
// the earlier value but keeps its position.
func NewMapping(fields ...Field) *Node {
	n := &Node{Kind: Mapping}
	for _, f := range fields {
		n.Set(f.Key, f.Value)
	}
	return n
}

// F is shorthand for a Field literal
func F(key string, value *Node) Field {
	return Field{Key: key, Value: value}
}

// Set assigns key in a mapping node
func (n *Node) Set(key string, value *Node) {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			n.Fields[i].Value = value
			return
		}
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: value})
}

// Get returns the value of key in a mapping node, or nil
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != Mapping {
		return nil
	}
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// Lookup follows a dot-separated path through nested mappings
func (n *Node) Lookup(path string) *Node {
	cur := n
	for _, key := range strings.Split(path, ".") {
		cur = cur.Get(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Len returns the number of items or fields, or the rune count of a string
// scalar. Other nodes have length zero.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case Sequence:
		return len(n.Items)
	case Mapping:
		return len(n.Fields)
	case Scalar:
		if n.Type == String {
			return len([]rune(n.Value))
		}
	}
	return 0
}

func canonicalNumber(text string) string {
	text = strings.TrimSpace(text)
	for _, base := range []int{10, 0} {
		if i, err := strconv.ParseInt(text, base, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if u, err := strconv.ParseUint(text, base, 64); err == nil {
			return strconv.FormatUint(u, 10)
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return formatFloat(f)
	}
	return text
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
