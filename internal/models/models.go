package models

import (
	"fmt"

	"github.com/mcncl/jsonlit/internal/errors"
)

// ValueKind tags the payload a Value points at.
type ValueKind int

const (
	Null ValueKind = iota
	Object
	Array
	Expression
	Declare
)

func (k ValueKind) String() string {
	switch k {
	case Null:
		return "null"
	case Object:
		return "object"
	case Array:
		return "array"
	case Expression:
		return "expression"
	case Declare:
		return "declare"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is a handle into one of the Document arenas. A Declare value
// indexes the object arena.
type Value struct {
	Kind  ValueKind
	Index int
}

// Pair is one `key: value` entry of an object.
type Pair struct {
	Key   string
	Pos   errors.Position
	Value Value
}

// ObjectNode is a named, ordered list of pairs.
type ObjectNode struct {
	Name  string
	Pairs []Pair
}

// ArrayNode is an ordered list of items. Only Items[0] is used for typing.
type ArrayNode struct {
	Items []Value
}

// ExpressionNode is an opaque run of source text.
type ExpressionNode struct {
	Text string
	Pos  errors.Position
}

// Document is the IR of one DSL input. The arenas are append-only while
// parsing and read-only afterwards.
type Document struct {
	Root Value

	objects     []ObjectNode
	arrays      []ArrayNode
	expressions []ExpressionNode
	nextID      int
}

// NewDocument returns an empty Document with a Null root.
func NewDocument() *Document {
	return &Document{}
}

// Object returns the object payload of an Object or Declare value.
func (d *Document) Object(v Value) *ObjectNode {
	return &d.objects[v.Index]
}

// Array returns the array payload of an Array value.
func (d *Document) Array(v Value) *ArrayNode {
	return &d.arrays[v.Index]
}

// Expression returns the expression payload of an Expression value.
func (d *Document) Expression(v Value) *ExpressionNode {
	return &d.expressions[v.Index]
}

// Objects returns every object in the arena, in parse order.
func (d *Document) Objects() []ObjectNode {
	return d.objects
}

// NextObjectName hands out the synthesized name for the next anonymous object.
func (d *Document) NextObjectName() string {
	name := fmt.Sprintf("Object%d", d.nextID)
	d.nextID++
	return name
}

// AppendObject stores o and returns its handle.
func (d *Document) AppendObject(o ObjectNode) Value {
	d.objects = append(d.objects, o)
	return Value{Kind: Object, Index: len(d.objects) - 1}
}

// AppendArray stores a and returns its handle.
func (d *Document) AppendArray(a ArrayNode) Value {
	d.arrays = append(d.arrays, a)
	return Value{Kind: Array, Index: len(d.arrays) - 1}
}

// AppendExpression stores e and returns its handle.
func (d *Document) AppendExpression(e ExpressionNode) Value {
	d.expressions = append(d.expressions, e)
	return Value{Kind: Expression, Index: len(d.expressions) - 1}
}

// IsDeclaration reports whether the root is a named declaration.
func (d *Document) IsDeclaration() bool {
	return d.Root.Kind == Declare
}

// ClassDict maps a type path to the IR node that needs an initializer.
// Keys keep insertion order so generated output is reproducible.
type ClassDict struct {
	keys   []string
	values map[string]Value
}

// NewClassDict creates an empty ClassDict.
func NewClassDict() *ClassDict {
	return &ClassDict{values: make(map[string]Value)}
}

// Set records path. A path may only be set once.
func (c *ClassDict) Set(path string, v Value) error {
	if _, exists := c.values[path]; exists {
		return fmt.Errorf("%w: %s", errors.ErrDuplicatePath, path)
	}
	c.keys = append(c.keys, path)
	c.values[path] = v
	return nil
}

// Get looks up path.
func (c *ClassDict) Get(path string) (Value, bool) {
	v, ok := c.values[path]
	return v, ok
}

// Keys returns the paths in insertion order.
func (c *ClassDict) Keys() []string {
	return c.keys
}

// Len returns the number of paths.
func (c *ClassDict) Len() int {
	return len(c.keys)
}
