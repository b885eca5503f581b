package generator

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/models"
)

// nullLiteral replaces null-like expressions in anonymous values. A typed
// nil pointer lets type inference pick a concrete field type.
const nullLiteral = "(*string)(nil)"

var nullSpellings = map[string]bool{"null": true, "nil": true, "None": true}

// GenerateAnonymous emits one generic prototype per object, a generic
// constructor for each prototype, and `var <VarName> = <construction>`.
// Go infers the prototype type arguments from the constructor arguments, so
// the literal is typed without the caller naming anything.
func (g *Generator) GenerateAnonymous(doc *models.Document) (Unit, error) {
	if doc.Root.Kind != models.Object && doc.Root.Kind != models.Array {
		return Unit{}, errors.NewGenerateError(fmt.Sprintf("anonymous generation needs an object or array root, got %s", doc.Root.Kind), nil)
	}

	unit := Unit{Imports: make(map[string]struct{})}
	var buf bytes.Buffer

	for i := range doc.Objects() {
		obj := &doc.Objects()[i]
		if err := g.writePrototype(&buf, obj); err != nil {
			return Unit{}, err
		}
		buf.WriteString("\n")
	}

	a := &anonymous{g: g, doc: doc}
	expr, err := a.construct(doc.Root, doc.Root)
	if err != nil {
		return Unit{}, err
	}
	if a.usesRuntime {
		unit.Imports[g.config.Output.RuntimeImport] = struct{}{}
	}
	buf.WriteString(fmt.Sprintf("var %s = %s\n", g.config.VarName, expr))

	g.log.Printf("anonymous %s: %d prototypes", g.config.VarName, len(doc.Objects()))
	unit.Code = buf.String()
	return unit, nil
}

// prototypeName is the Go type emitted for an anonymous object.
func (g *Generator) prototypeName(obj *models.ObjectNode) string {
	return g.config.TypePrefix + obj.Name
}

// constructorName is the generic constructor for a prototype.
func (g *Generator) constructorName(obj *models.ObjectNode) string {
	name := g.prototypeName(obj)
	return "new" + strings.ToUpper(name[:1]) + name[1:]
}

// typeParams returns the parameter names T1..Tn for an object with n pairs.
func typeParams(n int) []string {
	params := make([]string, n)
	for i := range params {
		params[i] = fmt.Sprintf("T%d", i+1)
	}
	return params
}

// writePrototype writes the generic struct and its constructor:
//
//	type Object0[T1, T2 any] struct { ... }
//	func newObject0[T1, T2 any](v1 T1, v2 T2) Object0[T1, T2] { ... }
func (g *Generator) writePrototype(buf *bytes.Buffer, obj *models.ObjectNode) error {
	params := typeParams(len(obj.Pairs))
	fields, err := g.fieldsOf(obj, params)
	if err != nil {
		return err
	}

	name := g.prototypeName(obj)
	decl, inst := "", name
	if len(params) > 0 {
		decl = "[" + strings.Join(params, ", ") + " any]"
		inst = name + "[" + strings.Join(params, ", ") + "]"
	}
	writeStruct(buf, name, decl, fields)

	args := make([]string, len(fields))
	inits := make([]string, len(fields))
	for i, f := range fields {
		args[i] = fmt.Sprintf("v%d %s", i+1, f.Type)
		inits[i] = fmt.Sprintf("%s: v%d", f.GoName, i+1)
	}
	buf.WriteString(fmt.Sprintf("\nfunc %s%s(%s) %s {\n\treturn %s{%s}\n}\n",
		g.constructorName(obj), decl, strings.Join(args, ", "), inst, inst, strings.Join(inits, ", ")))
	return nil
}

// anonymous renders the construction expression of one document.
type anonymous struct {
	g           *Generator
	doc         *models.Document
	usesRuntime bool
}

// construct renders v. shape is the node whose type v must share: v itself
// outside arrays, the first item's matching node inside an array whose
// first item fixes the element type.
func (a *anonymous) construct(v, shape models.Value) (string, error) {
	switch v.Kind {
	case models.Object:
		return a.constructObject(v, shape)
	case models.Array:
		return a.constructArray(v, shape)
	case models.Expression:
		text := a.doc.Expression(v).Text
		if nullSpellings[text] {
			return nullLiteral, nil
		}
		return text, nil
	case models.Null:
		return nullLiteral, nil
	default:
		return "", errors.NewGenerateError(fmt.Sprintf("unexpected %s inside an anonymous value", v.Kind), nil)
	}
}

// constructObject calls the shape's constructor. Arguments follow the
// shape's field order, matched by key; keys the shape does not know are
// appended, so a mismatched item fails when the output is compiled.
func (a *anonymous) constructObject(v, shape models.Value) (string, error) {
	obj := a.doc.Object(v)
	if shape.Kind != models.Object {
		shape = v
	}
	target := a.doc.Object(shape)

	byKey := make(map[string]models.Pair, len(obj.Pairs))
	for _, p := range obj.Pairs {
		byKey[p.Key] = p
	}

	args := make([]string, 0, len(obj.Pairs))
	used := make(map[string]bool, len(obj.Pairs))
	for _, sp := range target.Pairs {
		p, ok := byKey[sp.Key]
		if !ok {
			continue
		}
		used[p.Key] = true
		arg, err := a.construct(p.Value, sp.Value)
		if err != nil {
			return "", err
		}
		args = append(args, arg)
	}
	for _, p := range obj.Pairs {
		if used[p.Key] {
			continue
		}
		arg, err := a.construct(p.Value, p.Value)
		if err != nil {
			return "", err
		}
		args = append(args, arg)
	}

	return fmt.Sprintf("%s(%s)", a.g.constructorName(target), strings.Join(args, ", ")), nil
}

// constructArray builds a slice through the runtime's Slice helper so the
// element type is inferred from the items.
func (a *anonymous) constructArray(v, shape models.Value) (string, error) {
	items := a.doc.Array(v).Items
	if len(items) == 0 {
		return "[]any{}", nil
	}

	itemShape := items[0]
	if shape.Kind == models.Array && shape != v {
		if shapeItems := a.doc.Array(shape).Items; len(shapeItems) > 0 {
			itemShape = shapeItems[0]
		}
	}

	rendered := make([]string, len(items))
	for i, item := range items {
		s, err := a.construct(item, itemShape)
		if err != nil {
			return "", err
		}
		rendered[i] = s
	}

	a.usesRuntime = true
	return fmt.Sprintf("%s.Slice(%s)", a.g.runtimePackage(), strings.Join(rendered, ", ")), nil
}
