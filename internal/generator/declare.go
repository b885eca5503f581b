package generator

import (
	"bytes"
	"fmt"
	goparser "go/parser"
	"strings"

	"github.com/mcncl/jsonlit/internal/analyzer"
	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/models"
)

// GenerateDeclaration emits a concrete struct for every object in a
// declaration, named by its path, followed by one New<path>() constructor
// per path.
func (g *Generator) GenerateDeclaration(doc *models.Document) (Unit, error) {
	if !doc.IsDeclaration() {
		return Unit{}, errors.NewGenerateError(fmt.Sprintf("root is %s", doc.Root.Kind), errors.ErrNotDeclaration)
	}

	unit := Unit{Imports: make(map[string]struct{})}
	var buf bytes.Buffer

	// Pass 1: struct declarations, children before parents.
	if _, err := g.declare(&buf, doc, "", doc.Root); err != nil {
		return Unit{}, err
	}

	// Pass 2: initializers for every path the declaration defines.
	dict, err := g.analyzer.BuildClassDict(doc)
	if err != nil {
		return Unit{}, err
	}
	for _, path := range dict.Keys() {
		v, _ := dict.Get(path)
		init, err := g.initializer(doc, path, v)
		if err != nil {
			return Unit{}, err
		}
		ctor := analyzer.ConstructorName(path)
		buf.WriteString(fmt.Sprintf("\n// %s returns the default %s: every field holds its default value.\n", ctor, path))
		buf.WriteString(fmt.Sprintf("func %s() %s {\n\treturn %s\n}\n", ctor, path, init))
	}

	if g.config.Output.Methods {
		for _, path := range dict.Keys() {
			v, _ := dict.Get(path)
			if err := g.checkMethodNames(doc.Object(v), path); err != nil {
				return Unit{}, err
			}
			g.writeMethods(&buf, path)
		}
		unit.Imports[g.config.Output.RuntimeImport] = struct{}{}
	}

	g.log.Printf("declaration %s: %d types", doc.Object(doc.Root).Name, dict.Len())
	unit.Code = buf.String()
	return unit, nil
}

// declare writes struct definitions for v and returns the Go type of v.
func (g *Generator) declare(buf *bytes.Buffer, doc *models.Document, path string, v models.Value) (string, error) {
	switch v.Kind {
	case models.Declare, models.Object:
		obj := doc.Object(v)
		if path == "" {
			path = obj.Name
		}

		types := make([]string, len(obj.Pairs))
		for i, pair := range obj.Pairs {
			t, err := g.declare(buf, doc, path+"_"+pair.Key, pair.Value)
			if err != nil {
				return "", err
			}
			types[i] = t
		}

		fields, err := g.fieldsOf(obj, types)
		if err != nil {
			return "", err
		}
		if buf.Len() > 0 {
			buf.WriteString("\n")
		}
		writeStruct(buf, path, "", fields)
		return path, nil

	case models.Array:
		items := doc.Array(v).Items
		if len(items) == 0 {
			return "", errors.NewGenerateError(path, errors.ErrEmptyArrayDeclaration)
		}
		item, err := g.declare(buf, doc, path+"_item", items[0])
		if err != nil {
			return "", err
		}
		return "[]" + item, nil

	case models.Expression:
		return g.fieldType(doc.Expression(v))

	default:
		return "", errors.NewGenerateError(fmt.Sprintf("%s: no type for a %s value", path, v.Kind), nil)
	}
}

// fieldType reads an expression as a Go type.
func (g *Generator) fieldType(expr *models.ExpressionNode) (string, error) {
	t := g.analyzer.ResolveType(expr.Text)
	if strings.Contains(t, "\n") {
		t = strings.Join(strings.Fields(t), " ")
	}
	if _, err := goparser.ParseExpr(t); err != nil {
		return "", errors.NewSyntaxError(expr.Pos, fmt.Sprintf("'%s' is not a Go type", expr.Text), err)
	}
	return t, nil
}

// typeOf returns the Go type of v at path without writing anything.
func (g *Generator) typeOf(doc *models.Document, path string, v models.Value) (string, error) {
	switch v.Kind {
	case models.Declare, models.Object:
		return path, nil
	case models.Array:
		items := doc.Array(v).Items
		if len(items) == 0 {
			return "", errors.NewGenerateError(path, errors.ErrEmptyArrayDeclaration)
		}
		item, err := g.typeOf(doc, path+"_item", items[0])
		if err != nil {
			return "", err
		}
		return "[]" + item, nil
	case models.Expression:
		return g.fieldType(doc.Expression(v))
	}
	return "", errors.NewGenerateError(fmt.Sprintf("%s: no type for a %s value", path, v.Kind), nil)
}

// initializer renders the default value of v at path. Objects become
// keyed literals, arrays empty slices, expressions the zero value of the
// named type.
func (g *Generator) initializer(doc *models.Document, path string, v models.Value) (string, error) {
	switch v.Kind {
	case models.Declare, models.Object:
		obj := doc.Object(v)
		parts := make([]string, len(obj.Pairs))
		for i, pair := range obj.Pairs {
			init, err := g.initializer(doc, path+"_"+pair.Key, pair.Value)
			if err != nil {
				return "", err
			}
			parts[i] = fmt.Sprintf("%s: %s", g.config.GetFieldName(pair.Key), init)
		}
		return fmt.Sprintf("%s{%s}", path, strings.Join(parts, ", ")), nil

	case models.Array:
		t, err := g.typeOf(doc, path, v)
		if err != nil {
			return "", err
		}
		return t + "{}", nil

	case models.Expression:
		t, err := g.fieldType(doc.Expression(v))
		if err != nil {
			return "", err
		}
		return g.analyzer.ZeroValue(t), nil
	}
	return "", errors.NewGenerateError(fmt.Sprintf("%s: no initializer for a %s value", path, v.Kind), nil)
}

var methodNames = map[string]bool{"Stringify": true, "Parse": true, "Read": true, "Write": true}

// checkMethodNames rejects fields that would clash with generated methods.
func (g *Generator) checkMethodNames(obj *models.ObjectNode, path string) error {
	for _, pair := range obj.Pairs {
		if name := g.config.GetFieldName(pair.Key); methodNames[name] {
			return errors.NewSyntaxError(pair.Pos,
				fmt.Sprintf("field '%s' of %s clashes with the generated %s method", pair.Key, path, name), nil)
		}
	}
	return nil
}

// writeMethods adds the runtime serialization methods to a declared type.
func (g *Generator) writeMethods(buf *bytes.Buffer, typeName string) {
	rt := g.runtimePackage()
	buf.WriteString(fmt.Sprintf(`
// Stringify renders v as JSON. An indent of 0 gives the concise form.
func (v *%[1]s) Stringify(indent int) (string, error) {
	return %[2]s.Stringify(v, indent)
}

// Parse replaces v with the value decoded from text.
func (v *%[1]s) Parse(text string) error {
	return %[2]s.Parse(text, v)
}

// Read replaces v with the value stored in the JSON file at path.
func (v *%[1]s) Read(path string) error {
	return %[2]s.Read(path, v)
}

// Write stores v as pretty JSON in the file at path.
func (v *%[1]s) Write(path string) error {
	return %[2]s.Write(path, v)
}
`, typeName, rt))
}
