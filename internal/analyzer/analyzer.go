package analyzer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mcncl/jsonlit/internal/config"
	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/models"
)

// numericTypes zero-initialize as a converted literal, e.g. int32(0).
var numericTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"uintptr": true, "byte": true, "rune": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// Analyzer works out which declared paths need initializers and what the
// zero value of a field type looks like.
type Analyzer struct {
	config *config.Config
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer() *Analyzer {
	return &Analyzer{config: config.NewConfig()}
}

// NewAnalyzerWithConfig creates a new Analyzer instance with custom configuration.
func NewAnalyzerWithConfig(cfg *config.Config) *Analyzer {
	return &Analyzer{config: cfg}
}

// BuildClassDict walks a declaration depth-first and records every object
// under its path. Arrays contribute their first item under `<path>_item`.
func (a *Analyzer) BuildClassDict(doc *models.Document) (*models.ClassDict, error) {
	if !doc.IsDeclaration() {
		return nil, errors.NewGenerateError(fmt.Sprintf("root is %s", doc.Root.Kind), errors.ErrNotDeclaration)
	}
	dict := models.NewClassDict()
	if err := a.walk(doc, dict, doc.Object(doc.Root).Name, doc.Root); err != nil {
		return nil, err
	}
	return dict, nil
}

func (a *Analyzer) walk(doc *models.Document, dict *models.ClassDict, path string, v models.Value) error {
	switch v.Kind {
	case models.Declare, models.Object:
		if err := dict.Set(path, v); err != nil {
			return errors.NewGenerateError(fmt.Sprintf("two objects map to type %s", path), err)
		}
		for _, pair := range doc.Object(v).Pairs {
			if err := a.walk(doc, dict, path+"_"+pair.Key, pair.Value); err != nil {
				return err
			}
		}
	case models.Array:
		items := doc.Array(v).Items
		if len(items) == 0 {
			return errors.NewGenerateError(path, errors.ErrEmptyArrayDeclaration)
		}
		return a.walk(doc, dict, path+"_item", items[0])
	}
	return nil
}

// ResolveType normalizes the type written in a declaration field.
func (a *Analyzer) ResolveType(expr string) string {
	return a.config.ResolveType(expr)
}

// ZeroValue returns a Go expression holding the default value of typ:
// numbers are zero, bool false, strings empty, optional and interface types
// nil, containers empty. Types from other packages get their Go zero value.
// Any other type must provide a New<Type>() constructor.
func (a *Analyzer) ZeroValue(typ string) string {
	if init, ok := a.config.Initializer(typ); ok {
		return init
	}

	switch {
	case numericTypes[typ]:
		return typ + "(0)"
	case typ == "bool":
		return "false"
	case typ == "string":
		return `""`
	case isNilable(typ):
		return "nil"
	case strings.HasPrefix(typ, "[") || strings.HasPrefix(typ, "map[") || isStructLiteral(typ):
		return typ + "{}"
	}

	name, args := splitGeneric(typ)
	if strings.Contains(name, ".") {
		return "*new(" + typ + ")"
	}
	return ConstructorName(name) + args + "()"
}

// ConstructorName is the initializer function generated for a declared
// type path, e.g. `student_meta` -> `NewStudent_meta`.
func ConstructorName(path string) string {
	return "New" + upperFirst(path)
}

func isNilable(typ string) bool {
	switch {
	case strings.HasPrefix(typ, "*"),
		typ == "any",
		typ == "error",
		strings.HasPrefix(typ, "interface{"),
		strings.HasPrefix(typ, "interface {"),
		strings.HasPrefix(typ, "chan "),
		strings.HasPrefix(typ, "chan<-"),
		strings.HasPrefix(typ, "<-chan"),
		strings.HasPrefix(typ, "func("):
		return true
	}
	return false
}

func isStructLiteral(typ string) bool {
	return strings.HasPrefix(typ, "struct{") || strings.HasPrefix(typ, "struct {")
}

// splitGeneric separates `List[int]` into `List` and `[int]`.
func splitGeneric(typ string) (name, args string) {
	if i := strings.IndexByte(typ, '['); i > 0 {
		return typ[:i], typ[i:]
	}
	return typ, ""
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
