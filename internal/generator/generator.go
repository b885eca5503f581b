package generator

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"path"
	"sort"
	"strings"

	"github.com/mcncl/jsonlit/internal/analyzer"
	"github.com/mcncl/jsonlit/internal/config"
	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/models"
)

// GeneratedHeader marks files written by jsonlit.
const GeneratedHeader = "// Code generated by jsonlit. DO NOT EDIT."

// Unit is the generated code for one DSL input: top-level Go declarations
// without a package clause, plus the imports they need.
type Unit struct {
	Code    string
	Imports map[string]struct{}
}

// Generator is responsible for generating Go declarations from a parsed Document
type Generator struct {
	config   *config.Config
	analyzer *analyzer.Analyzer
	log      *log.Logger
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return NewGeneratorWithConfig(config.NewConfig())
}

// NewGeneratorWithConfig creates a new Generator instance with custom configuration
func NewGeneratorWithConfig(cfg *config.Config) *Generator {
	return &Generator{
		config:   cfg,
		analyzer: analyzer.NewAnalyzerWithConfig(cfg),
		log:      log.New(io.Discard, "", 0),
	}
}

// WithLogger routes debug output to l.
func (g *Generator) WithLogger(l *log.Logger) *Generator {
	g.log = l
	return g
}

// Generate picks the generation mode from the document root: declarations
// produce concrete structs with constructors, anything else an anonymous
// value with generic prototypes.
func (g *Generator) Generate(doc *models.Document) (Unit, error) {
	switch doc.Root.Kind {
	case models.Declare:
		return g.GenerateDeclaration(doc)
	case models.Object, models.Array:
		return g.GenerateAnonymous(doc)
	default:
		return Unit{}, errors.NewGenerateError(fmt.Sprintf("nothing to generate for a %s root", doc.Root.Kind), nil)
	}
}

// GenerateFile assembles units into one Go source file for packageName.
func (g *Generator) GenerateFile(packageName string, units ...Unit) string {
	var buf bytes.Buffer

	if header := strings.TrimSpace(g.config.Output.FileHeader); header != "" {
		for _, line := range strings.Split(header, "\n") {
			buf.WriteString(strings.TrimRight("// "+line, " ") + "\n")
		}
		buf.WriteString("\n")
	}
	buf.WriteString(GeneratedHeader + "\n\n")
	buf.WriteString(fmt.Sprintf("package %s\n", packageName))

	all := make(map[string]struct{})
	for _, u := range units {
		for imp := range u.Imports {
			all[imp] = struct{}{}
		}
	}
	writeImports(&buf, all)

	for _, u := range units {
		buf.WriteString("\n")
		buf.WriteString(u.Code)
	}
	return buf.String()
}

// writeImports writes the import block, standard library first
func writeImports(buf *bytes.Buffer, set map[string]struct{}) {
	if len(set) == 0 {
		return
	}

	imports := make([]string, 0, len(set))
	for imp := range set {
		imports = append(imports, imp)
	}
	sort.Strings(imports)

	var stdLibImports, thirdPartyImports []string
	for _, imp := range imports {
		if !strings.Contains(strings.SplitN(imp, "/", 2)[0], ".") {
			stdLibImports = append(stdLibImports, imp)
		} else {
			thirdPartyImports = append(thirdPartyImports, imp)
		}
	}

	buf.WriteString("\nimport (\n")
	for _, imp := range stdLibImports {
		buf.WriteString(fmt.Sprintf("\t%q\n", imp))
	}
	if len(stdLibImports) > 0 && len(thirdPartyImports) > 0 {
		buf.WriteString("\n")
	}
	for _, imp := range thirdPartyImports {
		buf.WriteString(fmt.Sprintf("\t%q\n", imp))
	}
	buf.WriteString(")\n")
}

// runtimePackage is the identifier generated code uses for the runtime import.
func (g *Generator) runtimePackage() string {
	return path.Base(g.config.Output.RuntimeImport)
}

// field is one generated struct field.
type field struct {
	GoName  string
	Type    string
	JSONKey string
}

func (f field) tag() string {
	return fmt.Sprintf("`json:%q`", f.JSONKey)
}

// fieldsOf maps the pairs of obj to Go fields, rejecting names that would
// collide in Go or on the wire.
func (g *Generator) fieldsOf(obj *models.ObjectNode, types []string) ([]field, error) {
	fields := make([]field, len(obj.Pairs))
	goNames := make(map[string]string, len(obj.Pairs))
	jsonKeys := make(map[string]string, len(obj.Pairs))

	for i, pair := range obj.Pairs {
		f := field{
			GoName:  g.config.GetFieldName(pair.Key),
			Type:    types[i],
			JSONKey: g.config.JSONKey(pair.Key),
		}
		if prev, dup := goNames[f.GoName]; dup {
			return nil, errors.NewSyntaxError(pair.Pos,
				fmt.Sprintf("field '%s' collides with '%s' as Go field %s in %s", pair.Key, prev, f.GoName, obj.Name), nil)
		}
		if prev, dup := jsonKeys[f.JSONKey]; dup {
			return nil, errors.NewSyntaxError(pair.Pos,
				fmt.Sprintf("field '%s' collides with '%s' as JSON key %q in %s", pair.Key, prev, f.JSONKey, obj.Name), nil)
		}
		goNames[f.GoName] = pair.Key
		jsonKeys[f.JSONKey] = pair.Key
		fields[i] = f
	}
	return fields, nil
}

// writeStruct writes `type <name><params> struct { ... }`.
func writeStruct(buf *bytes.Buffer, name, params string, fields []field) {
	if len(fields) == 0 {
		buf.WriteString(fmt.Sprintf("type %s%s struct{}\n", name, params))
		return
	}

	buf.WriteString(fmt.Sprintf("type %s%s struct {\n", name, params))
	maxNameWidth, maxTypeWidth := 0, 0
	for _, f := range fields {
		maxNameWidth = max(maxNameWidth, len(f.GoName))
		maxTypeWidth = max(maxTypeWidth, len(f.Type))
	}
	for _, f := range fields {
		buf.WriteString(fmt.Sprintf("\t%-*s %-*s %s\n", maxNameWidth, f.GoName, maxTypeWidth, f.Type, f.tag()))
	}
	buf.WriteString("}\n")
}
