// Package scan finds jsonlit comment blocks in a Go package and writes the
// generated code next to the files that hold them.
//
// A block is a comment group whose first line is the directive:
//
//	// jsonlit
//	// Order {
//	//     side: string,
//	//     qty: int,
//	// }
//
// declares types, while
//
//	/* jsonlit Settings
//	name: "svc", retries: 3
//	*/
//
// binds an anonymous literal to `var Settings`.
package scan

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"io"
	"log"
	"os"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/mcncl/jsonlit/internal/config"
	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/formatter"
	"github.com/mcncl/jsonlit/internal/generator"
	"github.com/mcncl/jsonlit/internal/parser"
)

// Directive is the first word of a jsonlit comment block.
const Directive = "jsonlit"

// GeneratedSuffix is appended to a source file's base name for its output.
const GeneratedSuffix = "_jsonlit.go"

// Block is one DSL input found in a Go file.
type Block struct {
	// VarName is empty for declarations.
	VarName string
	Text    string
	// Pos is where the first line of Text sits in the Go file.
	Pos errors.Position
}

// File is a Go source file that holds at least one block.
type File struct {
	Path    string
	Package string
	Blocks  []Block
}

// OutputPath is the file generated for f.
func (f File) OutputPath() string {
	return strings.TrimSuffix(f.Path, ".go") + GeneratedSuffix
}

// Scanner generates code for every block in a package directory.
type Scanner struct {
	config    *config.Config
	formatter *formatter.Formatter
	log       *log.Logger
}

// New creates a Scanner. Blocks are generated with cfg, except that each
// block gets its own variable name and type prefix.
func New(cfg *config.Config) *Scanner {
	return &Scanner{
		config:    cfg,
		formatter: formatter.NewFormatterWithConfig(cfg),
		log:       log.New(io.Discard, "", 0),
	}
}

// WithLogger routes debug output to l.
func (s *Scanner) WithLogger(l *log.Logger) *Scanner {
	s.log = l
	return s
}

// Run loads the package in dir, generates code for each file with blocks
// and writes it. It returns the written paths.
func (s *Scanner) Run(ctx context.Context, dir string) ([]string, error) {
	files, err := Load(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.NewInputError(fmt.Sprintf("no %s blocks in %s", Directive, dir), errors.ErrNoDirectives)
	}

	// Generate everything before writing anything.
	outputs := make([]string, len(files))
	for i, f := range files {
		code, err := s.Generate(f)
		if err != nil {
			return nil, err
		}
		outputs[i] = code
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		path := f.OutputPath()
		if err := os.WriteFile(path, []byte(outputs[i]), 0o644); err != nil {
			return written, errors.NewOutputError(fmt.Sprintf("failed to write '%s'", path), err)
		}
		s.log.Printf("wrote %s (%d blocks)", path, len(f.Blocks))
		written = append(written, path)
	}
	return written, nil
}

// Generate renders the generated file for f.
func (s *Scanner) Generate(f File) (string, error) {
	units := make([]generator.Unit, 0, len(f.Blocks))
	for _, b := range f.Blocks {
		doc, err := parser.ParseAt(b.Text, b.Pos)
		if err != nil {
			return "", err
		}

		cfg := *s.config
		if b.VarName != "" {
			cfg.VarName = b.VarName
			cfg.TypePrefix = s.config.TypePrefix + b.VarName
		} else if !doc.IsDeclaration() {
			return "", errors.NewSyntaxError(b.Pos, fmt.Sprintf("anonymous block needs a variable name: '%s <Name>'", Directive), errors.ErrNotDeclaration)
		}

		unit, err := generator.NewGeneratorWithConfig(&cfg).WithLogger(s.log).Generate(doc)
		if err != nil {
			return "", err
		}
		units = append(units, unit)
	}

	code := generator.NewGeneratorWithConfig(s.config).GenerateFile(f.Package, units...)
	if !s.config.Formatting.Enabled {
		return code, nil
	}
	return s.formatter.Format(f.OutputPath(), code)
}

// Load parses the package in dir and returns its files that hold blocks.
func Load(ctx context.Context, dir string) ([]File, error) {
	fset := token.NewFileSet()
	cfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedSyntax,
		Dir:     dir,
		Fset:    fset,
	}
	pkgs, err := packages.Load(cfg, "./")
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to load package in '%s'", dir), err)
	}

	var files []File
	for _, p := range pkgs {
		if len(p.Errors) > 0 {
			return nil, errors.NewInputError(fmt.Sprintf("failed to load package %s", p.PkgPath), p.Errors[0])
		}
		for _, syntax := range p.Syntax {
			f := FindBlocks(fset, syntax)
			if strings.HasSuffix(f.Path, GeneratedSuffix) || len(f.Blocks) == 0 {
				continue
			}
			files = append(files, f)
		}
	}
	return files, nil
}

// FindBlocks collects the blocks of one parsed file. The file must have
// been parsed with comments.
func FindBlocks(fset *token.FileSet, file *ast.File) File {
	f := File{
		Path:    fset.Position(file.Package).Filename,
		Package: file.Name.Name,
	}
	for _, group := range file.Comments {
		if b, ok := blockOf(fset, group); ok {
			f.Blocks = append(f.Blocks, b)
		}
	}
	return f
}

// blockOf reads a comment group as a block. Comment markers are blanked
// out rather than removed, so every DSL token keeps its column.
func blockOf(fset *token.FileSet, group *ast.CommentGroup) (Block, bool) {
	lines := commentLines(fset, group)
	if len(lines) == 0 {
		return Block{}, false
	}

	first := lines[0]
	words := strings.Fields(first.text)
	if len(words) == 0 || words[0] != Directive || len(words) > 2 {
		return Block{}, false
	}
	var b Block
	if len(words) == 2 {
		if !token.IsIdentifier(words[1]) {
			return Block{}, false
		}
		b.VarName = words[1]
	}

	// Keep line numbers intact across gaps inside the group.
	var body []string
	next := first.line + 1
	for _, l := range lines[1:] {
		for ; next < l.line; next++ {
			body = append(body, "")
		}
		body = append(body, l.text)
		next = l.line + 1
	}
	b.Text = strings.Join(body, "\n")

	tf := fset.File(group.Pos())
	b.Pos = errors.Position{Filename: tf.Name(), Line: first.line + 1, Column: 1}
	if first.line < tf.LineCount() {
		b.Pos.Offset = tf.Offset(tf.LineStart(first.line + 1))
	}
	return b, true
}

type commentLine struct {
	line int
	text string
}

// commentLines returns the text of every source line in group with comment
// markers replaced by spaces.
func commentLines(fset *token.FileSet, group *ast.CommentGroup) []commentLine {
	var lines []commentLine
	for _, c := range group.List {
		pos := fset.Position(c.Slash)
		pad := strings.Repeat(" ", pos.Column-1)

		if strings.HasPrefix(c.Text, "//") {
			lines = append(lines, commentLine{line: pos.Line, text: pad + "  " + c.Text[2:]})
			continue
		}

		body := strings.TrimSuffix(strings.TrimPrefix(c.Text, "/*"), "*/")
		for i, text := range strings.Split(body, "\n") {
			if i == 0 {
				text = pad + "  " + text
			}
			lines = append(lines, commentLine{line: pos.Line + i, text: strings.TrimRight(text, "\r")})
		}
	}
	return lines
}
