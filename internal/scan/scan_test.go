package scan

import (
	"context"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonlit/internal/config"
	"github.com/mcncl/jsonlit/internal/errors"
)

const orderSource = `package orders

// Placed is not a directive.
type Placed struct{}

// jsonlit
// Order {
//     side: string,
//     qty: int,
// }

/* jsonlit Defaults
venue: "XNAS", limits: [{ max: 10 }]
*/

//go:generate jsonlit scan
`

func parseSource(t *testing.T, name, src string) (*token.FileSet, File) {
	t.Helper()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments)
	require.NoError(t, err)
	return fset, FindBlocks(fset, file)
}

func TestFindBlocks(t *testing.T) {
	_, f := parseSource(t, "orders.go", orderSource)

	assert.Equal(t, "orders.go", f.Path)
	assert.Equal(t, "orders", f.Package)
	assert.Equal(t, "orders_jsonlit.go", f.OutputPath())
	require.Len(t, f.Blocks, 2)

	decl := f.Blocks[0]
	assert.Empty(t, decl.VarName)
	assert.Equal(t, "   Order {\n       side: string,\n       qty: int,\n   }", decl.Text)
	assert.Equal(t, 7, decl.Pos.Line)
	assert.Equal(t, 1, decl.Pos.Column)
	assert.Equal(t, "orders.go", decl.Pos.Filename)

	anon := f.Blocks[1]
	assert.Equal(t, "Defaults", anon.VarName)
	assert.Equal(t, "venue: \"XNAS\", limits: [{ max: 10 }]\n", anon.Text)
	assert.Equal(t, 13, anon.Pos.Line)
}

func TestFindBlocks_Ignored(t *testing.T) {
	src := `package p

// jsonlit is mentioned here in prose.
var A = 1

// jsonlit 123
// a: 1
`
	_, f := parseSource(t, "p.go", src)
	assert.Empty(t, f.Blocks)
}

func TestGenerate(t *testing.T) {
	_, f := parseSource(t, "orders.go", orderSource)

	code, err := New(config.NewConfig()).Generate(f)
	require.NoError(t, err)

	assert.Contains(t, code, "// Code generated by jsonlit. DO NOT EDIT.\n\npackage orders\n")
	assert.Contains(t, code, "type Order struct {\n\tSide string `json:\"side\"`\n\tQty  int    `json:\"qty\"`\n}")
	assert.Contains(t, code, "func NewOrder() Order {")
	assert.Contains(t, code, "type DefaultsObject0[T1, T2 any] struct {")
	assert.Contains(t, code, `var Defaults = newDefaultsObject0("XNAS", native.Slice(newDefaultsObject1(10)))`)
	assert.Contains(t, code, "\"github.com/mcncl/jsonlit/native\"")

	_, err = parser.ParseFile(token.NewFileSet(), "orders_jsonlit.go", code, 0)
	require.NoError(t, err)
}

func TestGenerate_ErrorPositions(t *testing.T) {
	src := `package p

// jsonlit
// Broken {
//     side string,
// }
`
	_, f := parseSource(t, "broken.go", src)
	require.Len(t, f.Blocks, 1)

	_, err := New(config.NewConfig()).Generate(f)
	require.Error(t, err)

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "broken.go", appErr.Pos.Filename)
	assert.Equal(t, 5, appErr.Pos.Line)
	assert.Equal(t, 13, appErr.Pos.Column)
	assert.ErrorIs(t, err, errors.ErrMissingColon)
}

func TestGenerate_AnonymousNeedsName(t *testing.T) {
	src := `package p

// jsonlit
// a: 1, b: 2
`
	_, f := parseSource(t, "p.go", src)
	_, err := New(config.NewConfig()).Generate(f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "needs a variable name")
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/orders\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.go"), []byte(orderSource), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.go"), []byte("package orders\n\nvar X = 1\n"), 0o644))
	// Output from an earlier run is never scanned itself.
	stale := "package orders\n\n// jsonlit\n// Stale { a: int }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders_jsonlit.go"), []byte(stale), 0o644))

	written, err := New(config.NewConfig()).Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, "orders_jsonlit.go", filepath.Base(written[0]))

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "package orders")
	assert.Contains(t, string(data), "func NewOrder() Order {")
	assert.NotContains(t, string(data), "Stale")
	assert.NoFileExists(t, filepath.Join(dir, "plain_jsonlit.go"))
	assert.NoFileExists(t, filepath.Join(dir, "orders_jsonlit_jsonlit.go"))
}

func TestRun_NoBlocks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/empty\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.go"), []byte("package empty\n"), 0o644))

	_, err := New(config.NewConfig()).Run(context.Background(), dir)
	assert.ErrorIs(t, err, errors.ErrNoDirectives)
}
