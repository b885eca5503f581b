package cli_test

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samples = "../../testdata/samples"

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "order_gen.go")

	cmd := exec.Command("go", "run", "../../main.go",
		"-i", filepath.Join(samples, "order.jsonlit"),
		"-o", outputFile,
		"-c", filepath.Join(samples, "jsonlit.yml"),
		"-p", "orders")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))
	assert.Contains(t, string(output), "Generated Go code written to")

	generatedCode, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	code := string(generatedCode)

	assert.Contains(t, code, "// Code generated by jsonlit. DO NOT EDIT.")
	assert.Contains(t, code, "package orders")
	assert.Regexp(t, `Id\s+uint64\s+\x60json:"id"\x60`, code)
	assert.Regexp(t, `Type_\s+string\s+\x60json:"type"\x60`, code)
	assert.Regexp(t, `Legs\s+\[\]Order_legs_item\s+\x60json:"legs"\x60`, code)
	assert.Regexp(t, `Fills\s+\[\]Order_legs_item_fills_item\s+\x60json:"fills"\x60`, code)
	assert.Regexp(t, `Notes\s+map\[string\]string\s+\x60json:"notes"\x60`, code)
	assert.Contains(t, code, "func NewOrder_meta() Order_meta {")
	assert.Contains(t, code, "func (v *Order) Write(path string) error {")

	_, err = parser.ParseFile(token.NewFileSet(), outputFile, generatedCode, 0)
	require.NoError(t, err)
}

// TestCLI_StdinStdout tests the CLI with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--var", "Settings")
	cmd.Stdin = strings.NewReader(`name: "Jane", age: 25, active: true`)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	output := stdout.String()
	assert.Contains(t, output, "package main")
	assert.Contains(t, output, "type Object0[T1, T2, T3 any] struct")
	assert.Contains(t, output, `var Settings = newObject0("Jane", 25, true)`)
}

// TestCLI_AnonymousSample tests a sample with an array of objects
func TestCLI_AnonymousSample(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go",
		"-i", filepath.Join(samples, "settings.jsonlit"),
		"--prefix", "settings", "--var", "Defaults")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())

	output := stdout.String()
	assert.Contains(t, output, `"github.com/mcncl/jsonlit/native"`)
	assert.Contains(t, output, `native.Slice(newSettingsObject1("a.example.com", 443, true), newSettingsObject1("b.example.com", 8080, false))`)
	assert.Contains(t, output, "(*string)(nil)")
}

// TestCLI_NoFormatting tests the CLI with formatting disabled
func TestCLI_NoFormatting(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--no-format")
	cmd.Stdin = strings.NewReader(`Point { x: int, y: int }`)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	require.NoError(t, err, "CLI command failed: %s", stderr.String())
	assert.Contains(t, stdout.String(), "type Point struct")
}

// TestCLI_Scan tests the scan command on a package directory
func TestCLI_Scan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/shapes\n\ngo 1.21\n"), 0o644))
	src := "package shapes\n\n// jsonlit\n// Circle { r: float64 }\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shapes.go"), []byte(src), 0o644))

	cmd := exec.Command("go", "run", "../../main.go", "scan", dir)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	generated, err := os.ReadFile(filepath.Join(dir, "shapes_jsonlit.go"))
	require.NoError(t, err)
	assert.Contains(t, string(generated), "func NewCircle() Circle {")
}

// TestCLI_SyntaxError tests that positions reach the user
func TestCLI_SyntaxError(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go")
	cmd.Stdin = strings.NewReader("Order {\n  qty int\n}")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail with invalid DSL")
	assert.Contains(t, stderr.String(), "Syntax error at <stdin>:2:7")
}

// TestCLI_EmptyInput tests the CLI with empty input
func TestCLI_EmptyInput(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go")
	cmd.Stdin = strings.NewReader("")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	assert.Error(t, err, "CLI should fail with empty input")
	assert.Contains(t, stderr.String(), "empty input")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "-v")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "jsonlit version")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--help")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)

	helpOutput := string(output)
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "-p, --package")
	assert.Contains(t, helpOutput, "-c, --config")
	assert.Contains(t, helpOutput, "--[no-]format")
	assert.Contains(t, helpOutput, "scan")
}
