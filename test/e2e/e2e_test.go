package e2e_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runtimeImport = "example.com/e2e/native"

// newModule creates a throwaway module holding a copy of the runtime, so
// generated code compiles without fetching anything.
func newModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/e2e\n\ngo 1.21\n"), 0o644))

	runtime, err := os.ReadFile("../../native/native.go")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "native"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "native", "native.go"), runtime, 0o644))

	cfg := "output:\n  methods: true\n  runtime_import: " + runtimeImport + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".jsonlit.yml"), []byte(cfg), 0o644))
	return dir
}

// jsonlit runs the CLI from this repository.
func jsonlit(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	main, err := filepath.Abs("../../main.go")
	require.NoError(t, err)

	cmd := exec.Command("go", append([]string{"run", main}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "jsonlit %v failed: %s", args, stderr.String())
	return stdout.String()
}

// goRun builds and runs the module in dir.
func goRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "."}, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GOWORK=off", "GOFLAGS=-mod=mod")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "go run failed: %s", string(output))
	return string(output)
}

// TestEndToEnd_DeclarationRoundTrip compiles a declaration with methods and
// moves a value through text and a file.
func TestEndToEnd_DeclarationRoundTrip(t *testing.T) {
	dir := newModule(t)
	jsonlit(t, `Order {
		id: int64,
		type_: String,
		legs: [{ qty: int, px: float64 }],
		meta: { tags: [string], notes: map[string]string },
		parent: *Order,
	}`,
		"-c", filepath.Join(dir, ".jsonlit.yml"),
		"-o", filepath.Join(dir, "order_gen.go"))

	program := `package main

import (
	"fmt"
	"os"
	"reflect"
)

// roundTrip reports whether v survives Stringify and Parse unchanged.
func roundTrip(v Order, indent int) bool {
	text, err := v.Stringify(indent)
	if err != nil {
		panic(err)
	}
	var back Order
	if err := back.Parse(text); err != nil {
		panic(err)
	}
	return reflect.DeepEqual(v, back)
}

func main() {
	fmt.Println(roundTrip(NewOrder(), 0), roundTrip(NewOrder(), 4))

	o := NewOrder()
	o.Id = 7
	o.Type_ = "limit"
	leg := NewOrder_legs_item()
	leg.Qty = 2
	o.Legs = append(o.Legs, leg)

	text, err := o.Stringify(0)
	if err != nil {
		panic(err)
	}
	fmt.Println(text)

	if err := o.Write(os.Args[1]); err != nil {
		panic(err)
	}
	back := NewOrder()
	if err := back.Read(os.Args[1]); err != nil {
		panic(err)
	}
	fmt.Println(back.Id, back.Type_, back.Legs[0].Qty, reflect.DeepEqual(o, back))

	err = back.Parse(` + "`" + `{"id": "seven"}` + "`" + `)
	fmt.Println(err != nil, back.Id)
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(program), 0o644))

	stored := filepath.Join(t.TempDir(), "order.json")
	lines := strings.Split(strings.TrimSpace(goRun(t, dir, stored)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "true true", lines[0], "default value must survive a round trip")
	assert.Equal(t, `{"id":7,"type":"limit","legs":[{"qty":2,"px":0}],"meta":{"tags":[],"notes":{}},"parent":null}`, lines[1])
	assert.Equal(t, "7 limit 2 true", lines[2])
	assert.Equal(t, "true 7", lines[3])

	content, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "{\n    \"id\": 7,\n"), string(content))
	assert.True(t, strings.HasSuffix(string(content), "}\n"))
}

// TestEndToEnd_AnonymousValue compiles an anonymous literal and checks
// that inferred types serialize back to the original values.
func TestEndToEnd_AnonymousValue(t *testing.T) {
	dir := newModule(t)
	sample, err := os.ReadFile("../../testdata/samples/settings.jsonlit")
	require.NoError(t, err)

	jsonlit(t, string(sample),
		"-c", filepath.Join(dir, ".jsonlit.yml"),
		"--var", "Settings",
		"-o", filepath.Join(dir, "settings_gen.go"))

	program := `package main

import (
	"fmt"

	"example.com/e2e/native"
)

func main() {
	text, err := native.Stringify(Settings, 0)
	if err != nil {
		panic(err)
	}
	fmt.Println(text)
	fmt.Printf("%T %T\n", Settings.Retries, Settings.Endpoints[1].Port)
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(program), 0o644))

	lines := strings.Split(strings.TrimSpace(goRun(t, dir)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"name":"jsonlit","retries":3,"ratio":0.75,"endpoints":[`+
		`{"host":"a.example.com","port":443,"tls":true},`+
		`{"host":"b.example.com","port":8080,"tls":false}],"owner":null}`, lines[0])
	assert.Equal(t, "int int", lines[1])
}

// TestEndToEnd_Scan generates code from comment blocks in a package and
// runs the result.
func TestEndToEnd_Scan(t *testing.T) {
	dir := newModule(t)
	src := `package main

import "fmt"

// jsonlit
// Point { x: int, y: int }

/* jsonlit Origin
label: "origin", at: [0, 0]
*/

func main() {
	p := NewPoint()
	p.X = 3
	text, _ := p.Stringify(0)
	fmt.Println(text)
	fmt.Println(Origin.Label, len(Origin.At))
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte(src), 0o644))

	jsonlit(t, "", "-c", filepath.Join(dir, ".jsonlit.yml"), "scan", dir)

	_, err := os.Stat(filepath.Join(dir, "main_jsonlit.go"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(goRun(t, dir)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `{"x":3,"y":0}`, lines[0])
	assert.Equal(t, "origin 2", lines[1])
}
