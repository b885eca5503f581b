// Package native is the runtime used by code that jsonlit generates. It
// turns generated values into JSON text and files and back.
//
// Field order in the output follows struct declaration order. A field
// declared with a trailing underscore (`Type_`) carries a json tag without
// it, so it travels as "type".
//
// Parse and Read never leave a half-decoded target behind: they decode into
// a fresh value and only replace the target when decoding succeeds.
package native

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"
)

// DefaultIndent is the indent width Write uses.
const DefaultIndent = 4

// Error describes a failed conversion between a value and JSON text.
type Error struct {
	Op   string
	Type string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("native: %s %s: %v", e.Op, e.Type, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// String returns the concise JSON text of v.
func String(v any) (string, error) {
	return Stringify(v, 0)
}

// Stringify returns the JSON text of v. An indent of 0 gives the concise
// form; N > 0 puts N spaces per nesting level.
func Stringify(v any, indent int) (string, error) {
	if indent < 0 {
		return "", &Error{Op: "stringify", Type: typeName(v), Err: fmt.Errorf("negative indent %d", indent)}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}
	if err := enc.Encode(v); err != nil {
		return "", &Error{Op: "stringify", Type: typeName(v), Err: err}
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Parse decodes text and replaces *target with the result. target must be
// a non-nil pointer. On failure *target is unchanged.
func Parse(text string, target any) error {
	return decode("parse", []byte(text), target)
}

// Read decodes the JSON file at path into target. I/O errors are returned
// as they come from the os package; decoding errors are wrapped in *Error.
// On failure *target is unchanged.
func Read(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return decode("read "+path+" into", data, target)
}

// Write stores v at path as JSON indented by DefaultIndent spaces.
func Write(path string, v any) error {
	return WriteIndent(path, v, DefaultIndent)
}

// WriteIndent stores v at path with the given indent. Errors from the
// filesystem are returned unchanged.
func WriteIndent(path string, v any, indent int) error {
	text, err := Stringify(v, indent)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text+"\n"), 0o644)
}

func decode(op string, data []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &Error{Op: op, Type: typeName(target), Err: fmt.Errorf("target must be a non-nil pointer")}
	}

	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return &Error{Op: op, Type: typeName(target), Err: err}
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// Slice returns its arguments as a slice. Generated code uses it so Go
// infers the element type of an array literal.
func Slice[T any](items ...T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// IsDefault reports whether v holds the default value of its type. Empty
// slices and maps count as default whether or not they are nil, so the
// values built by generated New functions are default too.
func IsDefault[T any](v T) bool {
	return isDefault(reflect.ValueOf(&v).Elem())
}

func isDefault(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !isDefault(v.Field(i)) {
				return false
			}
		}
		return true
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if !isDefault(v.Index(i)) {
				return false
			}
		}
		return true
	default:
		return v.IsZero()
	}
}
