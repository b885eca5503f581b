// Package parser builds the arena IR from DSL text.
//
// Grammar:
//
//	input      := declare | object | array
//	declare    := IDENT object
//	object     := '{' (pair (',' pair)* ','?)? '}'
//	pair       := IDENT ':' value
//	array      := '[' (value (',' value)* ','?)? ']'
//	value      := object | array | expression
//	expression := any balanced token run up to a top-level comma
//
// A top-level object or array may omit its braces or brackets.
package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/lexer"
	"github.com/mcncl/jsonlit/internal/models"
)

type parser struct {
	doc *models.Document
	src string
}

// Parse reads DSL text from reader. name is used in error positions.
func Parse(name string, reader io.Reader) (*models.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to read '%s'", name), err)
	}
	return ParseString(name, string(data))
}

// ParseString parses DSL text.
func ParseString(name, text string) (*models.Document, error) {
	return ParseAt(text, errors.Position{Filename: name})
}

// ParseAt parses DSL text whose first byte sits at base. Error positions are
// reported relative to base, so text cut out of a larger file keeps the
// file's line numbers. A base without a line number reports positions
// relative to text.
func ParseAt(text string, base errors.Position) (*models.Document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewInputError("input is empty", errors.ErrEmptyInput)
	}

	trees, err := lexer.Parse(base.Filename, text, base)
	if err != nil {
		return nil, err
	}
	if len(trees) == 0 {
		return nil, errors.NewInputError("input has no tokens", errors.ErrEmptyInput)
	}

	p := &parser{doc: models.NewDocument(), src: text}
	c := newCursor(trees, trees[len(trees)-1].LastPos())

	first, second := c.peek(0), c.peek(1)
	switch {
	case first.IsIdent() && second != nil && second.IsGroupOf("{"):
		p.doc.Root, err = p.parseDeclare(c)
	case first.IsIdent() && second != nil && second.Is(":"):
		p.doc.Root, err = p.parseObject(c)
	default:
		p.doc.Root, err = p.parseArray(c)
	}
	if err != nil {
		return nil, err
	}
	if !c.empty() {
		return nil, errors.NewSyntaxError(c.here(), fmt.Sprintf("unexpected %s after end of input", c.peek(0)), errors.ErrUnexpectedToken)
	}
	return p.doc, nil
}

// ParseFile parses DSL text from a file path
func ParseFile(filePath string) (*models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewInputError(fmt.Sprintf("file '%s' not found", filePath), errors.ErrFileNotFound)
		}
		return nil, errors.NewInputError(fmt.Sprintf("failed to open file '%s'", filePath), err)
	}
	if len(data) == 0 {
		return nil, errors.NewInputError(fmt.Sprintf("input file '%s' is empty", filePath), errors.ErrFileEmpty)
	}
	return ParseString(filePath, string(data))
}

// parseDeclare handles `Name { ... }`.
func (p *parser) parseDeclare(c *cursor) (models.Value, error) {
	name := c.next()
	v, err := p.parseObject(c)
	if err != nil {
		return models.Value{}, err
	}
	p.doc.Object(v).Name = name.Token.Text
	v.Kind = models.Declare
	return v, nil
}

// parseObject parses a braced object at the cursor, or, when the cursor is
// not at a brace group, the rest of the cursor as an unbraced object.
func (p *parser) parseObject(c *cursor) (models.Value, error) {
	content := c
	if t := c.peek(0); t != nil && t.IsGroupOf("{") {
		content = groupCursor(c.next())
	}

	object := models.ObjectNode{Name: p.doc.NextObjectName()}
	for !content.empty() {
		pair, err := p.parsePair(content)
		if err != nil {
			return models.Value{}, err
		}
		object.Pairs = append(object.Pairs, pair)
		if err := expectSeparator(content); err != nil {
			return models.Value{}, err
		}
	}
	return p.doc.AppendObject(object), nil
}

// parseArray parses a bracketed array at the cursor, or the rest of the
// cursor as an unbracketed array.
func (p *parser) parseArray(c *cursor) (models.Value, error) {
	content := c
	if t := c.peek(0); t != nil && t.IsGroupOf("[") {
		content = groupCursor(c.next())
	}

	var array models.ArrayNode
	for !content.empty() {
		v, err := p.parseValue(content)
		if err != nil {
			return models.Value{}, err
		}
		array.Items = append(array.Items, v)
		if err := expectSeparator(content); err != nil {
			return models.Value{}, err
		}
	}
	return p.doc.AppendArray(array), nil
}

func (p *parser) parsePair(c *cursor) (models.Pair, error) {
	key := c.peek(0)
	if !key.IsIdent() {
		return models.Pair{}, errors.NewSyntaxError(key.Token.Pos, fmt.Sprintf("expected field name, found %s", key), errors.ErrExpectedIdent)
	}
	c.next()

	colon := c.peek(0)
	if colon == nil || !colon.Is(":") {
		return models.Pair{}, errors.NewSyntaxError(c.here(), fmt.Sprintf("expected ':' after '%s'", key.Token.Text), errors.ErrMissingColon)
	}
	c.next()

	value, err := p.parseValue(c)
	if err != nil {
		return models.Pair{}, err
	}
	return models.Pair{Key: key.Token.Text, Pos: key.Token.Pos, Value: value}, nil
}

func (p *parser) parseValue(c *cursor) (models.Value, error) {
	t := c.peek(0)
	switch {
	case t != nil && t.IsGroupOf("{"):
		return p.parseObject(c)
	case t != nil && t.IsGroupOf("[") && !startsSliceType(c):
		return p.parseArray(c)
	}
	return p.parseExpression(c)
}

// startsSliceType reports whether the cursor is at a slice or array type
// such as `[]int{1, 2}`, `[4]byte` or `[][]*T`: bracket groups that hold at
// most a length, followed by the start of an element type.
func startsSliceType(c *cursor) bool {
	i := 0
	for t := c.peek(i); t != nil && t.IsGroupOf("["); t = c.peek(i) {
		if len(t.Children) > 1 || (len(t.Children) == 1 && t.Children[0].IsGroup()) {
			return false
		}
		i++
	}
	next := c.peek(i)
	return next != nil && (next.IsIdent() || next.Is("*") || next.IsGroupOf("("))
}

// expectSeparator consumes the comma after an item. The end of the group
// is also accepted, which allows trailing commas.
func expectSeparator(c *cursor) error {
	if c.empty() {
		return nil
	}
	t := c.next()
	if !t.Is(",") {
		return errors.NewSyntaxError(t.Token.Pos, fmt.Sprintf("expected ',' or end of group, found %s", t), errors.ErrUnexpectedToken)
	}
	return nil
}
