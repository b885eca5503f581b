package parser

import (
	"strings"

	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/lexer"
	"github.com/mcncl/jsonlit/internal/models"
)

// angleDelta is the change in angle-bracket depth caused by t. Shift
// operators count once per character so `Option<Vec<T>>` balances.
func angleDelta(t *lexer.Tree) int {
	if t.IsGroup() || t.Token.Kind != lexer.Punct {
		return 0
	}
	switch t.Token.Text {
	case "<", "<<":
		return len(t.Token.Text)
	case ">", ">>":
		return -len(t.Token.Text)
	}
	return 0
}

// parseExpression consumes trees up to a top-level comma or the end of the
// group and stores the covered source text as an opaque expression.
func (p *parser) parseExpression(c *cursor) (models.Value, error) {
	first := c.peek(0)
	if first == nil {
		return models.Value{}, errors.NewSyntaxError(c.end, "expected expression", errors.ErrMalformedExpression)
	}
	if first.Is(",") {
		return models.Value{}, errors.NewSyntaxError(first.Token.Pos, "expected expression, found ','", errors.ErrMalformedExpression)
	}

	start := c.pos
	depth := 0
	var last *lexer.Tree
	for !c.empty() {
		last = c.next()
		depth += angleDelta(last)
		if depth < 0 {
			return models.Value{}, errors.NewSyntaxError(last.LastPos(), "unbalanced '>' in expression", errors.ErrMalformedExpression)
		}
		if depth != 0 {
			continue
		}
		if next := c.peek(0); next == nil || next.Is(",") {
			text := p.spanText(c.trees[start:c.pos])
			return p.doc.AppendExpression(models.ExpressionNode{Text: text, Pos: first.Token.Pos}), nil
		}
	}
	return models.Value{}, errors.NewSyntaxError(last.LastPos(), "expression was not terminated", errors.ErrMalformedExpression)
}

// spanText rebuilds the source of trees with the original spacing. Gaps that
// hold comments shrink to a single separator so the text can be embedded
// in generated code.
func (p *parser) spanText(trees []*lexer.Tree) string {
	var tokens []lexer.Token
	var flatten func(ts []*lexer.Tree)
	flatten = func(ts []*lexer.Tree) {
		for _, t := range ts {
			tokens = append(tokens, t.Token)
			if t.IsGroup() {
				flatten(t.Children)
				tokens = append(tokens, t.Close)
			}
		}
	}
	flatten(trees)

	var b strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			gap := p.src[tokens[i-1].End:tok.Start]
			switch {
			case strings.TrimSpace(gap) == "":
				b.WriteString(gap)
			case strings.Contains(gap, "\n"):
				b.WriteString("\n")
			default:
				b.WriteString(" ")
			}
		}
		b.WriteString(tok.Text)
	}
	return b.String()
}
