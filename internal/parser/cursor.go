package parser

import (
	"github.com/mcncl/jsonlit/internal/errors"
	"github.com/mcncl/jsonlit/internal/lexer"
)

// cursor walks the trees of one group. end is where "ran out of input"
// errors are reported: the closing delimiter, or the last token at top level.
type cursor struct {
	trees []*lexer.Tree
	pos   int
	end   errors.Position
}

func newCursor(trees []*lexer.Tree, end errors.Position) *cursor {
	return &cursor{trees: trees, end: end}
}

func groupCursor(group *lexer.Tree) *cursor {
	return newCursor(group.Children, group.Close.Pos)
}

func (c *cursor) empty() bool {
	return c.pos >= len(c.trees)
}

// peek returns the tree n positions ahead, or nil past the end.
func (c *cursor) peek(n int) *lexer.Tree {
	if c.pos+n >= len(c.trees) {
		return nil
	}
	return c.trees[c.pos+n]
}

func (c *cursor) next() *lexer.Tree {
	t := c.trees[c.pos]
	c.pos++
	return t
}

// here is the position of the next tree, or end when exhausted.
func (c *cursor) here() errors.Position {
	if t := c.peek(0); t != nil {
		return t.Token.Pos
	}
	return c.end
}
