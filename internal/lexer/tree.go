package lexer

import (
	"fmt"

	"github.com/mcncl/jsonlit/internal/errors"
)

var closers = map[string]string{"{": "}", "[": "]", "(": ")"}

// Tree is either a single token or a delimited group. For groups, Token is
// the opening delimiter and Close the matching closing one.
type Tree struct {
	Token    Token
	Close    Token
	Children []*Tree
	group    bool
}

// IsGroup reports whether t is a delimited group.
func (t *Tree) IsGroup() bool {
	return t.group
}

// IsGroupOf reports whether t is a group opened by delim ("{", "[" or "(").
func (t *Tree) IsGroupOf(delim string) bool {
	return t.group && t.Token.Text == delim
}

// Is reports whether t is the single punctuation token p.
func (t *Tree) Is(p string) bool {
	return !t.group && t.Token.Is(p)
}

// IsIdent reports whether t is a single identifier token.
func (t *Tree) IsIdent() bool {
	return !t.group && t.Token.Kind == Ident
}

// Start is the byte offset where t begins.
func (t *Tree) Start() int {
	return t.Token.Start
}

// End is the byte offset just after t.
func (t *Tree) End() int {
	if t.group {
		return t.Close.End
	}
	return t.Token.End
}

// LastPos is the position of the last token covered by t.
func (t *Tree) LastPos() errors.Position {
	if t.group {
		return t.Close.Pos
	}
	return t.Token.Pos
}

func (t *Tree) String() string {
	if t.group {
		return fmt.Sprintf("%s...%s", t.Token.Text, t.Close.Text)
	}
	return t.Token.Text
}

// Group folds a flat token slice into trees. Unbalanced or mismatched
// delimiters are reported at the offending token.
func Group(tokens []Token) ([]*Tree, error) {
	type frame struct {
		open     Token
		children []*Tree
	}
	stack := []frame{{}}

	for _, tok := range tokens {
		if tok.Kind == Punct {
			if _, ok := closers[tok.Text]; ok {
				stack = append(stack, frame{open: tok})
				continue
			}
			if tok.Text == "}" || tok.Text == "]" || tok.Text == ")" {
				if len(stack) == 1 {
					return nil, errors.NewSyntaxError(tok.Pos, fmt.Sprintf("unexpected %q", tok.Text), errors.ErrUnbalanced)
				}
				top := stack[len(stack)-1]
				if want := closers[top.open.Text]; want != tok.Text {
					return nil, errors.NewSyntaxError(tok.Pos,
						fmt.Sprintf("expected %q to close %q opened at %s, found %q", want, top.open.Text, top.open.Pos, tok.Text),
						errors.ErrUnbalanced)
				}
				stack = stack[:len(stack)-1]
				parent := &stack[len(stack)-1]
				parent.children = append(parent.children, &Tree{
					Token:    top.open,
					Close:    tok,
					Children: top.children,
					group:    true,
				})
				continue
			}
		}
		top := &stack[len(stack)-1]
		top.children = append(top.children, &Tree{Token: tok})
	}

	if len(stack) > 1 {
		open := stack[len(stack)-1].open
		return nil, errors.NewSyntaxError(open.Pos, fmt.Sprintf("%q is never closed", open.Text), errors.ErrUnbalanced)
	}
	return stack[0].children, nil
}

// Parse tokenizes and groups text in one step.
func Parse(filename, text string, base errors.Position) ([]*Tree, error) {
	tokens, err := Tokenize(filename, text, base)
	if err != nil {
		return nil, err
	}
	return Group(tokens)
}
