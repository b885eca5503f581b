// Package lexer turns DSL text into token trees: a flat token stream where
// every (), [] and {} region is folded into one balanced group.
package lexer

import (
	"fmt"
	"strings"

	plexer "github.com/alecthomas/participle/v2/lexer"

	"github.com/mcncl/jsonlit/internal/errors"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String
	Char
	Punct
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Ident:
		return "Ident"
	case Number:
		return "Number"
	case String:
		return "String"
	case Char:
		return "Char"
	case Punct:
		return "Punct"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Definition is the Go-flavoured token set used for DSL text. Multi-character
// operators come before single characters so `>>` and `...` stay whole.
var Definition = plexer.MustSimple([]plexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"|` + "`[^`]*`"},
	{Name: "Char", Pattern: `'(\\.|[^'\\\n])+'`},
	{Name: "Number", Pattern: `(0[xX][0-9a-fA-F_]+|0[bB][01_]+|0[oO][0-7_]+|[0-9][0-9_]*(\.[0-9_]*)?([eE][+-]?[0-9_]+)?|\.[0-9][0-9_]*([eE][+-]?[0-9_]+)?)i?`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{Nd}_]*`},
	{Name: "Punct", Pattern: `\.\.\.|<<=|>>=|&\^=|&&|\|\||<-|\+\+|--|==|!=|<=|>=|:=|<<|>>|&\^|::|[-+*/%&|^]=|[-+*/%&|^<>=!~.;:,?#@$(){}\[\]]`},
})

var (
	symbols   = Definition.Symbols()
	kindByTyp = map[plexer.TokenType]Kind{
		symbols["Ident"]:  Ident,
		symbols["Number"]: Number,
		symbols["String"]: String,
		symbols["Char"]:   Char,
		symbols["Punct"]:  Punct,
	}
	skipped = map[plexer.TokenType]bool{
		symbols["Comment"]:    true,
		symbols["Whitespace"]: true,
	}
)

// Token is one lexeme. Pos is the reported location (shifted by the base
// position); Start and End are byte offsets into the lexed text.
type Token struct {
	Kind  Kind
	Text  string
	Pos   errors.Position
	Start int
	End   int
}

// Is reports whether t is the punctuation text p.
func (t Token) Is(p string) bool {
	return t.Kind == Punct && t.Text == p
}

// Tokenize lexes text. base relocates reported positions, which lets a DSL
// block embedded in a Go comment report positions in the Go file. A zero
// base reports positions relative to text itself under filename.
func Tokenize(filename, text string, base errors.Position) ([]Token, error) {
	lex, err := Definition.Lex(filename, strings.NewReader(text))
	if err != nil {
		return nil, errors.NewSyntaxError(base, "failed to start lexer", err)
	}

	var tokens []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, errors.NewSyntaxError(lastPos(tokens, filename, base), "invalid character in input", err)
		}
		if tok.EOF() {
			return tokens, nil
		}
		if skipped[tok.Type] {
			continue
		}
		kind, ok := kindByTyp[tok.Type]
		if !ok {
			return nil, errors.NewSyntaxError(relocate(fromLexer(tok.Pos), base), fmt.Sprintf("unknown token %q", tok.Value), errors.ErrUnexpectedToken)
		}
		tokens = append(tokens, Token{
			Kind:  kind,
			Text:  tok.Value,
			Pos:   relocate(fromLexer(tok.Pos), base),
			Start: tok.Pos.Offset,
			End:   tok.Pos.Offset + len(tok.Value),
		})
	}
}

func fromLexer(p plexer.Position) errors.Position {
	return errors.Position{Filename: p.Filename, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func lastPos(tokens []Token, filename string, base errors.Position) errors.Position {
	if len(tokens) == 0 {
		return relocate(errors.Position{Filename: filename, Line: 1, Column: 1}, base)
	}
	return tokens[len(tokens)-1].Pos
}

// relocate shifts a text-relative position by base. Column shifts only
// apply to the first line, since later lines start at the file's margin.
func relocate(p, base errors.Position) errors.Position {
	if !base.IsValid() {
		return p
	}
	out := p
	if base.Filename != "" {
		out.Filename = base.Filename
	}
	out.Offset += base.Offset
	if p.Line == 1 {
		out.Column += base.Column - 1
	}
	out.Line += base.Line - 1
	return out
}
