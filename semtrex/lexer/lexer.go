// Package lexer tokenizes the semtrex pattern language (§4.3) with a
// DFA-table lexer built from github.com/timtadh/lexmachine, the same
// lexer generator the rest of this corpus builds its own domain
// language's tokenizer with.
package lexer

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Kind enumerates the token kinds from §4.3's lexer.
type Kind int

const (
	EOF Kind = iota
	Slash
	Percent
	Dot
	Comma
	Pipe
	Star
	Plus
	Question
	Tilde
	Bang
	Equals
	LParen
	RParen
	LBrace
	RBrace
	LAngle
	RAngle
	Colon
	Label
	Int
	Float
	CharLit
	StringLit
	Illegal
)

func (k Kind) String() string {
	names := map[Kind]string{
		EOF: "EOF", Slash: "/", Percent: "%", Dot: ".", Comma: ",",
		Pipe: "|", Star: "*", Plus: "+", Question: "?", Tilde: "~",
		Bang: "!", Equals: "=", LParen: "(", RParen: ")", LBrace: "{",
		RBrace: "}", LAngle: "<", RAngle: ">", Colon: ":", Label: "LABEL",
		Int: "INT", Float: "FLOAT", CharLit: "CHAR", StringLit: "STRING",
		Illegal: "ILLEGAL",
	}
	if s, ok := names[k]; ok {
		return s
	}
	return "?"
}

// Token is one lexed token of a semtrex pattern.
type Token struct {
	Kind Kind
	Text string // raw source text covered by this token
	Pos  int    // byte offset of the token's first byte

	IntVal    int64
	FloatVal  float64
	CharVal   rune
	StringVal string
}

// Lexer wraps a compiled lexmachine scanner over one pattern string.
type Lexer struct {
	scanner *lexmachine.Scanner
	input   []byte
}

var machineOnce *lexmachine.Lexer

func buildMachine() (*lexmachine.Lexer, error) {
	m := lexmachine.NewLexer()
	m.Add([]byte(`[ \t\r\n]+`), skip)

	simple := []struct {
		pat  string
		kind Kind
	}{
		{`/`, Slash}, {`%`, Percent}, {`\.`, Dot}, {`,`, Comma},
		{`\|`, Pipe}, {`\*`, Star}, {`\+`, Plus}, {`\?`, Question},
		{`~`, Tilde}, {`!`, Bang}, {`=`, Equals}, {`\(`, LParen},
		{`\)`, RParen}, {`\{`, LBrace}, {`\}`, RBrace}, {`<`, LAngle},
		{`>`, RAngle}, {`:`, Colon},
	}
	for _, s := range simple {
		kind := s.kind
		m.Add([]byte(s.pat), func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
			return mk(kind, match), nil
		})
	}

	m.Add([]byte(`-?[0-9]+\.[0-9]+`), func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
		tok := mk(Float, match)
		var f float64
		fmt.Sscanf(tok.Text, "%g", &f)
		tok.FloatVal = f
		return tok, nil
	})
	m.Add([]byte(`-?[0-9]+`), func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
		tok := mk(Int, match)
		var i int64
		fmt.Sscanf(tok.Text, "%d", &i)
		tok.IntVal = i
		return tok, nil
	})
	m.Add([]byte(`[A-Za-z_][A-Za-z0-9_]*`), func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
		return mk(Label, match), nil
	})
	m.Add([]byte(`'(\\.|[^'\\])'`), func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
		tok := mk(CharLit, match)
		inner := tok.Text[1 : len(tok.Text)-1]
		r, err := unescapeOne(inner)
		if err != nil {
			return nil, err
		}
		tok.CharVal = r
		return tok, nil
	})
	m.Add([]byte(`"(\\.|[^"\\])*"`), func(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
		tok := mk(StringLit, match)
		inner := tok.Text[1 : len(tok.Text)-1]
		s, err := unescapeAll(inner)
		if err != nil {
			return nil, err
		}
		tok.StringVal = s
		return tok, nil
	})

	if err := m.Compile(); err != nil {
		return nil, err
	}
	return m, nil
}

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func mk(kind Kind, m *machines.Match) Token {
	return Token{Kind: kind, Text: string(m.Bytes), Pos: m.TC}
}

// New compiles pattern into a token stream.
func New(pattern string) (*Lexer, error) {
	if machineOnce == nil {
		m, err := buildMachine()
		if err != nil {
			return nil, err
		}
		machineOnce = m
	}
	scanner, err := machineOnce.Scanner([]byte(pattern))
	if err != nil {
		return nil, err
	}
	return &Lexer{scanner: scanner, input: []byte(pattern)}, nil
}

// UnterminatedError reports an opening quote with no matching close.
type UnterminatedError struct {
	Pos  int
	Char bool // true for a char literal ('), false for a string literal (")
}

func (e UnterminatedError) Error() string {
	kind := "string"
	if e.Char {
		kind = "char"
	}
	return fmt.Sprintf("unterminated %s literal at byte %d", kind, e.Pos)
}

// UnexpectedCharacterError reports a byte the lexer has no rule for.
type UnexpectedCharacterError struct {
	Pos  int
	Char byte
}

func (e UnexpectedCharacterError) Error() string {
	return fmt.Sprintf("unexpected character %q at byte %d", e.Char, e.Pos)
}

// Next returns the next token, or an error describing why the scan
// could not continue.
func (l *Lexer) Next() (Token, error) {
	tok, err, eof := l.scanner.Next()
	if eof {
		return Token{Kind: EOF, Pos: len(l.input)}, nil
	}
	if err != nil {
		pos := l.scanner.TC
		if pos < len(l.input) {
			switch l.input[pos] {
			case '\'':
				return Token{}, UnterminatedError{Pos: pos, Char: true}
			case '"':
				return Token{}, UnterminatedError{Pos: pos, Char: false}
			default:
				return Token{}, UnexpectedCharacterError{Pos: pos, Char: l.input[pos]}
			}
		}
		return Token{}, err
	}
	if tok == nil {
		// a skip action (whitespace) produced no token; advance again.
		return l.Next()
	}
	return tok.(Token), nil
}

func unescapeOne(s string) (rune, error) {
	r, err := unescapeAll(s)
	if err != nil {
		return 0, err
	}
	runes := []rune(r)
	if len(runes) != 1 {
		return 0, fmt.Errorf("char literal must contain exactly one character, got %q", r)
	}
	return runes[0], nil
}

func unescapeAll(s string) (string, error) {
	out := make([]rune, 0, len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			out = append(out, runes[i])
			continue
		}
		i++
		if i >= len(runes) {
			return "", fmt.Errorf("dangling escape at end of literal")
		}
		switch runes[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		case '\\':
			out = append(out, '\\')
		case '"':
			out = append(out, '"')
		case '\'':
			out = append(out, '\'')
		default:
			return "", fmt.Errorf("unknown escape \\%c", runes[i])
		}
	}
	return string(out), nil
}
