// Package sqltoken provides a minimal SQL scanner: just enough lexical
// structure to tell identifier positions apart from string literals, quoted
// identifiers, comments, and numbers.
//
// It is deliberately not a parser. The embedded engine owns SQL validation;
// this package only supports whole-token identifier substitution and
// mutation-statement shape detection, so it never rejects input. Unterminated
// literals consume to end of input and the engine reports the real error.
package sqltoken

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind classifies a scanned token.
type Kind int

const (
	// EOF marks the end of input.
	EOF Kind = iota
	// Ident is an unquoted identifier or keyword.
	Ident
	// QuotedIdent is a double-quoted identifier.
	QuotedIdent
	// String is a single-quoted string literal.
	String
	// Number is a numeric literal.
	Number
	// Symbol is any other single byte: operators, punctuation, placeholders.
	Symbol
)

// Token is one lexical unit. Start and End are byte offsets into the input,
// covering the token's full source form including any quotes, so callers can
// splice replacements into the original text without disturbing anything
// around it.
type Token struct {
	Kind  Kind
	Text  string // unquoted value for QuotedIdent and String, source text otherwise
	Start int
	End   int
}

// Scanner walks a SQL string byte by byte.
type Scanner struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current byte)
	ch      byte // current byte under examination
}

// NewScanner creates a Scanner for the given input.
func NewScanner(input string) *Scanner {
	s := &Scanner{input: input}
	s.readChar()
	return s
}

// Scan tokenizes the whole input, excluding the trailing EOF token.
func Scan(input string) []Token {
	s := NewScanner(input)
	var tokens []Token
	for {
		tok := s.Next()
		if tok.Kind == EOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. Whitespace and comments are skipped; their
// bytes are never covered by any returned token, which keeps them intact
// through offset-based splicing.
func (s *Scanner) Next() Token {
	s.skipWhitespaceAndComments()

	start := s.pos

	switch {
	case s.ch == 0:
		return Token{Kind: EOF, Start: start, End: start}
	case s.ch == '\'':
		text := s.readString()
		return Token{Kind: String, Text: text, Start: start, End: s.pos}
	case s.ch == '"':
		text := s.readQuotedIdentifier()
		return Token{Kind: QuotedIdent, Text: text, Start: start, End: s.pos}
	case isDigit(s.ch):
		text := s.readNumber()
		return Token{Kind: Number, Text: text, Start: start, End: s.pos}
	case isLetter(s.ch) || s.ch == '_':
		text := s.readIdentifier()
		return Token{Kind: Ident, Text: text, Start: start, End: s.pos}
	default:
		ch := s.ch
		s.readChar()
		return Token{Kind: Symbol, Text: string(ch), Start: start, End: s.pos}
	}
}

// readChar advances to the next byte.
func (s *Scanner) readChar() {
	if s.readPos >= len(s.input) {
		s.ch = 0 // ASCII NUL = EOF
	} else {
		s.ch = s.input[s.readPos]
	}
	s.pos = s.readPos
	s.readPos++
}

// peekChar returns the next byte without advancing.
func (s *Scanner) peekChar() byte {
	if s.readPos >= len(s.input) {
		return 0
	}
	return s.input[s.readPos]
}

// skipWhitespaceAndComments skips whitespace, line comments (-- ...) and
// block comments (/* ... */).
func (s *Scanner) skipWhitespaceAndComments() {
	for {
		for s.ch == ' ' || s.ch == '\t' || s.ch == '\n' || s.ch == '\r' {
			s.readChar()
		}

		if s.ch == '-' && s.peekChar() == '-' {
			for s.ch != '\n' && s.ch != 0 {
				s.readChar()
			}
			continue
		}

		if s.ch == '/' && s.peekChar() == '*' {
			s.readChar() // skip '/'
			s.readChar() // skip '*'
			for s.ch != 0 {
				if s.ch == '*' && s.peekChar() == '/' {
					s.readChar() // skip '*'
					s.readChar() // skip '/'
					break
				}
				s.readChar()
			}
			continue
		}

		break
	}
}

// readString reads a single-quoted string literal.
// Handles doubled single quotes as escape: 'it''s' -> it's
func (s *Scanner) readString() string {
	s.readChar() // skip opening quote

	var result strings.Builder
	for s.ch != 0 {
		if s.ch == '\'' {
			if s.peekChar() == '\'' {
				result.WriteByte('\'')
				s.readChar() // skip first quote
				s.readChar() // skip second quote
			} else {
				s.readChar() // skip closing quote
				break
			}
		} else {
			result.WriteByte(s.ch)
			s.readChar()
		}
	}
	return result.String()
}

// readQuotedIdentifier reads a double-quoted identifier.
// Handles doubled double quotes as escape: "col""name" -> col"name
func (s *Scanner) readQuotedIdentifier() string {
	s.readChar() // skip opening quote

	var result strings.Builder
	for s.ch != 0 {
		if s.ch == '"' {
			if s.peekChar() == '"' {
				result.WriteByte('"')
				s.readChar() // skip first quote
				s.readChar() // skip second quote
			} else {
				s.readChar() // skip closing quote
				break
			}
		} else {
			result.WriteByte(s.ch)
			s.readChar()
		}
	}
	return result.String()
}

// readIdentifier reads an unquoted identifier.
func (s *Scanner) readIdentifier() string {
	start := s.pos
	for isLetter(s.ch) || isDigit(s.ch) || s.ch == '_' {
		s.readChar()
	}
	return s.input[start:s.pos]
}

// readNumber reads a numeric literal (integer, decimal, or scientific).
func (s *Scanner) readNumber() string {
	start := s.pos

	for isDigit(s.ch) {
		s.readChar()
	}

	if s.ch == '.' && isDigit(s.peekChar()) {
		s.readChar() // skip '.'
		for isDigit(s.ch) {
			s.readChar()
		}
	}

	if s.ch == 'e' || s.ch == 'E' {
		s.readChar() // skip 'e' or 'E'
		if s.ch == '+' || s.ch == '-' {
			s.readChar() // skip sign
		}
		for isDigit(s.ch) {
			s.readChar()
		}
	}

	return s.input[start:s.pos]
}

// isLetter treats all bytes above ASCII as identifier bytes so multi-byte
// UTF-8 identifiers scan as single tokens.
func isLetter(ch byte) bool {
	return ch >= utf8.RuneSelf || unicode.IsLetter(rune(ch))
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
