package lang

import (
	"strings"
	"unicode/utf8"
)

// Lexer splits source text into tokens on demand.
//
// Lexical errors never stop the lexer. They are reported as TokenError
// tokens and the parser decides whether to fail.
type Lexer struct {
	src    string
	pos    int    // byte offset of the next unread character
	next   Cursor // cursor of the next unread character
	last   Cursor // cursor of the most recently read character
	cur    Token
	pulled bool
}

// NewLexer returns a lexer positioned before the first token of src.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		next: Cursor{Offset: 0, Line: 1, Column: 1},
		last: Cursor{Offset: 0, Line: 1, Column: 0},
	}
}

// Next advances to the next token and returns it.
// Once the input is exhausted, Next keeps returning TokenEOF.
func (l *Lexer) Next() Token {
	l.cur = l.scan()
	l.pulled = true

	return l.cur
}

// Current returns the current token without advancing.
// If no token has been pulled yet, the first token is read.
func (l *Lexer) Current() Token {
	if !l.pulled {
		return l.Next()
	}

	return l.cur
}

// Tokens returns every remaining token up to and including TokenEOF.
func (l *Lexer) Tokens() []Token {
	var toks []Token

	for {
		tok := l.Next()
		toks = append(toks, tok)

		if tok.Kind == TokenEOF {
			return toks
		}
	}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.src[l.pos]
}

// read consumes one character (rune) and returns it.
func (l *Lexer) read() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])

	l.last = l.next
	l.pos += size

	if r == '\n' {
		l.next = Cursor{Offset: l.pos, Line: l.next.Line + 1, Column: 1}
	} else {
		l.next = Cursor{
			Offset: l.pos,
			Line:   l.next.Line,
			Column: l.next.Column + 1,
		}
	}

	return r
}

func (l *Lexer) skipSpace() {
	for !l.eof() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.read()
		default:
			return
		}
	}
}

func (l *Lexer) token(kind TokenKind, value string, start Cursor) Token {
	return Token{Kind: kind, Value: value, Start: start, End: l.last}
}

func (l *Lexer) scan() Token {
	l.skipSpace()

	if l.eof() {
		return Token{Kind: TokenEOF, Start: l.last, End: l.last}
	}

	start := l.next
	offset := l.pos
	c := l.peek()

	switch {
	case isDigit(c):
		for !l.eof() && (isDigit(l.peek()) || l.peek() == '.') {
			l.read()
		}

		return l.token(TokenFloat, l.src[offset:l.pos], start)

	case isWordStart(c):
		for !l.eof() && isWordPart(l.peek()) {
			l.read()
		}

		word := l.src[offset:l.pos]
		if kind, ok := keywords[strings.ToLower(word)]; ok {
			return l.token(kind, word, start)
		}

		return l.token(TokenIdent, word, start)

	case c == '\'':
		l.read()

		for !l.eof() && l.peek() != '\'' {
			l.read()
		}

		if l.eof() {
			return l.token(TokenError, "unterminated string", start)
		}

		value := l.src[offset+1 : l.pos]
		l.read()

		return l.token(TokenString, value, start)
	}

	r := l.read()

	switch r {
	case '.':
		return l.token(TokenDot, ".", start)
	case '*':
		return l.token(TokenStar, "*", start)
	case '/':
		return l.token(TokenSlash, "/", start)
	case '+':
		return l.token(TokenPlus, "+", start)
	case '(':
		return l.token(TokenLParen, "(", start)
	case ')':
		return l.token(TokenRParen, ")", start)
	case '{':
		return l.token(TokenLBrace, "{", start)
	case '}':
		return l.token(TokenRBrace, "}", start)
	case ',':
		return l.token(TokenComma, ",", start)
	case '[':
		return l.token(TokenLBracket, "[", start)
	case ']':
		return l.token(TokenRBracket, "]", start)
	case ':':
		return l.token(TokenColon, ":", start)
	case ';':
		return l.token(TokenSemicolon, ";", start)
	case '!':
		return l.pair('=', TokenNotEq, TokenBang, start)
	case '<':
		return l.pair('=', TokenLessEq, TokenLess, start)
	case '>':
		return l.pair('=', TokenGreaterEq, TokenGreater, start)
	case '=':
		return l.pair('=', TokenEq, TokenAssign, start)
	case '?':
		return l.pair('?', TokenCoalesce, TokenQuestion, start)
	case '-':
		return l.pair('>', TokenArrow, TokenMinus, start)
	case '&':
		return l.pair('&', TokenAnd, TokenError, start)
	case '|':
		return l.pair('|', TokenOr, TokenError, start)
	}

	return l.token(TokenError, "unexpected character "+quoteRune(r), start)
}

// pair returns double if the next character is c, otherwise single.
// A TokenError single means the first character is invalid on its own.
func (l *Lexer) pair(c byte, double, single TokenKind, start Cursor) Token {
	first := l.src[start.Offset:l.pos]

	if l.peek() == c {
		l.read()

		return l.token(double, double.String(), start)
	}

	if single == TokenError {
		return l.token(TokenError, "unexpected character "+quoteRune(rune(first[0])), start)
	}

	return l.token(single, first, start)
}

func quoteRune(r rune) string {
	if r == utf8.RuneError {
		return "'\\ufffd'"
	}

	return "'" + string(r) + "'"
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool { return isWordStart(c) || isDigit(c) }
