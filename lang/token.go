package lang

import (
	"maps"
	"slices"
	"strconv"
)

// TokenKind identifies the lexical class of a Token.
type TokenKind int

// Token kinds.
const (
	TokenEOF TokenKind = iota
	TokenError
	TokenFloat
	TokenString
	TokenTrue
	TokenFalse
	TokenIdent

	// Keywords.
	TokenLoop
	TokenForEach
	TokenBreak
	TokenContinue
	TokenThis
	TokenReturn

	// Symbols.
	TokenDot         // .
	TokenBang        // !
	TokenAnd         // &&
	TokenOr          // ||
	TokenLess        // <
	TokenLessEq      // <=
	TokenGreater     // >
	TokenGreaterEq   // >=
	TokenAssign      // =
	TokenEq          // ==
	TokenNotEq       // !=
	TokenStar        // *
	TokenSlash       // /
	TokenPlus        // +
	TokenMinus       // -
	TokenLParen      // (
	TokenRParen      // )
	TokenLBrace      // {
	TokenRBrace      // }
	TokenComma       // ,
	TokenLBracket    // [
	TokenRBracket    // ]
	TokenQuestion    // ?
	TokenColon       // :
	TokenCoalesce    // ??
	TokenArrow       // ->
	TokenSemicolon   // ;
	tokenKindCount
)

var tokenNames = [tokenKindCount]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenFloat:     "FLOAT",
	TokenString:    "STRING",
	TokenTrue:      "true",
	TokenFalse:     "false",
	TokenIdent:     "IDENT",
	TokenLoop:      "loop",
	TokenForEach:   "for_each",
	TokenBreak:     "break",
	TokenContinue:  "continue",
	TokenThis:      "this",
	TokenReturn:    "return",
	TokenDot:       ".",
	TokenBang:      "!",
	TokenAnd:       "&&",
	TokenOr:        "||",
	TokenLess:      "<",
	TokenLessEq:    "<=",
	TokenGreater:   ">",
	TokenGreaterEq: ">=",
	TokenAssign:    "=",
	TokenEq:        "==",
	TokenNotEq:     "!=",
	TokenStar:      "*",
	TokenSlash:     "/",
	TokenPlus:      "+",
	TokenMinus:     "-",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenLBrace:    "{",
	TokenRBrace:    "}",
	TokenComma:     ",",
	TokenLBracket:  "[",
	TokenRBracket:  "]",
	TokenQuestion:  "?",
	TokenColon:     ":",
	TokenCoalesce:  "??",
	TokenArrow:     "->",
	TokenSemicolon: ";",
}

// String returns the symbol or name of the token kind.
func (k TokenKind) String() string {
	if k >= 0 && k < tokenKindCount {
		return tokenNames[k]
	}

	return "TokenKind(" + strconv.Itoa(int(k)) + ")"
}

// keywords maps lower-cased words to their token kinds.
var keywords = map[string]TokenKind{
	"true":     TokenTrue,
	"false":    TokenFalse,
	"loop":     TokenLoop,
	"for_each": TokenForEach,
	"break":    TokenBreak,
	"continue": TokenContinue,
	"this":     TokenThis,
	"return":   TokenReturn,
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string { return slices.Sorted(maps.Keys(keywords)) }

// IsWord reports whether the token is spelled like an identifier.
// Keywords are words and may be used as field names after '.'.
func (k TokenKind) IsWord() bool {
	return k == TokenIdent || (k >= TokenTrue && k <= TokenReturn)
}

// Cursor locates a character in source text.
// Line and Column are 1-based; Offset is the byte offset.
type Cursor struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:column".
func (c Cursor) String() string {
	return strconv.Itoa(c.Line) + ":" + strconv.Itoa(c.Column)
}

// Token is a lexical unit. Start and End locate its first and last
// characters. For TokenError, Value holds the diagnostic message.
type Token struct {
	Kind  TokenKind
	Value string
	Start Cursor
	End   Cursor
}

// String returns a human-readable description of the token.
func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "end of input"
	case TokenFloat, TokenIdent:
		return t.Value
	case TokenString:
		return "'" + t.Value + "'"
	case TokenError:
		return "error: " + t.Value
	default:
		if t.Value != "" {
			return t.Value
		}

		return t.Kind.String()
	}
}
