package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// Parse parses a program: a sequence of expressions separated by ';'.
//
// Parsing stops at the first error, which is always a *ParseError.
func Parse(ctx context.Context, src string, opts ...Option) ([]Expr, error) {
	o := makeOptions(opts...)

	exprs, err := parseSource(src)
	if err != nil {
		o.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	if o.fold {
		exprs = Fold(ctx, exprs, o.scope, opts...)
	}

	o.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(src)),
		slog.Int("expr_count", len(exprs)))

	return exprs, nil
}

// ParseExpr parses a single expression. Trailing input other than an optional
// ';' is an error.
func ParseExpr(ctx context.Context, src string, opts ...Option) (Expr, error) {
	exprs, err := Parse(ctx, src, opts...)
	if err != nil {
		return nil, err
	}

	if len(exprs) != 1 {
		return nil, &ParseError{
			Message: "expected a single expression, found " + strconv.Itoa(len(exprs)),
			Cursor:  Cursor{Line: 1, Column: 1},
			Source:  src,
		}
	}

	return exprs[0], nil
}

func parseSource(src string) ([]Expr, error) {
	p := &parser{lex: NewLexer(src), src: src}

	return p.parseProgram()
}

// parser holds the parser state.
type parser struct {
	lex *Lexer
	src string
}

func (p *parser) errorAt(tok Token, msg string) error {
	return &ParseError{Message: msg, Cursor: tok.End, Source: p.src}
}

// unexpected reports tok as out of place. ERROR tokens carry their own
// message.
func (p *parser) unexpected(tok Token, expected string) error {
	switch tok.Kind {
	case TokenError:
		return p.errorAt(tok, tok.Value)
	case TokenEOF:
		return p.errorAt(tok, "unexpected end of input, expected "+expected)
	default:
		return p.errorAt(tok, "expected "+expected+", found "+tok.String())
	}
}

// parseProgram parses: (expr? ';')* expr? EOF.
func (p *parser) parseProgram() ([]Expr, error) {
	var exprs []Expr

	for {
		switch p.lex.Current().Kind {
		case TokenEOF:
			return exprs, nil
		case TokenSemicolon:
			p.lex.Next()

			continue
		}

		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, e)

		switch tok := p.lex.Current(); tok.Kind {
		case TokenEOF:
			return exprs, nil
		case TokenSemicolon:
			p.lex.Next()
		default:
			return nil, p.unexpected(tok, "';'")
		}
	}
}

// parseExpr parses a single expression followed by any postfix and infix
// operators binding tighter than lastPrec.
func (p *parser) parseExpr(lastPrec int) (Expr, error) {
	left, err := p.parseSingle()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.lex.Current()

		switch tok.Kind {
		case TokenLBracket, TokenLParen:
			if left, err = p.parsePostfix(left); err != nil {
				return nil, err
			}

			continue

		case TokenQuestion:
			if lastPrec >= OpConditional.Precedence() {
				return left, nil
			}

			if left, err = p.parseConditional(left); err != nil {
				return nil, err
			}

			continue
		}

		op, ok := binaryOps[tok.Kind]
		if !ok || op.Precedence() <= lastPrec {
			return left, nil
		}

		p.lex.Next()

		// Assignment is right-associative: a = b = c assigns c to both.
		prec := op.Precedence()
		if op == OpAssign {
			prec = 0
		}

		right, err := p.parseExpr(prec)
		if err != nil {
			return nil, err
		}

		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

// parseConditional parses the branches following '?'.
func (p *parser) parseConditional(cond Expr) (Expr, error) {
	p.lex.Next()

	then, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	if p.lex.Current().Kind != TokenColon {
		return &BinaryExpr{Op: OpConditional, Left: cond, Right: then}, nil
	}

	p.lex.Next()

	otherwise, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	return &TernaryExpr{Cond: cond, True: then, False: otherwise}, nil
}

// parsePostfix parses one index or call suffix applied to e.
func (p *parser) parsePostfix(e Expr) (Expr, error) {
	if p.lex.Current().Kind == TokenLBracket {
		return p.parseIndex(e)
	}

	return p.parseCall(e)
}

func (p *parser) parseIndex(array Expr) (Expr, error) {
	tok := p.lex.Next()

	switch tok.Kind {
	case TokenRBracket:
		return nil, p.errorAt(tok, "expected expression, found ']'")
	case TokenEOF:
		return nil, p.errorAt(tok, "end of input before closing ']'")
	}

	index, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}

	switch tok = p.lex.Current(); tok.Kind {
	case TokenRBracket:
		p.lex.Next()

		return &ArrayAccessExpr{Array: array, Index: index}, nil
	case TokenEOF:
		return nil, p.errorAt(tok, "end of input before closing ']'")
	default:
		return nil, p.unexpected(tok, "']'")
	}
}

func (p *parser) parseCall(fn Expr) (Expr, error) {
	call := &CallExpr{Function: fn}

	if tok := p.lex.Next(); tok.Kind == TokenRParen {
		p.lex.Next()

		return call, nil
	}

	for {
		if tok := p.lex.Current(); tok.Kind == TokenEOF {
			return nil, p.errorAt(tok, "end of input before closing ')'")
		}

		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}

		call.Args = append(call.Args, arg)

		switch tok := p.lex.Current(); tok.Kind {
		case TokenRParen:
			p.lex.Next()

			return call, nil
		case TokenComma:
			p.lex.Next()
		case TokenEOF:
			return nil, p.errorAt(tok, "end of input before closing ')'")
		default:
			return nil, p.unexpected(tok, "',' or ')'")
		}
	}
}

// parseSingle parses a primary expression or a prefix operation.
func (p *parser) parseSingle() (Expr, error) {
	tok := p.lex.Current()

	switch tok.Kind {
	case TokenFloat:
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorAt(tok, "invalid number "+strconv.Quote(tok.Value))
		}

		p.lex.Next()

		return &DoubleExpr{Value: v}, nil

	case TokenString:
		p.lex.Next()

		return &StringExpr{Value: tok.Value}, nil

	case TokenTrue:
		p.lex.Next()

		return &DoubleExpr{Value: 1}, nil

	case TokenFalse:
		p.lex.Next()

		return &DoubleExpr{Value: 0}, nil

	case TokenLParen:
		p.lex.Next()

		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}

		if tok = p.lex.Current(); tok.Kind != TokenRParen {
			return nil, p.unexpected(tok, "')'")
		}

		p.lex.Next()

		return e, nil

	case TokenLBrace:
		return p.parseBlock()

	case TokenBreak:
		p.lex.Next()

		return &StatementExpr{Op: StatementBreak}, nil

	case TokenContinue:
		p.lex.Next()

		return &StatementExpr{Op: StatementContinue}, nil

	case TokenIdent, TokenThis:
		return p.parseName()

	case TokenLoop, TokenForEach:
		p.lex.Next()

		return &IdentifierExpr{Name: tok.Kind.String()}, nil

	case TokenMinus:
		p.lex.Next()

		operand, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		if d, ok := operand.(*DoubleExpr); ok {
			return &DoubleExpr{Value: -d.Value}, nil
		}

		return &UnaryExpr{Op: UnaryNeg, Operand: operand}, nil

	case TokenBang:
		p.lex.Next()

		operand, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Op: UnaryNot, Operand: operand}, nil

	case TokenReturn:
		switch p.lex.Next().Kind {
		case TokenSemicolon, TokenRBrace, TokenEOF:
			return &UnaryExpr{Op: UnaryReturn, Operand: &DoubleExpr{}}, nil
		}

		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}

		return &UnaryExpr{Op: UnaryReturn, Operand: e}, nil
	}

	return nil, p.unexpected(tok, "expression")
}

// parseOperand parses the operand of a prefix operator: a single expression
// and its index or call suffixes.
func (p *parser) parseOperand() (Expr, error) {
	e, err := p.parseSingle()
	if err != nil {
		return nil, err
	}

	for {
		switch p.lex.Current().Kind {
		case TokenLBracket, TokenLParen:
			if e, err = p.parsePostfix(e); err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

// parseName parses an identifier followed by any number of '.' fields.
func (p *parser) parseName() (Expr, error) {
	var e Expr = &IdentifierExpr{Name: strings.ToLower(p.lex.Current().Value)}

	for p.lex.Next().Kind == TokenDot {
		tok := p.lex.Next()
		if !tok.Kind.IsWord() {
			return nil, p.unexpected(tok, "field name")
		}

		e = &AccessExpr{Object: e, Property: strings.ToLower(tok.Value)}
	}

	return e, nil
}

// parseBlock parses: '{' (expr? ';')* expr? '}'.
func (p *parser) parseBlock() (Expr, error) {
	block := &ScopeExpr{}

	p.lex.Next()

	for {
		switch tok := p.lex.Current(); tok.Kind {
		case TokenRBrace:
			p.lex.Next()

			return block, nil
		case TokenSemicolon:
			p.lex.Next()

			continue
		case TokenEOF:
			return nil, p.errorAt(tok, "end of input before closing '}'")
		}

		e, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}

		block.Body = append(block.Body, e)

		switch tok := p.lex.Current(); tok.Kind {
		case TokenSemicolon, TokenRBrace:
		case TokenEOF:
			return nil, p.errorAt(tok, "end of input before closing '}'")
		default:
			return nil, p.unexpected(tok, "';'")
		}
	}
}
