package spec

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"

	"sanitizer-generator/internal/diagnostic"
)

// OptMarker wraps a validation function to make a field optional:
// opt(<validator>).
const OptMarker = "opt"

// Args is a parsed validation declaration:
//
//	args      = validator [ "," type ] EOF
//	validator = "opt" "(" expr ")" | expr
type Args struct {
	Validator       ast.Expr
	ValidatorText   string
	ValidatorOffset int

	Optional bool

	// Wire is nil when no wire type override is given.
	Wire       ast.Expr
	WireText   string
	WireOffset int
}

// ArgError reports a declaration that does not follow the grammar. Offset is
// the byte offset in the declaration text where the problem starts.
type ArgError struct {
	Category diagnostic.Category
	Offset   int
	Msg      string
}

func (e *ArgError) Error() string {
	return e.Msg
}

func argErrorf(cat diagnostic.Category, offset int, format string, args ...any) *ArgError {
	return &ArgError{Category: cat, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

type argToken struct {
	off int
	end int
	tok token.Token
}

// tokenize splits src into Go tokens, dropping automatically inserted
// semicolons.
func tokenize(src string) ([]argToken, *ArgError) {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	var (
		s        scanner.Scanner
		firstErr *ArgError
		toks     []argToken
	)

	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		if firstErr == nil {
			firstErr = argErrorf(diagnostic.MalformedArguments, pos.Offset, "malformed validation arguments: %s", msg)
		}
	}, 0)

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}

		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}

		text := lit
		if text == "" {
			text = tok.String()
		}

		off := file.Offset(pos)
		toks = append(toks, argToken{off: off, end: off + len(text), tok: tok})
	}

	return toks, firstErr
}

type argParser struct {
	src  string
	toks []argToken
	i    int
}

func (p *argParser) atEnd() bool {
	return p.i >= len(p.toks)
}

func (p *argParser) offset() int {
	if p.atEnd() {
		return len(p.src)
	}

	return p.toks[p.i].off
}

var closers = map[token.Token]token.Token{
	token.RPAREN: token.LPAREN,
	token.RBRACK: token.LBRACK,
	token.RBRACE: token.LBRACE,
}

// run consumes a balanced run of tokens up to a top-level comma, a
// top-level stop token or the end of input. It returns the source text of
// the run and its offset; text is empty when the run is empty.
func (p *argParser) run(stop token.Token) (string, int, *ArgError) {
	var stack []token.Token

	start := p.i

loop:
	for ; !p.atEnd(); p.i++ {
		t := p.toks[p.i]

		switch t.tok {
		case token.LPAREN, token.LBRACK, token.LBRACE:
			stack = append(stack, t.tok)

		case token.RPAREN, token.RBRACK, token.RBRACE:
			if len(stack) == 0 {
				if t.tok == stop {
					break loop
				}

				return "", 0, argErrorf(diagnostic.MalformedArguments, t.off, "unexpected %s", t.tok)
			}

			if stack[len(stack)-1] != closers[t.tok] {
				return "", 0, argErrorf(diagnostic.MalformedArguments, t.off, "unexpected %s", t.tok)
			}

			stack = stack[:len(stack)-1]

		case token.COMMA:
			if len(stack) == 0 {
				break loop
			}

		case token.SEMICOLON:
			if len(stack) == 0 {
				return "", 0, argErrorf(diagnostic.MalformedArguments, t.off, "unexpected ;")
			}
		}
	}

	if len(stack) > 0 {
		return "", 0, argErrorf(diagnostic.MalformedArguments, len(p.src), "unclosed %s", stack[len(stack)-1])
	}

	if p.i == start {
		return "", p.offset(), nil
	}

	from, to := p.toks[start].off, p.toks[p.i-1].end

	return p.src[from:to], from, nil
}

// ParseArgs parses the argument list of a validation declaration.
func ParseArgs(src string) (*Args, error) {
	toks, terr := tokenize(src)
	if terr != nil {
		return nil, terr
	}

	if len(toks) == 0 {
		return nil, argErrorf(diagnostic.MissingValidation, 0, "missing validation function")
	}

	p := &argParser{src: src, toks: toks}
	args := &Args{}

	if err := p.validator(args); err != nil {
		return nil, err
	}

	if p.atEnd() {
		return args, nil
	}

	if p.toks[p.i].tok != token.COMMA {
		return nil, argErrorf(diagnostic.MalformedArguments, p.offset(), "unexpected %s after validation function", p.toks[p.i].tok)
	}

	p.i++

	text, off, err := p.run(token.ILLEGAL)
	if err != nil {
		return nil, err
	}

	if text == "" {
		return nil, argErrorf(diagnostic.MalformedArguments, off, "missing wire type after ','")
	}

	if !p.atEnd() {
		return nil, argErrorf(diagnostic.TooManyArguments, p.offset(), "too many validation arguments")
	}

	wire, perr := parser.ParseExpr(text)
	if perr != nil {
		return nil, argErrorf(diagnostic.MalformedArguments, off, "invalid wire type %q: %v", text, perr)
	}

	args.Wire, args.WireText, args.WireOffset = wire, text, off

	return args, nil
}

func (p *argParser) validator(args *Args) *ArgError {
	stop := token.ILLEGAL

	if len(p.toks) > 1 && p.toks[0].tok == token.IDENT && p.src[p.toks[0].off:p.toks[0].end] == OptMarker &&
		p.toks[1].tok == token.LPAREN {
		args.Optional = true
		stop = token.RPAREN
		p.i = 2
	}

	text, off, err := p.run(stop)
	if err != nil {
		return err
	}

	if text == "" {
		return argErrorf(diagnostic.MissingValidation, off, "missing validation function")
	}

	if args.Optional {
		if p.atEnd() {
			return argErrorf(diagnostic.MalformedArguments, len(p.src), "missing ) after %s(", OptMarker)
		}

		if p.toks[p.i].tok != token.RPAREN {
			return argErrorf(diagnostic.MalformedArguments, p.offset(), "%s takes a single validation function", OptMarker)
		}

		p.i++
	}

	expr, perr := parser.ParseExpr(text)
	if perr != nil {
		return argErrorf(diagnostic.MalformedArguments, off, "invalid validation function %q: %v", text, perr)
	}

	args.Validator, args.ValidatorText, args.ValidatorOffset = expr, text, off

	return nil
}
