package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Eval evaluates programs and prints each result.
type Eval struct {
	Exprs  []string          `arg:""                                                 help:"Programs to evaluate, each on its own"        name:"expr"  optional:""`
	Source []string          `help:"Source file(s) evaluated as one program, '-' for stdin" name:"file"  placeholder:"FILE" short:"f"        type:"path"`
	Vars   map[string]string `help:"Set variable.NAME before evaluating"                     name:"var"   placeholder:"NAME=VALUE"`
	Fold   bool              `help:"Fold constant subexpressions before evaluating"`
}

type program struct {
	name string
	r    io.Reader
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out := stdoutFrom(ctx)
	opts := langOptions(e.Fold)

	engine, err := newEngine(ctx, out, opts...)
	if err != nil {
		return err
	}

	for name, text := range e.Vars {
		if name == "" || strings.ContainsAny(name, ". \t") {
			return ErrVariable.With(slog.String("name", name))
		}

		engine.Variable().Set(name, parseValue(text))
	}

	programs, err := e.programs(ctx)
	if err != nil {
		return err
	}

	opts = append(opts, lang.WithScope(engine.Scope()))

	for _, p := range programs {
		exprs, err := lang.ParseReader(ctx, p.r, opts...)
		if c, ok := p.r.(io.Closer); ok {
			_ = c.Close()
		}

		if err != nil {
			return lang.WrapError(err).With(
				slog.String("command", "eval"),
				slog.String("source", p.name))
		}

		result := engine.Eval(ctx, nil, exprs)

		log.TraceContext(ctx, "evaluated",
			slog.String("source", p.name),
			slog.Int("exprs", len(exprs)))

		if _, err := fmt.Fprintln(out, lang.AsString(result)); err != nil {
			return err
		}
	}

	return nil
}

// programs lists the inputs to evaluate: each expression argument, then the
// source files as a single program. Standard input is read when nothing else
// is given.
func (e *Eval) programs(ctx context.Context) ([]program, error) {
	list := make([]program, 0, len(e.Exprs)+1)

	for i, src := range e.Exprs {
		list = append(list, program{
			name: fmt.Sprintf("expr[%d]", i),
			r:    strings.NewReader(src),
		})
	}

	paths := e.Source
	if len(paths) == 0 && len(list) == 0 {
		paths = []string{stdinSource}
	}

	files, err := openSources(paths, stdinFrom(ctx))
	if err != nil {
		return nil, err
	}

	if !files.IsZero() {
		list = append(list, program{name: files.Name(), r: files.reader()})
	}

	return list, nil
}
