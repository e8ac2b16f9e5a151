package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Fmt parses a program and prints it in the chosen format.
type Fmt struct {
	Source Source `cmd:"" default:"withargs" help:"Print canonical source (default)."`
	JSON   JSON   `cmd:""                    help:"Print the syntax tree as JSON."`
	YAML   YAML   `cmd:""                    help:"Print the syntax tree as YAML."`
	AST    AST    `cmd:""                    help:"Print an outline of the syntax tree."`
}

// Input is the program read by every fmt subcommand.
type Input struct {
	Files []string `arg:""                                      help:"Source file(s) or '-' for stdin (default)" name:"file" optional:"" type:"path"`
	Fold  bool     `help:"Fold constant subexpressions first"`
}

// parse reads and parses the input. Folding sees the engine scope, so
// constants declared by the manifest are folded too.
func (in *Input) parse(ctx context.Context, format string) ([]lang.Expr, error) {
	paths := in.Files
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	files, err := openSources(paths, stdinFrom(ctx))
	if err != nil {
		return nil, err
	}

	opts := langOptions(in.Fold)

	engine, err := newEngine(ctx, stdoutFrom(ctx), opts...)
	if err != nil {
		return nil, err
	}

	r := files.reader()
	defer r.Close()

	exprs, err := lang.ParseReader(ctx, r, append(opts, lang.WithScope(engine.Scope()))...)
	if err != nil {
		return nil, lang.WrapError(err).With(
			slog.String("command", "fmt"),
			slog.String("format", format),
			slog.String("source", files.Name()))
	}

	log.TraceContext(ctx, "formatting",
		slog.String("format", format),
		slog.Int("exprs", len(exprs)),
		slog.Bool("fold", in.Fold))

	return exprs, nil
}

// Source prints the program in canonical source form, one statement per
// line.
type Source struct {
	Input `embed:""`
}

// Run executes the source command.
func (s *Source) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := s.parse(ctx, "source")
	if err != nil {
		return err
	}

	return lang.FormatProgram(stdoutFrom(ctx), exprs)
}

// JSON prints the syntax tree as JSON.
type JSON struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width; 0 prints compact output" short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	return lang.FormatJSON(stdoutFrom(ctx), exprs, j.Indent)
}

// YAML prints the syntax tree as YAML.
type YAML struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width; 0 prints flow style" short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	if err := lang.FormatYAML(ctx, stdoutFrom(ctx), exprs, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST prints an indented outline of the syntax tree.
type AST struct {
	Input `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exprs, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	return lang.PrintTree(stdoutFrom(ctx), exprs)
}
