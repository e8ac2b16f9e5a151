package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Compile specializes a program to a parameter contract and calls it once
// with the given arguments.
type Compile struct {
	Expr    string    `help:"Program source"                                          short:"e" xor:"source"`
	File    string    `help:"Program source file, '-' for stdin"                      short:"f" type:"path" xor:"source"`
	Params  []string  `help:"Parameter as NAME:KIND (f64, f32, int, int32, int64, bool, string)" name:"param" placeholder:"NAME:KIND" sep:"none"`
	Returns lang.Kind `default:"f64"                                                   help:"Result kind (or void)" short:"r"`
	Args    []string  `arg:""                                                          help:"Argument for each parameter, in order" optional:""`
}

// Run executes the compile command.
func (c *Compile) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sig, err := c.signature()
	if err != nil {
		return err
	}

	args, err := c.arguments(sig)
	if err != nil {
		return err
	}

	src, err := c.source(ctx)
	if err != nil {
		return err
	}

	out := stdoutFrom(ctx)

	engine, err := newEngine(ctx, out, langOptions(false)...)
	if err != nil {
		return err
	}

	prog, err := engine.Compile(ctx, src, sig)
	if err != nil {
		return ErrCompile.With(slog.String("signature", sig.String())).Wrap(err)
	}

	log.DebugContext(ctx, "compiled", slog.String("signature", sig.String()))

	result, err := prog.Call(args...)
	if err != nil {
		return ErrArgument.Wrap(err)
	}

	if sig.Result == lang.KindVoid {
		return nil
	}

	_, err = fmt.Fprintln(out, formatResult(result))

	return err
}

func (c *Compile) signature() (lang.Signature, error) {
	sig := lang.Signature{Result: c.Returns}

	for _, p := range c.Params {
		name, kind, ok := strings.Cut(p, ":")
		if !ok {
			kind = lang.KindFloat64.String()
		}

		k, err := lang.ParseKind(kind)
		if err != nil {
			return sig, ErrParam.With(slog.String("param", p)).Wrap(err)
		}

		sig.Params = append(sig.Params, lang.Param{
			Name: strings.ToLower(strings.TrimSpace(name)),
			Kind: k,
		})
	}

	return sig, nil
}

// arguments converts the positional arguments to the Go types of their
// parameters. Missing arguments are zero.
func (c *Compile) arguments(sig lang.Signature) ([]any, error) {
	if len(c.Args) > len(sig.Params) {
		return nil, ErrArgument.With(
			slog.Int("want", len(sig.Params)),
			slog.Int("have", len(c.Args)))
	}

	args := make([]any, len(sig.Params))

	for i, p := range sig.Params {
		text := ""
		if i < len(c.Args) {
			text = c.Args[i]
		}

		v, err := argument(p.Kind, text)
		if err != nil {
			return nil, ErrArgument.With(
				slog.String("param", p.Name),
				slog.String("value", text)).Wrap(err)
		}

		args[i] = v
	}

	return args, nil
}

func argument(k lang.Kind, text string) (any, error) {
	switch {
	case k == lang.KindString:
		return text, nil
	case text == "":
		return 0.0, nil
	case k == lang.KindBool:
		return strconv.ParseBool(text)
	default:
		return strconv.ParseFloat(text, 64)
	}
}

func (c *Compile) source(ctx context.Context) (string, error) {
	if c.File == "" {
		if c.Expr == "" {
			return "", ErrNoSource
		}

		return c.Expr, nil
	}

	files, err := openSources([]string{c.File}, stdinFrom(ctx))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if _, err := files.WriteTo(&sb); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func formatResult(v any) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
