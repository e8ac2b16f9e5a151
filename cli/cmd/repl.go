package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/molang/cli/cmd/repl"
	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Repl starts an interactive session.
type Repl struct {
	Fold    bool `help:"Fold constant subexpressions before evaluating"`
	History bool `default:"true" help:"Persist input history in the cache directory" negatable:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	cacheDir := ""
	if ktx := kongContextFrom(ctx); r.History && ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	load := func(ctx context.Context, out io.Writer) (*lang.Engine, error) {
		return newEngine(ctx, out, langOptions(r.Fold)...)
	}

	return repl.Run(ctx, load, manifestFrom(ctx), cacheDir,
		log.Default().With(slog.String("cmd", "repl")))
}
