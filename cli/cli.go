package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/cli/cmd"
	"github.com/ardnew/molang/pkg"
)

const baseConfig = "config"

// CLI is the top-level command-line interface for molang.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Manifest string `help:"Host manifest (YAML) declaring namespaces, functions and fields" placeholder:"FILE" short:"m" type:"existingfile"`

	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Eval    cmd.Eval    `cmd:"" default:"withargs" help:"Evaluate programs (default)"`
	Fmt     cmd.Fmt     `cmd:""                    help:"Format programs as source, JSON, YAML or a tree"`
	Compile cmd.Compile `cmd:""                    help:"Compile a program to a typed signature and call it"`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive session"`
	Init    cmd.Init    `cmd:""                    help:"Write the current options to the configuration file"`
}

// Run executes the molang CLI with the given context and arguments. exit is
// called by kong for --help, --version and usage errors.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := pkg.MkdirAll(); err != nil {
		return err
	}

	configFile := pkg.ConfigPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":            pkg.Version,
		cmd.ConfigIdentifier: configFile,
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Configure the logger before parsing so that every message, including
	// parse errors, honors the logging flags wherever they appear.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, pkg.ConfigPath(baseConfig+".json")),
		kong.Configuration(loadYAML, configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithManifest(ctx, cli.Manifest)

	defer cli.Log.start(ctx)()

	// No-op unless built with the pprof tag and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
