package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

type (
	kongKey     struct{}
	manifestKey struct{}
	stdioKey    struct{}
)

type stdio struct {
	in  io.Reader
	out io.Writer
}

// WithContext returns a copy of ctx carrying the parsed kong context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, kongKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, _ := ctx.Value(kongKey{}).(*kong.Context)

	return ktx
}

// WithManifest returns a copy of ctx naming the host manifest every command
// loads into its engine. An empty path loads nothing.
func WithManifest(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, manifestKey{}, path)
}

func manifestFrom(ctx context.Context) string {
	path, _ := ctx.Value(manifestKey{}).(string)

	return path
}

// WithStdio returns a copy of ctx whose commands read from in and write
// results to out instead of the process standard streams.
func WithStdio(ctx context.Context, in io.Reader, out io.Writer) context.Context {
	return context.WithValue(ctx, stdioKey{}, stdio{in: in, out: out})
}

func stdinFrom(ctx context.Context) io.Reader {
	if s, ok := ctx.Value(stdioKey{}).(stdio); ok && s.in != nil {
		return s.in
	}

	return os.Stdin
}

func stdoutFrom(ctx context.Context) io.Writer {
	if s, ok := ctx.Value(stdioKey{}).(stdio); ok && s.out != nil {
		return s.out
	}

	return os.Stdout
}

// stdinSource is the special source name for standard input.
const stdinSource = "-"

// sourceFiles reads a list of files as one stream. Files are opened lazily
// in order; standard input, if named, is read last.
type sourceFiles struct {
	paths []string
	stdin io.Reader
}

// openSources deduplicates paths by identity (so a file named twice, or
// through a symlink, is read once) and returns a reader over all of them.
// Every occurrence of "-" is collapsed into a single trailing stdin.
func openSources(paths []string, stdin io.Reader) (*sourceFiles, error) {
	var (
		src  sourceFiles
		seen []os.FileInfo
	)

	for _, path := range paths {
		if path == stdinSource {
			src.stdin = stdin

			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}

		if info.IsDir() {
			return nil, ErrReadSource.
				With(slog.String("file", path)).
				Wrap(errors.New("is a directory"))
		}

		dup := false

		for _, s := range seen {
			if os.SameFile(s, info) {
				dup = true

				break
			}
		}

		if !dup {
			seen = append(seen, info)
			src.paths = append(src.paths, filepath.Clean(path))
		}
	}

	return &src, nil
}

// IsZero reports whether no source was named.
func (s *sourceFiles) IsZero() bool {
	return s == nil || (len(s.paths) == 0 && s.stdin == nil)
}

// Name describes the sources for error messages.
func (s *sourceFiles) Name() string {
	names := append([]string(nil), s.paths...)
	if s.stdin != nil {
		names = append(names, "<stdin>")
	}

	return strings.Join(names, ",")
}

// WriteTo copies every source to w in order.
func (s *sourceFiles) WriteTo(w io.Writer) (int64, error) {
	var total int64

	for _, path := range s.paths {
		n, err := copyFile(w, path)
		total += n

		if err != nil {
			return total, ErrReadSource.With(slog.String("file", path)).Wrap(err)
		}
	}

	if s.stdin != nil {
		n, err := io.Copy(w, s.stdin)
		total += n

		if err != nil {
			return total, ErrReadSource.With(slog.String("file", stdinSource)).Wrap(err)
		}
	}

	return total, nil
}

func copyFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(w, f)
	if err != nil {
		return n, err
	}

	// Files are concatenated, so a missing final newline must not join the
	// last statement of one file with the first of the next.
	k, err := io.WriteString(w, "\n")

	return n + int64(k), err
}

// reader returns a pipe fed by WriteTo, so the parser can stream it.
func (s *sourceFiles) reader() io.ReadCloser {
	r, w := io.Pipe()

	go func() {
		_, err := s.WriteTo(w)
		w.CloseWithError(err)
	}()

	return r
}

// langOptions returns the parse and evaluation options shared by every
// command.
func langOptions(fold bool) []lang.Option {
	return []lang.Option{
		lang.WithLogger(log.Default().With(slog.String("pkg", "lang"))),
		lang.WithFolding(fold),
	}
}

// newEngine builds the engine a command evaluates with: the standard
// namespaces, query.log printing its arguments to out, and the manifest
// named by [WithManifest].
func newEngine(ctx context.Context, out io.Writer, opts ...lang.Option) (*lang.Engine, error) {
	e := lang.NewEngine(opts...)

	impls := map[string]any{
		"query.log": func(parts ...string) {
			fmt.Fprintln(out, strings.Join(parts, " "))
		},
	}

	e.Query().Set("log", lang.MustHostFunction("log", impls["query.log"], false))

	path := manifestFrom(ctx)
	if path == "" {
		return e, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, ErrLoadManifest.With(slog.String("file", path)).Wrap(err)
	}
	defer f.Close()

	if err := e.LoadManifest(ctx, f, impls); err != nil {
		return nil, ErrLoadManifest.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "manifest loaded", slog.String("file", path))

	return e, nil
}

// parseValue interprets command-line text as a script value: a number,
// true/false, or otherwise a string.
func parseValue(s string) lang.Value {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return lang.NumberOf(f)
	}

	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return lang.Bool(b)
	}

	return lang.String(s)
}
