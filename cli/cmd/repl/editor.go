package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

const defaultEditor = "vi"

// editManifestCommand implements [tea.ExecCommand]. It opens the manifest in
// the user's editor and reloads the engine from it, offering to re-edit
// until the manifest loads or the user gives up.
type editManifestCommand struct {
	path    string
	load    Loader
	out     io.Writer
	ctxFunc func() context.Context
	logger  log.Logger
	engine  *lang.Engine
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (c *editManifestCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editManifestCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editManifestCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run edits and reloads the manifest. An emptied file cancels the edit and
// leaves c.engine nil; declining to re-edit returns [ErrEditDeclined].
func (c *editManifestCommand) Run() error {
	ctx := c.ctxFunc()

	for attempt := 1; ; attempt++ {
		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, c.path); err != nil {
			return err
		}

		if info, err := os.Stat(c.path); err != nil {
			return err
		} else if info.Size() == 0 {
			return nil
		}

		e, err := c.load(ctx, c.out)
		c.logger.DebugContext(ctx, "manifest reload",
			slog.String("file", c.path),
			slog.Int("attempt", attempt),
			slog.Bool("ok", err == nil),
		)

		if err == nil {
			c.engine = e

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", err)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		if !confirm(c.stdin) {
			return ErrEditDeclined
		}
	}
}

// confirm reads one line and reports whether it is not a "no".
func confirm(r io.Reader) bool {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "n", "no":
		return false
	}

	return true
}

// runEditor opens path in $EDITOR and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
