package cmd

import (
	"context"
	"encoding"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/molang/log"
	"github.com/ardnew/molang/pkg"
	"github.com/ardnew/molang/profile"
)

// defaultConfigIndent is the indent width of the generated YAML.
const defaultConfigIndent = 2

// Init writes the current global flag values to the configuration file.
type Init struct {
	Force bool `help:"Overwrite an existing configuration file" short:"F"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	path, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	if _, err := os.Stat(path); err == nil && !i.Force {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(
		configValues(ktx),
		yaml.Indent(defaultConfigIndent),
		yaml.IndentSequence(true),
		yaml.UseLiteralStyleIfMultiline(true),
	)
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return ErrWriteConfig.With(slog.String("file", path)).Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", path),
		slog.String("version", pkg.Version))

	return nil
}

// configValues collects the non-empty values of the application-level flags,
// keyed by flag name. Help and profiling flags are not persisted.
func configValues(ktx *kong.Context) map[string]any {
	ignore := []string{"help", "version", profile.Tag}
	values := make(map[string]any)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(ignore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v, ok := configValue(ktx.FlagValue(flag)); ok {
			values[flag.Name] = v
		}
	}

	return values
}

// configValue returns the YAML form of a flag value, or false if the value
// is empty and should be left out.
func configValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	if m, ok := v.(encoding.TextMarshaler); ok {
		text, err := m.MarshalText()
		if err != nil || len(text) == 0 {
			return nil, false
		}

		return string(text), true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0
	case reflect.Slice, reflect.Map:
		return v, rv.Len() > 0
	default:
		return v, true
	}
}
