package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/log"
)

type initCLI struct {
	Level  log.Level         `default:"debug"`
	Count  int               `default:"3"`
	Name   string            `default:""`
	Tags   []string          `default:"a,b"`
	Labels map[string]string ``
	Secret string            `default:"x"  hidden:""`
	Init   Init              `cmd:""`
}

func parseInit(t *testing.T, path string, args ...string) (*initCLI, *kong.Context) {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: path})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return &cli, ktx
}

func TestInitRun(t *testing.T) {
	const want = "count: 3\nlevel: debug\ntags:\n  - a\n  - b\n"

	tests := []struct {
		name     string
		existing bool
		force    bool
		wantErr  error
	}{
		{name: "create"},
		{name: "overwrite_with_force", existing: true, force: true},
		{name: "refuse_overwrite", existing: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")

			if tt.existing {
				if err := os.WriteFile(path, []byte("old: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			var args []string
			if tt.force {
				args = append(args, "--force")
			}

			cli, ktx := parseInit(t, path, args...)

			err := cli.Init.Run(WithContext(t.Context(), ktx))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("Run() error = %v, want %v", err, tt.wantErr)
				}

				data, _ := os.ReadFile(path)
				if string(data) != "old: true\n" {
					t.Errorf("existing file modified: %q", data)
				}

				return
			}

			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}

			if string(data) != want {
				t.Errorf("config =\n%s\nwant\n%s", data, want)
			}
		})
	}
}

func TestInitBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "dir", "config.yaml")

	cli, ktx := parseInit(t, path)

	if err := cli.Init.Run(WithContext(t.Context(), ktx)); !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

func TestConfigValue(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   any
		wantOK bool
	}{
		{"nil", nil, nil, false},
		{"empty_string", "", nil, false},
		{"string", "x", "x", true},
		{"text_marshaler", log.LevelWarn, "warn", true},
		{"empty_slice", []string{}, nil, false},
		{"int", 0, 0, true},
		{"bool", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := configValue(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("configValue(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}

			if ok && got != tt.want {
				t.Errorf("configValue(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
