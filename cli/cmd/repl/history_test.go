package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}

	for _, e := range []HistoryEntry{
		{"1 + 2", modeEval},
		{"list", modeCtrl},
		{"1 + 2", modeEval},
		{"v.x = 3", modeEval},
		{"list", modeCtrl},
		{"  ", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q) error = %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"1 + 2", modeEval},
		{"v.x = 3", modeEval},
		{"list", modeCtrl},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, wantFile := string(data), "E:1 + 2\nE:v.x = 3\nC:list\n"; got != wantFile {
		t.Errorf("file = %q, want %q", got, wantFile)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded Entries() = %v, want %v", got, want)
	}

	if _, err := reloaded.Entry(3); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(3) error = %v, want %v", err, ErrOutOfBounds)
	}
}

func TestHistoryInMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Add("q.health", modeEval); err != nil {
		t.Fatal(err)
	}

	if err := h.Add("q.health", modeCtrl); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}

func TestParseHistoryEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:1+1", HistoryEntry{"1+1", modeEval}},
		{"C:quit", HistoryEntry{"quit", modeCtrl}},
		{"math.pi", HistoryEntry{"math.pi", modeEval}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := parseHistoryEntry(tt.line); got != tt.want {
				t.Errorf("parseHistoryEntry(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
