package lang

import (
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
)

func TestToNative(t *testing.T) {
	expr, err := ParseExpr(t.Context(), "q.f(x, 'a') ? -1 : break")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	want := map[string]any{
		"node": "ternary",
		"cond": map[string]any{
			"node": "call",
			"function": map[string]any{
				"node":     "access",
				"object":   map[string]any{"node": "identifier", "name": "q"},
				"property": "f",
			},
			"args": []any{
				map[string]any{"node": "identifier", "name": "x"},
				map[string]any{"node": "string", "value": "a"},
			},
		},
		"true":  map[string]any{"node": "double", "value": -1.0},
		"false": map[string]any{"node": "statement", "op": "break"},
	}

	if got := ToNative(expr); !reflect.DeepEqual(got, want) {
		t.Errorf("ToNative() = %v\nwant %v", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	exprs, err := Parse(t.Context(), "1 + x")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	var sb strings.Builder
	if err := FormatJSON(&sb, exprs, 0); err != nil {
		t.Fatalf("format error: %v", err)
	}

	want := `[{"left":{"node":"double","value":1},"node":"binary","op":"+",` +
		`"right":{"name":"x","node":"identifier"}}]` + "\n"

	if sb.String() != want {
		t.Errorf("FormatJSON() = %s, want %s", sb.String(), want)
	}

	sb.Reset()

	if err := FormatJSON(&sb, exprs, 2); err != nil {
		t.Fatalf("format error: %v", err)
	}

	if !strings.Contains(sb.String(), "\n    \"node\": \"binary\",\n") {
		t.Errorf("indented output:\n%s", sb.String())
	}
}

func TestFormatYAML(t *testing.T) {
	exprs, err := Parse(t.Context(), "1 + v.x; v.x == 'a b'")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	for _, indent := range []int{0, 2, 4} {
		var sb strings.Builder
		if err := FormatYAML(t.Context(), &sb, exprs, indent); err != nil {
			t.Fatalf("format error: %v", err)
		}

		var nodes []map[string]any
		if err := yaml.Unmarshal([]byte(sb.String()), &nodes); err != nil {
			t.Fatalf("indent %d: decode error: %v\n%s", indent, err, sb.String())
		}

		if len(nodes) != 2 {
			t.Fatalf("indent %d: got %d nodes, want 2", indent, len(nodes))
		}

		if nodes[0]["op"] != "+" || nodes[1]["op"] != "==" {
			t.Errorf("indent %d: ops = %v, %v", indent, nodes[0]["op"], nodes[1]["op"])
		}

		right, _ := nodes[1]["right"].(map[string]any)
		if right["value"] != "a b" {
			t.Errorf("indent %d: string operand = %v", indent, right["value"])
		}
	}
}
