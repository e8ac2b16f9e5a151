package lang

import (
	"slices"
	"sync"
	"testing"
)

func TestScope_CaseInsensitive(t *testing.T) {
	s := NewScope()
	s.Set("Health", NumberOf(20))

	for _, name := range []string{"health", "HEALTH", "hEaLtH"} {
		if v, ok := s.Lookup(name); !ok || AsNumber(v) != 20 {
			t.Errorf("Lookup(%q) = %v, %v", name, v, ok)
		}
	}

	if got := s.Names(); !slices.Equal(got, []string{"health"}) {
		t.Errorf("Names() = %v", got)
	}
}

func TestScope_Set(t *testing.T) {
	s := NewScope()
	s.Set("a", NumberOf(1))
	s.Set("b", NumberOf(2))
	s.Set("c", NumberOf(3))

	s.Set("a", NumberOf(10))
	if got := AsNumber(s.Get("a")); got != 10 {
		t.Errorf("a = %v after overwrite, want 10", got)
	}

	s.Set("b", nil)
	if _, ok := s.Lookup("b"); ok {
		t.Error("b still bound after removal")
	}

	if got := s.Names(); !slices.Equal(got, []string{"a", "c"}) {
		t.Errorf("Names() = %v, want [a c]", got)
	}

	if got := AsNumber(s.Get("c")); got != 3 {
		t.Errorf("c = %v after removing b, want 3", got)
	}

	if got := s.Get("missing"); got != Zero {
		t.Errorf("Get(missing) = %v, want Zero", got)
	}
}

func TestScope_Constant(t *testing.T) {
	s := NewScope()
	s.SetConstant("k", NumberOf(1))

	if !s.IsConstant("K") {
		t.Error("k is not constant")
	}

	s.Set("k", NumberOf(2))
	if s.IsConstant("k") {
		t.Error("plain Set kept the constant flag")
	}

	if s.IsConstant("missing") {
		t.Error("unbound name reported constant")
	}
}

func TestScope_ReadOnly(t *testing.T) {
	s := NewScope()
	s.Set("x", NumberOf(1))
	s.SetReadOnly(true)

	if !s.IsReadOnly() {
		t.Fatal("IsReadOnly() = false")
	}

	if s.Set("x", NumberOf(2)) || s.Set("y", NumberOf(2)) {
		t.Error("read-only scope accepted a write")
	}

	if got := AsNumber(s.Get("x")); got != 1 {
		t.Errorf("x = %v, want 1", got)
	}

	c := s.Copy()
	if c.IsReadOnly() || !c.Set("x", NumberOf(5)) {
		t.Error("copy is not writable")
	}
}

func TestScope_Copy(t *testing.T) {
	s := NewScope()
	s.SetConstant("a", NumberOf(1))

	c := s.Copy()
	c.Set("b", NumberOf(2))
	c.Set("a", NumberOf(3))

	if _, ok := s.Lookup("b"); ok {
		t.Error("copy wrote through to the original")
	}

	if got := AsNumber(s.Get("a")); got != 1 || !s.IsConstant("a") {
		t.Errorf("original a = %v", got)
	}

	if c.id == s.id {
		t.Error("copy shares the scope id")
	}
}

func TestScope_Entries(t *testing.T) {
	s := NewScope()
	for i, name := range []string{"x", "y", "z"} {
		s.Set(name, NumberOf(float64(i)))
	}

	var names []string
	for name := range s.Entries() {
		names = append(names, name)
		if name == "y" {
			break
		}
	}

	if !slices.Equal(names, []string{"x", "y"}) {
		t.Errorf("entries = %v, want [x y]", names)
	}

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestScope_Nil(t *testing.T) {
	var s *Scope

	if _, ok := s.Lookup("x"); ok {
		t.Error("nil scope resolved a name")
	}

	if s.IsConstant("x") {
		t.Error("nil scope reported a constant")
	}
}

func TestScope_ZeroValue(t *testing.T) {
	var s Scope

	if !s.Set("x", NumberOf(1)) {
		t.Fatal("zero scope rejected a write")
	}

	if got := AsNumber(s.Get("x")); got != 1 {
		t.Errorf("x = %v, want 1", got)
	}
}

func TestScope_Concurrent(t *testing.T) {
	s := NewScope()

	var wg sync.WaitGroup

	for i := range 8 {
		wg.Go(func() {
			for j := range 100 {
				s.Set("n", NumberOf(float64(i*j)))
				_ = s.Get("n")
				_ = s.Names()
			}
		})
	}

	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}
