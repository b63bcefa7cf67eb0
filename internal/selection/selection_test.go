package selection

import (
	"reflect"
	"testing"
)

func TestToggleInvolution(t *testing.T) {
	s := New()
	s.Toggle("a")
	if !s.Has("a") || s.Size() != 1 {
		t.Fatalf("after first toggle: has=%v size=%d", s.Has("a"), s.Size())
	}
	s.Toggle("a")
	if s.Has("a") || s.Size() != 0 {
		t.Errorf("after second toggle: has=%v size=%d", s.Has("a"), s.Size())
	}
}

func TestZeroValueUsable(t *testing.T) {
	var s Set
	s.Toggle("a")
	if !s.Has("a") {
		t.Error("zero-value Set did not accept Toggle")
	}
}

func TestInsertionOrder(t *testing.T) {
	s := New()
	for _, id := range []string{"c", "a", "b"} {
		s.Toggle(id)
	}
	s.Toggle("a") // remove from the middle
	s.Toggle("a") // re-add at the end

	want := []string{"c", "b", "a"}
	if got := s.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v", got, want)
	}
}

func TestSelectAllReplaces(t *testing.T) {
	s := New()
	s.Toggle("old1")
	s.Toggle("old2")

	s.SelectAll([]string{"a", "b", "a"})

	if s.Has("old1") || s.Has("old2") {
		t.Error("SelectAll kept prior selection; it must replace")
	}
	want := []string{"a", "b"}
	if got := s.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs() = %v, want %v (duplicates collapsed)", got, want)
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.SelectAll([]string{"a", "b"})
	s.Clear()
	if s.Size() != 0 || len(s.IDs()) != 0 {
		t.Errorf("after Clear: size=%d ids=%v", s.Size(), s.IDs())
	}
	// Still usable after clearing.
	s.Toggle("c")
	if !s.Has("c") {
		t.Error("Set unusable after Clear")
	}
}

func TestIDsReturnsCopy(t *testing.T) {
	s := New()
	s.SelectAll([]string{"a", "b"})
	ids := s.IDs()
	ids[0] = "mutated"
	if got := s.IDs(); got[0] != "a" {
		t.Errorf("internal order leaked: %v", got)
	}
}
