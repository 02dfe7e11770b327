package lang

import "testing"

func TestIfElse(t *testing.T) {
	if IfElse(true, "a", "b") != "a" || IfElse(false, "a", "b") != "b" {
		t.Errorf("IfElse picked the wrong branch")
	}
}

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "first", "second"); got != "first" {
		t.Errorf("Coalesce returned %q, want first", got)
	}
	if got := Coalesce(0, 0); got != 0 {
		t.Errorf("Coalesce returned %d for all zero values", got)
	}
}
