package testutil

import (
	"errors"
	"fmt"
	"testing"
)

func TestPrefix(t *testing.T) {
	if got := prefix(); got != "" {
		t.Fatalf("empty prefix = %q", got)
	}
	if got := prefix("move %d", 3); got != "move 3: " {
		t.Fatalf("formatted prefix = %q", got)
	}
}

func TestAssertHelpersPass(t *testing.T) {
	base := errors.New("base")
	AssertEqual(t, []string{"A1", "B2"}, []string{"A1", "B2"})
	AssertErrorIs(t, fmt.Errorf("wrapped: %w", base), base)
	RequireNoError(t, nil)
}
