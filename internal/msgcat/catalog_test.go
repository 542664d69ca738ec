package msgcat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEmbeddedRejectMessages(t *testing.T) {
	c := MustDefault()
	for _, key := range []string{
		"reject.not_your_turn",
		"reject.no_piece_at_source",
		"reject.illegal_destination",
		"reject.game_already_over",
		"reject.not_last_move",
		"status.first_won",
		"cli.help",
	} {
		if !c.Has(key) {
			t.Fatalf("missing %s", key)
		}
	}
	got, err := c.Render("reject.illegal_destination", map[string]any{"From": "B2", "To": "B5"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "The piece on B2 cannot move to B5." {
		t.Fatalf("rendered %q", got)
	}
}

func TestRenderErrors(t *testing.T) {
	c := MustDefault()
	if _, err := c.Render("no.such.key", nil); !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
	if _, err := c.Render("reject.no_piece_at_source", map[string]any{}); err == nil {
		t.Fatalf("missing template field should fail")
	}
	if got := c.Text("no.such.key", nil); got != "no.such.key" {
		t.Fatalf("Text fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.yaml", "status:\n  draw: \"Remis.\"\n")
	write("notes.txt", "ignored")

	c, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := c.Text("status.draw", nil); got != "Remis." {
		t.Fatalf("override not applied: %q", got)
	}

	write("b.yml", "status:\n  draw: \"Pat.\"\n")
	if _, err := New(dir); err == nil {
		t.Fatalf("duplicate override keys should fail")
	}
}

func TestNonStringLeafRejected(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.yaml"), []byte("cli:\n  welcome: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("non-string leaf should fail")
	}
}
