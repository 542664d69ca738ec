package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/chessrules/internal/savegame"
)

func newShell(t *testing.T, w, h int) (*Shell, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	sh, err := New(Options{Width: w, Height: h, Store: savegame.NewFileStore(t.TempDir()), Out: &out})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return sh, &out
}

func run(t *testing.T, sh *Shell, out *bytes.Buffer, lines ...string) string {
	t.Helper()
	out.Reset()
	for _, l := range lines {
		if sh.Exec(l) {
			break
		}
	}
	return out.String()
}

func TestRunSessionTranscript(t *testing.T) {
	sh, out := newShell(t, 8, 8)
	in := strings.NewReader("moves B1\nmove B2 B3\nmove b7 b6\nundo\nquit\nmove A2 A3\n")
	if err := sh.Run(in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"New 8x8 game.",
		"B1: A3 C3",
		"White to move.",
		"Bye.",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output lacks %q:\n%s", want, got)
		}
	}
	if n := len(sh.Game().Moves()); n != 1 {
		t.Fatalf("moves after undo = %d, want 1", n)
	}
}

func TestRejectionsAreExplained(t *testing.T) {
	sh, out := newShell(t, 8, 8)
	got := run(t, sh, out, "move B7 B6", "move B2 B5", "move D4 D5", "move 1Q B2", "dance", "move B2")
	for _, want := range []string{
		"It is Black's turn",
		"cannot move to B5",
		"There is no piece on D4.",
		`Cannot read field "1Q"`,
		`Unknown command "dance"`,
		"Usage: move <from> <to>",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output lacks %q:\n%s", want, got)
		}
	}
	if len(sh.Game().Moves()) != 0 {
		t.Fatalf("rejected moves changed history")
	}
}

func TestCaptureIsAnnounced(t *testing.T) {
	sh, out := newShell(t, 8, 8)
	got := run(t, sh, out, "move B2 B3", "move C7 C6", "move B3 B4", "move C6 C5", "move B4 C5")
	if !strings.Contains(got, "White pawn was captured.") {
		t.Fatalf("capture not announced:\n%s", got)
	}
}

func TestSaveLoadCycle(t *testing.T) {
	sh, out := newShell(t, 10, 9)
	got := run(t, sh, out, "move B2 B3", "save first.yaml")
	if !strings.Contains(got, "Saved to "+filepath.Join(sh.store.Dir, "first.yaml")) {
		t.Fatalf("save output:\n%s", got)
	}

	got = run(t, sh, out, "save first.yaml")
	if !strings.Contains(got, "Could not save") {
		t.Fatalf("overwrite not refused:\n%s", got)
	}

	got = run(t, sh, out, "load first.yaml")
	if !strings.Contains(got, "Could not load") {
		t.Fatalf("load onto a played game not refused:\n%s", got)
	}

	got = run(t, sh, out, "new", "load first.yaml")
	if !strings.Contains(got, "Loaded 1 moves from first.yaml.") || len(sh.Game().Moves()) != 1 {
		t.Fatalf("load output:\n%s", got)
	}

	got = run(t, sh, out, "load missing.yaml")
	if !strings.Contains(got, "Could not load") {
		t.Fatalf("missing file not reported:\n%s", got)
	}
}

func TestFENCommand(t *testing.T) {
	sh, out := newShell(t, 8, 8)
	if got := run(t, sh, out, "fen"); !strings.Contains(got, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR") {
		t.Fatalf("fen output:\n%s", got)
	}
	wide, wout := newShell(t, 9, 8)
	if got := run(t, wide, wout, "fen"); !strings.Contains(got, "No FEN for this board") {
		t.Fatalf("fen on 9x8:\n%s", got)
	}
}

func TestUndoOnFreshGame(t *testing.T) {
	sh, out := newShell(t, 8, 8)
	if got := run(t, sh, out, "undo"); !strings.Contains(got, "There is no move to take back.") {
		t.Fatalf("undo output:\n%s", got)
	}
}
