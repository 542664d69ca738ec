package savegame

import (
	"errors"
	"testing"

	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/testutil"
)

func f(col, row int) engine.Field { return engine.Field{Column: col, Row: row} }

// Pawns from B2 and C7 meet; the first player captures on C5.
func sampleSave() Save {
	return Save{Width: 8, Height: 8, Moves: []MovePair{
		{From: f(1, 1), To: f(1, 2)}, // B2-B3
		{From: f(2, 6), To: f(2, 5)}, // C7-C6
		{From: f(1, 2), To: f(1, 3)}, // B3-B4
		{From: f(2, 5), To: f(2, 4)}, // C6-C5
		{From: f(1, 3), To: f(2, 4)}, // B4xC5
	}}
}

func TestRestoreReplaysMoves(t *testing.T) {
	g, err := Restore(sampleSave())
	testutil.RequireNoError(t, err)

	testutil.AssertEqual(t, len(g.Moves()), 5)
	testutil.AssertEqual(t, g.Status(), engine.SecondActive)
	beaten := g.Captured(g.SecondPlayer())
	if len(beaten) != 1 || beaten[0].Kind() != engine.Pawn {
		t.Fatalf("captured = %v", beaten)
	}
	testutil.AssertEqual(t, FromGame(g), sampleSave())
}

func TestRestoreStopsOnDivergence(t *testing.T) {
	s := sampleSave()
	s.Moves = append(s.Moves, MovePair{From: f(0, 0), To: f(0, 5)})
	_, err := Restore(s)
	testutil.AssertErrorIs(t, err, ErrReplayDiverged)
	testutil.AssertErrorIs(t, err, engine.ErrNotYourTurn)
}

func TestValidate(t *testing.T) {
	testutil.AssertErrorIs(t, Save{Width: 7, Height: 8}.Validate(), ErrInvalidSave)
	bad := Save{Width: 8, Height: 8, Moves: []MovePair{{From: f(-1, 0), To: f(0, 0)}}}
	testutil.AssertErrorIs(t, bad.Validate(), ErrInvalidSave)
	testutil.RequireNoError(t, sampleSave().Validate())
}

func TestLoadInto(t *testing.T) {
	current, err := engine.NewGame(8, 8, engine.WithPlayerNames("ann", "bo"))
	testutil.RequireNoError(t, err)

	loaded, err := LoadInto(current, sampleSave())
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, len(loaded.Moves()), 5)
	testutil.AssertEqual(t, loaded.FirstPlayer().Name(), "ann")
	testutil.AssertEqual(t, len(current.Moves()), 0)

	wide, err := engine.NewGame(10, 8)
	testutil.RequireNoError(t, err)
	if _, err := LoadInto(wide, sampleSave()); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}

	current.Move(f(0, 1), f(0, 2))
	if _, err := LoadInto(current, sampleSave()); !errors.Is(err, ErrHistoryNotEmpty) {
		t.Fatalf("expected ErrHistoryNotEmpty, got %v", err)
	}
}
