package engine

import (
	"errors"
	"reflect"
	"testing"

	"github.com/park285/chessrules/internal/testutil"
)

func TestNewGameStandardSetup(t *testing.T) {
	g, err := NewGame(8, 8)
	testutil.RequireNoError(t, err)

	testutil.AssertEqual(t, g.Status(), FirstActive)
	testutil.AssertEqual(t, len(g.Board().Occupied()), 32)
	testutil.AssertEqual(t, g.FirstPlayer().Name(), "Black")
	testutil.AssertEqual(t, g.SecondPlayer().Name(), "White")

	checks := []struct {
		field string
		kind  PieceKind
		owner *Player
	}{
		{"A1", Rook, g.FirstPlayer()},
		{"B1", Knight, g.FirstPlayer()},
		{"C1", Bishop, g.FirstPlayer()},
		{"D1", Queen, g.FirstPlayer()},
		{"E1", King, g.FirstPlayer()},
		{"H2", Pawn, g.FirstPlayer()},
		{"D8", Queen, g.SecondPlayer()},
		{"E8", King, g.SecondPlayer()},
		{"A7", Pawn, g.SecondPlayer()},
	}
	for _, c := range checks {
		p, ok := g.Board().PieceAt(at(c.field))
		if !ok || p.Kind() != c.kind || p.Owner() != c.owner {
			t.Fatalf("%s holds %v", c.field, p)
		}
	}
}

func TestNewGameLargeBoard(t *testing.T) {
	g, err := NewGame(10, 12, WithPlayerNames("alice", "bob"))
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, g.FirstPlayer().Name(), "alice")
	testutil.AssertEqual(t, g.SecondPlayer().Name(), "bob")
	testutil.AssertEqual(t, g.FirstPlayer().Facing(), North)
	testutil.AssertEqual(t, g.SecondPlayer().Facing(), South)

	if p, ok := g.Board().PieceAt(at("E12")); !ok || p.Kind() != King || p.Owner() != g.SecondPlayer() {
		t.Fatalf("E12 holds %v", p)
	}
	if p, ok := g.Board().PieceAt(at("A11")); !ok || p.Kind() != Pawn {
		t.Fatalf("A11 holds %v", p)
	}
	for _, f := range []string{"I1", "J2", "I11", "J12"} {
		if _, ok := g.Board().PieceAt(at(f)); ok {
			t.Fatalf("%s should be empty", f)
		}
	}
}

func TestNewGameRejectsBadSize(t *testing.T) {
	if _, err := NewGame(7, 8); !errors.Is(err, ErrInvalidBoardSize) {
		t.Fatalf("expected ErrInvalidBoardSize, got %v", err)
	}
}

func TestPawnAdvanceFlipsTurn(t *testing.T) {
	g, err := NewGame(8, 8)
	testutil.RequireNoError(t, err)
	pawn, _ := g.Board().PieceAt(at("B2"))

	events, err := g.TryMove(at("B2"), at("B3"))
	testutil.RequireNoError(t, err)

	want := []Event{
		PieceMoved{Piece: pawn, To: at("B3")},
		StatusUpdated{Status: SecondActive},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("events = %#v", events)
	}
	testutil.AssertEqual(t, g.Moves(), []Move{{From: at("B2"), To: at("B3")}})
	if g.ActivePlayer() != g.SecondPlayer() {
		t.Fatalf("active = %v", g.ActivePlayer())
	}
}

func TestRejectedMovesLeaveGameUntouched(t *testing.T) {
	g, err := NewGame(8, 8)
	testutil.RequireNoError(t, err)

	cases := []struct {
		name     string
		from, to string
		reason   Reason
		sentinel error
	}{
		{"empty source", "C4", "C5", ReasonNoPieceAtSource, ErrNoPieceAtSource},
		{"opponent piece", "B7", "B6", ReasonNotYourTurn, ErrNotYourTurn},
		{"pawn double step", "B2", "B4", ReasonIllegalDestination, ErrIllegalDestination},
		{"rook through pawn", "A1", "A4", ReasonIllegalDestination, ErrIllegalDestination},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			events, err := g.TryMove(at(tc.from), at(tc.to))
			if events != nil {
				t.Fatalf("rejected move returned events %v", events)
			}
			testutil.AssertErrorIs(t, err, tc.sentinel)
			testutil.AssertEqual(t, ReasonOf(err), tc.reason)
			if g.Move(at(tc.from), at(tc.to)) != nil {
				t.Fatalf("Move returned events on rejection")
			}
		})
	}
	testutil.AssertEqual(t, len(g.Moves()), 0)
	testutil.AssertEqual(t, g.Status(), FirstActive)
	testutil.AssertEqual(t, len(g.Board().Occupied()), 32)
}

func TestCaptureAndRewindRestoresPiece(t *testing.T) {
	g := newEmpty(t)
	mustPlace(t, g, King, g.FirstPlayer(), "H1")
	mustPlace(t, g, King, g.SecondPlayer(), "H8")
	rook := mustPlace(t, g, Rook, g.FirstPlayer(), "A1")
	knight := mustPlace(t, g, Knight, g.SecondPlayer(), "A5")

	events := g.Move(at("A1"), at("A5"))
	want := []Event{
		PieceBeaten{Piece: knight},
		PieceMoved{Piece: rook, To: at("A5")},
		StatusUpdated{Status: SecondActive},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("capture events = %#v", events)
	}
	if moves := g.Moves(); len(moves) != 1 || moves[0].Beaten != knight {
		t.Fatalf("moves = %v", moves)
	}
	if got := g.Captured(g.SecondPlayer()); len(got) != 1 || got[0] != knight {
		t.Fatalf("captured = %v", got)
	}

	events = g.RewindLast()
	want = []Event{
		PieceMoved{Piece: rook, To: at("A1"), Rewind: true},
		PiecePlaced{Piece: knight, Field: at("A5")},
		StatusUpdated{Status: FirstActive},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("rewind events = %#v", events)
	}
	if p, _ := g.Board().PieceAt(at("A5")); p != knight {
		t.Fatalf("A5 holds %v after rewind", p)
	}
	if p, _ := g.Board().PieceAt(at("A1")); p != rook {
		t.Fatalf("A1 holds %v after rewind", p)
	}
	testutil.AssertEqual(t, len(g.Moves()), 0)
	testutil.AssertEqual(t, len(g.Captured(g.SecondPlayer())), 0)
}

func TestRewindOnlyLastMove(t *testing.T) {
	g, err := NewGame(8, 8)
	testutil.RequireNoError(t, err)

	_, err = g.TryRewind(Move{From: at("B2"), To: at("B3")})
	testutil.AssertErrorIs(t, err, ErrNotLastMove)

	g.Move(at("B2"), at("B3"))
	g.Move(at("G7"), at("G6"))
	first := g.Moves()[0]

	_, err = g.TryRewind(first)
	testutil.AssertErrorIs(t, err, ErrNotLastMove)
	testutil.AssertEqual(t, len(g.Moves()), 2)

	events := g.RewindLast()
	if len(events) != 2 {
		t.Fatalf("rewind events = %v", events)
	}
	testutil.AssertEqual(t, g.Status(), SecondActive)
	testutil.AssertEqual(t, g.Moves(), []Move{first})
}

func TestMissingKingEndsGame(t *testing.T) {
	g := newEmpty(t)
	mustPlace(t, g, King, g.FirstPlayer(), "E1")
	second := mustPlace(t, g, King, g.SecondPlayer(), "E8")
	g.Remove(second)

	events := g.DetermineCurrentGameStatus()
	if !reflect.DeepEqual(events, []Event{StatusUpdated{Status: FirstWon}}) {
		t.Fatalf("events = %#v", events)
	}
	if !g.IsGameOver() || g.ActivePlayer() != nil {
		t.Fatalf("game should be over, status %v", g.Status())
	}
	_, err := g.TryMove(at("E1"), at("E2"))
	testutil.AssertErrorIs(t, err, ErrGameOver)

	if again := g.DetermineCurrentGameStatus(); len(again) != 0 {
		t.Fatalf("repeated evaluation emitted %#v", again)
	}
	testutil.AssertEqual(t, g.Status(), FirstWon)
}

func TestBothKingsMissingFavoursSecond(t *testing.T) {
	g := newEmpty(t)
	events := g.DetermineCurrentGameStatus()
	if !reflect.DeepEqual(events, []Event{StatusUpdated{Status: SecondWon}}) {
		t.Fatalf("events = %#v", events)
	}
}

func TestKingInDangerIsEdgeTriggered(t *testing.T) {
	g := newEmpty(t)
	king := mustPlace(t, g, King, g.FirstPlayer(), "A1")
	mustPlace(t, g, Rook, g.SecondPlayer(), "A8")
	mustPlace(t, g, King, g.SecondPlayer(), "H8")

	events := g.DetermineCurrentGameStatus()
	if !reflect.DeepEqual(events, []Event{KingInDanger{King: king, InDanger: true}}) {
		t.Fatalf("first evaluation = %#v", events)
	}
	if again := g.DetermineCurrentGameStatus(); len(again) != 0 {
		t.Fatalf("second evaluation = %#v", again)
	}
	if !g.KingInDanger(g.FirstPlayer()) || g.IsGameOver() {
		t.Fatalf("king can escape to B1/B2, game must continue")
	}
}

func TestCheckmateAndRewind(t *testing.T) {
	g := newEmpty(t)
	king := mustPlace(t, g, King, g.FirstPlayer(), "A1")
	mustPlace(t, g, Pawn, g.FirstPlayer(), "H2")
	mustPlace(t, g, King, g.SecondPlayer(), "H8")
	mustPlace(t, g, Rook, g.SecondPlayer(), "B8")
	rook := mustPlace(t, g, Rook, g.SecondPlayer(), "C5")

	var seen []Event
	g.Subscribe(func(ev Event) { seen = append(seen, ev) })

	if ev := g.Move(at("H2"), at("H3")); len(ev) != 2 {
		t.Fatalf("pawn move events = %#v", ev)
	}
	events := g.Move(at("C5"), at("A5"))
	want := []Event{
		PieceMoved{Piece: rook, To: at("A5")},
		StatusUpdated{Status: FirstActive},
		KingInDanger{King: king, InDanger: true},
		StatusUpdated{Status: SecondWon},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("mating move events = %#v", events)
	}
	if !g.IsGameOver() || g.Status() != SecondWon {
		t.Fatalf("status = %v", g.Status())
	}
	testutil.AssertEqual(t, len(seen), 6)

	_, err := g.TryMove(at("A1"), at("B1"))
	testutil.AssertErrorIs(t, err, ErrGameOver)

	events = g.RewindLast()
	want = []Event{
		PieceMoved{Piece: rook, To: at("C5"), Rewind: true},
		StatusUpdated{Status: SecondActive},
		KingInDanger{King: king, InDanger: false},
	}
	if !reflect.DeepEqual(events, want) {
		t.Fatalf("rewind events = %#v", events)
	}
	if g.IsGameOver() || g.KingInDanger(g.FirstPlayer()) {
		t.Fatalf("rewind should reopen the game, status %v", g.Status())
	}
}

func TestCheckOnInactiveSideIsNotMate(t *testing.T) {
	g := newEmpty(t)
	king := mustPlace(t, g, King, g.FirstPlayer(), "A1")
	mustPlace(t, g, Pawn, g.FirstPlayer(), "H2")
	mustPlace(t, g, King, g.SecondPlayer(), "H8")
	mustPlace(t, g, Rook, g.SecondPlayer(), "A8")
	mustPlace(t, g, Rook, g.SecondPlayer(), "B7")

	// the first player's king is boxed in but it is not its turn after the move
	events := g.Move(at("H2"), at("H3"))
	if len(events) != 3 {
		t.Fatalf("events = %#v", events)
	}
	if ev, ok := events[2].(KingInDanger); !ok || ev.King != king || !ev.InDanger {
		t.Fatalf("third event = %#v", events[2])
	}
	testutil.AssertEqual(t, g.Status(), SecondActive)
}
