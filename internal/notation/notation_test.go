package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/park285/chessrules/internal/engine"
	"github.com/park285/chessrules/internal/testutil"
)

func TestParseField(t *testing.T) {
	cases := map[string]engine.Field{
		"A1":  {Column: 0, Row: 0},
		"b2":  {Column: 1, Row: 1},
		" C5": {Column: 2, Row: 4},
		"Z26": {Column: 25, Row: 25},
	}
	for in, want := range cases {
		got, err := ParseField(in)
		testutil.RequireNoError(t, err, in)
		testutil.AssertEqual(t, got, want, in)
		testutil.AssertEqual(t, got.String(), strings.ToUpper(strings.TrimSpace(in)))
	}
	for _, bad := range []string{"", "A", "1A", "A0", "A-1", "AA1", "?3"} {
		if _, err := ParseField(bad); !errors.Is(err, ErrBadField) {
			t.Fatalf("ParseField(%q) err = %v", bad, err)
		}
	}
}

func TestFormatMove(t *testing.T) {
	g, err := engine.NewGame(8, 8)
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, FormatMove(engine.Move{From: engine.Field{Column: 1, Row: 1}, To: engine.Field{Column: 1, Row: 2}}), "B2-B3")

	pawn, _ := g.Board().PieceAt(engine.Field{Column: 2, Row: 6})
	capture := engine.Move{From: engine.Field{Column: 1, Row: 3}, To: engine.Field{Column: 2, Row: 4}, Beaten: pawn}
	testutil.AssertEqual(t, FormatMove(capture), "B4xC5")
	testutil.AssertEqual(t, FormatFields([]engine.Field{{Column: 0, Row: 2}, {Column: 1, Row: 2}}), "A3 B3")
}

func TestPlacementFENStartPosition(t *testing.T) {
	g, err := engine.NewGame(8, 8)
	testutil.RequireNoError(t, err)
	fen, err := PlacementFEN(g)
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, fen, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR")

	g.Move(engine.Field{Column: 4, Row: 1}, engine.Field{Column: 4, Row: 2})
	fen, err = PlacementFEN(g)
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, fen, "rnbqkbnr/pppp1ppp/4p3/8/8/8/PPPPPPPP/RNBQKBNR")
}

func TestPlacementFENRejectsLargeBoards(t *testing.T) {
	g, err := engine.NewGame(10, 8)
	testutil.RequireNoError(t, err)
	_, err = PlacementFEN(g)
	testutil.AssertErrorIs(t, err, ErrNotStandardSize)
}

func TestSetupFromFEN(t *testing.T) {
	g, err := engine.NewEmptyGame(8, 8)
	testutil.RequireNoError(t, err)

	// rank 8 of the FEN is the first player's home row
	testutil.RequireNoError(t, SetupFromFEN(g, "k7/8/8/8/8/8/8/RR5K"))
	king, ok := g.Board().PieceAt(engine.Field{Column: 0, Row: 0})
	if !ok || king.Kind() != engine.King || king.Owner() != g.FirstPlayer() {
		t.Fatalf("A1 holds %v", king)
	}
	rook, ok := g.Board().PieceAt(engine.Field{Column: 1, Row: 7})
	if !ok || rook.Kind() != engine.Rook || rook.Owner() != g.SecondPlayer() {
		t.Fatalf("B8 holds %v", rook)
	}
	fen, err := PlacementFEN(g)
	testutil.RequireNoError(t, err)
	testutil.AssertEqual(t, fen, "k7/8/8/8/8/8/8/RR5K")

	testutil.AssertErrorIs(t, SetupFromFEN(g, "8/8/8/8/8/8/8/8"), ErrBoardNotEmpty)
}

func TestDraw(t *testing.T) {
	g, err := engine.NewGame(8, 8)
	testutil.RequireNoError(t, err)
	out := Draw(g)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	testutil.AssertEqual(t, len(lines), 9)
	testutil.AssertEqual(t, lines[0], " 8  R N B Q K B N R")
	testutil.AssertEqual(t, lines[6], " 2  p p p p p p p p")
	testutil.AssertEqual(t, lines[7], " 1  r n b q k b n r")
	testutil.AssertEqual(t, lines[8], "    A B C D E F G H")
}
