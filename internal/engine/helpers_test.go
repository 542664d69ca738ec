package engine

import (
	"testing"
)

// at parses "B2" style fields for tests.
func at(s string) Field {
	col := int(s[0] - 'A')
	row := 0
	for _, r := range s[1:] {
		row = row*10 + int(r-'0')
	}
	return Field{Column: col, Row: row - 1}
}

func fields(names ...string) []Field {
	out := make([]Field, 0, len(names))
	for _, n := range names {
		out = append(out, at(n))
	}
	return out
}

func newEmpty(t *testing.T) *Game {
	t.Helper()
	g, err := NewEmptyGame(8, 8)
	if err != nil {
		t.Fatalf("new empty game: %v", err)
	}
	return g
}

func mustPlace(t *testing.T, g *Game, kind PieceKind, owner *Player, field string) *Piece {
	t.Helper()
	p := NewPiece(kind, owner)
	if err := g.Place(p, at(field)); err != nil {
		t.Fatalf("place %s at %s: %v", p, field, err)
	}
	return p
}
