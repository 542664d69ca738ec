package notation

import (
	"errors"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"

	"github.com/park285/chessrules/internal/engine"
)

var (
	ErrNotStandardSize = errors.New("FEN needs an 8x8 board")
	ErrBoardNotEmpty   = errors.New("board already holds pieces")
)

// The first player is shown as black on rank 8, so engine row r maps to
// rank 8-r.
func toSquare(f engine.Field) nchess.Square {
	return nchess.NewSquare(nchess.File(f.Column), nchess.Rank(7-f.Row))
}

func fromSquare(sq nchess.Square) engine.Field {
	return engine.Field{Column: int(sq.File()), Row: 7 - int(sq.Rank())}
}

func toPiece(p *engine.Piece, first *engine.Player) nchess.Piece {
	black := p.Owner() == first
	switch p.Kind() {
	case engine.King:
		return pick(black, nchess.BlackKing, nchess.WhiteKing)
	case engine.Queen:
		return pick(black, nchess.BlackQueen, nchess.WhiteQueen)
	case engine.Bishop:
		return pick(black, nchess.BlackBishop, nchess.WhiteBishop)
	case engine.Rook:
		return pick(black, nchess.BlackRook, nchess.WhiteRook)
	case engine.Knight:
		return pick(black, nchess.BlackKnight, nchess.WhiteKnight)
	case engine.Pawn:
		return pick(black, nchess.BlackPawn, nchess.WhitePawn)
	}
	return nchess.NoPiece
}

func pick(black bool, b, w nchess.Piece) nchess.Piece {
	if black {
		return b
	}
	return w
}

func fromPieceType(pt nchess.PieceType) (engine.PieceKind, bool) {
	switch pt {
	case nchess.King:
		return engine.King, true
	case nchess.Queen:
		return engine.Queen, true
	case nchess.Bishop:
		return engine.Bishop, true
	case nchess.Rook:
		return engine.Rook, true
	case nchess.Knight:
		return engine.Knight, true
	case nchess.Pawn:
		return engine.Pawn, true
	}
	return 0, false
}

// PlacementFEN returns the piece-placement field of FEN for an 8x8 game.
// The first player's pieces are black.
func PlacementFEN(g *engine.Game) (string, error) {
	b := g.Board()
	if b.Width() != 8 || b.Height() != 8 {
		return "", fmt.Errorf("%w: %dx%d", ErrNotStandardSize, b.Width(), b.Height())
	}
	squares := make(map[nchess.Square]nchess.Piece, len(b.Occupied()))
	for _, occ := range b.Occupied() {
		squares[toSquare(occ.Field)] = toPiece(occ.Piece, g.FirstPlayer())
	}
	return nchess.NewBoard(squares).String(), nil
}

// SetupFromFEN places the pieces described by fen onto an empty 8x8 game.
// Only the placement field is used; black pieces go to the first player.
func SetupFromFEN(g *engine.Game, fen string) error {
	b := g.Board()
	if b.Width() != 8 || b.Height() != 8 {
		return fmt.Errorf("%w: %dx%d", ErrNotStandardSize, b.Width(), b.Height())
	}
	if len(b.Occupied()) > 0 {
		return ErrBoardNotEmpty
	}
	fields := strings.Fields(fen)
	if len(fields) == 0 {
		return errors.New("empty FEN")
	}
	full := fields[0] + " w - - 0 1"
	opt, err := nchess.FEN(full)
	if err != nil {
		return fmt.Errorf("parse FEN: %w", err)
	}
	pos := nchess.NewGame(opt).Position()
	for sq, pc := range pos.Board().SquareMap() {
		kind, ok := fromPieceType(pc.Type())
		if !ok {
			continue
		}
		owner := g.SecondPlayer()
		if pc.Color() == nchess.Black {
			owner = g.FirstPlayer()
		}
		if err := g.Place(engine.NewPiece(kind, owner), fromSquare(sq)); err != nil {
			return err
		}
	}
	return nil
}
