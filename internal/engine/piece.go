package engine

import "fmt"

// PieceKind is the closed set of piece types.
type PieceKind int

const (
	King PieceKind = iota
	Queen
	Bishop
	Rook
	Knight
	Pawn
)

var pieceKindNames = [...]string{
	King:   "king",
	Queen:  "queen",
	Bishop: "bishop",
	Rook:   "rook",
	Knight: "knight",
	Pawn:   "pawn",
}

func (k PieceKind) String() string {
	if k < 0 || int(k) >= len(pieceKindNames) {
		return fmt.Sprintf("PieceKind(%d)", int(k))
	}
	return pieceKindNames[k]
}

// Symbol is the single-letter notation, upper case. Pawns use "P".
func (k PieceKind) Symbol() string {
	switch k {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Knight:
		return "N"
	case Pawn:
		return "P"
	}
	return "?"
}

// Piece is a game token. Identity is the pointer; a piece knows nothing
// about where it stands, the Board does.
type Piece struct {
	kind  PieceKind
	owner *Player
}

// NewPiece creates a piece of the given kind owned by owner.
func NewPiece(kind PieceKind, owner *Player) *Piece {
	return &Piece{kind: kind, owner: owner}
}

func (p *Piece) Kind() PieceKind { return p.kind }
func (p *Piece) Owner() *Player { return p.owner }

// SameSide reports whether both pieces belong to the same player.
func (p *Piece) SameSide(o *Piece) bool {
	return p != nil && o != nil && p.owner == o.owner
}

func (p *Piece) String() string {
	if p == nil {
		return "<empty>"
	}
	return fmt.Sprintf("%s %s", p.owner, p.kind)
}
