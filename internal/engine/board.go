package engine

import (
	"fmt"
	"sort"
)

// BoardView is the read-only surface the rule functions work against.
type BoardView interface {
	Width() int
	Height() int
	Contains(f Field) bool
	PieceAt(f Field) (*Piece, bool)
	FieldOf(p *Piece) (Field, bool)
	Occupied() []Occupation
}

// Occupation pairs a field with the piece standing on it.
type Occupation struct {
	Field Field
	Piece *Piece
}

// Board is a fixed-size grid. The field->piece table and the piece->field
// index are only ever changed together.
type Board struct {
	width, height int

	pieces map[Field]*Piece
	fields map[*Piece]Field
}

var _ BoardView = (*Board)(nil)

// NewBoard creates an empty board; both dimensions must lie in [8,26].
func NewBoard(width, height int) (*Board, error) {
	if err := ValidateSize(width, height); err != nil {
		return nil, err
	}
	return &Board{
		width:  width,
		height: height,
		pieces: make(map[Field]*Piece),
		fields: make(map[*Piece]Field),
	}, nil
}

// ValidateSize checks a board dimension pair against [MinBoardSize,MaxBoardSize].
func ValidateSize(width, height int) error {
	if width < MinBoardSize || width > MaxBoardSize {
		return fmt.Errorf("%w: width %d", ErrInvalidBoardSize, width)
	}
	if height < MinBoardSize || height > MaxBoardSize {
		return fmt.Errorf("%w: height %d", ErrInvalidBoardSize, height)
	}
	return nil
}

func (b *Board) Width() int { return b.width }
func (b *Board) Height() int { return b.height }

// Contains reports whether f lies within [0,Width)x[0,Height).
func (b *Board) Contains(f Field) bool {
	return f.Column >= 0 && f.Column < b.width && f.Row >= 0 && f.Row < b.height
}

// Place puts a piece that is not yet on the board onto an empty field.
func (b *Board) Place(p *Piece, f Field) error {
	if p == nil {
		return ErrNilPiece
	}
	if at, ok := b.fields[p]; ok {
		return fmt.Errorf("%w: %s at %s", ErrDuplicatePlacement, p, at)
	}
	if !b.Contains(f) {
		return fmt.Errorf("%w: %s on %dx%d", ErrOutOfBounds, f, b.width, b.height)
	}
	if other, ok := b.pieces[f]; ok {
		return fmt.Errorf("%w: %s holds %s", ErrFieldOccupied, f, other)
	}
	b.pieces[f] = p
	b.fields[p] = f
	return nil
}

// Remove takes a piece off the board. Absent pieces are ignored.
func (b *Board) Remove(p *Piece) {
	f, ok := b.fields[p]
	if !ok {
		return
	}
	delete(b.fields, p)
	delete(b.pieces, f)
}

// Move relocates a piece to an empty destination. It does nothing when the
// destination is occupied or the piece is not on the board; captured pieces
// must be removed beforehand.
func (b *Board) Move(p *Piece, dst Field) {
	if _, occupied := b.pieces[dst]; occupied {
		return
	}
	src, ok := b.fields[p]
	if !ok || !b.Contains(dst) {
		return
	}
	delete(b.pieces, src)
	b.pieces[dst] = p
	b.fields[p] = dst
}

// PieceAt returns the occupant of f, if any.
func (b *Board) PieceAt(f Field) (*Piece, bool) {
	p, ok := b.pieces[f]
	return p, ok
}

// FieldOf returns where p stands.
func (b *Board) FieldOf(p *Piece) (Field, bool) {
	f, ok := b.fields[p]
	return f, ok
}

// Occupied lists all occupations ordered by row, then column.
func (b *Board) Occupied() []Occupation {
	out := make([]Occupation, 0, len(b.pieces))
	for f, p := range b.pieces {
		out = append(out, Occupation{Field: f, Piece: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field.less(out[j].Field) })
	return out
}

// Len is the number of pieces on the board.
func (b *Board) Len() int { return len(b.pieces) }

// PiecesOf returns the pieces owned by pl, ordered by field.
func PiecesOf(b BoardView, pl *Player) []*Piece {
	var out []*Piece
	for _, occ := range b.Occupied() {
		if occ.Piece.Owner() == pl {
			out = append(out, occ.Piece)
		}
	}
	return out
}
