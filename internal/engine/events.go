package engine

// Event is a domain notification produced by a mutating Game call.
type Event interface {
	EventType() string
}

type PiecePlaced struct {
	Piece *Piece
	Field Field
}

type PieceBeaten struct {
	Piece *Piece
}

// PieceMoved reports a relocation. Rewind is set when the move undoes an
// earlier one.
type PieceMoved struct {
	Piece  *Piece
	To     Field
	Rewind bool
}

type StatusUpdated struct {
	Status Status
}

// KingInDanger is emitted only when a king's danger flag flips.
type KingInDanger struct {
	King     *Piece
	InDanger bool
}

func (PiecePlaced) EventType() string { return "piece_placed" }
func (PieceBeaten) EventType() string { return "piece_beaten" }
func (PieceMoved) EventType() string { return "piece_moved" }
func (StatusUpdated) EventType() string { return "status_updated" }
func (KingInDanger) EventType() string { return "king_in_danger" }
