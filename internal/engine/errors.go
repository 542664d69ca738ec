package engine

import (
	"errors"
	"fmt"
)

const (
	MinBoardSize = 8
	MaxBoardSize = 26
)

// Construction and setup errors.
var (
	ErrInvalidBoardSize   = errors.New("board size must be within 8 and 26")
	ErrNegativeCoordinate = errors.New("field coordinates cannot be negative")
	ErrDuplicatePlacement = errors.New("piece is already placed on the board")
	ErrOutOfBounds        = errors.New("field lies outside the board")
	ErrFieldOccupied      = errors.New("field is already occupied")
	ErrNilPiece           = errors.New("nil piece")
)

// Rejected game actions. Move and Rewind swallow these; TryMove and
// TryRewind return them wrapped in a *RejectionError.
var (
	ErrGameOver           = errors.New("game already over")
	ErrNoPieceAtSource    = errors.New("no piece at source field")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrIllegalDestination = errors.New("illegal destination")
	ErrNotLastMove        = errors.New("not the last move")
)

// Reason classifies why a game action was rejected.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNotYourTurn
	ReasonNoPieceAtSource
	ReasonIllegalDestination
	ReasonGameAlreadyOver
	ReasonNotLastMove
)

func (r Reason) String() string {
	switch r {
	case ReasonNotYourTurn:
		return "not_your_turn"
	case ReasonNoPieceAtSource:
		return "no_piece_at_source"
	case ReasonIllegalDestination:
		return "illegal_destination"
	case ReasonGameAlreadyOver:
		return "game_already_over"
	case ReasonNotLastMove:
		return "not_last_move"
	default:
		return "none"
	}
}

func (r Reason) sentinel() error {
	switch r {
	case ReasonNotYourTurn:
		return ErrNotYourTurn
	case ReasonNoPieceAtSource:
		return ErrNoPieceAtSource
	case ReasonIllegalDestination:
		return ErrIllegalDestination
	case ReasonGameAlreadyOver:
		return ErrGameOver
	case ReasonNotLastMove:
		return ErrNotLastMove
	default:
		return nil
	}
}

// RejectionError describes a rejected move or rewind. It unwraps to the
// sentinel of its Reason.
type RejectionError struct {
	Reason Reason
	From   Field
	To     Field
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s -> %s rejected: %v", e.From, e.To, e.Reason.sentinel())
}

func (e *RejectionError) Unwrap() error { return e.Reason.sentinel() }

func reject(reason Reason, from, to Field) error {
	return &RejectionError{Reason: reason, From: from, To: to}
}

// ReasonOf extracts the rejection reason from err, or ReasonNone.
func ReasonOf(err error) Reason {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ReasonNone
}
