package engine

// Status is the turn/outcome state of a game.
type Status int

const (
	FirstActive Status = iota
	SecondActive
	FirstWon
	SecondWon
	// Draw exists in the model but no transition produces it.
	Draw
)

func (s Status) String() string {
	switch s {
	case FirstActive:
		return "first_active"
	case SecondActive:
		return "second_active"
	case FirstWon:
		return "first_won"
	case SecondWon:
		return "second_won"
	case Draw:
		return "draw"
	}
	return "unknown"
}

// IsTerminal reports whether the game has ended in this status.
func (s Status) IsTerminal() bool {
	return s == FirstWon || s == SecondWon || s == Draw
}

// MarshalText encodes the status as its snake_case name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
