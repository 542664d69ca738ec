package chessdto

type PieceDTO struct {
	Kind   string `json:"kind"`
	Owner  string `json:"owner"`
	Field  string `json:"field"`
	Symbol string `json:"symbol"`
}

type CapturedPieces struct {
	First  []string `json:"first"`
	Second []string `json:"second"`
}

// SessionState is the client view of a live game.
type SessionState struct {
	ID             string         `json:"id"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	Status         string         `json:"status"`
	StatusText     string         `json:"status_text,omitempty"`
	Active         string         `json:"active,omitempty"`
	FirstName      string         `json:"first_name"`
	SecondName     string         `json:"second_name"`
	FirstID        string         `json:"first_id,omitempty"`
	SecondID       string         `json:"second_id,omitempty"`
	Moves          []string       `json:"moves"`
	Pieces         []PieceDTO     `json:"pieces"`
	FirstInDanger  bool           `json:"first_in_danger"`
	SecondInDanger bool           `json:"second_in_danger"`
	Captured       CapturedPieces `json:"captured"`
	Board          string         `json:"board"`
	FEN            string         `json:"fen,omitempty"`
}
