package chessdto

type EventDTO struct {
	Type     string `json:"type"`
	Piece    string `json:"piece,omitempty"`
	Field    string `json:"field,omitempty"`
	Status   string `json:"status,omitempty"`
	Player   string `json:"player,omitempty"`
	InDanger *bool  `json:"in_danger,omitempty"`
	Rewind   bool   `json:"rewind,omitempty"`
	Text     string `json:"text,omitempty"`
}

type MoveRequest struct {
	PlayerID string `json:"player_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type RewindRequest struct {
	PlayerID string `json:"player_id"`
}

// MoveResponse answers both moves and rewinds. Applied is false and
// Reason set when the game rejected the action.
type MoveResponse struct {
	Applied bool          `json:"applied"`
	Reason  string        `json:"reason,omitempty"`
	Message string        `json:"message,omitempty"`
	State   *SessionState `json:"state"`
	Events  []EventDTO    `json:"events,omitempty"`
}

type LegalMovesResponse struct {
	From  string   `json:"from"`
	Moves []string `json:"moves"`
}

// WatchMessage is a frame sent to game watchers over the websocket.
// Type is "subscribed" once on connect, then "update" per applied action.
type WatchMessage struct {
	Type   string        `json:"type"`
	GameID string        `json:"game_id"`
	Update *MoveResponse `json:"update,omitempty"`
}

type SnapshotRequest struct {
	Name string `json:"name"`
}

type SnapshotListResponse struct {
	Names []string `json:"names"`
}
