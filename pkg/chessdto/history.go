package chessdto

import "time"

// GameRecord is an archived, finished game.
type GameRecord struct {
	GameID      string    `json:"game_id"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	FirstName   string    `json:"first_name"`
	SecondName  string    `json:"second_name"`
	Status      string    `json:"status"`
	Winner      string    `json:"winner,omitempty"`
	Method      string    `json:"method"`
	Moves       []string  `json:"moves"`
	Transcript  string    `json:"transcript"`
	StartedAt   time.Time `json:"started_at"`
	EndedAt     time.Time `json:"ended_at"`
	DurationSec int64     `json:"duration_sec"`
}

type HistoryResponse struct {
	PlayerID string        `json:"player_id"`
	Games    []*GameRecord `json:"games"`
}
