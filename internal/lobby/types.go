package lobby

import "time"

// State is the lifecycle of a lobby.
type State string

const (
	StateWaiting State = "WAITING"
	StateStarted State = "STARTED"
)

// Side is a seating preference given on Make.
type Side string

const (
	SideFirst  Side = "first"
	SideSecond Side = "second"
	SideRandom Side = "random"
)

// ParseSide maps user input onto a Side; anything unknown is random.
func ParseSide(s string) Side {
	switch Side(s) {
	case SideFirst, SideSecond:
		return Side(s)
	}
	return SideRandom
}

// Meta is stored as JSON under lobby:<code>.
type Meta struct {
	Code      string    `json:"code"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`

	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	CreatorSide Side   `json:"creator_side"`

	FirstID    string `json:"first_id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	SecondID   string `json:"second_id,omitempty"`
	SecondName string `json:"second_name,omitempty"`

	GameID string `json:"game_id,omitempty"`
}

type JoinResult struct {
	Started bool
	GameID  string
	Meta    *Meta
}

type staticErr string

func (e staticErr) Error() string { return string(e) }

var (
	ErrInvalidArgs     error = staticErr("invalid arguments")
	ErrLobbyGone       error = staticErr("lobby not found or expired")
	ErrLobbyStarted    error = staticErr("lobby already started")
	ErrFull            error = staticErr("lobby already has two participants")
	ErrPlayerBusy      error = staticErr("player has an active game")
	ErrCreatorHasLobby error = staticErr("player already has a waiting lobby")
	ErrOwnLobby        error = staticErr("cannot join your own lobby")
)
