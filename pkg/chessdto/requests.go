package chessdto

type CreateGameRequest struct {
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	FirstID    string `json:"first_id,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	SecondID   string `json:"second_id,omitempty"`
	SecondName string `json:"second_name,omitempty"`
}

type LobbyMakeRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Side       string `json:"side,omitempty"`
}

type LobbyJoinRequest struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name,omitempty"`
}

type LobbyDTO struct {
	Code        string `json:"code"`
	State       string `json:"state"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	CreatorName string `json:"creator_name"`
	GameID      string `json:"game_id,omitempty"`
}

type LobbyListResponse struct {
	Lobbies []LobbyDTO `json:"lobbies"`
}
