package request

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	PlayerName string `json:"player_name"`
	ScenarioID string `json:"scenario_id"`
	MaxPlayers int    `json:"max_players"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	PlayerName string `json:"player_name"`
}
