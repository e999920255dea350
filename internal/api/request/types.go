package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	Username string `json:"username"`
}

// RegisterRequest is the request body for registering a player
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// CreateSessionRequest is the request body for creating a session directly
type CreateSessionRequest struct {
	GameType string `json:"game_type"`
	Mode     string `json:"mode,omitempty"`
}

// JoinQueueRequest is the request body for joining a matchmaking queue
type JoinQueueRequest struct {
	GameType     string `json:"game_type"`
	Mode         string `json:"mode,omitempty"`
	ConnectionID string `json:"connection_id,omitempty"`
}

// LeaveQueueRequest is the request body for leaving a matchmaking queue
type LeaveQueueRequest struct {
	GameType string `json:"game_type"`
	Mode     string `json:"mode,omitempty"`
}

// PushStateRequest is the request body for relaying live game state
type PushStateRequest struct {
	State map[string]any `json:"state"`
}

// SubmitResultRequest is the request body for submitting a final score
type SubmitResultRequest struct {
	Score int            `json:"score"`
	Rank  int            `json:"rank"`
	Stats map[string]int `json:"stats,omitempty"`
}
