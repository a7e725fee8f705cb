package ws

import (
	"encoding/json"

	"reflex_drills/internal/game"
)

// client → server
type ClientMessage struct {
	Type  string `json:"type"`
	Value string `json:"value,omitempty"` // canonical input value
	TS    int64  `json:"ts,omitempty"`    // client clock, not used for timing
}

// server → client
type ServerMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type ReadyPayload struct {
	SessionID string    `json:"session_id"`
	PlayerID  string    `json:"player_id"`
	Game      game.Kind `json:"game"`
	Total     int       `json:"total"`
	WindowMS  int64     `json:"window_ms"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func encode(msgType string, payload any) []byte {
	b, err := json.Marshal(ServerMessage{Type: msgType, Payload: payload})
	if err != nil {
		b, _ = json.Marshal(ServerMessage{Type: MsgError, Payload: ErrorPayload{Message: "encode failed"}})
	}
	return b
}

func errorMessage(msg string) []byte {
	return encode(MsgError, ErrorPayload{Message: msg})
}
