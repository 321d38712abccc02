package server

import (
	json "github.com/json-iterator/go"

	"github.com/zeusync/webswing/internal/core/character"
)

// Client to server message types.
const (
	MessageAction = "action"
	MessageAxis   = "axis"
)

// Server to client message types.
const (
	MessageWelcome  = "welcome"
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessageError    = "error"
)

// ClientMessage is one input frame sent by a client.
type ClientMessage struct {
	Type    string  `json:"type"`
	Name    string  `json:"name"`
	Pressed bool    `json:"pressed,omitempty"`
	Value   float64 `json:"value,omitempty"`
}

// ServerMessage is everything the server pushes to clients.
type ServerMessage struct {
	Type      string               `json:"type"`
	ActorID   string               `json:"actor_id,omitempty"`
	Frame     int64                `json:"frame,omitempty"`
	Snapshots []character.Snapshot `json:"snapshots,omitempty"`
	Event     string               `json:"event,omitempty"`
	Data      any                  `json:"data,omitempty"`
	Error     string               `json:"error,omitempty"`
}

func encode(msg ServerMessage) ([]byte, error) {
	return json.Marshal(msg)
}

func decode(data []byte) (ClientMessage, error) {
	var msg ClientMessage
	err := json.Unmarshal(data, &msg)
	return msg, err
}
