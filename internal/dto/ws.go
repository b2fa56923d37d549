package dto

import "github.com/google/uuid"

// WSEvent is the envelope of every websocket message.
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// CollectionChanged tells clients that a collection must be re-fetched.
type CollectionChanged struct {
	Collection string     `json:"collection"`
	Action     string     `json:"action"`
	ID         *uuid.UUID `json:"id,omitempty"`
}
