// Package hub provides a thread-safe websocket broadcast hub
// using the idiomatic Go channel-based fan-out pattern. It fans
// conversation events out to observers (dashboards, caregiver UIs).
package hub

import "time"

// MessageType indicates the websocket message format
type MessageType int

const (
	// JSONMessage is a JSON-encoded message
	JSONMessage MessageType = iota
	// BinaryMessage is raw binary data (e.g., WAV audio)
	BinaryMessage
)

// Message represents a message to be broadcast to clients
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage creates a JSON message from pre-encoded bytes
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage creates a binary message
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// Entry is one conversation event broadcast to observers.
type Entry struct {
	// Kind is "user", "assistant" or "transcript".
	Kind string `json:"kind"`

	// SessionID identifies the conversation, empty for the default session.
	SessionID string `json:"session_id,omitempty"`

	// Text is the message content.
	Text string `json:"text"`

	// Timestamp is when the event was produced.
	Timestamp time.Time `json:"timestamp"`
}

// NewEntry creates a timestamped conversation entry.
func NewEntry(kind, sessionID, text string) Entry {
	return Entry{Kind: kind, SessionID: sessionID, Text: text, Timestamp: time.Now().UTC()}
}
