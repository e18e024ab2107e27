package relay

import "encoding/json"

// Frame types exchanged between the relay and its clients.
const (
	// FrameWelcome carries the participant id the relay registered for
	// this connection; sent once, first.
	FrameWelcome = "welcome"
	// FrameRoster carries the ordered list of connected participant ids;
	// sent to every client whenever the set changes.
	FrameRoster = "roster"
	// FrameBroadcast carries one opaque session message, fanned out to
	// every connection except the sender.
	FrameBroadcast = "broadcast"
)

type Frame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
