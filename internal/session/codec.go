package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// Message types understood by every peer in a session.
const (
	MsgAdmin    = "admin"
	MsgPlaylist = "playlist"
	MsgPlayback = "playback"
	MsgMessage  = "message"
)

var ErrInvalidMessageType = errors.New("invalid message type")

// Wire format shared by every implementation of the protocol:
// "<type>:<json payload>", type restricted to [a-zA-Z0-9_-]+.
var (
	messageTypeRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	messageRe     = regexp.MustCompile(`^([a-zA-Z0-9_-]+):(.+)$`)
)

// Encode serializes a message for the broadcast channel. A single argument
// is serialized directly as the payload; multiple arguments are serialized
// as a list.
func Encode(msgType string, args ...any) (string, error) {
	if !messageTypeRe.MatchString(msgType) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMessageType, msgType)
	}

	var payload any
	switch len(args) {
	case 0:
		payload = nil
	case 1:
		payload = args[0]
	default:
		payload = args
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	return msgType + ":" + string(encoded), nil
}

// Decode splits a raw broadcast string into its type and JSON payload.
// Returns ok=false for anything that does not match the wire format;
// malformed input is the caller's cue to drop the message, not an error.
func Decode(raw string) (msgType string, payload json.RawMessage, ok bool) {
	match := messageRe.FindStringSubmatch(raw)
	if match == nil {
		return "", nil, false
	}

	if !json.Valid([]byte(match[2])) {
		return "", nil, false
	}

	return match[1], json.RawMessage(match[2]), true
}
