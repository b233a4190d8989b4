package types

// Client -> Server
//
// SetText:
//   text: string
// Show / Hide / Start / Stop: {}
type ClientMessage struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Server -> Client
//
// StateSnapshot:
//   version: number
//   state: Snapshot
// Error:
//   error: string
type ServerMessage struct {
	Type    string    `json:"type"` // "StateSnapshot" | "Error"
	Version int       `json:"version,omitempty"`
	State   *Snapshot `json:"state,omitempty"`
	Error   string    `json:"error,omitempty"`
}

// TextRequest is the body of PUT /text.
type TextRequest struct {
	Text string `json:"text"`
}
