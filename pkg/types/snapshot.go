package types

// Snapshot is what observers of the overlay see after a tick:
//
//	version: number, bumped on every observable change
//	running: scheduler is ticking
//	visible: last visibility sent
//	slots / chunks: current slot count and window count
//	probe: "idle" | "reset" | "probing" | "clearing" | "finalizing"
//	target: latest text handed to SetText
//	lines: what the receiver is believed to show, one row per display line
type Snapshot struct {
	Version int      `json:"version"`
	Running bool     `json:"running"`
	Visible bool     `json:"visible"`
	Slots   int      `json:"slots"`
	Chunks  int      `json:"chunks"`
	Probe   string   `json:"probe"`
	Target  string   `json:"target"`
	Lines   []string `json:"lines"`
}
