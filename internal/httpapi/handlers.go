package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/DoyleJ11/kat-overlay/internal/ws"
	"github.com/DoyleJ11/kat-overlay/pkg/types"
)

// Overlay is what the HTTP surface needs from the running overlay.
type Overlay interface {
	ws.Controller
	Snapshot() types.Snapshot
}

// maxTextBody bounds PUT /text. The engine truncates to the configured text
// length anyway.
const maxTextBody = 16 << 10

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func GetState(o Overlay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, o.Snapshot())
	}
}

func PutText(o Overlay) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.TextRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTextBody))
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		o.SetText(req.Text)
		writeJSON(w, http.StatusOK, o.Snapshot())
	}
}

// Action wraps a no-argument overlay call and answers with the new state.
func Action(o Overlay, fn func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn()
		writeJSON(w, http.StatusOK, o.Snapshot())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
