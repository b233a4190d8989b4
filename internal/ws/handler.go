package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/DoyleJ11/kat-overlay/internal/hub"
	"github.com/DoyleJ11/kat-overlay/pkg/types"
)

// Controller is the part of the overlay a socket client may drive.
type Controller interface {
	SetText(text string)
	Start()
	Stop()
	Show()
	Hide()
}

const writeTimeout = 3 * time.Second

// Handler streams overlay snapshots to the client and applies the commands
// it sends back.
func Handler(h *hub.Hub, ctl Controller, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// the control surface is meant for local tools only
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan types.Snapshot, 8)
		clientID := randID(6)
		log := logger.With(zap.String("client", clientID))

		if !h.Send(r.Context(), hub.Join{ClientID: clientID, Outbox: out}) {
			conn.Close(websocket.StatusGoingAway, "shutting down")
			return
		}
		defer h.Send(context.Background(), hub.Leave{ClientID: clientID})
		log.Debug("client joined")

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for snap := range out {
				msg := types.ServerMessage{Type: "StateSnapshot", Version: snap.Version, State: &snap}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				err := wsjson.Write(ctx, conn, msg)
				cancel()
				if err != nil {
					log.Debug("write snapshot", zap.Error(err))
				}
			}
			// hub dropped us or shut down
			conn.Close(websocket.StatusGoingAway, "unsubscribed")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("read", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				writeError(r.Context(), conn, "bad json")
				continue
			}
			if !apply(ctl, cm) {
				writeError(r.Context(), conn, "unknown type")
			}
		}
	}
}

func apply(ctl Controller, m types.ClientMessage) bool {
	switch m.Type {
	case "SetText":
		ctl.SetText(m.Text)
	case "Show":
		ctl.Show()
	case "Hide":
		ctl.Hide()
	case "Start":
		ctl.Start()
	case "Stop":
		ctl.Stop()
	default:
		return false
	}
	return true
}

func writeError(ctx context.Context, conn *websocket.Conn, reason string) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = wsjson.Write(ctx, conn, types.ServerMessage{Type: "Error", Error: reason})
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
