package hub

import (
	"context"

	"go.uber.org/zap"

	"github.com/DoyleJ11/kat-overlay/pkg/types"
)

type HubMsg interface{ isHubMsg() }

type Join struct {
	ClientID string
	Outbox   chan types.Snapshot // where this client wants to receive snapshots
}

type Leave struct{ ClientID string }

type Publish struct{ Snapshot types.Snapshot }

type GetState struct {
	Reply chan View
}

type ShutdownHub struct{}

func (Join) isHubMsg()        {}
func (Leave) isHubMsg()       {}
func (Publish) isHubMsg()     {}
func (GetState) isHubMsg()    {}
func (ShutdownHub) isHubMsg() {}

type View struct {
	NumClients int
	Snapshot   types.Snapshot
}

// Hub owns the latest overlay snapshot and the set of subscribers to it.
// All state lives on the loop goroutine; everything else talks to it
// through the inbox.
type Hub struct {
	inbox   chan HubMsg
	latest  types.Snapshot
	clients map[string]chan types.Snapshot
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
}

func NewHub(parent context.Context, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		clients: make(map[string]chan types.Snapshot),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Publish hands a snapshot to the hub without blocking. It reports false when
// the inbox is full or the hub is gone; a later snapshot supersedes it anyway.
func (h *Hub) Publish(s types.Snapshot) bool {
	select {
	case h.inbox <- Publish{Snapshot: s}:
		return true
	default:
		return false
	}
}

// Send delivers msg unless ctx or the hub ends first.
func (h *Hub) Send(ctx context.Context, msg HubMsg) bool {
	select {
	case h.inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	case <-h.ctx.Done():
		return false
	}
}

// State returns the latest snapshot and subscriber count.
func (h *Hub) State(ctx context.Context) (View, bool) {
	reply := make(chan View, 1)
	if !h.Send(ctx, GetState{Reply: reply}) {
		return View{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-ctx.Done():
		return View{}, false
	case <-h.ctx.Done():
		return View{}, false
	}
}

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				h.clients[msg.ClientID] = msg.Outbox
				h.deliver(msg.ClientID, msg.Outbox, h.latest)

			case Leave:
				if ch, ok := h.clients[msg.ClientID]; ok {
					close(ch)
					delete(h.clients, msg.ClientID)
				}

			case Publish:
				if msg.Snapshot.Version <= h.latest.Version {
					break
				}
				h.latest = msg.Snapshot
				for id, ch := range h.clients {
					h.deliver(id, ch, h.latest)
				}

			case GetState:
				msg.Reply <- View{NumClients: len(h.clients), Snapshot: h.latest}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) deliver(id string, ch chan types.Snapshot, snap types.Snapshot) {
	select {
	case ch <- snap:
		//ok
	default:
		// Client is slow/full - drop them.
		h.logger.Debug("dropping slow subscriber", zap.String("client", id))
		close(ch)
		delete(h.clients, id)
	}
}

func (h *Hub) shutdown() {
	for id, ch := range h.clients {
		close(ch) // Tell client no more snapshots
		delete(h.clients, id)
	}
	h.cancel()
}
