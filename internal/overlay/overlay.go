// Package overlay runs the text sync engine against a live avatar: it owns
// the tick scheduler, the transport, and what observers get to see.
package overlay

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/kat-overlay/internal/engine"
	"github.com/DoyleJ11/kat-overlay/internal/hub"
	"github.com/DoyleJ11/kat-overlay/internal/probe"
	"github.com/DoyleJ11/kat-overlay/internal/scheduler"
	"github.com/DoyleJ11/kat-overlay/internal/store"
	"github.com/DoyleJ11/kat-overlay/internal/types"
	api "github.com/DoyleJ11/kat-overlay/pkg/types"
)

// Sender puts one parameter on the wire without waiting for the receiver.
type Sender interface {
	Send(p types.Param) error
}

type Config struct {
	Engine       engine.Config
	TickInterval time.Duration
	// Probing enables the slot handshake. Only turn it on when a listener is
	// actually receiving echoes; without one every handshake is inconclusive.
	Probing bool
}

type Option func(*Overlay)

func WithLogger(l *zap.Logger) Option { return func(o *Overlay) { o.logger = l } }
func WithHub(h *hub.Hub) Option       { return func(o *Overlay) { o.hub = h } }
func WithStore(s store.Store) Option  { return func(o *Overlay) { o.store = s } }

const storeTimeout = 2 * time.Second

type saveReq struct {
	avatar string
	slots  int
}

// Overlay is the public face of the sync engine. None of its methods report
// errors: delivery is best effort and failures only show up in logs and
// metrics.
type Overlay struct {
	cfg    Config
	engine *engine.Engine
	sender Sender
	sched  *scheduler.Scheduler
	hub    *hub.Hub
	store  store.Store
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	boot   sync.Once
	closed sync.Once
	saves  chan saveReq
	saved  sync.WaitGroup

	mu     sync.Mutex
	snap   api.Snapshot
	avatar string
}

func New(cfg Config, sender Sender, opts ...Option) (*Overlay, error) {
	if sender == nil {
		return nil, errors.New("overlay: nil sender")
	}
	e, err := engine.New(cfg.Engine)
	if err != nil {
		return nil, err
	}

	o := &Overlay{
		cfg:    cfg,
		engine: e,
		sender: sender,
		logger: zap.NewNop(),
		saves:  make(chan saveReq, 8),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())

	o.sched, err = scheduler.New(cfg.TickInterval, o.tick, o.logger.Named("scheduler"))
	if err != nil {
		return nil, err
	}

	o.snap = api.Snapshot{
		Slots:  e.SlotCount(),
		Chunks: e.ChunkCount(),
		Probe:  e.ProbeState().String(),
		Lines:  o.lines(e.Synced()),
	}

	if o.store != nil {
		o.saved.Add(1)
		go o.persist()
	}
	return o, nil
}

// SetText replaces the text to show. Only the latest call matters.
func (o *Overlay) SetText(text string) {
	o.engine.SetText(text)
	o.update(func(s *api.Snapshot) { s.Target = text })
}

// Start resumes ticking and shows the overlay. The first Start also sends the
// startup reset and, with probing enabled, begins a slot handshake.
func (o *Overlay) Start() {
	o.boot.Do(o.startup)
	if err := o.sched.Start(o.ctx); err != nil && !errors.Is(err, scheduler.ErrAlreadyRunning) {
		o.logger.Warn("start scheduler", zap.Error(err))
	}
	o.update(func(s *api.Snapshot) { s.Running = true })
	o.Show()
}

// Stop halts ticking and hides the overlay. Text state is kept for the next
// Start.
func (o *Overlay) Stop() {
	o.sched.Stop()
	o.update(func(s *api.Snapshot) { s.Running = false })
	o.Hide()
}

func (o *Overlay) Show() { o.setVisible(true) }

func (o *Overlay) Hide() { o.setVisible(false) }

// Close stops the overlay and flushes pending slot memory writes.
func (o *Overlay) Close() error {
	var err error
	o.closed.Do(func() {
		o.Stop()
		o.cancel()
		if o.store != nil {
			close(o.saves)
			o.saved.Wait()
			err = o.store.Close()
		}
	})
	return err
}

// Snapshot returns what observers currently see.
func (o *Overlay) Snapshot() api.Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.snap
	s.Lines = append([]string(nil), o.snap.Lines...)
	return s
}

// SlotEcho implements osc.Handler.
func (o *Overlay) SlotEcho(index int) {
	o.engine.Observe(index)
}

// AvatarChanged implements osc.Handler. A new avatar may expose a different
// number of slots, so the handshake runs again, falling back to whatever was
// last detected for that avatar.
func (o *Overlay) AvatarChanged(avatarID string) {
	o.mu.Lock()
	o.avatar = avatarID
	o.mu.Unlock()

	if !o.cfg.Probing {
		return
	}
	o.engine.Reprobe(o.remembered(avatarID))
}

func (o *Overlay) startup() {
	o.sendAll(o.engine.Reset())
	if o.cfg.Probing {
		o.engine.Reprobe(o.remembered(""))
	}
}

func (o *Overlay) tick(context.Context) {
	res := o.engine.Tick()
	ticksTotal.WithLabelValues(string(res.Kind)).Inc()
	o.sendAll(res.Params)

	if res.Kind == engine.KindProbeDone {
		o.probeDone(res.Probe)
	}
	slots := o.engine.SlotCount()
	slotCount.Set(float64(slots))

	chunks := o.engine.ChunkCount()
	state := o.engine.ProbeState().String()
	lines := o.lines(o.engine.Synced())
	o.update(func(s *api.Snapshot) {
		s.Slots = slots
		s.Chunks = chunks
		s.Probe = state
		s.Lines = lines
	})
}

func (o *Overlay) probeDone(r probe.Result) {
	probesTotal.WithLabelValues(string(r.Outcome)).Inc()
	o.logger.Info("slot handshake finished", zap.String("outcome", string(r.Outcome)), zap.Int("slots", r.Slots))

	if r.Outcome != probe.OutcomeDetected || o.store == nil {
		return
	}
	o.mu.Lock()
	avatar := o.avatar
	o.mu.Unlock()

	// never block the tick on storage
	select {
	case o.saves <- saveReq{avatar: avatar, slots: r.Slots}:
	default:
		o.logger.Warn("slot memory backlog full, dropping", zap.String("avatar", avatar))
	}
}

func (o *Overlay) persist() {
	defer o.saved.Done()
	for req := range o.saves {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		if err := o.store.Save(ctx, req.avatar, req.slots); err != nil {
			o.logger.Warn("save slot count", zap.String("avatar", req.avatar), zap.Error(err))
		}
		cancel()
	}
}

func (o *Overlay) remembered(avatarID string) int {
	if o.store == nil {
		return 0
	}
	ctx, cancel := context.WithTimeout(o.ctx, storeTimeout)
	defer cancel()
	n, err := o.store.Load(ctx, avatarID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			o.logger.Warn("load slot count", zap.String("avatar", avatarID), zap.Error(err))
		}
		return 0
	}
	return n
}

func (o *Overlay) setVisible(v bool) {
	o.send(types.Visible(v))
}

func (o *Overlay) sendAll(params []types.Param) {
	for _, p := range params {
		o.send(p)
	}
}

func (o *Overlay) send(p types.Param) {
	paramsSent.WithLabelValues(string(p.Kind)).Inc()
	if err := o.sender.Send(p); err != nil {
		sendErrors.Inc()
		o.logger.Debug("send failed", zap.Stringer("param", p), zap.Error(err))
	}
	if p.Kind == types.ParamVisible {
		o.update(func(s *api.Snapshot) { s.Visible = p.Bool })
	}
}

// update applies fn to the snapshot and publishes it if anything changed.
func (o *Overlay) update(fn func(*api.Snapshot)) {
	o.mu.Lock()
	next := o.snap
	next.Lines = append([]string(nil), o.snap.Lines...)
	fn(&next)
	if sameSnapshot(o.snap, next) {
		o.mu.Unlock()
		return
	}
	next.Version = o.snap.Version + 1
	o.snap = next
	o.mu.Unlock()

	if o.hub != nil {
		o.hub.Publish(next)
	}
}

func (o *Overlay) lines(synced string) []string {
	width := o.cfg.Engine.LineLength
	rs := []rune(synced)
	out := make([]string, 0, o.cfg.Engine.LineCount)
	for i := 0; i < len(rs) && len(out) < o.cfg.Engine.LineCount; i += width {
		out = append(out, string(rs[i:min(i+width, len(rs))]))
	}
	return out
}

func sameSnapshot(a, b api.Snapshot) bool {
	if a.Running != b.Running || a.Visible != b.Visible || a.Slots != b.Slots ||
		a.Chunks != b.Chunks || a.Probe != b.Probe || a.Target != b.Target {
		return false
	}
	return slices.Equal(a.Lines, b.Lines)
}
