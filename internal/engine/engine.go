package engine

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/DoyleJ11/kat-overlay/internal/charset"
	"github.com/DoyleJ11/kat-overlay/internal/probe"
	"github.com/DoyleJ11/kat-overlay/internal/types"
)

var ErrInvalidConfig = errors.New("invalid engine config")

// Config is the full set of knobs the engine runs with. Nothing is defaulted.
type Config struct {
	TextLength  int    // characters the receiver can hold
	LineLength  int    // characters per display row
	LineCount   int    // display rows
	MaxSlots    int    // slot indices probed, 0..MaxSlots-1
	Slots       int    // last-known-good slot count before any probe, 0 for none
	ProbeCode   uint8  // char code written to every slot while probing
	InvalidChar string // substituted for runes without a glyph
}

func (c Config) Validate() error {
	switch {
	case c.TextLength <= 0:
		return fmt.Errorf("%w: text length %d", ErrInvalidConfig, c.TextLength)
	case c.LineLength <= 0:
		return fmt.Errorf("%w: line length %d", ErrInvalidConfig, c.LineLength)
	case c.LineCount <= 0 || c.LineLength*c.LineCount < c.TextLength:
		return fmt.Errorf("%w: %d lines of %d cannot hold %d characters", ErrInvalidConfig, c.LineCount, c.LineLength, c.TextLength)
	case c.MaxSlots <= 0 || c.MaxSlots > c.TextLength:
		return fmt.Errorf("%w: max slots %d", ErrInvalidConfig, c.MaxSlots)
	case c.TextLength >= probe.PointerClear:
		// a single-slot receiver would need pointer values up to TextLength
		return fmt.Errorf("%w: text length %d collides with the clear pointer", ErrInvalidConfig, c.TextLength)
	case c.Slots < 0 || c.Slots > c.MaxSlots:
		return fmt.Errorf("%w: slots %d outside [0, %d]", ErrInvalidConfig, c.Slots, c.MaxSlots)
	case c.ProbeCode == 0:
		return fmt.Errorf("%w: probe code must differ from 0", ErrInvalidConfig)
	case c.ProbeCode == charset.OutOfRange:
		return fmt.Errorf("%w: probe code %d has no slot value in [-1, 1]", ErrInvalidConfig, c.ProbeCode)
	}
	return nil
}

type Kind string

const (
	KindProbe     Kind = "probe"      // handshake step
	KindProbeDone Kind = "probe_done" // final handshake step
	KindIdle      Kind = "idle"       // no slot count yet
	KindClear     Kind = "clear"      // blank target
	KindUpdate    Kind = "update"     // a differing window was sent
	KindResync    Kind = "resync"     // nothing differed, a window was resent
)

// Result is what one tick wants on the wire.
type Result struct {
	Kind   Kind
	Params []types.Param
	Window int // window index for update/resync, -1 otherwise
	Probe  probe.Result
}

// Engine keeps the receiver's text in step with the latest target.
//
// SetText and Text are safe from any goroutine. Observe and Reprobe may be
// called from a listener. Everything else belongs to the single goroutine
// driving Tick.
type Engine struct {
	cfg    Config
	codec  *charset.Codec
	probe  *probe.Probe
	target atomic.Pointer[string]
	synced []rune
	cursor int
}

func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := charset.New(cfg.InvalidChar)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		codec:  codec,
		probe:  probe.New(cfg.MaxSlots, charset.Signal(cfg.ProbeCode), cfg.Slots),
		synced: blank(cfg.TextLength),
	}
	empty := ""
	e.target.Store(&empty)
	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// SetText replaces the target wholesale; the previous one is forgotten.
func (e *Engine) SetText(text string) {
	e.target.Store(&text)
}

func (e *Engine) Text() string {
	return *e.target.Load()
}

// Reprobe schedules a slot handshake starting on the next tick.
func (e *Engine) Reprobe(fallback int) { e.probe.Restart(fallback) }

// Observe feeds a slot echo to a running handshake.
func (e *Engine) Observe(slot int) { e.probe.Observe(slot) }

func (e *Engine) ProbeState() probe.State { return e.probe.State() }

func (e *Engine) SlotCount() int { return e.probe.SlotCount() }

func (e *Engine) ChunkCount() int {
	if n := e.probe.SlotCount(); n > 0 {
		return e.cfg.TextLength / n
	}
	return 0
}

// Synced is the engine's model of what the receiver shows.
func (e *Engine) Synced() string { return string(e.synced) }

// Reset returns the burst sent once at startup: visible, cleared, and the
// known slots zeroed.
func (e *Engine) Reset() []types.Param {
	params := []types.Param{types.Visible(true), types.Pointer(probe.PointerClear)}
	for i := range e.probe.SlotCount() {
		params = append(params, types.Slot(i, 0))
	}
	return params
}

// Buffer normalizes text and lays it out exactly as Tick would.
func (e *Engine) Buffer(text string) string {
	return string(e.layout(e.codec.Normalize(text)))
}

func (e *Engine) Tick() Result {
	if e.probe.Active() {
		params, done, res := e.probe.Step()
		if !done {
			return Result{Kind: KindProbe, Params: params, Window: -1}
		}
		// whatever the receiver held is gone after the handshake
		e.resetSynced()
		e.cursor = 0
		return Result{Kind: KindProbeDone, Params: params, Window: -1, Probe: res}
	}

	slots := e.probe.SlotCount()
	if slots == 0 {
		return Result{Kind: KindIdle, Window: -1}
	}

	text := e.codec.Normalize(e.Text())
	if strings.TrimSpace(text) == "" {
		e.resetSynced()
		return Result{
			Kind:   KindClear,
			Params: []types.Param{types.Pointer(probe.PointerClear)},
			Window: -1,
		}
	}

	// the receiver may have dropped visibility on its own, e.g. after a reload
	params := make([]types.Param, 0, slots+2)
	params = append(params, types.Visible(true))

	buf := e.layout(text)
	chunks := e.cfg.TextLength / slots

	for w := range chunks {
		lo, hi := w*slots, (w+1)*slots
		if !slices.Equal(buf[lo:hi], e.synced[lo:hi]) {
			return Result{Kind: KindUpdate, Params: e.sendWindow(params, buf, w, slots), Window: w}
		}
	}

	e.cursor = (e.cursor + 1) % chunks
	return Result{Kind: KindResync, Params: e.sendWindow(params, buf, e.cursor, slots), Window: e.cursor}
}

// sendWindow points the receiver at window w, writes its characters and
// records them as synced.
func (e *Engine) sendWindow(params []types.Param, buf []rune, w, slots int) []types.Param {
	params = append(params, types.Pointer(w+1))
	for i := range slots {
		idx := w*slots + i
		params = append(params, types.Slot(i, charset.Signal(e.codec.Encode(buf[idx]))))
		e.synced[idx] = buf[idx]
	}
	return params
}
