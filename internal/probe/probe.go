// Package probe discovers how many sync slots the receiving avatar exposes.
//
// The receiver echoes every slot parameter it owns, so writing a test value to
// all candidate slots and watching which indices echo back reveals the count.
// The handshake always takes four ticks: reset, probe, clear, finalize.
package probe

import (
	"sync"

	"github.com/DoyleJ11/kat-overlay/internal/types"
)

// PointerClear is the pointer value that tells the receiver to show nothing.
const PointerClear = 255

type State int

const (
	StateIdle State = iota
	StateResetSlots
	StateProbing
	StateClearingSlots
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResetSlots:
		return "reset"
	case StateProbing:
		return "probing"
	case StateClearingSlots:
		return "clearing"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

type Outcome string

const (
	OutcomeDetected Outcome = "detected" // echoes seen, count adopted
	OutcomeFallback Outcome = "fallback" // no echoes, last-known-good reused
	OutcomeNone     Outcome = "none"     // no echoes and nothing to fall back to
)

// Result describes a finished handshake.
type Result struct {
	Outcome Outcome
	Slots   int
}

// Probe is safe for concurrent use: Step runs on the tick path while Observe
// and Restart arrive from the listener.
type Probe struct {
	mu        sync.Mutex
	state     State
	slots     int
	lastGood  int
	maxSlots  int
	testValue float32
}

// New returns an idle probe. lastGood seeds the value used when a handshake
// sees no echoes, and is also the slot count until the first handshake runs;
// 0 means none is known.
func New(maxSlots int, testValue float32, lastGood int) *Probe {
	lastGood = clamp(lastGood, maxSlots)
	return &Probe{
		state:     StateIdle,
		slots:     lastGood,
		lastGood:  lastGood,
		maxSlots:  maxSlots,
		testValue: testValue,
	}
}

// Restart (re)enters the reset state; the next Step begins a new handshake.
// A positive fallback replaces the last-known-good count, e.g. one remembered
// for the avatar being switched to.
func (p *Probe) Restart(fallback int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if fallback > 0 {
		p.lastGood = clamp(fallback, p.maxSlots)
	}
	p.state = StateResetSlots
}

// Observe records an echo of slot index. Echoes only count once the reset
// step has gone out and until the handshake is finalized.
func (p *Probe) Observe(index int) {
	if index < 0 || index >= p.maxSlots {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case StateProbing, StateClearingSlots, StateFinalizing:
		p.slots = max(p.slots, index+1)
	}
}

// Step executes the pending handshake state and returns what to send. done is
// true on the finalizing step, whose Result is then valid. Calling Step on an
// idle probe returns nothing.
func (p *Probe) Step() (params []types.Param, done bool, res Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateIdle {
		return nil, false, Result{}
	}

	// keep the receiver blank while its slots hold test values
	params = append(params, types.Pointer(PointerClear))

	switch p.state {
	case StateResetSlots:
		p.slots = 0
		params = p.fill(params, 0)
		p.state = StateProbing

	case StateProbing:
		params = p.fill(params, p.testValue)
		p.state = StateClearingSlots

	case StateClearingSlots:
		params = p.fill(params, 0)
		p.state = StateFinalizing

	case StateFinalizing:
		switch {
		case p.slots > 0:
			p.lastGood = p.slots
			res = Result{Outcome: OutcomeDetected, Slots: p.slots}
		case p.lastGood > 0:
			p.slots = p.lastGood
			res = Result{Outcome: OutcomeFallback, Slots: p.slots}
		default:
			res = Result{Outcome: OutcomeNone}
		}
		p.state = StateIdle
		done = true
	}
	return params, done, res
}

func (p *Probe) fill(params []types.Param, v float32) []types.Param {
	for i := range p.maxSlots {
		params = append(params, types.Slot(i, v))
	}
	return params
}

func (p *Probe) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state != StateIdle
}

func (p *Probe) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// SlotCount is the count the engine should chunk by. It reads 0 while a
// handshake is between its reset and finalize steps.
func (p *Probe) SlotCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slots
}

func (p *Probe) MaxSlots() int { return p.maxSlots }

func clamp(n, maxSlots int) int {
	return min(max(n, 0), maxSlots)
}
