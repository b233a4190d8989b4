package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/DoyleJ11/kat-overlay/internal/charset"
	"github.com/DoyleJ11/kat-overlay/internal/probe"
	"github.com/DoyleJ11/kat-overlay/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		TextLength:  128,
		LineLength:  32,
		LineCount:   4,
		MaxSlots:    16,
		Slots:       4,
		ProbeCode:   97,
		InvalidChar: "?",
	}
}

func newEngine(t *testing.T, mutate ...func(*Config)) *Engine {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	e, err := New(cfg)
	require.NoError(t, err)
	return e
}

func countKind(params []types.Param, kind types.ParamKind) int {
	n := 0
	for _, p := range params {
		if p.Kind == kind {
			n++
		}
	}
	return n
}

func pointerOf(t *testing.T, params []types.Param) int {
	t.Helper()
	for _, p := range params {
		if p.Kind == types.ParamPointer {
			return int(p.Int)
		}
	}
	t.Fatalf("no pointer in %v", params)
	return 0
}

// slotCodes decodes the slot values of a tick back into glyph codes.
func slotCodes(params []types.Param) []uint8 {
	var out []uint8
	for _, p := range params {
		if p.Kind == types.ParamSlot {
			out = append(out, charset.Code(p.Float))
		}
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero text length", func(c *Config) { c.TextLength = 0 }},
		{"zero line length", func(c *Config) { c.LineLength = 0 }},
		{"too few lines", func(c *Config) { c.LineCount = 3 }},
		{"max slots above text", func(c *Config) { c.MaxSlots = 200 }},
		{"text collides with clear pointer", func(c *Config) {
			c.TextLength = 255
			c.LineLength = 255
			c.LineCount = 1
		}},
		{"seed above max", func(c *Config) { c.Slots = 17 }},
		{"zero probe code", func(c *Config) { c.ProbeCode = 0 }},
		{"probe code outside slot range", func(c *Config) { c.ProbeCode = 128 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			_, err := New(cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("want ErrInvalidConfig, got %v", err)
			}
		})
	}

	cfg := testConfig()
	cfg.InvalidChar = ""
	_, err := New(cfg)
	assert.ErrorIs(t, err, charset.ErrInvalidFallback)
}

func TestBufferLayout(t *testing.T) {
	e := newEngine(t)
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"short line", "HI", "HI" + strings.Repeat(" ", 126)},
		{
			"line break starts a new row",
			"ab\ncd",
			"ab" + strings.Repeat(" ", 30) + "cd" + strings.Repeat(" ", 94),
		},
		{
			"crlf is one break",
			"ab\r\ncd",
			"ab" + strings.Repeat(" ", 30) + "cd" + strings.Repeat(" ", 94),
		},
		{
			"empty line is a blank row",
			"a\n\nb",
			"a" + strings.Repeat(" ", 63) + "b" + strings.Repeat(" ", 63),
		},
		{
			"long line spills to two rows",
			strings.Repeat("x", 33) + "\ny",
			strings.Repeat("x", 33) + strings.Repeat(" ", 31) + "y" + strings.Repeat(" ", 63),
		},
		{"overflow truncates", strings.Repeat("z", 200), strings.Repeat("z", 128)},
		{"expansion counts toward length", "ガ", "カ〝" + strings.Repeat(" ", 126)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Buffer(tc.in)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
			if n := len([]rune(got)); n != 128 {
				t.Fatalf("buffer length %d", n)
			}
		})
	}
}

func TestBufferIsIdempotent(t *testing.T) {
	e := newEngine(t)
	for _, in := range []string{"HI", "ＨＩ\nガ", "a\n\n\nb", ""} {
		assert.Equal(t, e.Buffer(in), e.Buffer(in))
	}
}

func TestFirstTickSendsFirstWindow(t *testing.T) {
	e := newEngine(t)
	require.Equal(t, 32, e.ChunkCount())
	e.SetText("HI")

	res := e.Tick()
	require.Equal(t, KindUpdate, res.Kind)
	assert.Equal(t, 0, res.Window)
	assert.Equal(t, types.Visible(true), res.Params[0])
	assert.Equal(t, 1, pointerOf(t, res.Params))
	assert.Equal(t, []uint8{40, 41, 0, 0}, slotCodes(res.Params))
	for i, p := range res.Params[2:] {
		assert.Equal(t, i, p.Slot)
	}
	assert.Equal(t, "HI"+strings.Repeat(" ", 126), e.Synced())
}

func TestEmptyTextClearsEveryTick(t *testing.T) {
	e := newEngine(t)
	e.SetText("HELLO")
	e.Tick()
	require.NotEqual(t, strings.Repeat(" ", 128), e.Synced())

	for _, text := range []string{"", "   \n  ", "\t"} {
		e.SetText(text)
		for range 3 {
			res := e.Tick()
			require.Equal(t, KindClear, res.Kind)
			assert.Equal(t, []types.Param{types.Pointer(probe.PointerClear)}, res.Params)
		}
		assert.Equal(t, strings.Repeat(" ", 128), e.Synced())
	}

	// the resync cursor did not move while clearing
	e.SetText("HELLO")
	e.Tick()
	e.Tick()
	res := e.Tick()
	require.Equal(t, KindResync, res.Kind)
	assert.Equal(t, 1, res.Window)
}

func TestLowestDifferingWindowFirst(t *testing.T) {
	e := newEngine(t)
	e.SetText("abcdefgh" + strings.Repeat(" ", 24) + "z")

	var windows []int
	for range 3 {
		res := e.Tick()
		require.Equal(t, KindUpdate, res.Kind)
		windows = append(windows, res.Window)
	}
	assert.Equal(t, []int{0, 1, 8}, windows)
	assert.Equal(t, KindResync, e.Tick().Kind)
}

func TestConvergesWithinChunkCount(t *testing.T) {
	e := newEngine(t)
	text := "The quick brown fox\njumps over\nthe lazy dog ガ"
	e.SetText(text)
	for range e.ChunkCount() {
		e.Tick()
	}
	assert.Equal(t, e.Buffer(text), e.Synced())
}

// receiver models the avatar: it only applies what actually arrives.
type receiver struct {
	slots   int
	pointer int
	codes   []uint8
}

func (r *receiver) apply(params []types.Param) {
	for _, p := range params {
		switch p.Kind {
		case types.ParamPointer:
			r.pointer = int(p.Int)
		case types.ParamSlot:
			if r.pointer >= 1 && r.pointer != probe.PointerClear && p.Slot < r.slots {
				r.codes[(r.pointer-1)*r.slots+p.Slot] = charset.Code(p.Float)
			}
		}
	}
}

func TestResyncHealsDroppedUpdate(t *testing.T) {
	e := newEngine(t)
	rx := &receiver{slots: 4, codes: make([]uint8, 128)}
	e.SetText("hello world")

	want := make([]uint8, 128)
	codec, err := charset.New("?")
	require.NoError(t, err)
	for i, r := range e.Buffer("hello world") {
		want[i] = codec.Encode(r)
	}

	// first update is lost on the wire
	dropped := e.Tick()
	require.Equal(t, KindUpdate, dropped.Kind)
	require.Equal(t, 0, dropped.Window)

	healed := false
	for range e.ChunkCount() + 3 {
		rx.apply(e.Tick().Params)
		if string(rx.codes) == string(want) {
			healed = true
			break
		}
	}
	assert.True(t, healed, "window 0 never retransmitted")
}

func TestBoundedPerTickCost(t *testing.T) {
	e := newEngine(t)
	e.SetText(strings.Repeat("x", 128))
	for range 40 {
		res := e.Tick()
		assert.LessOrEqual(t, countKind(res.Params, types.ParamPointer), 1)
		assert.LessOrEqual(t, countKind(res.Params, types.ParamVisible), 1)
		assert.LessOrEqual(t, countKind(res.Params, types.ParamSlot), e.SlotCount())
	}
}

func TestResyncCursorWraps(t *testing.T) {
	e := newEngine(t)
	e.SetText("x")
	e.Tick()

	seen := map[int]int{}
	for range e.ChunkCount() * 2 {
		res := e.Tick()
		require.Equal(t, KindResync, res.Kind)
		seen[res.Window]++
	}
	require.Len(t, seen, 32)
	for w, n := range seen {
		assert.Equal(t, 2, n, "window %d", w)
	}
}

func TestUnknownRunesDegrade(t *testing.T) {
	e := newEngine(t)
	e.SetText("é☃")
	res := e.Tick()
	require.Equal(t, KindUpdate, res.Kind)
	assert.Equal(t, []uint8{31, 31, 0, 0}, slotCodes(res.Params))
}

func TestIdleWithoutSlotCount(t *testing.T) {
	e := newEngine(t, func(c *Config) { c.Slots = 0 })
	e.SetText("HI")
	res := e.Tick()
	assert.Equal(t, KindIdle, res.Kind)
	assert.Empty(t, res.Params)
	assert.Equal(t, 0, e.ChunkCount())
}

func TestProbeTakesFourTicksThenResyncs(t *testing.T) {
	e := newEngine(t, func(c *Config) { c.Slots = 0 })
	e.SetText("HI")
	e.Reprobe(0)

	kinds := []Kind{}
	for tick := 1; tick <= 4; tick++ {
		res := e.Tick()
		kinds = append(kinds, res.Kind)
		assert.Equal(t, probe.PointerClear, pointerOf(t, res.Params))
		if tick == 2 {
			for i := range 4 {
				e.Observe(i)
			}
		}
		if tick <= 3 {
			assert.Equal(t, 16, countKind(res.Params, types.ParamSlot))
		}
		if tick == 4 {
			assert.Equal(t, probe.Result{Outcome: probe.OutcomeDetected, Slots: 4}, res.Probe)
		}
	}
	assert.Equal(t, []Kind{KindProbe, KindProbe, KindProbe, KindProbeDone}, kinds)
	assert.Equal(t, 4, e.SlotCount())
	assert.Equal(t, 32, e.ChunkCount())

	res := e.Tick()
	require.Equal(t, KindUpdate, res.Kind)
	assert.Equal(t, 1, pointerOf(t, res.Params))
}

func TestProbeForcesFullResync(t *testing.T) {
	e := newEngine(t)
	e.SetText("HI")
	e.Tick()
	require.Equal(t, KindResync, e.Tick().Kind)

	e.Reprobe(0)
	for range 4 {
		e.Tick()
	}
	// no echoes: falls back to 4 slots, and text is sent again from scratch
	assert.Equal(t, 4, e.SlotCount())
	assert.Equal(t, strings.Repeat(" ", 128), e.Synced())
	res := e.Tick()
	assert.Equal(t, KindUpdate, res.Kind)
	assert.Equal(t, 0, res.Window)
}

func TestSlotCountChangeRechunks(t *testing.T) {
	e := newEngine(t)
	e.SetText(strings.Repeat("y", 20))
	e.Reprobe(0)
	e.Tick()
	e.Observe(7)
	e.Tick()
	e.Tick()
	e.Tick()
	require.Equal(t, 8, e.SlotCount())
	require.Equal(t, 16, e.ChunkCount())

	res := e.Tick()
	assert.Equal(t, 8, countKind(res.Params, types.ParamSlot))
	res = e.Tick()
	assert.Equal(t, 1, res.Window)
	res = e.Tick()
	assert.Equal(t, 2, res.Window)
	res = e.Tick()
	assert.Equal(t, KindResync, res.Kind)
}

func TestResetBurst(t *testing.T) {
	e := newEngine(t)
	params := e.Reset()
	assert.Equal(t, types.Visible(true), params[0])
	assert.Equal(t, types.Pointer(probe.PointerClear), params[1])
	assert.Equal(t, 4, countKind(params, types.ParamSlot))
}

func TestSetTextFromManyGoroutines(t *testing.T) {
	e := newEngine(t)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 200 {
			e.SetText(strings.Repeat("a", i%50))
		}
	}()
	for range 200 {
		e.Tick()
	}
	<-done
}
