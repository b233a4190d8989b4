// Package charset maps text onto the one-byte glyph codes the avatar renders
// and scales those codes onto the [-1, 1] float range of a sync slot.
package charset

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

var ErrInvalidFallback = errors.New("invalid fallback character")

type Codec struct {
	invalid uint8
}

// New returns a codec that substitutes the code of fallback for any rune the
// table lacks. A fallback that is itself missing from the table maps to 0.
func New(fallback string) (*Codec, error) {
	if utf8.RuneCountInString(fallback) != 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFallback, fallback)
	}
	r, _ := utf8.DecodeRuneInString(fallback)
	return &Codec{invalid: codes[r]}, nil
}

func (c *Codec) InvalidCode() uint8 { return c.invalid }

// Normalize applies NFKC and then expands runes listed in the replacement
// table, so one input rune may produce several output runes.
func (c *Codec) Normalize(text string) string {
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if rep, ok := replacements[r]; ok {
			b.WriteString(rep)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Codec) Encode(r rune) uint8 {
	if code, ok := codes[r]; ok {
		return code
	}
	return c.invalid
}

// known reports whether r has its own glyph.
func known(r rune) bool {
	_, ok := codes[r]
	return ok
}

// OutOfRange is the one code whose signal falls outside [-1, 1]. The table
// never assigns it.
const OutOfRange uint8 = 128

// Signal scales a code onto a slot value. Receivers decode with the same
// 127.5 breakpoint and 127 divisor, so neither may change.
func Signal(code uint8) float32 {
	v := float64(code)
	if v > 127.5 {
		v -= 256
	}
	return float32(v / 127.0)
}

// Code inverts Signal.
func Code(signal float32) uint8 {
	v := int(math.Round(float64(signal) * 127.0))
	if v < 0 {
		v += 256
	}
	return uint8(v)
}
