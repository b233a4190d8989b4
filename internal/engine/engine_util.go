package engine

import "strings"

// layout pads every line to a whole number of rows so a line never shifts the
// rows after it, then pads or truncates the result to TextLength.
func (e *Engine) layout(text string) []rune {
	size, width := e.cfg.TextLength, e.cfg.LineLength
	text = strings.ReplaceAll(text, "\r\n", "\n")

	buf := make([]rune, 0, size+width)
	for line := range strings.SplitSeq(text, "\n") {
		rs := []rune(line)
		rows := max((len(rs)+width-1)/width, 1)
		buf = append(buf, rs...)
		buf = appendSpaces(buf, rows*width-len(rs))
		if len(buf) >= size {
			break
		}
	}
	if len(buf) > size {
		return buf[:size]
	}
	return appendSpaces(buf, size-len(buf))
}

func (e *Engine) resetSynced() {
	for i := range e.synced {
		e.synced[i] = ' '
	}
}

func blank(n int) []rune {
	return appendSpaces(make([]rune, 0, n), n)
}

func appendSpaces(buf []rune, n int) []rune {
	for range n {
		buf = append(buf, ' ')
	}
	return buf
}
