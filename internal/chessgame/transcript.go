package chessgame

import (
	"strconv"
	"strings"
)

// FormatTranscript lays moves out two plies per number: "1. e4 e5 2. Nf3".
// Numbering follows ply parity only; who typed a move does not matter.
func FormatTranscript(moves []string) string {
	var b strings.Builder
	for i, mv := range moves {
		if i > 0 {
			b.WriteByte(' ')
		}
		if i%2 == 0 {
			b.WriteString(strconv.Itoa(i/2 + 1))
			b.WriteString(". ")
		}
		b.WriteString(mv)
	}
	return b.String()
}
