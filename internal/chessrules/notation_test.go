package chessrules

import (
	"testing"

	"github.com/park285/woofer-bot/internal/chessgame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoveAlgebraic(t *testing.T) {
	cases := map[string]string{
		"e4":      "e4",
		" Nf3 ":   "Nf3",
		"Nxe5+":   "Nxe5",
		"Qh4#":    "Qh4",
		"exd5":    "exd5",
		"e8=Q":    "e8=Q",
		"e8Q":     "e8=Q",
		"bxa8=N+": "bxa8=N",
		"O-O":     "O-O",
		"0-0-0":   "O-O-O",
		"Rad1!?":  "Rad1",
		"R1e2":    "R1e2",
	}
	for in, want := range cases {
		mv, err := ParseMove(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, mv.SAN, in)
		assert.Empty(t, mv.UCI, in)
	}
}

func TestParseMoveCoordinate(t *testing.T) {
	mv, err := ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, "e2e4", mv.UCI)
	assert.Empty(t, mv.SAN)

	mv, err = ParseMove("E7E8Q")
	require.NoError(t, err)
	assert.Equal(t, "e7e8q", mv.UCI)
}

func TestParseMoveRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "woof", "e9", "Zf3", "hello world", "e4 e5", "i2i4"} {
		_, err := ParseMove(in)
		assert.ErrorIs(t, err, chessgame.ErrParse, in)
	}
}
