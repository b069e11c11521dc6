package chessrules

import (
	"context"
	"strings"
	"testing"

	"github.com/park285/woofer-bot/internal/chessgame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func board(pos chessgame.Position) string {
	return strings.Fields(string(pos))[0]
}

func apply(t *testing.T, o Oracle, pos chessgame.Position, text string) chessgame.Position {
	t.Helper()
	mv, err := o.Parse(text)
	require.NoError(t, err)
	next, err := o.Apply(pos, mv)
	require.NoError(t, err, text)
	return next
}

func TestInitialIsStandardStart(t *testing.T) {
	assert.Equal(t, chessgame.Position(startFEN), New().Initial())
}

func TestLegalMovesFromStart(t *testing.T) {
	moves, err := New().LegalMoves(startFEN)
	require.NoError(t, err)
	assert.Len(t, moves, 20)
	assert.Contains(t, moves, "e4")
	assert.Contains(t, moves, "Nf3")
	assert.NotContains(t, moves, "e5")
}

func TestApplyAlgebraicAndCoordinate(t *testing.T) {
	o := New()
	pos := apply(t, o, o.Initial(), "e4")
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR", board(pos))

	pos = apply(t, o, pos, "e7e5")
	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR", board(pos))
	assert.Equal(t, chessgame.NoOutcome, o.Outcome(pos))
}

func TestApplyIllegalLeavesPosition(t *testing.T) {
	o := New()
	mv, err := o.Parse("e5")
	require.NoError(t, err)

	pos, err := o.Apply(o.Initial(), mv)
	assert.ErrorIs(t, err, chessgame.ErrIllegalMove)
	assert.Equal(t, o.Initial(), pos)

	mv, err = o.Parse("e2e5")
	require.NoError(t, err)
	_, err = o.Apply(o.Initial(), mv)
	assert.ErrorIs(t, err, chessgame.ErrIllegalMove)
}

func TestCastlingAndPromotion(t *testing.T) {
	o := New()
	pos := apply(t, o, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", "0-0")
	assert.Equal(t, "r3k2r/8/8/8/8/8/8/R4RK1", board(pos))

	pos = apply(t, o, "8/4P3/8/8/8/8/k7/7K w - - 0 1", "e8Q")
	assert.Equal(t, "4Q3/8/8/8/8/8/k7/7K", board(pos))
}

func TestOutcomes(t *testing.T) {
	o := New()
	assert.Equal(t, chessgame.Draw, o.Outcome("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"), "stalemate")
	assert.Equal(t, chessgame.Draw, o.Outcome("8/8/8/4k3/8/8/8/4K3 w - - 0 1"), "bare kings")
	assert.Equal(t, chessgame.NoOutcome, o.Outcome(startFEN))
	assert.Equal(t, "", o.Method(startFEN))
}

func TestFoolsMateThroughController(t *testing.T) {
	o := New()
	c := chessgame.NewController(chessgame.NewStore(1, o.Initial()), o)
	ctx := context.Background()

	actors := []string{"alice", "bob"}
	var res *chessgame.Result
	for i, mv := range []string{"f3", "e5", "g4", "Qh4#"} {
		var err error
		res, err = c.Play(ctx, chessgame.Request{SessionKey: "c1", ActorID: actors[i%2], ActorName: actors[i%2], MoveText: mv})
		require.NoError(t, err)
	}

	assert.Equal(t, chessgame.KindGameOver, res.Kind)
	assert.Equal(t, chessgame.BlackWins, res.Outcome)
	assert.Equal(t, "Black wins! 0-1", res.Status)
	assert.Equal(t, "1. f3 e5 2. g4 Qh4#", res.Transcript)
	assert.Equal(t, "Checkmate", o.Method(res.Position))
	require.NotNil(t, res.Game)
	assert.Equal(t, "Checkmate", res.Game.Method)

	st, ok := c.Store().Snapshot("c1")
	require.True(t, ok)
	assert.True(t, st.Fresh())
	assert.Equal(t, o.Initial(), st.Position)
}

func TestIllegalMoveListsLegalMoves(t *testing.T) {
	o := New()
	c := chessgame.NewController(chessgame.NewStore(1, o.Initial()), o)

	res, err := c.Play(context.Background(), chessgame.Request{SessionKey: "c1", ActorID: "a", MoveText: "Ke2"})
	require.NoError(t, err)
	assert.Equal(t, chessgame.KindIllegalMove, res.Kind)
	assert.Len(t, res.LegalMoves, 20)
	assert.True(t, strings.HasPrefix(res.Status, "Illegal move!!!!! The valid moves are "))
}
