package chessgame

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// scriptOracle is a stand-in rules engine: a position is the list of moves
// played so far, "mate" ends the game for the side that played it and "draw"
// ends it drawn.
type scriptOracle struct {
	illegal  map[string]bool
	legal    []string
	legalErr error
}

var scriptMove = regexp.MustCompile(`^[A-Za-z0-9=+#-]+$`)

func newScriptOracle() *scriptOracle {
	return &scriptOracle{
		illegal: map[string]bool{"Ke2": true, "Qh5": true},
		legal:   []string{"a3", "e4", "Nf3"},
	}
}

func (o *scriptOracle) Initial() Position { return "start" }

func (o *scriptOracle) Parse(text string) (Move, error) {
	text = strings.TrimSpace(text)
	if !scriptMove.MatchString(text) {
		return Move{}, fmt.Errorf("%w: %q", ErrParse, text)
	}
	return Move{Raw: text, SAN: text}, nil
}

func (o *scriptOracle) LegalMoves(Position) ([]string, error) {
	if o.legalErr != nil {
		return nil, o.legalErr
	}
	return o.legal, nil
}

func (o *scriptOracle) Apply(pos Position, mv Move) (Position, error) {
	if mv.SAN == "boom" {
		panic("rules engine exploded")
	}
	if o.illegal[mv.SAN] {
		return pos, ErrIllegalMove
	}
	return Position(string(pos) + "/" + mv.SAN), nil
}

func (o *scriptOracle) Outcome(pos Position) Outcome {
	parts := strings.Split(string(pos), "/")
	switch parts[len(parts)-1] {
	case "mate":
		// the side that just moved delivered mate
		if (len(parts)-1)%2 == 1 {
			return WhiteWins
		}
		return BlackWins
	case "draw":
		return Draw
	}
	return NoOutcome
}

func (o *scriptOracle) Method(pos Position) string {
	switch o.Outcome(pos) {
	case WhiteWins, BlackWins:
		return "Checkmate"
	case Draw:
		return "Stalemate"
	}
	return ""
}

// rulesOnly hides the optional capabilities of the wrapped oracle.
type rulesOnly struct{ Oracle }

type memArchive struct {
	mu    sync.Mutex
	games []FinishedGame
	err   error
}

func (a *memArchive) Save(_ context.Context, g FinishedGame) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.games = append(a.games, g)
	return a.err
}

func newTestController(t *testing.T, opts ...Option) (*Controller, *scriptOracle) {
	t.Helper()
	o := newScriptOracle()
	return NewController(NewStore(4, o.Initial()), o, opts...), o
}

func play(t *testing.T, c *Controller, key, actor, move string) *Result {
	t.Helper()
	res, err := c.Play(context.Background(), Request{SessionKey: key, ActorID: actor, ActorName: strings.ToUpper(actor), MoveText: move})
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func TestAlternatingPlayersAndOutOfTurn(t *testing.T) {
	c, _ := newTestController(t)

	r := play(t, c, "c1", "a", "e4")
	assert.Equal(t, KindMoveAccepted, r.Kind)
	assert.Equal(t, "1. e4", r.Transcript)
	assert.Equal(t, Position("start/e4"), r.Position)

	r = play(t, c, "c1", "a", "e5")
	assert.Equal(t, KindOutOfTurn, r.Kind)
	assert.ErrorIs(t, r.Err, ErrOutOfTurn)
	assert.Equal(t, "A", r.LastMoverName)
	assert.Equal(t, "Someone else has to make a move first!!!!! A just moved. The game so far is 1. e4.", r.Status)

	st, _ := c.Store().Snapshot("c1")
	assert.Equal(t, []string{"e4"}, st.Moves)
	assert.Equal(t, "a", st.LastMover)

	r = play(t, c, "c1", "b", "e5")
	assert.Equal(t, KindMoveAccepted, r.Kind)
	assert.Equal(t, "1. e4 e5", r.Transcript)

	r = play(t, c, "c1", "a", "Nf3")
	assert.Equal(t, "1. e4 e5 2. Nf3", r.Transcript)
}

func TestLastMoverIsRejectedEvenForIllegalMoves(t *testing.T) {
	c, _ := newTestController(t)
	play(t, c, "c1", "a", "e4")

	r := play(t, c, "c1", "a", "Ke2")
	assert.Equal(t, KindOutOfTurn, r.Kind)
	assert.ErrorIs(t, r.Err, ErrOutOfTurn)
	assert.Empty(t, r.LegalMoves)
	assert.Equal(t, Position("start/e4"), r.Position)

	st, _ := c.Store().Snapshot("c1")
	assert.Equal(t, []string{"e4"}, st.Moves)
}

func TestMethodIsOptional(t *testing.T) {
	arch := &memArchive{}
	o := newScriptOracle()
	c := NewController(NewStore(1, o.Initial()), rulesOnly{o}, WithArchive(arch))

	play(t, c, "c1", "a", "e4")
	r := play(t, c, "c1", "b", "draw")
	assert.Equal(t, KindGameOver, r.Kind)
	require.NotNil(t, r.Game)
	assert.Empty(t, r.Game.Method)
	require.Len(t, arch.games, 1)
}

func TestAnyoneMayMoveOnFreshBoard(t *testing.T) {
	c, _ := newTestController(t)
	r := play(t, c, "c1", "z", "d4")
	assert.Equal(t, KindMoveAccepted, r.Kind)

	st, ok := c.Store().Snapshot("c1")
	require.True(t, ok)
	assert.Equal(t, "z", st.LastMover)
	assert.Equal(t, "Z", st.LastMoverName)
	assert.False(t, st.StartedAt.IsZero())
}

func TestParseErrorLeavesStateUntouched(t *testing.T) {
	c, _ := newTestController(t)
	play(t, c, "c1", "a", "e4")

	// parse errors are reported before the turn check
	r := play(t, c, "c1", "a", "not a move")
	assert.Equal(t, KindParseError, r.Kind)
	assert.ErrorIs(t, r.Err, ErrParse)
	assert.Equal(t, Position("start/e4"), r.Position)

	st, _ := c.Store().Snapshot("c1")
	assert.Equal(t, []string{"e4"}, st.Moves)
	assert.Equal(t, "a", st.LastMover)
}

func TestIllegalMoveIsIdempotent(t *testing.T) {
	c, _ := newTestController(t)
	play(t, c, "c1", "a", "e4")

	first := play(t, c, "c1", "b", "Ke2")
	second := play(t, c, "c1", "b", "Ke2")

	for _, r := range []*Result{first, second} {
		assert.Equal(t, KindIllegalMove, r.Kind)
		assert.ErrorIs(t, r.Err, ErrIllegalMove)
		assert.Equal(t, []string{"a3", "e4", "Nf3"}, r.LegalMoves)
		assert.Equal(t, "Illegal move!!!!! The valid moves are a3, e4, Nf3.", r.Status)
	}
	assert.Equal(t, first.Position, second.Position)

	st, _ := c.Store().Snapshot("c1")
	assert.Equal(t, []string{"e4"}, st.Moves)
	assert.Equal(t, "a", st.LastMover)
}

func TestGameOverResetsAndArchives(t *testing.T) {
	arch := &memArchive{}
	clock := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c, _ := newTestController(t, WithArchive(arch), WithClock(func() time.Time { return clock }))

	play(t, c, "c1", "a", "f3")
	play(t, c, "c1", "b", "e5")
	play(t, c, "c1", "a", "g4")
	r := play(t, c, "c1", "b", "mate")

	assert.Equal(t, KindGameOver, r.Kind)
	assert.Equal(t, BlackWins, r.Outcome)
	assert.Equal(t, "Black wins! 0-1", r.Status)
	assert.Equal(t, "1. f3 e5 2. g4 mate", r.Transcript)
	assert.Equal(t, Position("start/f3/e5/g4/mate"), r.Position)
	require.NotNil(t, r.Game)
	assert.Equal(t, "b", r.Game.FinalMover)
	assert.Equal(t, "Checkmate", r.Game.Method)

	st, _ := c.Store().Snapshot("c1")
	assert.True(t, st.Fresh())
	assert.Empty(t, st.LastMover)
	assert.Equal(t, Position("start"), st.Position)

	require.Len(t, arch.games, 1)
	g := arch.games[0]
	assert.Equal(t, "c1", g.SessionKey)
	assert.Equal(t, []string{"f3", "e5", "g4", "mate"}, g.Moves)
	assert.Equal(t, clock, g.StartedAt)
	assert.Equal(t, clock, g.EndedAt)
	assert.Equal(t, "Checkmate", g.Method)

	// the player who ended the game may open the next one
	r = play(t, c, "c1", "b", "e4")
	assert.Equal(t, KindMoveAccepted, r.Kind)
	assert.Equal(t, "1. e4", r.Transcript)
}

func TestDrawAndWhiteWinHeadlines(t *testing.T) {
	c, _ := newTestController(t)
	r := play(t, c, "c1", "a", "draw")
	assert.Equal(t, "Draw! 1/2-1/2", r.Status)

	r = play(t, c, "c2", "a", "mate")
	assert.Equal(t, WhiteWins, r.Outcome)
	assert.Equal(t, "White wins! 1-0", r.Status)
}

func TestArchiveFailureDoesNotFailMove(t *testing.T) {
	arch := &memArchive{err: errors.New("disk full")}
	c, _ := newTestController(t, WithArchive(arch))
	r := play(t, c, "c1", "a", "draw")
	assert.Equal(t, KindGameOver, r.Kind)
	assert.Len(t, arch.games, 1)
}

func TestSessionsDoNotShareState(t *testing.T) {
	c, _ := newTestController(t)
	play(t, c, "c1", "a", "e4")

	r := play(t, c, "c2", "a", "d4")
	assert.Equal(t, KindMoveAccepted, r.Kind)
	assert.Equal(t, "1. d4", r.Transcript)

	st, _ := c.Store().Snapshot("c1")
	assert.Equal(t, []string{"e4"}, st.Moves)
}

func TestOraclePanicIsReportedAndNothingCommitted(t *testing.T) {
	c, _ := newTestController(t)
	play(t, c, "c1", "a", "e4")

	_, err := c.Play(context.Background(), Request{SessionKey: "c1", ActorID: "b", MoveText: "boom"})
	require.Error(t, err)

	st, _ := c.Store().Snapshot("c1")
	assert.Equal(t, []string{"e4"}, st.Moves)

	r := play(t, c, "c1", "b", "e5")
	assert.Equal(t, KindMoveAccepted, r.Kind)
}

func TestLegalMovesFailureIsFatal(t *testing.T) {
	c, o := newTestController(t)
	o.legalErr = errors.New("engine gone")

	_, err := c.Play(context.Background(), Request{SessionKey: "c1", ActorID: "a", MoveText: "Qh5"})
	require.Error(t, err)
	_, ok := c.Store().Snapshot("c1")
	assert.True(t, ok)
}

func TestCancelledContext(t *testing.T) {
	c, _ := newTestController(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Play(ctx, Request{SessionKey: "c1", ActorID: "a", MoveText: "e4"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Store().Len())
}

func TestConcurrentMovesKeepAlternation(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	var g errgroup.Group
	for _, actor := range []string{"A", "B"} {
		for i := 0; i < 25; i++ {
			g.Go(func() error {
				_, err := c.Play(ctx, Request{SessionKey: "race", ActorID: actor, MoveText: actor})
				return err
			})
		}
	}
	require.NoError(t, g.Wait())

	st, _ := c.Store().Snapshot("race")
	require.NotEmpty(t, st.Moves)
	for i := 1; i < len(st.Moves); i++ {
		require.NotEqual(t, st.Moves[i-1], st.Moves[i], "same actor moved twice in a row at ply %d", i)
	}
	assert.Equal(t, st.Moves[len(st.Moves)-1], st.LastMover)
}

func TestConcurrentSessionsAreIsolated(t *testing.T) {
	c, _ := newTestController(t)
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		key := fmt.Sprintf("room-%d", i)
		g.Go(func() error {
			for ply := 0; ply < 10; ply++ {
				actor := "w"
				if ply%2 == 1 {
					actor = "b"
				}
				res, err := c.Play(ctx, Request{SessionKey: key, ActorID: actor, MoveText: "e4"})
				if err != nil {
					return err
				}
				if res.Kind != KindMoveAccepted {
					return fmt.Errorf("%s ply %d: %s", key, ply, res.Kind)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 16, c.Store().Len())
	for i := 0; i < 16; i++ {
		st, _ := c.Store().Snapshot(fmt.Sprintf("room-%d", i))
		assert.Len(t, st.Moves, 10)
	}
}
