package chessgame

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/woofer-bot/internal/obslog"
	"go.uber.org/zap"
)

// Kind classifies the result of one move attempt.
type Kind int

const (
	KindMoveAccepted Kind = iota
	KindGameOver
	KindParseError
	KindOutOfTurn
	KindIllegalMove
)

func (k Kind) String() string {
	switch k {
	case KindMoveAccepted:
		return "accepted"
	case KindGameOver:
		return "game_over"
	case KindParseError:
		return "parse_error"
	case KindOutOfTurn:
		return "out_of_turn"
	case KindIllegalMove:
		return "illegal_move"
	default:
		return "unknown"
	}
}

// Request is one "attempt a move" message.
type Request struct {
	SessionKey string
	ActorID    string
	ActorName  string
	MoveText   string
}

// Result is what the caller renders and sends back. Position is the board to
// show: the new one after an accepted move, the final one after a game-ending
// move, the unchanged one otherwise.
type Result struct {
	Kind          Kind
	Status        string
	Position      Position
	Transcript    string
	Move          string
	LegalMoves    []string
	LastMoverName string
	Outcome       Outcome
	Err           error
	Game          *FinishedGame
}

// FinishedGame describes a game that just ended; the session has already been reset.
type FinishedGame struct {
	SessionKey     string
	Moves          []string
	Outcome        Outcome
	FinalPosition  Position
	FinalMover     string
	FinalMoverName string
	Method         string
	StartedAt      time.Time
	EndedAt        time.Time
}

type Option func(*Controller)

// WithArchive stores every finished game in a.
func WithArchive(a Archive) Option {
	return func(c *Controller) { c.archive = a }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller runs move attempts against a Store using an Oracle.
type Controller struct {
	store   *Store
	oracle  Oracle
	archive Archive
	now     func() time.Time
}

func NewController(store *Store, oracle Oracle, opts ...Option) *Controller {
	c := &Controller{store: store, oracle: oracle, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the session store the controller works on.
func (c *Controller) Store() *Store { return c.store }

// Play handles one move attempt. Rejections (parse, turn, legality) come back
// as a Result with a nil error; a non-nil error means the oracle misbehaved and
// nothing was committed.
func (c *Controller) Play(ctx context.Context, req Request) (res *Result, err error) {
	if c == nil || c.store == nil || c.oracle == nil {
		return nil, errors.New("chess controller not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			obslog.L().Error("chess_oracle_panic", zap.String("session", req.SessionKey), zap.Any("panic", r))
			res, err = nil, fmt.Errorf("rules oracle panic: %v", r)
		}
	}()

	c.store.WithSession(req.SessionKey, func(st *State) {
		res, err = c.attempt(st, req)
	})
	if err != nil {
		obslog.L().Error("chess_move_error", zap.String("session", req.SessionKey), zap.String("actor", req.ActorID), zap.Error(err))
		return nil, err
	}

	obslog.L().Info("chess_move",
		zap.String("session", req.SessionKey),
		zap.String("actor", req.ActorID),
		zap.String("move", res.Move),
		zap.String("kind", res.Kind.String()),
	)
	if res.Kind == KindGameOver {
		obslog.L().Info("chess_game_over",
			zap.String("session", req.SessionKey),
			zap.String("outcome", res.Outcome.String()),
			zap.String("method", res.Game.Method),
			zap.Int("plies", len(res.Game.Moves)),
		)
		c.save(ctx, res.Game)
	}
	return res, nil
}

// attempt runs inside the session lock. It assigns *st at most once, at the end
// of the successful path.
func (c *Controller) attempt(st *State, req Request) (*Result, error) {
	text := strings.TrimSpace(req.MoveText)
	res := &Result{
		Position:   st.Position,
		Transcript: st.Transcript(),
		Move:       text,
	}

	mv, err := c.oracle.Parse(req.MoveText)
	if err != nil {
		res.Kind = KindParseError
		res.Err = wrapAs(err, ErrParse)
		res.Status = fmt.Sprintf("Illegal move!!!!! %q is not a move.", text)
		return res, nil
	}

	if !st.Fresh() && st.LastMover == req.ActorID {
		res.Kind = KindOutOfTurn
		res.Err = ErrOutOfTurn
		res.LastMoverName = st.LastMoverName
		res.Status = fmt.Sprintf("Someone else has to make a move first!!!!! %s just moved. The game so far is %s.", st.LastMoverName, res.Transcript)
		return res, nil
	}

	next, err := c.oracle.Apply(st.Position, mv)
	if err != nil {
		legal, lerr := c.oracle.LegalMoves(st.Position)
		if lerr != nil {
			return nil, fmt.Errorf("legal moves: %w", lerr)
		}
		res.Kind = KindIllegalMove
		res.Err = wrapAs(err, ErrIllegalMove)
		res.LegalMoves = legal
		res.Status = fmt.Sprintf("Illegal move!!!!! The valid moves are %s.", strings.Join(legal, ", "))
		return res, nil
	}

	now := c.now()
	moves := append(append(make([]string, 0, len(st.Moves)+1), st.Moves...), text)
	started := st.StartedAt
	if started.IsZero() {
		started = now
	}

	res.Position = next
	res.Transcript = FormatTranscript(moves)

	outcome := c.oracle.Outcome(next)
	if outcome == NoOutcome {
		*st = State{
			Position:      next,
			LastMover:     req.ActorID,
			LastMoverName: req.ActorName,
			Moves:         moves,
			StartedAt:     started,
		}
		res.Kind = KindMoveAccepted
		return res, nil
	}

	res.Kind = KindGameOver
	res.Outcome = outcome
	res.Status = outcome.Headline() + " " + outcome.Score()
	res.Game = &FinishedGame{
		SessionKey:     req.SessionKey,
		Moves:          moves,
		Outcome:        outcome,
		FinalPosition:  next,
		FinalMover:     req.ActorID,
		FinalMoverName: req.ActorName,
		Method:         c.method(next),
		StartedAt:      started,
		EndedAt:        now,
	}
	*st = c.store.fresh()
	return res, nil
}

func (c *Controller) method(pos Position) string {
	if mr, ok := c.oracle.(MethodReporter); ok {
		return mr.Method(pos)
	}
	return ""
}

func (c *Controller) save(ctx context.Context, g *FinishedGame) {
	if c.archive == nil || g == nil {
		return
	}
	if err := c.archive.Save(ctx, *g); err != nil {
		obslog.L().Warn("archive_save_error", zap.String("session", g.SessionKey), zap.Error(err))
	}
}

func wrapAs(err, sentinel error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}
