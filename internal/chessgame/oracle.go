package chessgame

import (
	"context"
	"errors"
)

var (
	ErrParse       = errors.New("not a move")
	ErrIllegalMove = errors.New("illegal move")
	ErrOutOfTurn   = errors.New("out of turn")
)

// Oracle is the rules engine the controller consults. Implementations must be
// deterministic: the same position and move always give the same answer.
type Oracle interface {
	Initial() Position
	// Parse turns move text into a Move; errors wrap ErrParse.
	Parse(text string) (Move, error)
	// LegalMoves lists every legal move in pos, in algebraic notation.
	LegalMoves(pos Position) ([]string, error)
	// Apply plays mv on pos; errors wrap ErrIllegalMove when mv cannot be played.
	Apply(pos Position, mv Move) (Position, error)
	Outcome(pos Position) Outcome
}

// MethodReporter is an optional Oracle capability naming how a decided
// position ended ("Checkmate", "Stalemate", ...).
type MethodReporter interface {
	Method(pos Position) string
}

// Archive receives finished games. It is called outside any session lock.
type Archive interface {
	Save(ctx context.Context, g FinishedGame) error
}
