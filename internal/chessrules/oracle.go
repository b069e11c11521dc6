package chessrules

import (
	"fmt"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/woofer-bot/internal/chessgame"
)

// Oracle implements chessgame.Oracle on top of corentings/chess. Positions are FEN strings.
type Oracle struct{}

var _ chessgame.Oracle = Oracle{}

func New() Oracle { return Oracle{} }

func (Oracle) Initial() chessgame.Position {
	return chessgame.Position(nchess.NewGame().FEN())
}

func (Oracle) Parse(text string) (chessgame.Move, error) { return ParseMove(text) }

func (Oracle) LegalMoves(pos chessgame.Position) ([]string, error) {
	game, err := gameAt(pos)
	if err != nil {
		return nil, err
	}
	cur := game.Position()
	valid := game.ValidMoves()
	out := make([]string, 0, len(valid))
	for i := range valid {
		out = append(out, nchess.AlgebraicNotation{}.Encode(cur, &valid[i]))
	}
	return out, nil
}

func (Oracle) Apply(pos chessgame.Position, mv chessgame.Move) (chessgame.Position, error) {
	game, err := gameAt(pos)
	if err != nil {
		return pos, err
	}
	if game.Outcome() != nchess.NoOutcome {
		return pos, fmt.Errorf("%w: game already decided", chessgame.ErrIllegalMove)
	}
	if mv.UCI != "" {
		err = game.PushNotationMove(mv.UCI, nchess.UCINotation{}, nil)
	} else {
		err = game.PushNotationMove(mv.SAN, nchess.AlgebraicNotation{}, nil)
	}
	if err != nil {
		return pos, fmt.Errorf("%w: %s: %v", chessgame.ErrIllegalMove, mv, err)
	}
	return chessgame.Position(game.FEN()), nil
}

// Outcome reports checkmate, stalemate and the automatic draws (insufficient
// material, seventy-five move rule) the library evaluates for a bare position.
func (Oracle) Outcome(pos chessgame.Position) chessgame.Outcome {
	game, err := gameAt(pos)
	if err != nil {
		return chessgame.NoOutcome
	}
	return outcomeOf(game.Outcome())
}

// Method names how a decided position ended, for logs and archives.
func (Oracle) Method(pos chessgame.Position) string {
	game, err := gameAt(pos)
	if err != nil {
		return ""
	}
	if game.Outcome() == nchess.NoOutcome {
		return ""
	}
	return game.Method().String()
}

func outcomeOf(o nchess.Outcome) chessgame.Outcome {
	switch o {
	case nchess.WhiteWon:
		return chessgame.WhiteWins
	case nchess.BlackWon:
		return chessgame.BlackWins
	case nchess.Draw:
		return chessgame.Draw
	default:
		return chessgame.NoOutcome
	}
}

func gameAt(pos chessgame.Position) (*nchess.Game, error) {
	opt, err := nchess.FEN(string(pos))
	if err != nil {
		return nil, fmt.Errorf("decode position: %w", err)
	}
	return nchess.NewGame(opt), nil
}
