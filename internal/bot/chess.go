package bot

import (
	"context"
	"strings"

	"github.com/park285/woofer-bot/internal/boardimg"
	"github.com/park285/woofer-bot/internal/chessgame"
	"github.com/park285/woofer-bot/internal/obslog"
	"go.uber.org/zap"
)

const gamesShown = 5

func (r *Router) playChess(ctx context.Context, in Inbound, moveText string) *Reply {
	res, err := r.chess.Play(ctx, chessgame.Request{
		SessionKey: in.Channel,
		ActorID:    in.AuthorID,
		ActorName:  in.AuthorName,
		MoveText:   moveText,
	})
	if err != nil {
		obslog.L().Error("chess_play_error", zap.String("channel", in.Channel), zap.String("author", in.AuthorID), zap.Error(err))
		return r.text("chess.failed", nil, "Something went wrong with the board.")
	}

	board := r.renderBoard(ctx, res)
	data := r.data(map[string]any{
		"Board":      board.URL,
		"Transcript": res.Transcript,
		"Move":       res.Move,
		"LastMover":  res.LastMoverName,
		"Legal":      strings.Join(res.LegalMoves, ", "),
		"Headline":   res.Outcome.Headline(),
		"Score":      res.Outcome.Score(),
	})

	var key string
	switch res.Kind {
	case chessgame.KindMoveAccepted:
		key = "chess.accepted"
	case chessgame.KindGameOver:
		key = "chess.game_over"
	case chessgame.KindOutOfTurn:
		key = "chess.out_of_turn"
	case chessgame.KindIllegalMove:
		key = "chess.illegal"
	default:
		key = "chess.parse_error"
	}

	fallback := res.Status
	if fallback == "" {
		fallback = res.Transcript
	}
	if board.URL != "" {
		fallback += " " + board.URL
	}
	return &Reply{
		Text:  r.msgs.Text(key, data, fallback),
		Image: board.PNG,
	}
}

// renderBoard draws the position the result reports. Parse errors carry no board.
func (r *Router) renderBoard(ctx context.Context, res *chessgame.Result) boardimg.Board {
	if res.Kind == chessgame.KindParseError {
		return boardimg.Board{}
	}
	title := res.Transcript
	if title == "" {
		title = r.prefix + " chess"
	}
	board, err := r.renderer.Render(ctx, res.Position, boardimg.Caption{Title: title, Status: res.Status})
	if err != nil {
		obslog.L().Warn("board_render_error", zap.String("kind", res.Kind.String()), zap.Error(err))
		return boardimg.Board{}
	}
	return board
}

func (r *Router) games(ctx context.Context, in Inbound) *Reply {
	if r.history == nil {
		return r.text("games.disabled", nil, "Game archive is turned off.")
	}
	recs, err := r.history.Recent(ctx, in.Channel, gamesShown)
	if err != nil {
		obslog.L().Warn("archive_recent_error", zap.String("channel", in.Channel), zap.Error(err))
		return r.text("games.failed", nil, "Could not read the game archive.")
	}
	if len(recs) == 0 {
		return r.text("games.empty", nil, "No finished games here yet.")
	}

	lines := make([]string, 0, len(recs)+1)
	lines = append(lines, r.msgs.Text("games.header", map[string]any{"Count": len(recs)}, "Last games:"))
	for _, rec := range recs {
		line := map[string]any{
			"Ended":      rec.EndedAt.Format("2006-01-02"),
			"Score":      rec.Score(),
			"Transcript": rec.Transcript(),
		}
		lines = append(lines, r.msgs.Text("games.line", line, rec.Score()+" "+rec.Transcript()))
	}
	return &Reply{Text: strings.Join(lines, "\n")}
}
