package gamearchive

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/park285/woofer-bot/internal/chessgame"
)

// Record is one finished game as it is stored.
type Record struct {
	ID             string    `json:"id"`
	SessionKey     string    `json:"session_key"`
	Moves          []string  `json:"moves"`
	Result         string    `json:"result"`
	FinalMover     string    `json:"final_mover"`
	FinalMoverName string    `json:"final_mover_name"`
	FinalPosition  string    `json:"final_position"`
	Method         string    `json:"method,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	EndedAt        time.Time `json:"ended_at"`
	PGN            string    `json:"pgn"`
}

// Score is the PGN result token for the record.
func (r Record) Score() string { return mapResultToPGN(r.Result) }

// Transcript is the numbered move list.
func (r Record) Transcript() string { return chessgame.FormatTranscript(r.Moves) }

// Archive stores finished games and lists them back per session.
type Archive interface {
	chessgame.Archive
	Recent(ctx context.Context, sessionKey string, limit int) ([]Record, error)
	Close() error
}

// NewRecord converts a finished game into a record with a fresh id.
func NewRecord(g chessgame.FinishedGame) Record {
	rec := Record{
		ID:             uuid.NewString(),
		SessionKey:     g.SessionKey,
		Moves:          append([]string(nil), g.Moves...),
		Result:         g.Outcome.String(),
		FinalMover:     g.FinalMover,
		FinalMoverName: g.FinalMoverName,
		FinalPosition:  string(g.FinalPosition),
		Method:         g.Method,
		StartedAt:      g.StartedAt.UTC(),
		EndedAt:        g.EndedAt.UTC(),
	}
	rec.PGN = BuildPGN(rec)
	return rec
}

func mapResultToPGN(result string) string {
	switch strings.ToLower(strings.TrimSpace(result)) {
	case "white":
		return "1-0"
	case "black":
		return "0-1"
	case "draw":
		return "1/2-1/2"
	default:
		return "*"
	}
}
