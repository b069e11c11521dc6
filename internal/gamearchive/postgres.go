package gamearchive

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/park285/woofer-bot/internal/chessgame"
)

const schema = `CREATE TABLE IF NOT EXISTS chess_games (
    game_id          TEXT PRIMARY KEY,
    session_key      TEXT NOT NULL,
    result           TEXT NOT NULL,
    final_mover      TEXT NOT NULL,
    final_mover_name TEXT NOT NULL,
    final_position   TEXT NOT NULL,
    result_method    TEXT NOT NULL DEFAULT '',
    moves            JSONB NOT NULL,
    pgn              TEXT NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL,
    ended_at         TIMESTAMPTZ NOT NULL,
    duration_ms      BIGINT NOT NULL
);
ALTER TABLE chess_games ADD COLUMN IF NOT EXISTS result_method TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS chess_games_session_ended ON chess_games (session_key, ended_at DESC);`

type PostgresArchive struct {
	db *sql.DB
}

// OpenPostgres connects, pings and creates the chess_games table if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresArchive, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(8)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	a := &PostgresArchive{db: db}
	if err := a.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *PostgresArchive) EnsureSchema(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create chess_games: %w", err)
	}
	return nil
}

func (a *PostgresArchive) Save(ctx context.Context, g chessgame.FinishedGame) error {
	if a == nil || a.db == nil {
		return nil
	}
	rec := NewRecord(g)
	movesRaw, _ := json.Marshal(rec.Moves)
	duration := rec.EndedAt.Sub(rec.StartedAt).Milliseconds()
	if duration < 0 {
		duration = 0
	}

	q := `INSERT INTO chess_games (
        game_id, session_key, result, final_mover, final_mover_name,
        final_position, result_method, moves, pgn, started_at, ended_at, duration_ms
      ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
      ON CONFLICT (game_id) DO UPDATE SET
        result=EXCLUDED.result,
        final_mover=EXCLUDED.final_mover,
        final_mover_name=EXCLUDED.final_mover_name,
        final_position=EXCLUDED.final_position,
        result_method=EXCLUDED.result_method,
        moves=EXCLUDED.moves,
        pgn=EXCLUDED.pgn,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := a.db.ExecContext(ctx, q,
		rec.ID, rec.SessionKey, rec.Result, rec.FinalMover, rec.FinalMoverName,
		rec.FinalPosition, rec.Method, string(movesRaw), rec.PGN, rec.StartedAt, rec.EndedAt, duration,
	)
	return err
}

func (a *PostgresArchive) Recent(ctx context.Context, sessionKey string, limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := `SELECT game_id, session_key, result, final_mover, final_mover_name,
        final_position, result_method, moves, pgn, started_at, ended_at
      FROM chess_games
      WHERE ($1 = '' OR session_key = $1)
      ORDER BY ended_at DESC
      LIMIT $2`
	rows, err := a.db.QueryContext(ctx, q, strings.TrimSpace(sessionKey), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec      Record
			movesRaw []byte
		)
		if err := rows.Scan(&rec.ID, &rec.SessionKey, &rec.Result, &rec.FinalMover, &rec.FinalMoverName,
			&rec.FinalPosition, &rec.Method, &movesRaw, &rec.PGN, &rec.StartedAt, &rec.EndedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(movesRaw, &rec.Moves); err != nil {
			return nil, fmt.Errorf("decode moves of %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (a *PostgresArchive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
