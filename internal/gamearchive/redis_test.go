package gamearchive

import (
    "context"
    "fmt"
    "testing"
    "time"

    miniredis "github.com/alicebob/miniredis/v2"
    "github.com/park285/woofer-bot/internal/chessgame"
)

func newTestArchive(t *testing.T) (*RedisArchive, *miniredis.Miniredis) {
    t.Helper()
    mr, err := miniredis.Run()
    if err != nil { t.Fatalf("miniredis: %v", err) }
    t.Cleanup(func() { mr.Close() })
    a, err := OpenRedis(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()))
    if err != nil { t.Fatalf("OpenRedis: %v", err) }
    t.Cleanup(func() { _ = a.Close() })
    return a, mr
}

func finished(session string, outcome chessgame.Outcome, moves ...string) chessgame.FinishedGame {
    start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
    g := chessgame.FinishedGame{
        SessionKey:     session,
        Moves:          moves,
        Outcome:        outcome,
        FinalPosition:  "8/8/8/8/8/8/8/8 w - - 0 1",
        FinalMover:     "u2",
        FinalMoverName: "Bob",
        StartedAt:      start,
        EndedAt:        start.Add(90 * time.Second),
    }
    if outcome != chessgame.Draw { g.Method = "Checkmate" }
    return g
}

func TestSaveAndRecentPerSession(t *testing.T) {
    a, _ := newTestArchive(t)
    ctx := context.Background()

    if err := a.Save(ctx, finished("room-1", chessgame.BlackWins, "f3", "e5", "g4", "Qh4#")); err != nil { t.Fatalf("Save: %v", err) }
    if err := a.Save(ctx, finished("room-1", chessgame.Draw, "e4")); err != nil { t.Fatalf("Save: %v", err) }
    if err := a.Save(ctx, finished("room-2", chessgame.WhiteWins, "d4")); err != nil { t.Fatalf("Save: %v", err) }

    recs, err := a.Recent(ctx, "room-1", 10)
    if err != nil { t.Fatalf("Recent: %v", err) }
    if len(recs) != 2 { t.Fatalf("expected 2 records, got %d", len(recs)) }
    if recs[0].Result != "draw" || recs[1].Result != "black" { t.Fatalf("expected newest first, got %q then %q", recs[0].Result, recs[1].Result) }
    if recs[1].Transcript() != "1. f3 e5 2. g4 Qh4#" { t.Fatalf("unexpected transcript %q", recs[1].Transcript()) }
    if recs[1].Score() != "0-1" { t.Fatalf("unexpected score %q", recs[1].Score()) }
    if recs[1].Method != "Checkmate" || recs[0].Method != "" { t.Fatalf("unexpected methods %q, %q", recs[1].Method, recs[0].Method) }
    if recs[1].ID == "" || recs[1].ID == recs[0].ID { t.Fatalf("expected distinct ids") }

    all, err := a.Recent(ctx, "", 2)
    if err != nil { t.Fatalf("Recent all: %v", err) }
    if len(all) != 2 || all[0].SessionKey != "room-2" { t.Fatalf("unexpected global listing: %+v", all) }
}

func TestRecentSkipsExpiredGames(t *testing.T) {
    a, mr := newTestArchive(t)
    ctx := context.Background()
    if err := a.Save(ctx, finished("room-1", chessgame.Draw, "e4")); err != nil { t.Fatalf("Save: %v", err) }

    mr.FastForward(ttlGame + time.Hour)
    recs, err := a.Recent(ctx, "", 5)
    if err != nil { t.Fatalf("Recent: %v", err) }
    if len(recs) != 0 { t.Fatalf("expected expired record to be skipped, got %d", len(recs)) }
}

func TestSessionIndexIsTrimmed(t *testing.T) {
    a, _ := newTestArchive(t)
    ctx := context.Background()
    for i := 0; i < maxPerSession+5; i++ {
        if err := a.Save(ctx, finished("busy", chessgame.Draw, "e4")); err != nil { t.Fatalf("Save #%d: %v", i, err) }
    }
    n, err := a.rdb.LLen(ctx, keySession("busy")).Result()
    if err != nil { t.Fatalf("LLen: %v", err) }
    if n != maxPerSession { t.Fatalf("expected %d ids, got %d", maxPerSession, n) }
}

func TestOpenModes(t *testing.T) {
    a, err := Open(context.Background(), "none", "", "")
    if err != nil || a != nil { t.Fatalf("none: a=%v err=%v", a, err) }
    if _, err := Open(context.Background(), "redis", "", ""); err == nil { t.Fatalf("expected error without REDIS_URL") }
    if _, err := Open(context.Background(), "mongo", "", ""); err == nil { t.Fatalf("expected error for unknown mode") }
}
