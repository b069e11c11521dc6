package msgcat

import (
    "os"
    "path/filepath"
    "strings"
    "testing"
)

func TestEmbeddedChessTemplates(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }

    out, err := c.Render("chess.game_over", map[string]any{
        "Headline": "Black wins!", "Transcript": "1. f3 e5 2. g4 Qh4#", "Score": "0-1", "Board": "https://chess.dllu.net/x.png",
    })
    if err != nil { t.Fatalf("Render: %v", err) }
    if out != "Black wins! 1. f3 e5 2. g4 Qh4# 0-1 https://chess.dllu.net/x.png" { t.Fatalf("unexpected: %q", out) }

    out, err = c.Render("chess.illegal", map[string]any{"Legal": "a3, e4", "Board": ""})
    if err != nil { t.Fatalf("Render: %v", err) }
    if out != "Illegal move!!!!! The valid moves are a3, e4." { t.Fatalf("unexpected: %q", out) }

    out, err = c.Render("no.ok", map[string]any{"Reason": "I am busy"})
    if err != nil || out != "I am busy" { t.Fatalf("no.ok: %q %v", out, err) }
}

func TestMissingKeyIsAnError(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }
    if _, err := c.Render("chess.accepted", map[string]any{"Board": ""}); err == nil {
        t.Fatalf("expected missing Transcript to fail")
    }
    if _, err := c.Render("does.not.exist", nil); err == nil {
        t.Fatalf("expected unknown key to fail")
    }
    if got := c.Text("does.not.exist", nil, "fallback"); got != "fallback" {
        t.Fatalf("Text fallback = %q", got)
    }
}

func TestOverrideDir(t *testing.T) {
    dir := t.TempDir()
    if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("how: \"see {{.URL}}\"\n"), 0o600); err != nil { t.Fatal(err) }
    if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil { t.Fatal(err) }

    c, err := New(dir)
    if err != nil { t.Fatalf("New: %v", err) }
    out, err := c.Render("how", map[string]any{"URL": "x"})
    if err != nil || out != "see x" { t.Fatalf("override not applied: %q %v", out, err) }

    // untouched keys keep their defaults
    if !strings.HasPrefix(c.Text("games.empty", nil, ""), "No finished games") { t.Fatalf("default lost") }
}

func TestDuplicateOverrideKeysRejected(t *testing.T) {
    dir := t.TempDir()
    _ = os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("how: one\n"), 0o600)
    _ = os.WriteFile(filepath.Join(dir, "b.yml"), []byte("how: two\n"), 0o600)
    if _, err := New(dir); err == nil { t.Fatalf("expected duplicate key error") }
}

func TestNonStringLeafRejected(t *testing.T) {
    dir := t.TempDir()
    _ = os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("games:\n  limit: 5\n"), 0o600)
    if _, err := New(dir); err == nil { t.Fatalf("expected error for integer leaf") }
}

func TestKeysSorted(t *testing.T) {
    c, err := New("")
    if err != nil { t.Fatalf("New: %v", err) }
    keys := c.Keys()
    for i := 1; i < len(keys); i++ {
        if keys[i-1] > keys[i] { t.Fatalf("keys not sorted: %v", keys) }
    }
    found := false
    for _, k := range keys { if k == "chess.out_of_turn" { found = true } }
    if !found { t.Fatalf("chess.out_of_turn missing from %v", keys) }
}
