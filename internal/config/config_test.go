package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var allKeys = []string{
	"BOT_PREFIX", "TRANSPORT", "IRIS_BASE_URL", "IRIS_WS_URL", "X_USER_ID", "X_USER_EMAIL", "X_SESSION_ID",
	"EGRESS_MODE", "EGRESS_DRYRUN", "DISCORD_TOKEN", "ALLOWED_ROOMS", "BOARD_RENDER", "BOARD_URL_BASE",
	"ARCHIVE", "REDIS_URL", "DATABASE_URL", "STORE_SHARDS", "MESSAGES_DIR", "LOOKUP_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestLoadIrisDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRIS_BASE_URL", "http://iris:3000")
	t.Setenv("IRIS_WS_URL", "ws://iris:3000/ws")
	t.Setenv("ALLOWED_ROOMS", " room1, ,room2 ")
	t.Setenv("STORE_SHARDS", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotPrefix != "puppy" || cfg.Transport != TransportIris || cfg.EgressMode != "auto" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.BoardRender != "url" || cfg.BoardURLBase != "https://chess.dllu.net" || cfg.Archive != "none" {
		t.Fatalf("unexpected board/archive defaults: %+v", cfg)
	}
	if cfg.StoreShards != 32 || cfg.LookupTimeout != 10*time.Second {
		t.Fatalf("unexpected numeric defaults: shards=%d timeout=%s", cfg.StoreShards, cfg.LookupTimeout)
	}
	if len(cfg.AllowedRooms) != 2 || cfg.AllowedRooms[0] != "room1" || cfg.AllowedRooms[1] != "room2" {
		t.Fatalf("unexpected rooms: %v", cfg.AllowedRooms)
	}
	if !cfg.RoomAllowed("room2") || cfg.RoomAllowed("room3") {
		t.Fatalf("RoomAllowed mismatch")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"iris without base url", map[string]string{"IRIS_WS_URL": "ws://x"}},
		{"discord without token", map[string]string{"TRANSPORT": "discord"}},
		{"unknown transport", map[string]string{"TRANSPORT": "irc"}},
		{"bad egress", map[string]string{"IRIS_BASE_URL": "http://x", "IRIS_WS_URL": "ws://x", "EGRESS_MODE": "pigeon"}},
		{"bad render", map[string]string{"TRANSPORT": "discord", "DISCORD_TOKEN": "t", "BOARD_RENDER": "ascii"}},
		{"redis archive without url", map[string]string{"TRANSPORT": "discord", "DISCORD_TOKEN": "t", "ARCHIVE": "redis"}},
		{"postgres archive without url", map[string]string{"TRANSPORT": "discord", "DISCORD_TOKEN": "t", "ARCHIVE": "postgres"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadDiscordOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TRANSPORT", "Discord")
	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("BOT_PREFIX", "Woofer")
	t.Setenv("BOARD_RENDER", "png")
	t.Setenv("ARCHIVE", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("STORE_SHARDS", "8")
	t.Setenv("LOOKUP_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Transport != TransportDiscord || cfg.BotPrefix != "woofer" || cfg.BoardRender != "png" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.StoreShards != 8 || cfg.LookupTimeout != 3*time.Second || cfg.Archive != "redis" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadLocalSkipsTransport(t *testing.T) {
	clearEnv(t)
	if _, err := LoadLocal(); err != nil {
		t.Fatalf("LoadLocal: %v", err)
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("BOT_PREFIX=fromfile\nBOARD_URL_BASE=http://file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("BOT_PREFIX", "fromenv")
	os.Unsetenv("BOARD_URL_BASE")

	LoadDotEnv(path, filepath.Join(dir, "missing.env"))
	t.Cleanup(func() { os.Unsetenv("BOARD_URL_BASE") })

	if got := os.Getenv("BOT_PREFIX"); got != "fromenv" {
		t.Fatalf("BOT_PREFIX overridden: %q", got)
	}
	if got := os.Getenv("BOARD_URL_BASE"); got != "http://file" {
		t.Fatalf("BOARD_URL_BASE not loaded: %q", got)
	}
}
