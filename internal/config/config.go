package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TransportIris    = "iris"
	TransportDiscord = "discord"
)

type AppConfig struct {
	BotPrefix string
	Transport string

	IrisBaseURL  string
	IrisWSURL    string
	XUserID      string
	XUserEmail   string
	XSessionID   string
	EgressMode   string
	EgressDryRun bool

	DiscordToken string

	AllowedRooms []string

	BoardRender  string
	BoardURLBase string

	Archive     string
	RedisURL    string
	DatabaseURL string

	StoreShards   int
	MessagesDir   string
	LookupTimeout time.Duration
}

// LoadDotEnv reads KEY=VALUE files (default ".env") into the process
// environment. Variables that are already set win; missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

// Load builds the configuration from the environment and validates it for
// the selected transport and archive.
func Load() (*AppConfig, error) { return load(true) }

// LoadLocal is Load for the console mode: chat transport settings are read but not required.
func LoadLocal() (*AppConfig, error) { return load(false) }

func load(needTransport bool) (*AppConfig, error) {
	cfg := &AppConfig{
		BotPrefix:     "puppy",
		Transport:     TransportIris,
		EgressMode:    "auto",
		BoardRender:   "url",
		BoardURLBase:  "https://chess.dllu.net",
		Archive:       "none",
		StoreShards:   32,
		LookupTimeout: 10 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("BOT_PREFIX")); v != "" {
		cfg.BotPrefix = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("TRANSPORT")); v != "" {
		cfg.Transport = strings.ToLower(v)
	}

	cfg.IrisBaseURL = strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
	cfg.IrisWSURL = strings.TrimSpace(os.Getenv("IRIS_WS_URL"))
	cfg.XUserID = strings.TrimSpace(os.Getenv("X_USER_ID"))
	cfg.XUserEmail = strings.TrimSpace(os.Getenv("X_USER_EMAIL"))
	cfg.XSessionID = strings.TrimSpace(os.Getenv("X_SESSION_ID"))
	if v := strings.TrimSpace(os.Getenv("EGRESS_MODE")); v != "" {
		cfg.EgressMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("EGRESS_DRYRUN")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.EgressDryRun = b
		}
	}

	cfg.DiscordToken = strings.TrimSpace(os.Getenv("DISCORD_TOKEN"))

	if v := strings.TrimSpace(os.Getenv("ALLOWED_ROOMS")); v != "" {
		for _, p := range strings.Split(v, ",") {
			if s := strings.TrimSpace(p); s != "" {
				cfg.AllowedRooms = append(cfg.AllowedRooms, s)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv("BOARD_RENDER")); v != "" {
		cfg.BoardRender = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("BOARD_URL_BASE")); v != "" {
		cfg.BoardURLBase = v
	}

	if v := strings.TrimSpace(os.Getenv("ARCHIVE")); v != "" {
		cfg.Archive = strings.ToLower(v)
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if v := strings.TrimSpace(os.Getenv("STORE_SHARDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.StoreShards = n
		}
	}
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))
	if v := strings.TrimSpace(os.Getenv("LOOKUP_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.LookupTimeout = d
		}
	}

	if err := cfg.validate(needTransport); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate(needTransport bool) error {
	switch {
	case !needTransport:
	case c.Transport == TransportIris:
		if c.IrisBaseURL == "" {
			return errors.New("IRIS_BASE_URL is required")
		}
		if c.IrisWSURL == "" {
			return errors.New("IRIS_WS_URL is required")
		}
		switch c.EgressMode {
		case "http", "ws", "auto":
		default:
			return fmt.Errorf("EGRESS_MODE must be http, ws or auto, got %q", c.EgressMode)
		}
	case c.Transport == TransportDiscord:
		if c.DiscordToken == "" {
			return errors.New("DISCORD_TOKEN is required")
		}
	default:
		return fmt.Errorf("unknown TRANSPORT %q", c.Transport)
	}

	switch c.BoardRender {
	case "url", "png":
	default:
		return fmt.Errorf("BOARD_RENDER must be url or png, got %q", c.BoardRender)
	}

	switch c.Archive {
	case "none":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when ARCHIVE=redis")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when ARCHIVE=postgres")
		}
	default:
		return fmt.Errorf("unknown ARCHIVE %q", c.Archive)
	}
	return nil
}

// RoomAllowed reports whether room may use the bot. An empty allow list admits every room.
func (c *AppConfig) RoomAllowed(room string) bool {
	if c == nil || len(c.AllowedRooms) == 0 {
		return true
	}
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}
