package gamearchive

import (
	"context"
	"fmt"
	"strings"
)

// Open returns the archive selected by mode ("redis", "postgres"), or nil for
// "none" and the empty string.
func Open(ctx context.Context, mode, redisURL, databaseURL string) (Archive, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "none":
		return nil, nil
	case "redis":
		a, err := OpenRedis(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		return a, nil
	case "postgres":
		a, err := OpenPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown archive mode %q", mode)
	}
}
