package boardimg

import (
	"context"
	"strings"

	"github.com/park285/woofer-bot/internal/chessgame"
)

const DefaultBaseURL = "https://chess.dllu.net"

// URLRenderer builds a link to an image service that draws the piece placement
// field of a FEN, e.g. https://chess.dllu.net/<placement>.png.
type URLRenderer struct {
	base string
}

func NewURLRenderer(base string) *URLRenderer {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &URLRenderer{base: base}
}

func (r *URLRenderer) Render(ctx context.Context, pos chessgame.Position, _ Caption) (Board, error) {
	if err := ctx.Err(); err != nil {
		return Board{}, err
	}
	fields := strings.Fields(string(pos))
	placement := ""
	if len(fields) > 0 {
		placement = fields[0]
	}
	return Board{URL: r.base + "/" + placement + ".png"}, nil
}
