package boardimg

import (
	"context"
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/park285/woofer-bot/internal/chessgame"
)

// Board is a rendered position. Exactly one of URL and PNG is set.
type Board struct {
	URL string
	PNG []byte
}

// Caption is the text drawn around the board by renderers that draw text.
type Caption struct {
	Title  string
	Status string
}

type Renderer interface {
	Render(ctx context.Context, pos chessgame.Position, caption Caption) (Board, error)
}

// New picks a renderer by mode: "png" draws the board locally, anything else
// links to an image service at baseURL.
func New(mode, baseURL string) Renderer {
	if strings.EqualFold(strings.TrimSpace(mode), "png") {
		return NewPNGRenderer()
	}
	return NewURLRenderer(baseURL)
}

func decodeBoard(pos chessgame.Position) (*nchess.Board, nchess.Color, error) {
	opt, err := nchess.FEN(string(pos))
	if err != nil {
		return nil, nchess.NoColor, fmt.Errorf("decode position: %w", err)
	}
	p := nchess.NewGame(opt).Position()
	return p.Board(), p.Turn(), nil
}
