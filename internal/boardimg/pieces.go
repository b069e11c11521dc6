package boardimg

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type pieceCacheKey struct {
	piece nchess.Piece
	size  int
}

var (
	pieceCache   = map[pieceCacheKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// The piece assets are colorless templates; {{FILL}} and {{STROKE}} are
// substituted per side before parsing.
var (
	whiteFill   = []byte("#ffffff")
	whiteStroke = []byte("#000000")
	blackFill   = []byte("#000000")
	blackStroke = []byte("#3a3a3a")
)

func renderPieceImage(piece nchess.Piece, size int) (image.Image, error) {
	key := pieceCacheKey{piece: piece, size: size}

	pieceCacheMu.RLock()
	if img, ok := pieceCache[key]; ok {
		pieceCacheMu.RUnlock()
		return img, nil
	}
	pieceCacheMu.RUnlock()

	name := pieceAssetName(piece)
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(colorize(data, piece.Color())))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = img
	pieceCacheMu.Unlock()

	return img, nil
}

func colorize(tmpl []byte, c nchess.Color) []byte {
	fill, stroke := whiteFill, whiteStroke
	if c == nchess.Black {
		fill, stroke = blackFill, blackStroke
	}
	out := bytes.ReplaceAll(tmpl, []byte("{{FILL}}"), fill)
	return bytes.ReplaceAll(out, []byte("{{STROKE}}"), stroke)
}

func pieceAssetName(piece nchess.Piece) string {
	var name string
	switch piece.Type() {
	case nchess.King:
		name = "K"
	case nchess.Queen:
		name = "Q"
	case nchess.Rook:
		name = "R"
	case nchess.Bishop:
		name = "B"
	case nchess.Knight:
		name = "N"
	default:
		name = "P"
	}
	return "assets/pieces/" + name + ".svg"
}
