package irisfast

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/park285/woofer-bot/internal/obslog"
	"go.uber.org/zap"
)

// Egress sends replies to a room over HTTP or the WebSocket.
type Egress interface {
	SendText(ctx context.Context, room, message string) error
	SendImage(ctx context.Context, room, imageBase64 string) error
}

const (
	ModeHTTP = "http"
	ModeWS   = "ws"
	ModeAuto = "auto"
)

// NewEgress picks the transport by mode. Auto prefers the WebSocket while it
// is connected and falls back to HTTP once per message. With dryrun set,
// nothing leaves the process; sends are only logged.
func NewEgress(mode string, dryrun bool, c *Client, ws EventConn) Egress {
	var e Egress
	switch mode {
	case ModeWS:
		e = &wsEgress{ws: ws}
	case ModeAuto:
		e = &autoEgress{ws: &wsEgress{ws: ws}, http: &httpEgress{c: c}}
	default:
		e = &httpEgress{c: c}
	}
	if dryrun {
		return dryRunEgress{mode: mode}
	}
	return e
}

// SendPNG base64-encodes png and sends it as an image reply.
func SendPNG(ctx context.Context, e Egress, room string, png []byte) error {
	return e.SendImage(ctx, room, base64.StdEncoding.EncodeToString(png))
}

type httpEgress struct{ c *Client }

func (h *httpEgress) SendText(ctx context.Context, room, message string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendMessage(ctx, room, message)
}

func (h *httpEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if h == nil || h.c == nil {
		return errors.New("http egress not available")
	}
	return h.c.SendImage(ctx, room, imageBase64)
}

// wsEgress writes ReplyRequest frames on the event socket.
type wsEgress struct{ ws EventConn }

func (w *wsEgress) SendText(ctx context.Context, room, message string) error {
	return w.write(ctx, ReplyRequest{Type: "text", Room: room, Data: message})
}

func (w *wsEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	return w.write(ctx, ReplyRequest{Type: "image", Room: room, Data: imageBase64})
}

func (w *wsEgress) connected() bool { return w != nil && w.ws != nil && w.ws.Connected() }

func (w *wsEgress) write(ctx context.Context, req ReplyRequest) error {
	if w == nil || w.ws == nil {
		return errors.New("ws egress not available")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return w.ws.WriteJSON(ctx, &req)
}

type autoEgress struct {
	ws   *wsEgress
	http *httpEgress
}

func (a *autoEgress) SendText(ctx context.Context, room, message string) error {
	if a.ws.connected() {
		err := a.ws.SendText(ctx, room, message)
		if err == nil {
			return nil
		}
		obslog.L().Warn("egress_fallback", zap.String("type", "text"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendText(ctx, room, message)
}

func (a *autoEgress) SendImage(ctx context.Context, room, imageBase64 string) error {
	if a.ws.connected() {
		err := a.ws.SendImage(ctx, room, imageBase64)
		if err == nil {
			return nil
		}
		obslog.L().Warn("egress_fallback", zap.String("type", "image"), zap.String("room", room), zap.Error(err))
	}
	return a.http.SendImage(ctx, room, imageBase64)
}

type dryRunEgress struct{ mode string }

func (d dryRunEgress) SendText(_ context.Context, room, message string) error {
	obslog.L().Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "text"), zap.String("room", room), zap.String("text", message))
	return nil
}

func (d dryRunEgress) SendImage(_ context.Context, room, imageBase64 string) error {
	obslog.L().Info("egress_dryrun", zap.String("mode", d.mode), zap.String("type", "image"), zap.String("room", room), zap.Int("bytes", len(imageBase64)))
	return nil
}
