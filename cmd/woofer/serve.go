package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/park285/woofer-bot/internal/bot"
	"github.com/park285/woofer-bot/internal/config"
	"github.com/park285/woofer-bot/internal/discord"
	"github.com/park285/woofer-bot/internal/irisfast"
	"github.com/park285/woofer-bot/internal/obslog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxInFlight = 64

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Connect to the configured chat transport and answer until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			switch cfg.Transport {
			case config.TransportDiscord:
				return serveDiscord(ctx, cfg, a.router)
			default:
				return serveIris(ctx, cfg, a.router)
			}
		},
	}
}

func serveIris(ctx context.Context, cfg *config.AppConfig, router *bot.Router) error {
	headers := irisfast.IdentityHeaders(cfg.XUserID, cfg.XUserEmail, cfg.XSessionID)
	client := irisfast.NewClient(cfg.IrisBaseURL, irisfast.WithHeaderProvider(headers))

	ws := irisfast.NewWebSocket(cfg.IrisWSURL, 5, time.Second)
	ws.SetHeaderProvider(headers)

	egress := irisfast.NewEgress(cfg.EgressMode, cfg.EgressDryRun, client, ws)
	sendText := func(ctx context.Context, room, text string) error {
		return egress.SendText(ctx, room, irisfast.FoldLong(text))
	}
	presenter := bot.NewPresenter(sendText, func(ctx context.Context, room string, png []byte) error {
		return irisfast.SendPNG(ctx, egress, room, png)
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	ws.OnMessage(func(msg *irisfast.Message) {
		if msg == nil {
			return
		}
		if !cfg.RoomAllowed(msg.Room) {
			obslog.L().Debug("room_ignored", zap.String("room", msg.Room))
			return
		}
		g.Go(func() error {
			if in, ok := inboundFromIris(gctx, client, msg); ok {
				respond(gctx, router, presenter, in)
			}
			return nil
		})
	})

	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err := ws.Connect(cctx)
	cancel()
	if err != nil {
		_ = ws.Close(context.Background())
		return fmt.Errorf("iris ws connect: %w", err)
	}
	obslog.L().Info("serve_started", zap.String("transport", config.TransportIris), zap.String("egress", cfg.EgressMode))

	<-ctx.Done()
	obslog.L().Info("serve_stopping")

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := ws.Close(closeCtx); err != nil {
		obslog.L().Warn("iris_ws_close_error", zap.Error(err))
	}
	return g.Wait()
}

func serveDiscord(ctx context.Context, cfg *config.AppConfig, router *bot.Router) error {
	d := discord.New(cfg.DiscordToken, router, cfg.RoomAllowed)
	if err := d.Connect(ctx); err != nil {
		_ = d.Close()
		return err
	}
	obslog.L().Info("serve_started", zap.String("transport", config.TransportDiscord))

	<-ctx.Done()
	obslog.L().Info("serve_stopping")
	return d.Close()
}

type decrypter interface {
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

// inboundFromIris turns an Iris event into router input. Events without a
// sender id are dropped: the turn rule cannot tell anonymous players apart.
func inboundFromIris(ctx context.Context, dec decrypter, msg *irisfast.Message) (bot.Inbound, bool) {
	user := msg.UserID()
	if user == "" {
		obslog.L().Debug("message_without_sender", zap.String("room", msg.Room))
		return bot.Inbound{}, false
	}
	text := msg.Msg
	if ct, ok := msg.Ciphertext(); ok {
		plain, err := dec.Decrypt(ctx, ct)
		if err != nil {
			obslog.L().Warn("iris_decrypt_error", zap.String("room", msg.Room), zap.Error(err))
			return bot.Inbound{}, false
		}
		text = plain
	}
	if text == "" {
		return bot.Inbound{}, false
	}
	return bot.Inbound{Channel: msg.Room, AuthorID: user, AuthorName: msg.SenderName(), Text: text}, true
}

func respond(ctx context.Context, router *bot.Router, presenter *bot.Presenter, in bot.Inbound) {
	reply := router.Handle(ctx, in)
	if reply.Empty() {
		return
	}
	if err := presenter.Deliver(ctx, in.Channel, reply); err != nil {
		obslog.L().Warn("reply_send_error", zap.String("channel", in.Channel), zap.Error(err))
	}
}
