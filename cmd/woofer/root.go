package main

import (
	"context"
	"fmt"

	"github.com/park285/woofer-bot/internal/boardimg"
	"github.com/park285/woofer-bot/internal/bot"
	"github.com/park285/woofer-bot/internal/chessgame"
	"github.com/park285/woofer-bot/internal/chessrules"
	"github.com/park285/woofer-bot/internal/config"
	"github.com/park285/woofer-bot/internal/gamearchive"
	"github.com/park285/woofer-bot/internal/lookup"
	"github.com/park285/woofer-bot/internal/msgcat"
	"github.com/park285/woofer-bot/internal/obslog"
	"github.com/park285/woofer-bot/internal/phrases"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "woofer",
		Short: "woofer - a chat puppy that plays chess",
		Long: `woofer answers woofs, explains why, and referees one chess game per channel.

Examples:
  woofer serve                 # run on Iris or Discord, per TRANSPORT
  woofer play --as alice       # local console session
  woofer iris-check --watch 10s`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newServeCmd(),
		newPlayCmd(),
		newIrisCheckCmd(),
	)
	return root
}

// app is everything a transport needs to answer messages.
type app struct {
	router  *bot.Router
	archive gamearchive.Archive
}

func buildApp(ctx context.Context, cfg *config.AppConfig) (*app, error) {
	msgs, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	keys := msgs.Keys()
	obslog.L().Debug("messages_loaded", zap.String("override_dir", cfg.MessagesDir), zap.Strings("keys", keys))

	archive, err := gamearchive.Open(ctx, cfg.Archive, cfg.RedisURL, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	oracle := chessrules.New()
	var ctrlOpts []chessgame.Option
	routerOpts := []bot.Option{
		bot.WithLookup(lookup.New(lookup.WithTimeout(cfg.LookupTimeout))),
		bot.WithWhy(phrases.New().Why),
	}
	if archive != nil {
		ctrlOpts = append(ctrlOpts, chessgame.WithArchive(archive))
		routerOpts = append(routerOpts, bot.WithHistory(archive))
	}
	ctrl := chessgame.NewController(chessgame.NewStore(cfg.StoreShards, oracle.Initial()), oracle, ctrlOpts...)
	routerOpts = append(routerOpts, bot.WithChess(ctrl, boardimg.New(cfg.BoardRender, cfg.BoardURLBase)))

	obslog.L().Info("app_ready",
		zap.String("prefix", cfg.BotPrefix),
		zap.String("board", cfg.BoardRender),
		zap.String("archive", cfg.Archive),
		zap.Int("shards", cfg.StoreShards),
		zap.Int("messages", len(keys)),
	)
	return &app{router: bot.NewRouter(cfg.BotPrefix, msgs, routerOpts...), archive: archive}, nil
}

func (a *app) Close() {
	if a == nil || a.archive == nil {
		return
	}
	if err := a.archive.Close(); err != nil {
		obslog.L().Warn("archive_close_error", zap.Error(err))
	}
}
