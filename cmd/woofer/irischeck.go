package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/park285/woofer-bot/internal/irisfast"
	"github.com/spf13/cobra"
)

func newIrisCheckCmd() *cobra.Command {
	var watch time.Duration
	cmd := &cobra.Command{
		Use:   "iris-check",
		Short: "Probe the Iris HTTP API and print WebSocket events for a while",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			baseURL := strings.TrimSpace(os.Getenv("IRIS_BASE_URL"))
			wsURL := strings.TrimSpace(os.Getenv("IRIS_WS_URL"))
			if baseURL == "" {
				return errors.New("IRIS_BASE_URL is required")
			}
			headers := irisfast.IdentityHeaders(
				strings.TrimSpace(os.Getenv("X_USER_ID")),
				strings.TrimSpace(os.Getenv("X_USER_EMAIL")),
				strings.TrimSpace(os.Getenv("X_SESSION_ID")),
			)
			out := cmd.OutOrStdout()

			client := irisfast.NewClient(baseURL, irisfast.WithHeaderProvider(headers), irisfast.WithTimeout(8*time.Second))
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			cfg, err := client.GetConfig(ctx)
			cancel()
			if err != nil {
				fmt.Fprintf(out, "/config error: %v\n", err)
			} else {
				fmt.Fprintf(out, "/config ok: port=%d polling=%d rate=%d endpoint=%s\n", cfg.Port, cfg.PollingSpeed, cfg.MessageRate, cfg.WebserverEndpoint)
			}

			if wsURL == "" {
				fmt.Fprintln(out, "IRIS_WS_URL not set; skipping WS check")
				return nil
			}

			ws := irisfast.NewWebSocket(wsURL, 0, time.Second)
			ws.SetHeaderProvider(headers)
			ws.OnStateChange(func(state irisfast.WebSocketState) {
				fmt.Fprintf(out, "WS state: %s\n", state)
			})
			ws.OnMessage(func(msg *irisfast.Message) {
				fmt.Fprintf(out, "WS msg room=%s from=%s text=%q\n", msg.Room, msg.SenderName(), msg.Msg)
			})

			cctx, ccancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			err = ws.Connect(cctx)
			ccancel()
			if err != nil {
				_ = ws.Close(context.Background())
				return fmt.Errorf("ws connect: %w", err)
			}

			select {
			case <-time.After(watch):
			case <-cmd.Context().Done():
			}
			return ws.Close(context.Background())
		},
	}
	cmd.Flags().DurationVar(&watch, "watch", 10*time.Second, "how long to print WebSocket events")
	return cmd
}
