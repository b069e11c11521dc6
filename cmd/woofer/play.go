package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/park285/woofer-bot/internal/bot"
	"github.com/park285/woofer-bot/internal/config"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var (
		channel string
		actor   string
		pngDir  string
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Talk to the bot from the terminal; /as <name> switches who is speaking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadLocal()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			c := &console{router: a.router, channel: channel, actor: actor, pngDir: pngDir, out: cmd.OutOrStdout()}
			return c.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "local", "channel (session key) the messages belong to")
	cmd.Flags().StringVar(&actor, "as", "white", "name of the first speaker")
	cmd.Flags().StringVar(&pngDir, "png-dir", "", "directory to write board images to when BOARD_RENDER=png")
	return cmd
}

// console feeds stdin lines to the router as messages from the current actor.
type console struct {
	router  *bot.Router
	channel string
	actor   string
	pngDir  string
	out     io.Writer
	boards  int
}

func (c *console) run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	c.prompt()
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
		case line == "/quit" || line == "/exit":
			return nil
		case strings.HasPrefix(line, "/as "):
			if name := strings.TrimSpace(strings.TrimPrefix(line, "/as ")); name != "" {
				c.actor = name
			}
		default:
			reply := c.router.Handle(ctx, bot.Inbound{Channel: c.channel, AuthorID: c.actor, AuthorName: c.actor, Text: line})
			if err := c.print(reply); err != nil {
				return err
			}
		}
		c.prompt()
	}
	return sc.Err()
}

func (c *console) prompt() { fmt.Fprintf(c.out, "%s> ", c.actor) }

func (c *console) print(r *bot.Reply) error {
	if r.Empty() {
		return nil
	}
	if r.Text != "" {
		fmt.Fprintln(c.out, r.Text)
	}
	if len(r.Image) == 0 {
		return nil
	}
	if c.pngDir == "" {
		fmt.Fprintf(c.out, "(board image, %d bytes)\n", len(r.Image))
		return nil
	}
	c.boards++
	path := filepath.Join(c.pngDir, fmt.Sprintf("board-%03d.png", c.boards))
	if err := os.WriteFile(path, r.Image, 0o644); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	fmt.Fprintf(c.out, "(board written to %s)\n", path)
	return nil
}
