// Package discord connects the router to a Discord bot account.
package discord

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/park285/woofer-bot/internal/bot"
	"github.com/park285/woofer-bot/internal/obslog"
	"go.uber.org/zap"
)

const maxMessageLen = 2000

var ErrNotConnected = errors.New("discord: not connected")

// Handler answers one inbound message.
type Handler interface {
	Handle(ctx context.Context, in bot.Inbound) *bot.Reply
}

// Discord runs the gateway session and replies in the channel a message came from.
// The channel ID is the chess session key.
type Discord struct {
	token   string
	handler Handler
	allow   func(channel string) bool

	mu      sync.Mutex
	session *discordgo.Session
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(token string, h Handler, allow func(channel string) bool) *Discord {
	return &Discord{token: strings.TrimSpace(token), handler: h, allow: allow}
}

// Connect opens the gateway connection. Handlers run until Close or ctx ends.
func (d *Discord) Connect(ctx context.Context) error {
	if d.token == "" {
		return errors.New("discord: bot token is required")
	}
	session, err := discordgo.New("Bot " + d.token)
	if err != nil {
		return fmt.Errorf("discord: creating session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent
	session.AddHandler(d.onMessageCreate)

	d.mu.Lock()
	d.ctx, d.cancel = context.WithCancel(ctx)
	d.session = session
	d.mu.Unlock()

	if err := session.Open(); err != nil {
		d.mu.Lock()
		d.cancel()
		d.session = nil
		d.mu.Unlock()
		return fmt.Errorf("discord: opening gateway: %w", err)
	}
	if u := session.State.User; u != nil {
		obslog.L().Info("discord_connected", zap.String("bot", u.Username), zap.String("id", u.ID))
	}
	return nil
}

func (d *Discord) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	if d.session == nil {
		return nil
	}
	err := d.session.Close()
	d.session = nil
	obslog.L().Info("discord_disconnected")
	return err
}

// Presenter sends replies through the open session.
func (d *Discord) Presenter() *bot.Presenter {
	return bot.NewPresenter(d.SendText, d.SendImage)
}

func (d *Discord) SendText(_ context.Context, channel, text string) error {
	s := d.current()
	if s == nil {
		return ErrNotConnected
	}
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if _, err := s.ChannelMessageSendComplex(channel, &discordgo.MessageSend{Content: chunk}); err != nil {
			return err
		}
	}
	return nil
}

func (d *Discord) SendImage(_ context.Context, channel string, png []byte) error {
	s := d.current()
	if s == nil {
		return ErrNotConnected
	}
	_, err := s.ChannelMessageSendComplex(channel, &discordgo.MessageSend{
		Files: []*discordgo.File{{Name: "board.png", ContentType: "image/png", Reader: bytes.NewReader(png)}},
	})
	return err
}

func (d *Discord) current() *discordgo.Session {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.session
}

func (d *Discord) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	self := ""
	if s.State != nil && s.State.User != nil {
		self = s.State.User.ID
	}
	in, ok := inboundFrom(m, self)
	if !ok {
		return
	}
	if d.allow != nil && !d.allow(in.Channel) {
		return
	}

	d.mu.Lock()
	ctx := d.ctx
	d.mu.Unlock()

	reply := d.handler.Handle(ctx, in)
	if reply.Empty() {
		return
	}
	if err := d.Presenter().Deliver(ctx, in.Channel, reply); err != nil {
		obslog.L().Warn("discord_send_error", zap.String("channel", in.Channel), zap.Error(err))
	}
}

// inboundFrom converts a gateway event, dropping our own and other bots' messages.
func inboundFrom(m *discordgo.MessageCreate, selfID string) (bot.Inbound, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return bot.Inbound{}, false
	}
	if m.Author.Bot || (selfID != "" && m.Author.ID == selfID) {
		return bot.Inbound{}, false
	}
	return bot.Inbound{
		Channel:    m.ChannelID,
		AuthorID:   m.Author.ID,
		AuthorName: displayName(m.Message),
		Text:       m.Content,
	}, true
}

// displayName prefers the guild nickname, then the global display name, then
// the username. Anyone calling themselves "Purple Puppy" who is not the real
// purplepuppy account is renamed.
func displayName(m *discordgo.Message) string {
	name := m.Author.GlobalName
	if name == "" {
		name = m.Author.Username
	}
	if m.Member != nil && m.Member.Nick != "" {
		name = m.Member.Nick
	}
	if name == "Purple Puppy" && m.Author.Username != "purplepuppy" {
		return "Fake Deformed Purple Puppy"
	}
	return name
}

// splitMessage cuts text into pieces of at most maxLen characters, preferring
// a line break or space in the second half of each piece.
func splitMessage(text string, maxLen int) []string {
	if utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}
	var chunks []string
	for text != "" {
		end := runeOffset(text, maxLen)
		if end == len(text) {
			chunks = append(chunks, text)
			break
		}
		head, half := text[:end], runeOffset(text, maxLen/2)
		cutAt := end
		if idx := strings.LastIndexByte(head, '\n'); idx > half {
			cutAt = idx + 1
		} else if idx := strings.LastIndexByte(head, ' '); idx > half {
			cutAt = idx + 1
		}
		chunks = append(chunks, text[:cutAt])
		text = text[cutAt:]
	}
	return chunks
}

// runeOffset is the byte offset just past the first n runes of s.
func runeOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
