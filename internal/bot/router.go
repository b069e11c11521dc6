package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/park285/woofer-bot/internal/boardimg"
	"github.com/park285/woofer-bot/internal/chessgame"
	"github.com/park285/woofer-bot/internal/gamearchive"
	"github.com/park285/woofer-bot/internal/lookup"
	"github.com/park285/woofer-bot/internal/msgcat"
	"github.com/park285/woofer-bot/internal/obslog"
	"go.uber.org/zap"
)

var woofRe = regexp.MustCompile(`^((oua+f+\s*)+|(w(a|o|0|u)+r*f\s*)+|(aw+(o|0)+\s*)+|(b(a|o)+rk\s*)+|(汪\s*)+|(ワン\s*)+|(わん\s*)+|(гав\s*)+)+(!|！)*$`)

// Lookup serves the stonk and no commands.
type Lookup interface {
	Stonk(ctx context.Context, ticker string) (lookup.Quote, error)
	No(ctx context.Context) (string, error)
}

// History lists finished games of a channel.
type History interface {
	Recent(ctx context.Context, sessionKey string, limit int) ([]gamearchive.Record, error)
}

type Option func(*Router)

// WithChess enables the chess command.
func WithChess(ctrl *chessgame.Controller, renderer boardimg.Renderer) Option {
	return func(r *Router) {
		r.chess = ctrl
		r.renderer = renderer
	}
}

func WithLookup(l Lookup) Option {
	return func(r *Router) { r.lookup = l }
}

// WithWhy sets the answer generator for the why command.
func WithWhy(why func() string) Option {
	return func(r *Router) { r.why = why }
}

// WithHistory enables the games command.
func WithHistory(h History) Option {
	return func(r *Router) { r.history = h }
}

// Router turns inbound messages into replies.
type Router struct {
	prefix   string
	msgs     *msgcat.Catalog
	chess    *chessgame.Controller
	renderer boardimg.Renderer
	lookup   Lookup
	why      func() string
	history  History
}

func NewRouter(prefix string, msgs *msgcat.Catalog, opts ...Option) *Router {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "puppy"
	}
	r := &Router{prefix: prefix, msgs: msgs}
	for _, opt := range opts {
		opt(r)
	}
	if r.renderer == nil {
		r.renderer = boardimg.NewURLRenderer(boardimg.DefaultBaseURL)
	}
	return r
}

func (r *Router) Prefix() string { return r.prefix }

// Handle returns the reply for in, or nil when the bot stays quiet.
func (r *Router) Handle(ctx context.Context, in Inbound) *Reply {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	if woofRe.MatchString(lower) {
		return &Reply{Text: text}
	}

	rest, ok := cutWord(text, r.prefix)
	if !ok {
		return nil
	}
	name, args := splitCommand(rest)
	obslog.L().Debug("bot_command", zap.String("channel", in.Channel), zap.String("author", in.AuthorID), zap.String("command", name))

	switch name {
	case "chess":
		if r.chess == nil {
			return nil
		}
		if strings.TrimSpace(args) == "" {
			return r.text("chess.usage", r.data(nil), "Usage: "+r.prefix+" chess <move>")
		}
		return r.playChess(ctx, in, args)
	case "games":
		return r.games(ctx, in)
	case "why":
		if args != "" || r.why == nil {
			return nil
		}
		return &Reply{Text: r.why()}
	case "how":
		if args != "" {
			return nil
		}
		return r.text("how", nil, "https://github.com/dllu/discord-woofer-rust")
	case "stonk":
		return r.stonk(ctx, args)
	case "no":
		if args != "" {
			return nil
		}
		return r.no(ctx)
	case "help", "":
		return r.text("help", r.data(nil), "Woof!")
	default:
		return nil
	}
}

func (r *Router) stonk(ctx context.Context, args string) *Reply {
	ticker := strings.ToUpper(strings.TrimSpace(args))
	if r.lookup == nil {
		return nil
	}
	if ticker == "" || strings.ContainsFunc(ticker, unicode.IsSpace) {
		return r.text("stonk.usage", r.data(nil), "Usage: "+r.prefix+" stonk <ticker>")
	}
	q, err := r.lookup.Stonk(ctx, ticker)
	if err != nil {
		obslog.L().Warn("stonk_lookup_error", zap.String("ticker", ticker), zap.Error(err))
		return r.text("stonk.failed", r.data(map[string]any{"Ticker": ticker}), "Could not fetch "+ticker+".")
	}
	return r.text("stonk.ok", r.data(map[string]any{
		"Ticker": q.Ticker,
		"Price":  fmt.Sprintf("%.2f", q.Close),
	}), q.String())
}

func (r *Router) no(ctx context.Context) *Reply {
	if r.lookup == nil {
		return nil
	}
	reason, err := r.lookup.No(ctx)
	if err != nil {
		obslog.L().Warn("no_lookup_error", zap.Error(err))
		return r.text("no.failed", nil, "No.")
	}
	return r.text("no.ok", map[string]any{"Reason": reason}, reason)
}

func (r *Router) text(key string, data map[string]any, fallback string) *Reply {
	return &Reply{Text: r.msgs.Text(key, data, fallback)}
}

// data adds the fields every template may use.
func (r *Router) data(m map[string]any) map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	m["Prefix"] = r.prefix
	return m
}

// cutWord strips a case-insensitive leading word followed by whitespace or
// the end of the text. The remainder keeps its original spelling.
func cutWord(text, word string) (string, bool) {
	if len(text) < len(word) || !strings.EqualFold(text[:len(word)], word) {
		return "", false
	}
	rest := text[len(word):]
	if rest == "" {
		return "", true
	}
	c, size := utf8.DecodeRuneInString(rest)
	if !unicode.IsSpace(c) {
		return "", false
	}
	return rest[size:], true
}

// splitCommand lower-cases the first word and returns the rest verbatim.
func splitCommand(rest string) (string, string) {
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	i := strings.IndexFunc(rest, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(rest), ""
	}
	_, size := utf8.DecodeRuneInString(rest[i:])
	return strings.ToLower(rest[:i]), rest[i+size:]
}
