package bot

import (
	"context"
	"strings"
)

// Inbound is one chat message as the router sees it. Channel is the session key.
type Inbound struct {
	Channel    string
	AuthorID   string
	AuthorName string
	Text       string
}

// Reply is what the bot answers with. Text, Image or both may be set.
type Reply struct {
	Text  string
	Image []byte
}

func (r *Reply) Empty() bool {
	return r == nil || (strings.TrimSpace(r.Text) == "" && len(r.Image) == 0)
}

// Presenter delivers replies without coupling the router to a transport.
type Presenter struct {
	sendText  func(ctx context.Context, channel, text string) error
	sendImage func(ctx context.Context, channel string, png []byte) error
}

func NewPresenter(
	sendText func(ctx context.Context, channel, text string) error,
	sendImage func(ctx context.Context, channel string, png []byte) error,
) *Presenter {
	return &Presenter{sendText: sendText, sendImage: sendImage}
}

// Deliver sends the text first and then the board image, stopping at the first error.
func (p *Presenter) Deliver(ctx context.Context, channel string, r *Reply) error {
	if p == nil || r.Empty() {
		return nil
	}
	if text := strings.TrimSpace(r.Text); text != "" && p.sendText != nil {
		if err := p.sendText(ctx, channel, r.Text); err != nil {
			return err
		}
	}
	if len(r.Image) > 0 && p.sendImage != nil {
		if err := p.sendImage(ctx, channel, r.Image); err != nil {
			return err
		}
	}
	return nil
}
