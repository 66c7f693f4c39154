// Package contact hands pre-filled orders to the business chat channel.
package contact

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

const whatsAppBase = "https://wa.me/"

// Link builds the deep link that opens a chat with number pre-filled with message.
func Link(number, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return whatsAppBase + digits + "?text=" + url.QueryEscape(message)
}

// Opener opens a deep link in a new context. Delivery is not confirmed.
type Opener interface {
	Open(ctx context.Context, link string)
}

// LogOpener records the hand-off; the browser follows the returned link itself.
type LogOpener struct {
	Log *slog.Logger
}

func (o LogOpener) Open(_ context.Context, link string) {
	if o.Log != nil {
		o.Log.Info("contact link opened", "url", link)
	}
}
