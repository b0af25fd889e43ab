package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrv/soulmate-bot/internal/domain"
)

// Notifier delivers match and like notices through the bot. Private chat ids
// equal user ids, so the stable sender id doubles as the address.
type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

// NotifyMatch announces a mutual match and reveals the other profile.
func (n *Notifier) NotifyMatch(_ context.Context, userID int64, with *domain.Profile, icebreaker string) error {
	text := "💘 It's a match! You liked each other.\n\n" + formatProfile(with)
	if icebreaker != "" {
		text += "\n\nNeed an opener? Try:\n<i>" + escape(icebreaker) + "</i>"
	}

	if with.HasPhoto() {
		photo := tgbotapi.NewPhoto(userID, tgbotapi.FileID(*with.PhotoRef))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		_, err := n.api.Send(photo)
		return err
	}

	msg := tgbotapi.NewMessage(userID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := n.api.Send(msg)
	return err
}

// NotifyLiked tells the target someone liked them without revealing who.
func (n *Notifier) NotifyLiked(_ context.Context, userID int64) error {
	msg := tgbotapi.NewMessage(userID, "💌 Someone liked your profile! Keep browsing — if you like them back, we'll introduce you.")
	_, err := n.api.Send(msg)
	return err
}
