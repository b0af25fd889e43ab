package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrv/soulmate-bot/internal/domain"
)

func genderKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnGuy),
			tgbotapi.NewKeyboardButton(btnGirl),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func lookingKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnFriends)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSupport)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnConversation)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnRelationship)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func photoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkipPhoto)),
	)
	kb.ResizeKeyboard = true
	return kb
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnRestart),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBrowse),
			tgbotapi.NewKeyboardButton(btnMyProfile),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

// stepKeyboard picks the reply keyboard for a step; text steps remove it.
func stepKeyboard(step domain.Step) interface{} {
	switch step {
	case domain.StepGender:
		return genderKeyboard()
	case domain.StepPhoto:
		return photoKeyboard()
	case domain.StepLooking:
		return lookingKeyboard()
	case domain.StepConfirm:
		return confirmKeyboard()
	default:
		return tgbotapi.NewRemoveKeyboard(true)
	}
}

func candidateKeyboard(targetID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❤️ Like", fmt.Sprintf("like:%d", targetID)),
			tgbotapi.NewInlineKeyboardButtonData("👎 Skip", fmt.Sprintf("skip:%d", targetID)),
		),
	)
}

func deleteConfirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, delete everything", "delete:confirm"),
			tgbotapi.NewInlineKeyboardButtonData("Keep my profile", "delete:cancel"),
		),
	)
}
