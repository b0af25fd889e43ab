package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/usecase/browse"
	"github.com/dmitrv/soulmate-bot/internal/usecase/onboarding"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

const welcomeText = "💗 Welcome to SoulMate!\n\n" +
	"Here you can find not just a date — a friend, support, or someone to talk to.\n\n" +
	"Let's start with your profile ✨"

// Bot routes Telegram updates: to the onboarding flow while a questionnaire
// session is open, to the browse flow otherwise. One user's failure never
// affects another user's update.
type Bot struct {
	api        *tgbotapi.BotAPI
	onboarding *onboarding.UseCase
	browse     *browse.UseCase
	timeout    int
	log        logger.Logger
}

func NewBot(
	api *tgbotapi.BotAPI,
	onboardingUC *onboarding.UseCase,
	browseUC *browse.UseCase,
	pollTimeout int,
	log logger.Logger,
) *Bot {
	return &Bot{
		api:        api,
		onboarding: onboardingUC,
		browse:     browseUC,
		timeout:    pollTimeout,
		log:        log,
	}
}

// Run consumes the long-polling update stream until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(u)

	b.log.Info("bot polling started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, userID, chatID)
		case "next":
			b.handleNext(ctx, userID, chatID)
		case "me":
			b.handleMe(ctx, userID, chatID)
		case "edit":
			b.handleEdit(ctx, userID, chatID)
		case "cancel":
			b.handleCancel(ctx, userID, chatID)
		case "delete":
			b.send(tgbotapi.NewMessage(chatID, "Delete your profile and all your likes? This cannot be undone."), deleteConfirmKeyboard())
		case "help":
			b.reply(chatID, "/next — browse profiles\n/me — your profile\n/edit — refill your profile\n/cancel — abort the questionnaire\n/delete — delete your account")
		default:
			b.reply(chatID, "Unknown command. Try /help.")
		}
		return
	}

	active, err := b.onboarding.Active(ctx, userID)
	if err != nil {
		b.log.Error("failed to look up session", err, zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong, try again in a minute.")
		return
	}

	if msg.Photo != nil && len(msg.Photo) > 0 {
		if !active {
			b.reply(chatID, "Nice photo! To put it on your profile, run /edit.")
			return
		}
		// Largest size last; the file id is an opaque reference we store
		// verbatim and replay verbatim.
		ref := msg.Photo[len(msg.Photo)-1].FileID
		res, err := b.onboarding.SubmitPhoto(ctx, userID, ref)
		if err != nil {
			b.log.Error("failed to submit photo", err, zap.Int64("user_id", userID))
			b.reply(chatID, "Couldn't save the photo, try again.")
			return
		}
		b.respondOnboarding(ctx, userID, chatID, res)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		if active {
			// Stickers, voice notes and the like never advance a step.
			b.reply(chatID, "Please answer with text.")
		}
		return
	}

	if active {
		res, err := b.onboarding.SubmitText(ctx, userID, canonicalAnswer(text))
		if err != nil {
			b.log.Error("failed to submit answer", err, zap.Int64("user_id", userID))
			b.reply(chatID, "Something went wrong, your answers are safe — try again.")
			return
		}
		b.respondOnboarding(ctx, userID, chatID, res)
		return
	}

	switch text {
	case btnBrowse:
		b.handleNext(ctx, userID, chatID)
	case btnMyProfile:
		b.handleMe(ctx, userID, chatID)
	default:
		b.reply(chatID, "Use the menu below, or /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, userID, chatID int64) {
	_, err := b.browse.Profile(ctx, userID)
	switch {
	case err == nil:
		b.send(tgbotapi.NewMessage(chatID, "Welcome back! 💗"), menuKeyboard())
		return
	case !errors.Is(err, domain.ErrProfileNotFound):
		// A storage hiccup must not restart onboarding: Begin would wipe an
		// in-progress session.
		b.log.Error("failed to load profile", err, zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong, try again in a minute.")
		return
	}

	b.reply(chatID, welcomeText)
	res, err := b.onboarding.Begin(ctx, userID)
	if err != nil {
		b.log.Error("failed to begin onboarding", err, zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong, try /start again.")
		return
	}
	b.promptStep(chatID, res)
}

func (b *Bot) handleEdit(ctx context.Context, userID, chatID int64) {
	res, err := b.onboarding.BeginEdit(ctx, userID)
	if err != nil {
		b.log.Error("failed to begin edit", err, zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	b.promptStep(chatID, res)
}

func (b *Bot) handleCancel(ctx context.Context, userID, chatID int64) {
	if err := b.onboarding.Cancel(ctx, userID); err != nil {
		b.log.Error("failed to cancel session", err, zap.Int64("user_id", userID))
	}
	b.send(tgbotapi.NewMessage(chatID, "Okay, cancelled."), menuKeyboard())
}

func (b *Bot) handleMe(ctx context.Context, userID, chatID int64) {
	profile, err := b.browse.Profile(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			b.reply(chatID, "You don't have a profile yet. Run /start to create one.")
			return
		}
		b.log.Error("failed to load profile", err, zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	b.sendProfileCard(chatID, "Your profile:\n\n", profile, nil)
}

func (b *Bot) handleNext(ctx context.Context, userID, chatID int64) {
	candidate, err := b.browse.NextCandidate(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			b.reply(chatID, "Fill in your profile first — run /start.")
			return
		}
		b.log.Error("failed to pick candidate", err, zap.Int64("user_id", userID))
		b.reply(chatID, "Something went wrong, try again.")
		return
	}
	if candidate == nil {
		// Normal empty result, never an error.
		b.send(tgbotapi.NewMessage(chatID, "No new profiles around right now. Check back a bit later 🙂"), menuKeyboard())
		return
	}

	kb := candidateKeyboard(candidate.UserID)
	b.sendProfileCard(chatID, "", candidate, &kb)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	action, arg, _ := strings.Cut(cb.Data, ":")

	switch action {
	case "like", "skip":
		targetID, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			b.ackCallback(cb.ID, "")
			return
		}
		decision := domain.DecisionLike
		if action == "skip" {
			decision = domain.DecisionSkip
		}
		b.handleDecision(ctx, cb, userID, chatID, targetID, decision)

	case "delete":
		if arg != "confirm" {
			b.ackCallback(cb.ID, "Kept 💗")
			return
		}
		if err := b.browse.DeleteAccount(ctx, userID); err != nil {
			b.log.Error("failed to delete account", err, zap.Int64("user_id", userID))
			b.ackCallback(cb.ID, "Something went wrong")
			return
		}
		b.ackCallback(cb.ID, "Deleted")
		b.reply(chatID, "Your profile and all your likes are gone. /start whenever you want to come back.")

	default:
		b.ackCallback(cb.ID, "")
	}
}

func (b *Bot) handleDecision(ctx context.Context, cb *tgbotapi.CallbackQuery, userID, chatID, targetID int64, decision domain.Decision) {
	outcome, err := b.browse.RecordDecision(ctx, userID, targetID, decision)
	if err != nil {
		if errors.Is(err, domain.ErrCannotDecideSelf) {
			b.ackCallback(cb.ID, "")
			return
		}
		b.log.Error("failed to record decision", err,
			zap.Int64("user_id", userID), zap.Int64("target_id", targetID))
		b.ackCallback(cb.ID, "Something went wrong, try again")
		return
	}

	// A duplicate tap lands as Expired once the first one consumed the
	// pointer; the edge itself is idempotent either way.
	switch {
	case outcome.Expired:
		b.ackCallback(cb.ID, "That card has expired")
	case outcome.Matched:
		b.ackCallback(cb.ID, "It's a match! 💘")
	case decision == domain.DecisionLike && !outcome.AlreadyDecided:
		b.ackCallback(cb.ID, "Liked ❤️")
	default:
		b.ackCallback(cb.ID, "")
	}

	b.handleNext(ctx, userID, chatID)
}

// respondOnboarding turns a flow result into the next message to the user.
func (b *Bot) respondOnboarding(ctx context.Context, userID, chatID int64, res *onboarding.Result) {
	switch {
	case res.Invalid != nil:
		b.reply(chatID, res.Invalid.Message)
	case res.WrongKind:
		if res.Step == domain.StepPhoto {
			b.reply(chatID, "Send a photo in one message, or tap Skip.")
		} else {
			b.reply(chatID, "Please answer with text.")
		}
	case res.Committed:
		b.send(tgbotapi.NewMessage(chatID, "Done 💗 Your profile is saved."), menuKeyboard())
		b.sendProfileCard(chatID, "", res.Profile, nil)
	case res.Restarted:
		b.reply(chatID, "Okay, let's start over.")
		b.promptStep(chatID, res)
	default:
		b.promptStep(chatID, res)
	}
}

// promptStep asks the current step's question with its keyboard.
func (b *Bot) promptStep(chatID int64, res *onboarding.Result) {
	if res.Step == domain.StepConfirm && res.Preview != nil {
		msg := tgbotapi.NewMessage(chatID, "Thanks 💗\nHere is how others will see you:\n\n"+formatProfile(res.Preview)+"\n\nAll good?")
		msg.ParseMode = tgbotapi.ModeHTML
		b.send(msg, confirmKeyboard())
		return
	}
	b.send(tgbotapi.NewMessage(chatID, stepPrompt(res.Step)), stepKeyboard(res.Step))
}

func (b *Bot) sendProfileCard(chatID int64, prefix string, p *domain.Profile, kb *tgbotapi.InlineKeyboardMarkup) {
	text := prefix + formatProfile(p)
	if p.HasPhoto() {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(*p.PhotoRef))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		if kb != nil {
			photo.ReplyMarkup = kb
		}
		if _, err := b.api.Send(photo); err != nil {
			b.log.Warn("failed to send profile card", zap.Error(err))
		}
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send profile card", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("failed to send message", zap.Error(err))
	}
}

// send attaches a reply keyboard (or its removal) to a message.
func (b *Bot) send(msg tgbotapi.MessageConfig, markup interface{}) {
	msg.ReplyMarkup = markup
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("failed to send message", zap.Error(err))
	}
}

func (b *Bot) ackCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Warn("failed to answer callback", zap.Error(err))
	}
}
