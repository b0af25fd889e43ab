package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/repository/memory"
	"github.com/dmitrv/soulmate-bot/internal/usecase/browse"
	"github.com/dmitrv/soulmate-bot/internal/usecase/onboarding"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

// sentLog collects every "text" parameter the bot pushes at the fake API,
// covering messages, captions and callback answers alike.
type sentLog struct {
	mu    sync.Mutex
	texts []string
}

func (l *sentLog) add(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.texts = append(l.texts, text)
}

func (l *sentLog) Texts() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.texts...)
}

func (l *sentLog) Joined() string {
	return strings.Join(l.Texts(), "\n")
}

// newFakeTelegram stands up an httptest server speaking just enough of the
// bot API for the handlers under test.
func newFakeTelegram(t *testing.T) (*tgbotapi.BotAPI, *sentLog) {
	t.Helper()
	sent := &sentLog{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		if strings.HasSuffix(r.URL.Path, "/getMe") {
			fmt.Fprint(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Test","username":"test_bot"}}`)
			return
		}
		if text := r.FormValue("text"); text != "" {
			sent.add(text)
		}
		if caption := r.FormValue("caption"); caption != "" {
			sent.add(caption)
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":1,"type":"private"}}}`)
	}))
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithClient("test-token", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return api, sent
}

func newTestBot(t *testing.T) (*Bot, *memory.Store, *sentLog) {
	t.Helper()
	store := memory.NewStore()
	api, sent := newFakeTelegram(t)

	onboardingUC := onboarding.NewUseCase(store.Sessions(), store.Profiles(), logger.NewNop())
	browseUC := browse.NewUseCase(
		store.Profiles(),
		store.Decisions(),
		store.BrowseState(),
		NewNotifier(api),
		nil,
		domain.CandidateFilter{},
		time.Minute,
		logger.NewNop(),
	)
	return NewBot(api, onboardingUC, browseUC, 1, logger.NewNop()), store, sent
}

func seedProfile(t *testing.T, store *memory.Store, userID int64, name string) {
	t.Helper()
	require.NoError(t, store.Profiles().Upsert(context.Background(), &domain.Profile{
		UserID: userID, Gender: domain.GenderFemale, DisplayName: name,
		Age: 30, City: "Riverside", Looking: domain.LookingFriends, About: "hi",
	}))
}

func likeCallback(userID int64, targetID int64) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb1",
		From:    &tgbotapi.User{ID: userID},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: userID}},
		Data:    fmt.Sprintf("like:%d", targetID),
	}
}

func TestStartKeepsSessionOnStorageError(t *testing.T) {
	bot, store, sent := newTestBot(t)
	ctx := context.Background()

	_, err := bot.onboarding.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = bot.onboarding.SubmitText(ctx, 7, "male")
	require.NoError(t, err)

	store.GetErr = errors.New("storage down")
	bot.handleStart(ctx, 7, 7)
	store.GetErr = nil

	// The in-progress session survives untouched: /start during an outage
	// must not restart the questionnaire.
	session, err := store.Sessions().Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.StepName, session.CurrentStep)
	assert.Equal(t, domain.GenderMale, session.Answers.Gender)

	texts := sent.Texts()
	require.NotEmpty(t, texts)
	assert.Contains(t, texts[len(texts)-1], "went wrong")
	assert.NotContains(t, sent.Joined(), welcomeText)
}

func TestStartWelcomesBackWithoutNewSession(t *testing.T) {
	bot, store, sent := newTestBot(t)
	ctx := context.Background()
	seedProfile(t, store, 7, "Ann")

	bot.handleStart(ctx, 7, 7)

	_, err := store.Sessions().Get(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Contains(t, sent.Joined(), "Welcome back")
}

func TestStaleCallbackRecordsNothing(t *testing.T) {
	bot, store, sent := newTestBot(t)
	ctx := context.Background()
	seedProfile(t, store, 1, "Ann")
	seedProfile(t, store, 2, "Bea")

	// No current-candidate pointer: the card on this keyboard expired.
	bot.handleCallback(ctx, likeCallback(1, 2))

	likes, err := store.Decisions().CountLikes(ctx)
	require.NoError(t, err)
	assert.Zero(t, likes)
	assert.Contains(t, sent.Joined(), "expired")

	// With the card actually on screen the same tap records the like.
	require.NoError(t, store.BrowseState().SetCurrentCandidate(ctx, 1, 2, time.Minute))
	bot.handleCallback(ctx, likeCallback(1, 2))

	likes, err = store.Decisions().CountLikes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
}
