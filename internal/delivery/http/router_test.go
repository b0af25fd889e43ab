package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrv/soulmate-bot/internal/delivery/http/handler"
	"github.com/dmitrv/soulmate-bot/internal/domain"
	"github.com/dmitrv/soulmate-bot/internal/infrastructure/janitor"
	"github.com/dmitrv/soulmate-bot/internal/repository/memory"
	"github.com/dmitrv/soulmate-bot/pkg/logger"
)

const testToken = "admin-secret"

func setupRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	j := janitor.New(store.Sessions(), time.Hour, time.Hour, logger.NewNop())
	adminHandler := handler.NewAdminHandler(store.Profiles(), store.Decisions(), j)
	return NewRouter(adminHandler, testToken, logger.NewNop()).Setup(), store
}

func doRequest(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := setupRouter(t)

	w := doRequest(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = doRequest(h, http.MethodHead, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatsRequiresToken(t *testing.T) {
	h, _ := setupRouter(t)

	w := doRequest(h, http.MethodGet, "/api/v1/stats", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(h, http.MethodGet, "/api/v1/stats", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStatsCounts(t *testing.T) {
	h, store := setupRouter(t)
	ctx := context.Background()

	require.NoError(t, store.Profiles().Upsert(ctx, &domain.Profile{UserID: 1, DisplayName: "Ann", Age: 30}))
	require.NoError(t, store.Profiles().Upsert(ctx, &domain.Profile{UserID: 2, DisplayName: "Bob", Age: 31}))
	_, _, err := store.Decisions().InsertLike(ctx, 1, 2)
	require.NoError(t, err)
	_, err = store.Decisions().InsertSkip(ctx, 2, 1)
	require.NoError(t, err)

	w := doRequest(h, http.MethodGet, "/api/v1/stats", testToken)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body["profiles"])
	assert.Equal(t, 1, body["likes"])
	assert.Equal(t, 1, body["skips"])
}

func TestSweepEndpoint(t *testing.T) {
	store := memory.NewStore()
	// Zero TTL makes every session stale, so the sweep has something to count.
	j := janitor.New(store.Sessions(), 0, time.Hour, logger.NewNop())
	adminHandler := handler.NewAdminHandler(store.Profiles(), store.Decisions(), j)
	h := NewRouter(adminHandler, testToken, logger.NewNop()).Setup()

	ctx := context.Background()
	require.NoError(t, store.Sessions().Save(ctx, domain.NewSession(7)))

	w := doRequest(h, http.MethodPost, "/api/v1/janitor/sweep", testToken)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body["swept"])

	_, err := store.Sessions().Get(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEmptyTokenDisablesAdminAPI(t *testing.T) {
	store := memory.NewStore()
	j := janitor.New(store.Sessions(), time.Hour, time.Hour, logger.NewNop())
	adminHandler := handler.NewAdminHandler(store.Profiles(), store.Decisions(), j)
	h := NewRouter(adminHandler, "", logger.NewNop()).Setup()

	w := doRequest(h, http.MethodGet, "/api/v1/stats", "anything")
	assert.Equal(t, http.StatusForbidden, w.Code)
}
