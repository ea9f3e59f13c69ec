//go:build integration

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msgboard/msgboard/internal/cache"
	"github.com/msgboard/msgboard/internal/config"
	"github.com/msgboard/msgboard/internal/handler"
	"github.com/msgboard/msgboard/internal/metrics"
	"github.com/msgboard/msgboard/internal/repository"
	"github.com/msgboard/msgboard/internal/service"
	"github.com/msgboard/msgboard/internal/testutil"
)

// newIntegrationAPI wires the router to PostgreSQL and, when REDIS_URL is
// set, to the Redis entity cache.
func newIntegrationAPI(t *testing.T) *apiTestEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := repository.New(ctx, dbURL, repository.PoolConfig{MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })
	require.NoError(t, testutil.ResetSchema(ctx, repo.Pool()))

	var (
		entityCache service.EntityCache
		cacheHealth handler.HealthChecker
	)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c, err := cache.New(ctx, redisURL, time.Minute)
		require.NoError(t, err)
		t.Cleanup(func() { _ = c.Close() })
		require.NoError(t, testutil.FlushRedis(ctx, c.Client()))
		entityCache = c
		cacheHealth = c
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := metrics.NewPrometheus(prometheus.NewRegistry())
	cfg := &config.Config{AppEnv: "test", MaxRequestBodySize: 1 << 20, StaticDir: t.TempDir()}

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		health:   handler.NewHealthHandler(repo, cacheHealth, "integration"),
		users:    handler.NewUserHandler(service.NewUserService(repo, entityCache, recorder, logger), logger),
		messages: handler.NewMessageHandler(service.NewMessageService(repo, entityCache, recorder, logger), logger),
		static:   handler.NewStaticHandler(cfg.StaticDir),
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &apiTestEnv{server: srv}
}

func TestIntegrationAPI_Lifecycle(t *testing.T) {
	env := newIntegrationAPI(t)

	resp, _ := env.request(t, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.request(t, http.MethodPost, "/users", `{"name":"Alice","email":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	userID := decodeJSON[map[string]any](t, body)["id"].(string)

	resp, body = env.request(t, http.MethodPost, "/users", `{"name":"Alice2","email":"a@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Email already exists"}`, string(body))

	resp, body = env.request(t, http.MethodPost, "/messages", `{"content":"hi","userId":"`+userID+`"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	messageID := decodeJSON[map[string]any](t, body)["id"].(string)

	// Twice, so the second read is served from the cache when one is configured.
	for i := 0; i < 2; i++ {
		resp, body = env.request(t, http.MethodGet, "/users/"+userID, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, string(body), messageID)
	}

	resp, body = env.request(t, http.MethodPost, "/messages", `{"content":"x","userId":"does-not-exist"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.JSONEq(t, `{"error":"User not found"}`, string(body))

	resp, _ = env.request(t, http.MethodDelete, "/users/"+userID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, "/messages/"+messageID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.request(t, http.MethodGet, "/users/"+userID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestIntegrationAPI_MalformedIdentifiers(t *testing.T) {
	env := newIntegrationAPI(t)

	for _, id := range []string{"not-a-ulid", "%00", strings.Repeat("z", 300)} {
		resp, _ := env.request(t, http.MethodGet, "/users/"+id, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "user %q", id)

		resp, _ = env.request(t, http.MethodDelete, "/messages/"+id, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, "message %q", id)
	}
}
