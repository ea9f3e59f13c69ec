package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/msgboard/msgboard/internal/middleware"
	"github.com/msgboard/msgboard/internal/service"
	"github.com/msgboard/msgboard/internal/testutil/memstore"
)

type testEnv struct {
	router http.Handler
	store  *memstore.Store
	logs   *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	store := memstore.New()

	users := NewUserHandler(service.NewUserService(store, nil, nil, logger), logger)
	messages := NewMessageHandler(service.NewMessageService(store, nil, nil, logger), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.List)
		r.Post("/", users.Create)
		r.Get("/{id}", users.Get)
		r.Delete("/{id}", users.Delete)
	})
	r.Route("/messages", func(r chi.Router) {
		r.Get("/", messages.List)
		r.Post("/", messages.Create)
		r.Get("/{id}", messages.Get)
		r.Delete("/{id}", messages.Delete)
	})

	return &testEnv{router: r, store: store, logs: logs}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
