package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"relaychat/internal/app/relay"
	"relaychat/internal/app/user"
	"relaychat/internal/configs"
	"relaychat/internal/pkg/auth/jwt"
)

const testSecret = "handler-test-secret"

// memStore is an in-memory user.Store.
type memStore struct {
	mu    sync.Mutex
	users map[string]user.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[string]user.User)}
}

func (s *memStore) Create(_ context.Context, username, passwordHash string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[username]; ok {
		return user.User{}, user.ErrAlreadyExists
	}

	u := user.User{ID: uuid.New(), Username: username, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.users[username] = u
	return u, nil
}

func (s *memStore) GetByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[username]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// newTestServer starts the full router. store may be nil.
func newTestServer(t *testing.T, store user.Store) (*httptest.Server, *AppDeps) {
	t.Helper()

	deps := &AppDeps{
		Hub: relay.NewHub(jwt.NewVerifier(testSecret)),
		Config: &configs.AppConfig{
			Environment:   configs.EnvDevelopment,
			Port:          8181,
			JWTSecret:     testSecret,
			SendQueueSize: 16,
			MaxFrameBytes: 1024,
		},
		Users: store,
	}

	srv := httptest.NewServer(Router(deps))
	t.Cleanup(func() {
		deps.Hub.Shutdown()
		srv.Close()
	})

	return srv, deps
}

func tokenFor(t *testing.T, username string) string {
	t.Helper()
	token, err := jwt.GenerateToken(&jwt.Payload{Username: username}, testSecret, time.Minute)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, method, url, bearer string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res.StatusCode, env
}
