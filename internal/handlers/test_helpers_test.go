package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"imposter/internal/config"
	"imposter/internal/game"
	"imposter/internal/session"
	"imposter/internal/store"
)

const testWordsYAML = `words:
  - word: Pizza
    hint: Italian
`

// lastRand keeps join order for turn order and makes the last joiner the imposter
type lastRand struct{}

func (lastRand) IntN(n int) int { return n - 1 }

type testEnv struct {
	h      *Handler
	router http.Handler
	coord  *session.Coordinator
	store  store.SessionStore
	cfg    *config.ServerConfig
}

func testConfig() *config.ServerConfig {
	cfg := config.DefaultConfig()
	cfg.Server.Host = "localhost"
	cfg.Server.Port = "8080"
	return cfg
}

func newTestEnv(t *testing.T, opts ...session.Option) *testEnv {
	t.Helper()
	return newTestEnvWith(t, testConfig(), store.NewMemoryStore(), opts...)
}

func newTestEnvWith(t *testing.T, cfg *config.ServerConfig, s store.SessionStore, opts ...session.Option) *testEnv {
	t.Helper()
	words, err := game.NewWordService([]byte(testWordsYAML))
	require.NoError(t, err)

	logger := zap.NewNop()
	opts = append([]session.Option{
		session.WithLogger(logger),
		session.WithRand(lastRand{}),
		session.WithRules(cfg.Rules()),
	}, opts...)
	coord := session.NewCoordinator(s, words, opts...)

	h := New(coord, cfg, logger)
	router := SetupRouter(h, cfg, &RouterOptions{DisableRateLimiting: true, DisableRequestLogger: true})
	return &testEnv{h: h, router: router, coord: coord, store: s, cfg: cfg}
}

// do sends a JSON request as player, who may be empty
func (e *testEnv) do(t *testing.T, method, path, player string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if player != "" {
		req.Header.Set("X-Player-Name", player)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// room creates a room hosted by names[0] and joins the rest
func (e *testEnv) room(t *testing.T, names ...string) string {
	t.Helper()
	ctx := context.Background()
	code, err := e.coord.CreateRoom(ctx, names[0])
	require.NoError(t, err)
	for _, name := range names[1:] {
		_, err := e.coord.JoinRoom(ctx, code, name)
		require.NoError(t, err)
	}
	return code
}

func (e *testEnv) snapshot(t *testing.T, code string) game.Room {
	t.Helper()
	room, err := e.coord.Snapshot(context.Background(), code)
	require.NoError(t, err)
	return room
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp), w.Body.String())
	return resp
}

// unreachableStore is a memory store whose backend never answers pings
type unreachableStore struct {
	*store.MemoryStore
}

func (unreachableStore) Ping(ctx context.Context) error {
	return errors.New("connection refused")
}

// waitFor reads lines until one contains substr
func waitFor(t *testing.T, lines <-chan string, substr string) string {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed waiting for %q", substr)
			}
			if strings.Contains(line, substr) {
				return line
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q", substr)
		}
	}
}
