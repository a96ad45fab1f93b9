package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
	"github.com/dmitrijs2005/filekeeper/internal/client/session"
	"github.com/stretchr/testify/require"
)

// memRepo is an in-memory metadata.Repository.
type memRepo struct {
	mu        sync.Mutex
	data      map[string]string
	setErr    error
	deleteErr error
}

func newMemRepo() *memRepo {
	return &memRepo{data: map[string]string{}}
}

func (m *memRepo) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memRepo) SetAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func (m *memRepo) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memRepo) List(context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

type env struct {
	repo    *memRepo
	session *session.Session
	api     *client.HTTPClient
	events  *[]session.Event
}

// newEnv starts h behind an HTTPClient whose session is loaded from a repo
// pre-filled with seed.
func newEnv(t *testing.T, h http.Handler, seed map[string]string) *env {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	repo := newMemRepo()
	for k, v := range seed {
		repo.data[k] = v
	}

	sess, err := session.Load(context.Background(), repo)
	require.NoError(t, err)

	var (
		mu     sync.Mutex
		events []session.Event
	)
	sess.Subscribe(func(ev session.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	api, err := client.New(client.Options{BaseURL: srv.URL, Session: sess})
	require.NoError(t, err)

	return &env{repo: repo, session: sess, api: api, events: &events}
}

func loggedIn(token, username string) map[string]string {
	return map[string]string{session.KeyToken: token, session.KeyUsername: username}
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
