package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
	"github.com/dmitrijs2005/filekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filekeeper/internal/client/router"
	"github.com/dmitrijs2005/filekeeper/internal/client/services"
	"github.com/dmitrijs2005/filekeeper/internal/client/session"
	"github.com/stretchr/testify/require"
)

type harness struct {
	app     *App
	out     *bytes.Buffer
	backend *fakeBackend
	repo    metadata.Repository
}

// newHarness wires a real App (session store, HTTP client, services) to a
// fake backend. The app starts on the view the guard picks for "/".
func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	ctx := context.Background()

	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	db, err := client.InitDatabase(ctx, filepath.Join(t.TempDir(), "fk.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := metadata.NewSQLiteRepository(db)
	sess, err := session.Load(ctx, repo)
	require.NoError(t, err)

	api, err := client.New(client.Options{BaseURL: srv.URL, Session: sess})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	app := newApp(sess, services.NewAuthService(api, sess, nil), services.NewFileService(api), bufio.NewReader(bytes.NewBufferString(input)), out)
	t.Cleanup(func() { _ = app.Close() })
	app.router.Navigate(router.PathHome)

	return &harness{app: app, out: out, backend: backend, repo: repo}
}

func stubCredentials(t *testing.T, username, password string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(*bufio.Reader, string, io.Writer) (string, error) { return username, nil }
	getPassword = func(*bufio.Reader, io.Writer) (string, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

// loggedInHarness is newHarness after a successful login as alice.
func loggedInHarness(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t, "")
	stubCredentials(t, "alice", goodPassword)
	require.NoError(t, h.app.Login(context.Background()))
	require.Equal(t, router.PathHome, h.app.currentPath())
	h.out.Reset()
	return h
}
