package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
	"github.com/dmitrijs2005/filekeeper/internal/client/config"
	"github.com/dmitrijs2005/filekeeper/internal/client/models"
	"github.com/dmitrijs2005/filekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/filekeeper/internal/client/router"
	"github.com/dmitrijs2005/filekeeper/internal/client/services"
	"github.com/dmitrijs2005/filekeeper/internal/client/session"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	session     *session.Session
	authService services.AuthService
	fileService services.FileService
	router      *router.Router
	reader      *bufio.Reader
	out         io.Writer

	// listParams and page are the listing last shown on the home view.
	listParams services.ListParams
	page       *models.FilePage

	unsubscribe func()
}

// NewApp opens the session store, restores the saved session and wires the
// HTTP client and services around it.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.StorePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	sess, err := session.Load(ctx, metadata.NewSQLiteRepository(db))
	if err != nil {
		db.Close()
		return nil, err
	}

	api, err := client.New(client.Options{
		BaseURL: c.APIBaseURL,
		Timeout: c.RequestTimeout,
		Session: sess,
		Logger:  logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	a := newApp(sess,
		services.NewAuthService(api, sess, logger),
		services.NewFileService(api),
		bufio.NewReader(os.Stdin), os.Stdout)
	a.config = c
	a.logger = logger
	a.db = db
	return a, nil
}

func newApp(sess *session.Session, as services.AuthService, fs services.FileService, reader *bufio.Reader, out io.Writer) *App {
	a := &App{
		logger:      logging.NewNop(),
		session:     sess,
		authService: as,
		fileService: fs,
		router:      router.New(sess, router.DefaultRoutes()),
		reader:      reader,
		out:         out,
	}
	a.unsubscribe = sess.Subscribe(a.onSessionEvent)
	return a
}

// Run shows the start view and blocks in the REPL until the user leaves.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to FileKeeper CLI (type 'help' for commands)")
	if exp, ok := a.session.ExpiresAt(); ok && time.Now().After(exp) {
		fmt.Fprintln(a.out, "The saved session has expired, the server will ask you to log in again.")
	}
	a.router.Navigate(router.PathHome)

	runREPL(ctx, a, a.status, a.reader)
}

func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) currentPath() string {
	return a.router.Current().Path
}

func (a *App) status() string {
	s := a.currentPath()
	if u := a.session.Username(); u != "" {
		s += " " + u
	}
	return s
}

// onSessionEvent keeps the view in step with the session. It runs on the
// goroutine that changed the session, which is the REPL's.
func (a *App) onSessionEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventLoggedIn:
		a.router.Navigate(router.PathHome)
	case session.EventLoggedOut:
		a.resetListing()
		a.router.Navigate(router.PathLogin)
	case session.EventInvalidated:
		a.resetListing()
		a.router.Navigate(router.PathLogin)
		fmt.Fprintln(a.out, "Your session is no longer valid, please log in again.")
		a.logger.Info(context.Background(), "session invalidated", "username", ev.Username)
	}
}

func (a *App) resetListing() {
	a.page = nil
	a.listParams = services.ListParams{}
}

// Goto moves to a named view, subject to the route guard.
func (a *App) Goto(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("goto <login|register|home>")
	}
	rt, err := a.router.ByName(args[0])
	if err != nil {
		return err
	}

	to := a.router.Navigate(rt.Path)
	if to.Path != rt.Path {
		fmt.Fprintf(a.out, "Redirected to %s\n", to.Path)
	}
	return nil
}
