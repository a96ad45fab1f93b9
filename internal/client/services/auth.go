package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
	"github.com/dmitrijs2005/filekeeper/internal/client/models"
	"github.com/dmitrijs2005/filekeeper/internal/client/session"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
)

var ErrMissingToken = errors.New("server response carries no token")

// AuthService drives the session lifecycle against the server.
//
// Login and Register store the returned token only when the call succeeds.
// Logout always ends the local session, whatever the server says.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error)
	Logout(ctx context.Context) error
	Session() *session.Session
	Username() string
	IsAuthenticated() bool
}

type authService struct {
	api     API
	session *session.Session
	logger  logging.Logger
}

func NewAuthService(api API, sess *session.Session, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &authService{api: api, session: sess, logger: logger}
}

func (a *authService) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	return a.authenticate(ctx, "/auth/login", creds)
}

func (a *authService) Register(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	return a.authenticate(ctx, "/auth/register", creds)
}

func (a *authService) authenticate(ctx context.Context, path string, creds models.Credentials) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := a.api.DoJSON(ctx, http.MethodPost, path, &resp, client.WithJSON(creds)); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrMissingToken
	}

	if err := a.session.Set(ctx, resp.Token, resp.Username); err != nil {
		return nil, err
	}
	a.logger.Info(ctx, "authenticated", "username", resp.Username)
	return &resp, nil
}

// Logout tells the server to end the session and then clears it locally.
// A server failure is returned after the local cleanup; if the cleanup
// fails too, both errors are joined.
func (a *authService) Logout(ctx context.Context) (err error) {
	defer func() {
		if cerr := a.session.Clear(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if err := a.api.DoJSON(ctx, http.MethodPost, "/auth/logout", nil); err != nil {
		a.logger.Warn(ctx, "logout request failed", "error", err)
		return err
	}
	return nil
}

func (a *authService) Session() *session.Session {
	return a.session
}

func (a *authService) Username() string {
	return a.session.Username()
}

func (a *authService) IsAuthenticated() bool {
	return a.session.IsAuthenticated()
}
