package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/filekeeper/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

var ErrEmptyUsername = errors.New("username must not be empty")

func (a *App) readCredentials() (models.Credentials, error) {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return models.Credentials{}, err
	}
	if username == "" {
		return models.Credentials{}, ErrEmptyUsername
	}

	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return models.Credentials{}, err
	}
	return models.Credentials{Username: username, Password: password}, nil
}

// Login prompts for credentials and authenticates. On success the session
// listener moves the view to home.
func (a *App) Login(ctx context.Context) error {
	creds, err := a.readCredentials()
	if err != nil {
		return err
	}

	resp, err := a.authService.Login(ctx, creds)
	if err != nil {
		return err
	}

	a.greet(resp)
	return nil
}

func (a *App) Register(ctx context.Context) error {
	creds, err := a.readCredentials()
	if err != nil {
		return err
	}

	resp, err := a.authService.Register(ctx, creds)
	if err != nil {
		return err
	}

	a.greet(resp)
	return nil
}

func (a *App) greet(resp *models.AuthResponse) {
	if resp.Message != "" {
		fmt.Fprintln(a.out, resp.Message)
		return
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", resp.Username)
}

// Logout ends the session. The local session is gone even when the server
// call fails; that failure is still reported.
func (a *App) Logout(ctx context.Context) error {
	err := a.authService.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return err
}
