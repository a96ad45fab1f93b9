// Package services implements the FileKeeper operations on top of the HTTP
// client: file management and the authentication lifecycle.
package services

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
)

// API is the part of *client.HTTPClient the services use.
type API interface {
	Do(ctx context.Context, method, path string, opts ...client.RequestOption) (*http.Response, error)
	DoJSON(ctx context.Context, method, path string, out any, opts ...client.RequestOption) error
}
