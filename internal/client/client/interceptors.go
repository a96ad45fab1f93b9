package client

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
)

func (c *HTTPClient) accessTokenInterceptor(req *http.Request, next Invoker) (*http.Response, error) {
	if req.Header.Get(RequestIDHeaderName) == "" {
		req.Header.Set(RequestIDHeaderName, uuid.NewString())
	}

	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return next(req)
}

// unauthorizedInterceptor drops the session when the server rejects the
// token. Login and register answer 401 for bad credentials, which says
// nothing about the current session, so they are left alone.
func (c *HTTPClient) unauthorizedInterceptor(req *http.Request, next Invoker) (*http.Response, error) {
	resp, err := next(req)
	if err == nil {
		return resp, nil
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		return nil, err
	}

	switch c.relativePath(req) {
	case loginPath, registerPath:
		return nil, err
	}

	if c.session == nil {
		return nil, err
	}

	ctx := req.Context()
	c.logger.Warn(ctx, "session rejected by server", "method", req.Method, "path", c.relativePath(req))
	if ierr := c.session.Invalidate(ctx, err); ierr != nil {
		c.logger.Error(ctx, "failed to invalidate session", "error", ierr)
	}

	return nil, err
}
