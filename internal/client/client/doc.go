// Package client is the HTTP layer of the FileKeeper client.
//
// HTTPClient sends every request to a fixed base URL through two
// interceptors: one attaches the bearer token held by the session, the other
// invalidates the session when the server answers 401 on anything other than
// the login and register endpoints. Failures come back as *APIError (the
// server answered with status 400 or above) or *TransportError (no answer at
// all). Match them with errors.As, or with errors.Is against ErrUnauthorized
// and ErrUnavailable.
//
// InitDatabase and RunMigrations bootstrap the SQLite store that keeps the
// session between runs.
package client
