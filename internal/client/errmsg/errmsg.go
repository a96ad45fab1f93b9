// Package errmsg turns any error produced by the client into one line of
// text fit for showing to a user.
package errmsg

import (
	"errors"

	"github.com/dmitrijs2005/filekeeper/internal/client/client"
)

const (
	ColdStartMessage = "Backend server might be cold-starting (Render free tier), please wait a few seconds and try again."
	FallbackMessage  = "An unexpected error occurred. Please try again."
)

// Extract never returns an empty string. Server detail wins, then the
// cold-start hint for requests that got no answer, then the error's own
// text.
func Extract(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}

	var terr *client.TransportError
	if errors.As(err, &terr) && (terr.Kind == client.KindNetwork || terr.Kind == client.KindTimeout) {
		return ColdStartMessage
	}

	if err != nil {
		if msg := err.Error(); msg != "" {
			return msg
		}
	}

	return FallbackMessage
}
