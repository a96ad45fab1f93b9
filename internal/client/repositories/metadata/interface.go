// Package metadata is the durable key/value store of the client: the
// session token and username live here between runs.
package metadata

import "context"

type Repository interface {
	// Get returns the value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// SetAll upserts every pair atomically.
	SetAll(ctx context.Context, values map[string]string) error
	// Delete removes the keys atomically. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
}
