// Package cache is a query cache keyed by namespace and query identity.
// Mutations drop whole namespaces.
package cache

import (
	"context"
	"errors"
	"strings"
)

// ErrMiss is returned by Get when the key is not cached.
var ErrMiss = errors.New("cache: miss")

type Cache interface {
	// Version returns the current generation of ns. Read it before loading
	// the value that will be passed to Set.
	Version(ctx context.Context, ns string) (int64, error)
	// Get decodes the cached value into dst or returns ErrMiss.
	Get(ctx context.Context, ns, key string, dst any) error
	// Set stores v for generation ver. A write for a generation that has
	// since been invalidated is never served.
	Set(ctx context.Context, ns, key string, ver int64, v any) error
	Invalidate(ctx context.Context, ns ...string) error
}

// Key joins query parameters into a cache key. Empty parts are kept so that
// ("a", "") and ("", "a") differ.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Version(context.Context, string) (int64, error)        { return 0, nil }
func (Nop) Get(context.Context, string, string, any) error        { return ErrMiss }
func (Nop) Set(context.Context, string, string, int64, any) error { return nil }
func (Nop) Invalidate(context.Context, ...string) error           { return nil }
