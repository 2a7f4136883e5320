// Package storage fetches metatile archives from remote object storage.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/akosarev/metaserve/internal/metatile"
)

// ErrNotModified means the origin confirmed the object still matches the
// caller's conditional hints. It is a valid outcome, not a failure.
var ErrNotModified = errors.New("metatile not modified")

// NotFoundError means no object exists at the computed key.
type NotFoundError struct {
	Bucket string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no metatile found at s3://%s/%s", e.Bucket, e.Key)
}

// FetchError is any other backend failure, keeping the offending location
// and backend error code for diagnostics.
type FetchError struct {
	Bucket string
	Key    string
	Code   string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s at s3://%s/%s: %v", e.Code, e.Bucket, e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher performs a conditional read of one object. Freshness hints present
// in info are forwarded to the origin; absent hints are omitted. A Fetcher
// never touches the metatile cache, so a not-modified or not-found
// short-circuit cannot pollute it.
type Fetcher interface {
	Fetch(ctx context.Context, key string, info metatile.CacheInfo) (*metatile.StorageResponse, error)
}
