/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package storage pkg/storage/interfaces.go
package storage

import (
	"context"
	"time"
)

// KVStore is the key-value primitive behind the cache index. Backends are
// opaque to the cache; both a local filesystem and a NATS JetStream bucket
// satisfy it.
type KVStore interface {
	// Get retrieves the value associated with the given key. Returns the
	// value, a boolean indicating if the key was found, and an error if the
	// operation fails. A missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores a value under the given key with an optional TTL. If ttl is
	// zero the value persists until explicitly deleted.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// BlobStore is the per-entity blob primitive. Names are flat, pre-sanitized
// keys; backends never interpret them.
type BlobStore interface {
	// Read returns the blob contents, or ErrBlobNotFound.
	Read(ctx context.Context, name string) ([]byte, error)

	// Write stores the blob atomically: readers never observe a partial write.
	Write(ctx context.Context, name string, data []byte) error

	// Delete removes the blob. Deleting an absent blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored blobs.
	List(ctx context.Context) ([]string, error)

	// Close releases backend resources.
	Close() error
}
