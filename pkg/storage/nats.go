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

// Package storage pkg/storage/nats.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSConfig selects the JetStream-backed storage variant. The same cache
// logic runs against it unchanged; only the composition root differs.
type NATSConfig struct {
	URL    string `json:"nats_url" yaml:"nats_url"`
	Bucket string `json:"bucket" yaml:"bucket"`
}

func (c *NATSConfig) Validate() error {
	if c.URL == "" {
		return errNatsURLNeeded
	}

	if c.Bucket == "" {
		return errBucketNeeded
	}

	return nil
}

// NATSKV is a KVStore backed by a JetStream KeyValue bucket.
type NATSKV struct {
	nc *nats.Conn
	kv jetstream.KeyValue
}

// NewNATSKV connects and creates (or binds to) the bucket.
func NewNATSKV(ctx context.Context, cfg *NATSConfig) (*NATSKV, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: cfg.Bucket})
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create KV bucket: %w", err)
	}

	return &NATSKV{nc: nc, kv: kv}, nil
}

func (n *NATSKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	entry, err := n.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	return entry.Value(), true, nil
}

func (n *NATSKV) Put(ctx context.Context, key string, value []byte, _ time.Duration) error {
	// TTL is bucket-level in JetStream KV; the per-call value is ignored.
	_, err := n.kv.Put(ctx, key, value)
	if err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Delete(ctx context.Context, key string) error {
	err := n.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

func (n *NATSKV) Close() error {
	n.nc.Close()

	return nil
}

// NATSBlobStore is a BlobStore backed by a JetStream ObjectStore bucket.
type NATSBlobStore struct {
	nc  *nats.Conn
	obj jetstream.ObjectStore
}

// NewNATSBlobStore connects and creates (or binds to) the object bucket.
func NewNATSBlobStore(ctx context.Context, cfg *NATSConfig) (*NATSBlobStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	obj, err := js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{Bucket: cfg.Bucket})
	if err != nil {
		nc.Close()

		return nil, fmt.Errorf("failed to create object bucket: %w", err)
	}

	return &NATSBlobStore{nc: nc, obj: obj}, nil
}

func (n *NATSBlobStore) Read(ctx context.Context, name string) ([]byte, error) {
	data, err := n.obj.GetBytes(ctx, name)
	if errors.Is(err, jetstream.ErrObjectNotFound) {
		return nil, ErrBlobNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", name, err)
	}

	return data, nil
}

func (n *NATSBlobStore) Write(ctx context.Context, name string, data []byte) error {
	if _, err := n.obj.PutBytes(ctx, name, data); err != nil {
		return fmt.Errorf("failed to write object %s: %w", name, err)
	}

	return nil
}

func (n *NATSBlobStore) Delete(ctx context.Context, name string) error {
	err := n.obj.Delete(ctx, name)
	if err != nil && !errors.Is(err, jetstream.ErrObjectNotFound) {
		return fmt.Errorf("failed to delete object %s: %w", name, err)
	}

	return nil
}

func (n *NATSBlobStore) List(ctx context.Context) ([]string, error) {
	infos, err := n.obj.List(ctx)
	if errors.Is(err, jetstream.ErrNoObjectsFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}

	names := make([]string, 0, len(infos))

	for _, info := range infos {
		names = append(names, info.Name)
	}

	return names, nil
}

func (n *NATSBlobStore) Close() error {
	n.nc.Close()

	return nil
}
