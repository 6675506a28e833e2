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

// Package storage pkg/storage/fs.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carverauto/histcache/pkg/logger"
)

const (
	kvFileSuffix = ".kv.json"
	tmpSuffix    = ".tmp"
	fileMode     = 0o600
	dirMode      = 0o700
)

// FileBlobStore keeps each blob as a file under a root directory. Writes go
// through a temp file plus rename so readers never see a partial blob.
type FileBlobStore struct {
	root   string
	logger logger.Logger
}

// NewFileBlobStore creates the root directory if needed.
func NewFileBlobStore(root string, log logger.Logger) (*FileBlobStore, error) {
	if root == "" {
		return nil, errRootRequired
	}

	if err := os.MkdirAll(root, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create storage root '%s': %w", root, err)
	}

	return &FileBlobStore{root: root, logger: log}, nil
}

func (s *FileBlobStore) Read(_ context.Context, name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read blob '%s': %w", name, err)
	}

	return data, nil
}

func (s *FileBlobStore) Write(_ context.Context, name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	tmp := path + tmpSuffix

	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return fmt.Errorf("failed to write blob '%s': %w", name, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("failed to commit blob '%s': %w", name, err)
	}

	return nil
}

func (s *FileBlobStore) Delete(_ context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob '%s': %w", name, err)
	}

	return nil
}

func (s *FileBlobStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list storage root '%s': %w", s.root, err)
	}

	names := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), tmpSuffix) || strings.HasSuffix(e.Name(), kvFileSuffix) {
			continue
		}

		names = append(names, e.Name())
	}

	return names, nil
}

func (*FileBlobStore) Close() error {
	return nil
}

func (s *FileBlobStore) path(name string) (string, error) {
	if err := checkKey(name); err != nil {
		return "", err
	}

	return filepath.Join(s.root, name), nil
}

// FileKV stores each key as its own file next to the blobs, marked with a
// suffix so List on the blob store skips them. TTL is not supported and is
// ignored.
type FileKV struct {
	root   string
	logger logger.Logger
}

// NewFileKV creates the root directory if needed.
func NewFileKV(root string, log logger.Logger) (*FileKV, error) {
	if root == "" {
		return nil, errRootRequired
	}

	if err := os.MkdirAll(root, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create storage root '%s': %w", root, err)
	}

	return &FileKV{root: root, logger: log}, nil
}

func (s *FileKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get key '%s': %w", key, err)
	}

	return data, true, nil
}

func (s *FileKV) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	tmp := path + tmpSuffix

	if err := os.WriteFile(tmp, value, fileMode); err != nil {
		return fmt.Errorf("failed to put key '%s': %w", key, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("failed to commit key '%s': %w", key, err)
	}

	return nil
}

func (s *FileKV) Delete(_ context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete key '%s': %w", key, err)
	}

	return nil
}

func (*FileKV) Close() error {
	return nil
}

func (s *FileKV) path(key string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	return filepath.Join(s.root, key+kvFileSuffix), nil
}

// checkKey rejects names that could escape the storage root. Callers are
// expected to pre-sanitize; this is the last line of defense.
func checkKey(key string) error {
	if key == "" {
		return errEmptyKey
	}

	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("%w: %q", errUnsafeKey, key)
	}

	return nil
}
