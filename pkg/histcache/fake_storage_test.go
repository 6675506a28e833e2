package histcache

import (
	"context"
	"errors"
	"time"

	"github.com/carverauto/histcache/pkg/storage"
)

var errFakeStorage = errors.New("storage backend unavailable")

// memKV is an in-memory KVStore for tests.
type memKV struct {
	data    map[string][]byte
	failGet bool
	failPut bool
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.failGet {
		return nil, false, errFakeStorage
	}

	v, ok := m.data[key]

	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	if m.failPut {
		return errFakeStorage
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	m.data[key] = cp

	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)

	return nil
}

func (*memKV) Close() error {
	return nil
}

// memBlob is an in-memory BlobStore for tests.
type memBlob struct {
	data      map[string][]byte
	failRead  bool
	failWrite bool
}

func newMemBlob() *memBlob {
	return &memBlob{data: make(map[string][]byte)}
}

func (m *memBlob) Read(_ context.Context, name string) ([]byte, error) {
	if m.failRead {
		return nil, errFakeStorage
	}

	v, ok := m.data[name]
	if !ok {
		return nil, storage.ErrBlobNotFound
	}

	return v, nil
}

func (m *memBlob) Write(_ context.Context, name string, data []byte) error {
	if m.failWrite {
		return errFakeStorage
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	m.data[name] = cp

	return nil
}

func (m *memBlob) Delete(_ context.Context, name string) error {
	delete(m.data, name)

	return nil
}

func (m *memBlob) List(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(m.data))

	for name := range m.data {
		names = append(names, name)
	}

	return names, nil
}

func (*memBlob) Close() error {
	return nil
}
