package recordings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"sort"
	"sync"

	"github.com/openroom/backend/pkg/storage"
)

// fakeStore is an in-memory storage.Store for tests. It mimics the
// backend's behavior closely enough for the delivery semantics: lexicographic
// listing order and a hard error for a range start beyond the object tail.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deletes []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) put(key string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
}

func (f *fakeStore) putJSON(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	f.put(key, data)
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) HeadSize(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return 0, fmt.Errorf("head object %s: not found", key)
	}
	return int64(len(data)), nil
}

func (f *fakeStore) Get(_ context.Context, key string, rng *storage.ByteRange) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("get object %s: not found", key)
	}
	if rng != nil {
		if rng.Start >= int64(len(data)) {
			return nil, fmt.Errorf("get object %s: invalid range", key)
		}
		end := rng.End
		if end > int64(len(data))-1 {
			end = int64(len(data)) - 1
		}
		data = data[rng.Start : end+1]
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStore) GetJSON(ctx context.Context, key string, v interface{}) error {
	body, err := f.Get(ctx, key, nil)
	if err != nil {
		return err
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	return json.Unmarshal(data, v)
}

func (f *fakeStore) List(_ context.Context, prefix string, pattern *regexp.Regexp) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for key := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			if pattern == nil || pattern.MatchString(key) {
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *fakeStore) Put(_ context.Context, key, _ string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.put(key, data)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deletes = append(f.deletes, key)
	return nil
}

var _ storage.Store = (*fakeStore)(nil)
