package links

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/koustreak/bucketlink/internal/errs"
	"github.com/koustreak/bucketlink/internal/filestore"
)

// fakeStore is an in-memory filestore.Store keyed by "bucket/path".
type fakeStore struct {
	mu         sync.Mutex
	objects    map[string]bool
	existsErr  error
	presignErr error
	emptyLink  bool
	existsCall int
	presigned  []string
}

var _ filestore.Store = (*fakeStore)(nil)

func newFakeStore(objects ...string) *fakeStore {
	s := &fakeStore{objects: map[string]bool{}}
	for _, o := range objects {
		s.objects[o] = true
	}
	return s
}

func (s *fakeStore) remove(object string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, object)
}

func (s *fakeStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.existsCall
}

func (s *fakeStore) Ping(context.Context) error { return nil }
func (s *fakeStore) Close() error               { return nil }

func (s *fakeStore) ListBuckets(context.Context) ([]filestore.BucketInfo, error) {
	return nil, nil
}

func (s *fakeStore) BucketExists(context.Context, string) (bool, error) { return true, nil }
func (s *fakeStore) MakeBucket(context.Context, string) error           { return nil }

func (s *fakeStore) StatObject(_ context.Context, bucket, key string) (*filestore.ObjectInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.objects[bucket+"/"+key] {
		return nil, errs.New(errs.ErrKindNotFound, "no such key")
	}
	return &filestore.ObjectInfo{Key: key}, nil
}

func (s *fakeStore) ObjectExists(_ context.Context, bucket, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.existsCall++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.objects[bucket+"/"+key], nil
}

func (s *fakeStore) PresignGetURL(_ context.Context, bucket, key string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.presignErr != nil {
		return "", s.presignErr
	}
	if s.emptyLink {
		return "", nil
	}
	link := presignedFor(bucket, key)
	s.presigned = append(s.presigned, link)
	return link, nil
}

func presignedFor(bucket, key string) string {
	return "http://minio.test/" + bucket + "/" + key + "?X-Amz-Signature=sig"
}

type cacheEntry struct {
	value      string
	ttl        time.Duration
	compressed bool
}

// fakeCache is an in-memory cache.Store that records TTL and compression.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	getErr  error
	setErr  error
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]cacheEntry{}}
}

func (c *fakeCache) entry(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *fakeCache) Get(_ context.Context, key string, compressed bool) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	e, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if e.compressed != compressed {
		return "", false, errors.New("compression mismatch")
	}
	return e.value, true, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, ttl time.Duration, compress bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = cacheEntry{value: value, ttl: ttl, compressed: compress}
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }
func (c *fakeCache) Close() error               { return nil }

// recordingScheduler remembers what was scheduled without running it.
type recordingScheduler struct {
	mu   sync.Mutex
	jobs []job
}

func (s *recordingScheduler) Schedule(key, link string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{key: key, link: link})
	return true
}

// proberFunc adapts a function to Prober.
type proberFunc func(ctx context.Context, link string) error

func (f proberFunc) Probe(ctx context.Context, link string) error { return f(ctx, link) }

// storeProber treats a link as live while its object is in the store,
// standing in for the object store answering a presigned GET.
func storeProber(s *fakeStore, bucket, key string) Prober {
	return proberFunc(func(context.Context, string) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.objects[bucket+"/"+key] {
			return errors.New("probe: unexpected status 404")
		}
		return nil
	})
}
