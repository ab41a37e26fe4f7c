package buckets

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koustreak/bucketlink/internal/errs"
	"github.com/koustreak/bucketlink/internal/filestore"
	"github.com/koustreak/bucketlink/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bucketStore implements only the bucket half of filestore.Store.
type bucketStore struct {
	filestore.Store

	mu        sync.Mutex
	buckets   map[string]bool
	existsErr error
	makeErr   error
	makes     int
}

func newBucketStore(names ...string) *bucketStore {
	s := &bucketStore{buckets: map[string]bool{}}
	for _, n := range names {
		s.buckets[n] = true
	}
	return s
}

func (s *bucketStore) BucketExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.existsErr != nil {
		return false, s.existsErr
	}
	return s.buckets[name], nil
}

func (s *bucketStore) MakeBucket(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.makes++
	if s.makeErr != nil {
		return s.makeErr
	}
	if s.buckets[name] {
		return errs.Newf(errs.ErrKindAlreadyExists, "bucket %s already exists", name)
	}
	s.buckets[name] = true
	return nil
}

func (s *bucketStore) PresignGetURL(context.Context, string, string, time.Duration) (string, error) {
	return "", errors.New("not used")
}

func TestEnsureExists_CreatesMissingBucket(t *testing.T) {
	store := newBucketStore()
	p := NewProvisioner(store, nil, nil)

	require.NoError(t, p.EnsureExists(context.Background(), "projectx"))

	assert.True(t, store.buckets["projectx"])
	assert.Equal(t, 1, store.makes)
}

func TestEnsureExists_Idempotent(t *testing.T) {
	store := newBucketStore()
	p := NewProvisioner(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, p.EnsureExists(ctx, "projectx"))
	require.NoError(t, p.EnsureExists(ctx, "projectx"))

	assert.Len(t, store.buckets, 1)
	assert.Equal(t, 1, store.makes, "second call must not create")
}

func TestEnsureExists_LostRaceIsSuccess(t *testing.T) {
	store := newBucketStore()
	store.makeErr = errs.New(errs.ErrKindAlreadyExists, "BucketAlreadyOwnedByYou")

	assert.NoError(t, NewProvisioner(store, nil, nil).EnsureExists(context.Background(), "projectx"))
}

func TestEnsureExists_PropagatesGatewayFailure(t *testing.T) {
	down := errs.Wrap(errs.ErrKindConnectionFailed, "head bucket failed", errors.New("refused"))

	t.Run("exists check", func(t *testing.T) {
		store := newBucketStore()
		store.existsErr = down
		err := NewProvisioner(store, nil, nil).EnsureExists(context.Background(), "projectx")
		assert.ErrorIs(t, err, down)
		assert.Equal(t, 0, store.makes)
	})

	t.Run("create", func(t *testing.T) {
		store := newBucketStore()
		store.makeErr = errs.New(errs.ErrKindPermissionDenied, "AccessDenied")
		err := NewProvisioner(store, nil, nil).EnsureExists(context.Background(), "projectx")
		assert.True(t, errs.IsPermissionDenied(err))
		assert.Equal(t, 1, store.makes, "no retries")
	})
}

func TestEnsureExists_EmptyName(t *testing.T) {
	store := newBucketStore()
	err := NewProvisioner(store, nil, nil).EnsureExists(context.Background(), "")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestEnsureExists_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := newBucketStore("existing")
	p := NewProvisioner(store, nil, m)
	ctx := context.Background()

	require.NoError(t, p.EnsureExists(ctx, "fresh"))
	require.NoError(t, p.EnsureExists(ctx, "existing"))

	count, err := testutil.GatherAndCount(reg, "bucketlink_bucket_provisions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
