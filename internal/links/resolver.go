// Package links resolves (bucket, path) pairs into presigned download
// links and keeps a cache of issued links self-correcting.
//
// A cache hit is returned at once and re-checked in the background; a
// stale entry is deleted so the following read goes back to the object
// store. Concurrent misses on one key are not coalesced: each asks the
// object store and the last cache write wins.
package links

import (
	"context"
	"time"

	"github.com/koustreak/bucketlink/internal/cache"
	"github.com/koustreak/bucketlink/internal/errs"
	"github.com/koustreak/bucketlink/internal/filestore"
	"github.com/koustreak/bucketlink/internal/logger"
	"github.com/koustreak/bucketlink/internal/metrics"
)

// Request is one link lookup.
type Request struct {
	Bucket   string
	Path     string
	Category Category

	// PlaceholderIfMissing serves the category's placeholder when the
	// object does not exist.
	PlaceholderIfMissing bool
}

// Resolver is safe for concurrent use.
type Resolver struct {
	store     filestore.Store
	cache     cache.Store
	scheduler Scheduler
	ttl       time.Duration
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTTL sets both the presigned link lifetime and its cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger sets the resolver's logger. A nil logger keeps the no-op
// default.
func WithLogger(l *logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l.Component("resolver")
		}
	}
}

// WithMetrics records one resolution outcome per Resolve call on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver wires a resolver. scheduler may be nil, in which case cache
// hits are returned without background validation.
func NewResolver(store filestore.Store, c cache.Store, scheduler Scheduler, opts ...Option) *Resolver {
	r := &Resolver{
		store:     store,
		cache:     c,
		scheduler: scheduler,
		ttl:       filestore.DefaultLinkTTL,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a usable link for req. On success the link is never
// empty.
//
// Errors: ErrKindInvalidInput for an empty bucket or path,
// ErrKindNotFound when the object (or the placeholder standing in for it)
// is missing, ErrKindEmptyResult when the object store answers with an
// empty link, and the dependency kinds for object-store or cache failures.
func (r *Resolver) Resolve(ctx context.Context, req Request) (string, error) {
	return r.resolve(ctx, req, false)
}

// resolve does the work of Resolve. viaPlaceholder marks the inner call of
// a placeholder fallback, whose success is counted as a placeholder
// outcome rather than a hit or miss.
func (r *Resolver) resolve(ctx context.Context, req Request, viaPlaceholder bool) (string, error) {
	success := func(outcome string) {
		if viaPlaceholder {
			outcome = metrics.OutcomePlaceholder
		}
		r.metrics.ObserveResolution(outcome)
	}

	if req.Bucket == "" || req.Path == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "bucket and path are required")
	}

	key := CacheKey(req.Bucket, req.Path)
	log := r.log.With().Str("bucket", req.Bucket).Str("path", req.Path).Logger()

	cached, ok, err := r.cache.Get(ctx, key, true)
	if err != nil {
		r.metrics.ObserveResolution(metrics.OutcomeError)
		return "", err
	}
	if ok && cached != "" {
		if r.scheduler != nil {
			r.scheduler.Schedule(key, cached)
		}
		success(metrics.OutcomeCacheHit)
		log.Debug("cache hit")
		return cached, nil
	}

	exists, err := r.store.ObjectExists(ctx, req.Bucket, req.Path)
	if err != nil {
		r.metrics.ObserveResolution(metrics.OutcomeError)
		return "", err
	}
	if !exists {
		return r.fallback(ctx, req)
	}

	link, err := r.store.PresignGetURL(ctx, req.Bucket, req.Path, r.ttl)
	if err != nil {
		r.metrics.ObserveResolution(metrics.OutcomeError)
		return "", err
	}
	if link == "" {
		r.metrics.ObserveResolution(metrics.OutcomeError)
		return "", errs.Newf(errs.ErrKindEmptyResult,
			"object store returned an empty link for %s in bucket %s", req.Path, req.Bucket)
	}

	if err := r.cache.Set(ctx, key, link, r.ttl, true); err != nil {
		r.metrics.ObserveResolution(metrics.OutcomeError)
		return "", err
	}

	success(metrics.OutcomeCacheMiss)
	log.Debug("link issued")
	return link, nil
}

// fallback handles a missing object. The placeholder is resolved with
// PlaceholderIfMissing cleared, so a missing placeholder is a hard
// NotFound rather than another fallback.
func (r *Resolver) fallback(ctx context.Context, req Request) (string, error) {
	if !req.PlaceholderIfMissing {
		r.metrics.ObserveResolution(metrics.OutcomeNotFound)
		return "", errs.Newf(errs.ErrKindNotFound,
			"file %s does not exist in bucket %s", req.Path, req.Bucket)
	}

	ph, ok := LookupPlaceholder(req.Category)
	if !ok {
		r.metrics.ObserveResolution(metrics.OutcomeNotFound)
		return "", errs.Newf(errs.ErrKindNotFound,
			"no placeholder for file category %q", req.Category)
	}

	r.log.With().
		Str("bucket", req.Bucket).
		Str("path", req.Path).
		Str("placeholder", ph.Path).
		Logger().
		Debug("object missing, serving placeholder")

	return r.resolve(ctx, Request{
		Bucket:               ph.Bucket,
		Path:                 ph.Path,
		Category:             req.Category,
		PlaceholderIfMissing: false,
	}, true)
}
