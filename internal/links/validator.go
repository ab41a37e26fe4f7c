package links

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/koustreak/bucketlink/internal/cache"
	"github.com/koustreak/bucketlink/internal/logger"
	"github.com/koustreak/bucketlink/internal/metrics"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Scheduler accepts cached links for background validation. Schedule
// must never block the caller.
type Scheduler interface {
	Schedule(key, link string) bool
}

// Prober checks that a link still serves its object. Any non-nil error
// means the link is stale.
type Prober interface {
	Probe(ctx context.Context, link string) error
}

// HTTPProber fetches the first byte of the link.
type HTTPProber struct {
	Client *http.Client
}

func (p *HTTPProber) Probe(ctx context.Context, link string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	// Presigned URLs only sign GET; a ranged GET keeps the probe cheap.
	req.Header.Set("Range", "bytes=0-0")

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// ValidatorConfig sizes the validation pool.
type ValidatorConfig struct {
	Workers         int
	QueueSize       int
	ProbeTimeout    time.Duration
	ProbesPerSecond float64 // 0 disables pacing
}

// DefaultValidatorConfig returns the pool settings used when none are
// configured.
func DefaultValidatorConfig() ValidatorConfig {
	return ValidatorConfig{
		Workers:         4,
		QueueSize:       256,
		ProbeTimeout:    5 * time.Second,
		ProbesPerSecond: 50,
	}
}

type job struct {
	key  string
	link string
}

// Validator probes cached links off the request path and deletes the
// cache entry of any link that no longer works. Jobs run under their own
// timeout; the request that scheduled a job never waits for it and its
// cancellation does not reach it.
type Validator struct {
	cache   cache.Store
	prober  Prober
	cfg     ValidatorConfig
	limiter *rate.Limiter
	log     *logger.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	closed bool
	jobs   chan job
	group  errgroup.Group
}

var _ Scheduler = (*Validator)(nil)

// NewValidator starts cfg.Workers goroutines draining the job queue.
// Call Close to stop them.
func NewValidator(c cache.Store, p Prober, cfg ValidatorConfig, log *logger.Logger, m *metrics.Metrics) *Validator {
	def := DefaultValidatorConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = def.ProbeTimeout
	}
	if log == nil {
		log = logger.Nop()
	}

	v := &Validator{
		cache:   c,
		prober:  p,
		cfg:     cfg,
		log:     log.Component("validator"),
		metrics: m,
		jobs:    make(chan job, cfg.QueueSize),
	}
	if cfg.ProbesPerSecond > 0 {
		v.limiter = rate.NewLimiter(rate.Limit(cfg.ProbesPerSecond), cfg.Workers)
	}

	for i := 0; i < cfg.Workers; i++ {
		v.group.Go(func() error {
			for j := range v.jobs {
				v.validate(j)
			}
			return nil
		})
	}
	return v
}

// Schedule queues a validation of link. It returns false when the job was
// dropped because the queue is full or the validator is closed; the next
// cache hit on the same key schedules it again.
func (v *Validator) Schedule(key, link string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.closed {
		v.metrics.ObserveValidation(metrics.ValidationDropped)
		return false
	}
	select {
	case v.jobs <- job{key: key, link: link}:
		return true
	default:
		v.metrics.ObserveValidation(metrics.ValidationDropped)
		v.log.With().Str("key", key).Logger().Warn("validation queue full, dropping job")
		return false
	}
}

// Close stops intake and waits for queued jobs to finish, or for ctx.
func (v *Validator) Close(ctx context.Context) error {
	v.mu.Lock()
	if !v.closed {
		v.closed = true
		close(v.jobs)
	}
	v.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- v.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (v *Validator) validate(j job) {
	log := v.log.With().Str("key", j.key).Logger()

	probeCtx, cancel := context.WithTimeout(context.Background(), v.cfg.ProbeTimeout)
	defer cancel()

	if v.limiter != nil {
		if err := v.limiter.Wait(probeCtx); err != nil {
			log.With().Err(err).Logger().Debug("probe skipped")
			return
		}
	}

	probeErr := v.prober.Probe(probeCtx, j.link)
	if probeErr == nil {
		v.metrics.ObserveValidation(metrics.ValidationValid)
		return
	}

	// The probe may have used up probeCtx; the delete gets its own budget.
	delCtx, delCancel := context.WithTimeout(context.Background(), v.cfg.ProbeTimeout)
	defer delCancel()

	if err := v.cache.Delete(delCtx, j.key); err != nil {
		v.metrics.ObserveValidation(metrics.ValidationDeleteError)
		log.With().Err(err).Logger().Debug("failed to invalidate stale link")
		return
	}
	v.metrics.ObserveValidation(metrics.ValidationInvalidated)
	log.With().Err(probeErr).Logger().Debug("stale link invalidated")
}
