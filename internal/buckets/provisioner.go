// Package buckets creates object-store buckets on demand.
package buckets

import (
	"context"

	"github.com/koustreak/bucketlink/internal/errs"
	"github.com/koustreak/bucketlink/internal/filestore"
	"github.com/koustreak/bucketlink/internal/logger"
	"github.com/koustreak/bucketlink/internal/metrics"
)

// Provisioner makes sure a bucket exists. It never caches existence and
// never retries.
type Provisioner struct {
	store   filestore.Store
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewProvisioner returns a Provisioner over store. log and m may be nil.
func NewProvisioner(store filestore.Store, log *logger.Logger, m *metrics.Metrics) *Provisioner {
	if log == nil {
		log = logger.Nop()
	}
	return &Provisioner{store: store, log: log.Component("buckets"), metrics: m}
}

// EnsureExists creates name unless it is already there. Losing a creation
// race to another caller counts as success.
func (p *Provisioner) EnsureExists(ctx context.Context, name string) error {
	if name == "" {
		return errs.New(errs.ErrKindInvalidInput, "bucket name is required")
	}

	exists, err := p.store.BucketExists(ctx, name)
	if err != nil {
		p.metrics.ObserveProvision("error")
		return err
	}
	if exists {
		p.metrics.ObserveProvision("existed")
		return nil
	}

	if err := p.store.MakeBucket(ctx, name); err != nil {
		if errs.IsAlreadyExists(err) {
			p.metrics.ObserveProvision("existed")
			return nil
		}
		p.metrics.ObserveProvision("error")
		return err
	}

	p.metrics.ObserveProvision("created")
	p.log.With().Str("bucket", name).Logger().Info("bucket created")
	return nil
}
