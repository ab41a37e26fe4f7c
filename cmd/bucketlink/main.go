// Command bucketlink serves presigned download links for objects in an
// S3-compatible store and provisions buckets on request.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/koustreak/bucketlink/internal/api"
	"github.com/koustreak/bucketlink/internal/buckets"
	"github.com/koustreak/bucketlink/internal/cache/redis"
	"github.com/koustreak/bucketlink/internal/config"
	"github.com/koustreak/bucketlink/internal/filestore"
	"github.com/koustreak/bucketlink/internal/filestore/minio"
	"github.com/koustreak/bucketlink/internal/filestore/s3"
	"github.com/koustreak/bucketlink/internal/links"
	"github.com/koustreak/bucketlink/internal/logger"
	"github.com/koustreak/bucketlink/internal/metrics"
	"github.com/koustreak/bucketlink/internal/server"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	addr       string
	logLevel   string
}

func parseFlags(args []string) (*options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("bucketlink", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flagSet.StringVar(&opts.addr, "addr", "", "listen address, overrides server.addr")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error; overrides log.level")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return &opts, nil
}

// loadConfig applies flag overrides on top of the file and environment.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, cfg.Validate()
}

func run(args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logger())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.NewWithRuntime()

	store, err := openStore(ctx, cfg.FileStore())
	if err != nil {
		return fmt.Errorf("object store: %w", err)
	}
	log.With().Str("provider", cfg.Storage.Provider).Str("endpoint", cfg.Storage.Endpoint).Logger().Info("object store connected")

	linkCache, err := redis.New(ctx, cfg.Redis())
	if err != nil {
		_ = store.Close()
		return fmt.Errorf("cache: %w", err)
	}
	log.Info("cache connected")

	validator := links.NewValidator(linkCache, &links.HTTPProber{Client: &http.Client{}}, cfg.Links(), log, m)
	resolver := links.NewResolver(store, linkCache, validator,
		links.WithTTL(cfg.Cache.LinkTTL),
		links.WithLogger(log),
		links.WithMetrics(m),
	)
	provisioner := buckets.NewProvisioner(store, log, m)

	router := api.NewRouter(api.NewHandler(resolver, provisioner, log), api.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
		Metrics:        m,
	})

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, router, log)
	srv.OnShutdown(server.Closer{Name: "validator", Close: validator.Close})
	srv.OnShutdown(server.Closer{Name: "cache", Close: func(context.Context) error { return linkCache.Close() }})
	srv.OnShutdown(server.Closer{Name: "object store", Close: func(context.Context) error { return store.Close() }})

	return srv.Run(ctx)
}

func openStore(ctx context.Context, cfg *filestore.Config) (filestore.Store, error) {
	switch cfg.Provider {
	case filestore.ProviderS3:
		return s3.New(ctx, cfg)
	default:
		return minio.New(ctx, cfg)
	}
}
