package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/engraver/pkg/buildinfo"
	"github.com/matzehuels/engraver/pkg/cache"
	"github.com/matzehuels/engraver/pkg/observability/prom"
	"github.com/matzehuels/engraver/pkg/pipeline"
	"github.com/matzehuels/engraver/pkg/server"
	"github.com/matzehuels/engraver/pkg/textmetrics"
)

type serveFlags struct {
	addr        string
	redisAddr   string
	redisPrefix string
	redisDB     int
	noCache     bool
	memory      int
	metrics     bool
	maxBody     int64
	fonts       []string
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

POST a score document to /v1/layout to receive its layout. Layouts are cached
in Redis when --redis is set (or ` + envRedisAddr + `), otherwise in the local
cache directory. Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&f.redisAddr, "redis", os.Getenv(envRedisAddr), "redis address for the shared layout cache")
	cmd.Flags().StringVar(&f.redisPrefix, "redis-prefix", cache.DefaultRedisPrefix, "redis key prefix")
	cmd.Flags().IntVar(&f.redisDB, "redis-db", 0, "redis database")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&f.memory, "memory-cache", 0, "cache up to N entries in process memory instead of on disk")
	cmd.Flags().BoolVar(&f.metrics, "metrics", true, "serve Prometheus metrics on /metrics")
	cmd.Flags().StringArrayVar(&f.fonts, "font", nil, "extra font as family[:style]=url (repeatable)")
	cmd.Flags().Int64Var(&f.maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body in bytes")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, f serveFlags) error {
	logger := loggerFromContext(ctx)
	logger.Debug("starting server", "build", buildinfo.String())

	sources, err := parseFontSources(f.fonts)
	if err != nil {
		return err
	}
	cc, backend, err := serveCache(ctx, f)
	if err != nil {
		return err
	}

	// Fonts load in the background; requests before they finish get
	// approximate layouts, which are never cached.
	fonts := textmetrics.New(logger)
	defer fonts.Close()
	fonts.RequireBuiltin()
	requireSources(ctx, fonts, sources, cc)

	runner := pipeline.NewRunner(cc, fontsKeyer(sources), logger)
	runner.Metrics = fonts
	defer runner.Close()

	opts := server.Options{MaxBodyBytes: f.maxBody, Logger: logger}
	if f.metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prom.New(reg).Install()
		opts.Gatherer = reg
	}

	printSuccess("Serving on %s", f.addr)
	printKeyValue("cache", backend)
	printKeyValue("metrics", fmt.Sprint(f.metrics))
	if len(sources) > 0 {
		printKeyValue("remote fonts", fmt.Sprint(len(sources)))
	}
	printNewline()

	return server.ListenAndServe(ctx, f.addr, server.NewHandler(runner, opts), logger)
}

// serveCache picks the cache backend and describes it.
func serveCache(ctx context.Context, f serveFlags) (cache.Cache, string, error) {
	switch {
	case f.noCache:
		return cache.NewNullCache(), "disabled", nil
	case f.redisAddr != "":
		rc, err := cache.NewRedisCache(ctx, f.redisAddr, os.Getenv("ENGRAVER_REDIS_PASSWORD"), f.redisDB,
			cache.WithRedisPrefix(f.redisPrefix))
		if err != nil {
			return nil, "", err
		}
		return rc, "redis " + f.redisAddr, nil
	case f.memory > 0:
		return cache.NewMemoryCache(f.memory), fmt.Sprintf("memory (%d entries)", f.memory), nil
	}
	c, err := newCache(false)
	if err != nil {
		return nil, "", err
	}
	dir, _ := cacheDir()
	return c, "file " + dir, nil
}
