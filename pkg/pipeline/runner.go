package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/engraver/pkg/cache"
	"github.com/matzehuels/engraver/pkg/engine/model"
	"github.com/matzehuels/engraver/pkg/engine/registry"
	"github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/export"
	"github.com/matzehuels/engraver/pkg/observability"
	"github.com/matzehuels/engraver/pkg/symbols"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout = cache.KindLayout
	keyTypeExport = cache.KindExport
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators: it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Registry *registry.Registry
	Logger   *log.Logger

	// Metrics measures text when Options.Fonts is FontsBuiltin. Nil
	// estimates every text box.
	Metrics model.TextMetrics
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The runner uses the standard symbol registry; replace Registry to add symbols.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Registry: symbols.NewRegistry(),
		Logger:   logger,
	}
}

// Execute runs the complete parse → layout → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, data []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid options: %s", errors.UserMessage(err))
	}

	result := &Result{ScoreHash: cache.Hash(data)}
	layoutKey := r.Keyer.LayoutKey(result.ScoreHash, opts.LayoutKeyOpts())
	exportKey := r.Keyer.ExportKey(layoutKey, opts.ExportKeyOpts())

	if !opts.Refresh {
		if out, ok := r.lookup(ctx, exportKey, keyTypeExport); ok {
			result.Output = out
			result.CacheInfo.ExportHit = true
			return result, nil
		}
	}

	l, err := r.LayoutDocument(ctx, data, layoutKey, opts, result)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats.Lines = len(l.Lines)
	result.Stats.Elements = l.Elements()

	exportStart := time.Now()
	out, err := Encode(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Output = out
	result.Stats.ExportTime = time.Since(exportStart)
	if cacheable(opts, result.Approximate) {
		r.store(ctx, exportKey, keyTypeExport, out, cache.TTLExport)
	}

	opts.Logger.Info("exported layout",
		"format", opts.OutputFormat,
		"bytes", len(out),
		"duration", result.Stats.ExportTime)
	return result, nil
}

// LayoutDocument returns the layout document for data, from cache when
// possible. Stage timings and cache info are recorded on result.
func (r *Runner) LayoutDocument(ctx context.Context, data []byte, layoutKey string, opts Options, result *Result) (*export.Layout, error) {
	if !opts.Refresh {
		if cached, ok := r.lookup(ctx, layoutKey, keyTypeLayout); ok {
			l, err := unmarshalLayout(cached)
			if err == nil {
				result.CacheInfo.LayoutHit = true
				return l, nil
			}
			// Unreadable entries are recomputed and overwritten.
			opts.Logger.Warn("discarding cached layout", "err", err)
		}
	}

	parseStart := time.Now()
	s, err := Parse(ctx, data, r.Registry, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Measures = len(s.Measures)

	layoutStart := time.Now()
	res, err := GenerateLayout(ctx, s, r.Metrics, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Approximate = res.Approximate

	opts.Logger.Info("computed layout",
		"measures", len(s.Measures),
		"lines", len(res.Lines),
		"approximate", res.Approximate,
		"duration", result.Stats.LayoutTime)

	l := export.FromResult(res)
	if cacheable(opts, res.Approximate) {
		if encoded, err := marshalLayout(l); err == nil {
			r.store(ctx, layoutKey, keyTypeLayout, encoded, cache.TTLLayout)
		}
	}
	return l, nil
}

// cacheable reports whether a result may be stored. Estimated text boxes are
// final under FontsEstimate; under FontsBuiltin they mean a font was still
// loading.
func cacheable(opts Options, approximate bool) bool {
	return !approximate || opts.Fonts == FontsEstimate
}

// lookup reads key and reports the outcome to the cache hooks. Cache errors
// count as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
