package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/engraver/pkg/buildinfo"
	"github.com/matzehuels/engraver/pkg/cache"
	"github.com/matzehuels/engraver/pkg/pipeline"
	"github.com/matzehuels/engraver/pkg/textmetrics"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "engraver"

	// envRedisAddr selects the shared cache for serve.
	envRedisAddr = "ENGRAVER_REDIS_ADDR"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetLogFormat switches the logger's output format.
func (c *CLI) SetLogFormat(format string) error {
	f, err := parseLogFormat(format)
	if err != nil {
		return err
	}
	c.Logger.SetFormatter(f)
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var logFormat string
	root := &cobra.Command{
		Use:          appName,
		Short:        "Engraver lays out music scores",
		Long:         `Engraver computes the positions of every symbol in a score: measures are spaced, stacked into systems, and justified to the page width. Layouts are written as JSON or YAML for a renderer to draw.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.SetLogFormat(logFormat); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&logFormat, "log-format", LogFormatText, "log format: text, json, logfmt")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.symbolsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The returned close func
// releases the cache and the font service.
func (c *CLI) newRunner(ctx context.Context, noCache bool, fonts string, sources []textmetrics.FontSource) (*pipeline.Runner, func(), error) {
	cc, err := newCache(noCache)
	if err != nil {
		return nil, nil, err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)
	svc := c.loadFonts(ctx, fonts, sources, cc)
	if svc != nil {
		runner.Metrics = svc
		runner.Keyer = fontsKeyer(sources)
	}
	return runner, func() {
		_ = runner.Close()
		if svc != nil {
			_ = svc.Close()
		}
	}, nil
}

// loadFonts loads the builtin fonts plus any remote sources and waits for
// them, so one-shot commands never produce approximate layouts. It returns
// nil for FontsEstimate.
func (c *CLI) loadFonts(ctx context.Context, fonts string, sources []textmetrics.FontSource, cc cache.Cache) *textmetrics.Service {
	if fonts == pipeline.FontsEstimate {
		return nil
	}
	svc := textmetrics.New(c.Logger)
	svc.RequireBuiltin()
	requireSources(ctx, svc, sources, cc)
	ready := make(chan struct{})
	svc.WhenReady(func() { close(ready) })
	<-ready
	return svc
}

func requireSources(ctx context.Context, svc *textmetrics.Service, sources []textmetrics.FontSource, cc cache.Cache) {
	if len(sources) == 0 {
		return
	}
	fetcher := textmetrics.NewFetcher(cc)
	for _, src := range sources {
		svc.RequireSource(ctx, fetcher, src)
	}
}

// fontsKeyer keeps layouts measured with extra fonts apart from builtin ones.
func fontsKeyer(sources []textmetrics.FontSource) cache.Keyer {
	id := textmetrics.SourcesID(sources)
	if id == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, "fonts-"+id+":")
}

// parseFontSources parses repeated --font values.
func parseFontSources(values []string) ([]textmetrics.FontSource, error) {
	var out []textmetrics.FontSource
	for _, v := range values {
		src, err := textmetrics.ParseFontSource(v)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/engraver/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return cache.DefaultDir(), nil
	}
	return filepath.Join(home, ".cache", appName), nil
}
