// Package cli implements the engraver command-line interface.
//
// This package provides commands for laying out score documents, browsing
// the result, serving layouts over HTTP, and managing the local layout cache.
// The CLI is built using cobra and supports verbose logging via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Lay out a score document and write the layout as JSON or YAML
//   - inspect: Browse the measures of a laid-out score
//   - serve: Run the HTTP layout API
//   - symbols: List the symbol types a document may use
//   - cache: Manage the local layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to long-running commands.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/engraver/pkg/pipeline"
)

// Log formats accepted by --log-format.
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatLogfmt = "logfmt"
)

// newLogger creates a text logger with timestamps as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLogFormat maps a --log-format value to a formatter. serve is usually
// run with json or logfmt so its output can be collected.
func parseLogFormat(s string) (log.Formatter, error) {
	switch strings.ToLower(s) {
	case "", LogFormatText:
		return log.TextFormatter, nil
	case LogFormatJSON:
		return log.JSONFormatter, nil
	case LogFormatLogfmt:
		return log.LogfmtFormatter, nil
	}
	return log.TextFormatter, fmt.Errorf("unknown log format %q (want %s, %s or %s)", s, LogFormatText, LogFormatJSON, LogFormatLogfmt)
}

// progress logs how long a command and its stages took. Not safe for
// concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
	last   time.Time
}

func newProgress(l *log.Logger) *progress {
	now := time.Now()
	return &progress{logger: l, start: now, last: now}
}

// stage logs the time since the previous stage at debug level.
func (p *progress) stage(name string) {
	now := time.Now()
	p.logger.Debug("stage", "name", name, "took", now.Sub(p.last).Round(time.Microsecond))
	p.last = now
}

// done logs msg along with the total elapsed time, e.g. "Layout written (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logResult writes a pipeline result's statistics at debug level.
func logResult(l *log.Logger, res *pipeline.Result) {
	switch {
	case res.CacheInfo.ExportHit:
		l.Debug("served from export cache", "score", shortHash(res.ScoreHash))
		return
	case res.CacheInfo.LayoutHit:
		l.Debug("served from layout cache", "score", shortHash(res.ScoreHash), "export", res.Stats.ExportTime)
		return
	}
	l.Debug("laid out",
		"score", shortHash(res.ScoreHash),
		"measures", res.Stats.Measures,
		"lines", res.Stats.Lines,
		"elements", res.Stats.Elements,
		"parse", res.Stats.ParseTime,
		"layout", res.Stats.LayoutTime,
		"export", res.Stats.ExportTime,
		"approximate", res.Approximate,
	)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
