// Package server exposes the layout pipeline over HTTP.
//
// Routes:
//
//	POST /v1/layout   lay out the score document in the request body
//	GET  /v1/symbols  list the symbol types the registry can build
//	GET  /healthz     liveness probe
//	GET  /metrics     Prometheus metrics, when a gatherer is configured
//
// POST /v1/layout takes its options from the query string: format (input
// encoding, default from Content-Type, else json), output (json or yaml),
// fonts (builtin or estimate), justify_final_line and refresh.
//
// # Usage
//
//	h := server.NewHandler(runner, server.Options{Gatherer: prometheus.DefaultGatherer})
//	err := server.ListenAndServe(ctx, ":8080", h, logger)
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/engraver/pkg/buildinfo"
	engerrors "github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/export"
	"github.com/matzehuels/engraver/pkg/observability"
	"github.com/matzehuels/engraver/pkg/pipeline"
	"github.com/matzehuels/engraver/pkg/scorefile"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 8 << 20

// Response headers set by POST /v1/layout.
const (
	HeaderCache       = "X-Engraver-Cache"
	HeaderApproximate = "X-Engraver-Approximate"
	HeaderScoreHash   = "X-Engraver-Score-Hash"
)

// Options configures the handler.
type Options struct {
	// MaxBodyBytes caps request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64

	// Gatherer serves /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer

	Logger *log.Logger
}

type server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
}

// NewHandler returns the router for runner.
func NewHandler(runner *pipeline.Runner, opts Options) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &server{runner: runner, opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/healthz", s.health)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.layout)
		r.Get("/symbols", s.symbols)
	})
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// instrument reports every request to the HTTP hooks, labeled by route
// pattern rather than raw path.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, time.Since(start))
	})
}

type healthBody struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Build: buildinfo.Get()})
}

func (s *server) symbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"symbols": s.runner.Registry.Tags()})
}

func (s *server) layout(w http.ResponseWriter, r *http.Request) {
	opts, err := layoutOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Logger = s.logger

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "", fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "", "read body: "+err.Error())
		return
	}

	res, err := s.runner.Execute(r.Context(), data, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	cacheState := "miss"
	switch {
	case res.CacheInfo.ExportHit:
		cacheState = "export"
	case res.CacheInfo.LayoutHit:
		cacheState = "layout"
	}
	w.Header().Set(HeaderCache, cacheState)
	w.Header().Set(HeaderApproximate, strconv.FormatBool(res.Approximate))
	w.Header().Set(HeaderScoreHash, res.ScoreHash)
	w.Header().Set("Content-Type", contentType(opts.OutputFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Output)
}

// layoutOptions reads pipeline options from the query string.
func layoutOptions(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Fonts:        q.Get("fonts"),
		OutputFormat: export.Format(q.Get("output")),
	}

	format := q.Get("format")
	if format == "" {
		format = formatFromContentType(r.Header.Get("Content-Type"))
	}
	in, err := scorefile.ParseFormat(format)
	if err != nil {
		return opts, err
	}
	opts.InputFormat = in

	for name, dst := range map[string]*bool{
		"justify_final_line": &opts.JustifyFinalLine,
		"refresh":            &opts.Refresh,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, engerrors.New(engerrors.ErrCodeInvalidInput, "%s: %q is not a boolean", name, v)
		}
		*dst = b
	}
	return opts, nil
}

func formatFromContentType(ct string) string {
	ct = strings.ToLower(ct)
	switch {
	case strings.Contains(ct, "yaml"):
		return "yaml"
	case strings.Contains(ct, "toml"):
		return "toml"
	}
	return "json"
}

func contentType(f export.Format) string {
	if f == export.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// fail maps an error code to a status. Bad documents are the client's fault;
// invariant errors mean the document asks for something the engine cannot
// lay out.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := engerrors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case engerrors.ErrCodeInvalidInput, engerrors.ErrCodeInvalidFormat,
		engerrors.ErrCodeInvalidSymbol, engerrors.ErrCodeSymbolNotFound:
		status = http.StatusBadRequest
	case engerrors.ErrCodeInvariant, engerrors.ErrCodeUnsupported:
		status = http.StatusUnprocessableEntity
	}
	if code == "" && errors.Is(err, context.Canceled) {
		// Client went away.
		return
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("layout failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
	}
	writeError(w, status, string(code), err.Error())
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves h on addr until ctx is canceled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
