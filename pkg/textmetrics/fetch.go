package textmetrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/matzehuels/engraver/pkg/cache"
)

const (
	// DefaultFontTTL is how long fetched font files stay cached.
	DefaultFontTTL = 30 * 24 * time.Hour

	// MaxFontBytes bounds a fetched font file.
	MaxFontBytes = 32 << 20
)

// FontSource names a font file to fetch for a family and style.
type FontSource struct {
	Family string
	Style  string
	URL    string
}

// ParseFontSource parses "family[:style]=url", e.g.
// "Alegreya:italic=https://example.com/Alegreya-Italic.ttf".
func ParseFontSource(s string) (FontSource, error) {
	name, url, ok := strings.Cut(s, "=")
	if !ok || url == "" {
		return FontSource{}, fmt.Errorf("font source %q: want family[:style]=url", s)
	}
	family, style, _ := strings.Cut(name, ":")
	family = strings.TrimSpace(family)
	if family == "" {
		return FontSource{}, fmt.Errorf("font source %q: missing family", s)
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return FontSource{}, fmt.Errorf("font source %q: url must be http or https", s)
	}
	return FontSource{Family: family, Style: normalizeStyle(style), URL: url}, nil
}

func (f FontSource) String() string {
	return f.Family + ":" + f.Style + "=" + f.URL
}

// SourcesID identifies a set of font sources independent of order. Layouts
// measured with different fonts must not share cache entries.
func SourcesID(sources []FontSource) string {
	if len(sources) == 0 {
		return ""
	}
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.String()
	}
	sort.Strings(names)
	return cache.Hash([]byte(strings.Join(names, "\n")))[:12]
}

// Fetcher downloads font files over HTTP. Files are kept in Cache, so
// restarts and other replicas sharing the cache skip the download.
type Fetcher struct {
	Client *http.Client
	Cache  cache.Cache
	TTL    time.Duration
}

// NewFetcher returns a fetcher backed by c. A nil cache disables caching.
func NewFetcher(c cache.Cache) *Fetcher {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Fetcher{
		Client: &http.Client{Timeout: 30 * time.Second},
		Cache:  c,
		TTL:    DefaultFontTTL,
	}
}

// Loader returns a Loader that fetches url.
func (f *Fetcher) Loader(ctx context.Context, url string) Loader {
	return func() ([]byte, error) { return f.Fetch(ctx, url) }
}

// Fetch returns the font file at url. Network failures, 429 and 5xx
// responses are retried with backoff.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := cache.Key(cache.KindFont, url)
	if data, hit, err := f.Cache.Get(ctx, key); err == nil && hit {
		return data, nil
	}

	var data []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch font %s: %w", url, err)
	}
	_ = f.Cache.Set(ctx, key, data, f.TTL)
	return data, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, cache.Retryable(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, cache.Retryable(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFontBytes+1))
	if err != nil {
		return nil, cache.Retryable(err)
	}
	if len(data) > MaxFontBytes {
		return nil, fmt.Errorf("font exceeds %d bytes", MaxFontBytes)
	}
	return data, nil
}

// RequireSource loads a font from its URL in the background.
func (s *Service) RequireSource(ctx context.Context, f *Fetcher, src FontSource) {
	s.Require(src.Family, src.Style, f.Loader(ctx, src.URL))
}
