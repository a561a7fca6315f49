package cli

import (
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/matzehuels/engraver/pkg/cache"
)

func TestServeCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	mr := miniredis.RunT(t)

	tests := []struct {
		name   string
		flags  serveFlags
		want   string
		isType func(cache.Cache) bool
	}{
		{"disabled", serveFlags{noCache: true, redisAddr: mr.Addr()}, "disabled",
			func(c cache.Cache) bool { _, ok := c.(cache.NullCache); return ok }},
		{"redis", serveFlags{redisAddr: mr.Addr(), redisPrefix: "test:"}, "redis ",
			func(c cache.Cache) bool { _, ok := c.(*cache.RedisCache); return ok }},
		{"memory", serveFlags{memory: 8}, "memory (8 entries)",
			func(c cache.Cache) bool { _, ok := c.(*cache.MemoryCache); return ok }},
		{"file", serveFlags{}, "file ",
			func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, desc, err := serveCache(t.Context(), tt.flags)
			if err != nil {
				t.Fatalf("serveCache() error = %v", err)
			}
			defer c.Close()
			if !strings.HasPrefix(desc, tt.want) {
				t.Errorf("description = %q, want prefix %q", desc, tt.want)
			}
			if !tt.isType(c) {
				t.Errorf("serveCache() = %T", c)
			}
		})
	}
}

func TestServeCacheRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, _, err := serveCache(t.Context(), serveFlags{redisAddr: addr}); err == nil {
		t.Error("serveCache() with unreachable redis = nil error")
	}
}

func TestServeRejectsBadFont(t *testing.T) {
	err := newTestCLI(t).runServe(t.Context(), serveFlags{fonts: []string{"nourl"}})
	if err == nil {
		t.Error("runServe() with a bad --font = nil error")
	}
}
