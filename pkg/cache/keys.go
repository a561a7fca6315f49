package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Entry kinds. A key is "<kind>:<hex>", optionally behind a scope prefix.
const (
	KindLayout = "layout"
	KindExport = "export"
	KindFont   = "font"
)

// LayoutKeyOpts are the engine settings that change a layout.
type LayoutKeyOpts struct {
	JustifyFinalLine bool   `json:"justify_final_line"`
	Fonts            string `json:"fonts,omitempty"`
	Version          string `json:"version,omitempty"`
}

// ExportKeyOpts select an encoding of a layout.
type ExportKeyOpts struct {
	Format string `json:"format"`
}

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of a score document.
	LayoutKey(scoreHash string, opts LayoutKeyOpts) string

	// ExportKey identifies one encoding of a layout.
	ExportKey(layoutKey string, opts ExportKeyOpts) string
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) LayoutKey(scoreHash string, opts LayoutKeyOpts) string {
	return Key(KindLayout, scoreHash, opts)
}

func (DefaultKeyer) ExportKey(layoutKey string, opts ExportKeyOpts) string {
	return Key(KindExport, layoutKey, opts)
}

// ScopedKeyer puts a prefix in front of another keyer's keys. Deployments
// sharing one Redis, or layouts measured with different fonts, use distinct
// scopes.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer scopes inner under prefix. A nil inner uses DefaultKeyer.
//
//	keyer := cache.NewScopedKeyer(nil, "staging:")
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(scoreHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(scoreHash, opts)
}

func (k *ScopedKeyer) ExportKey(layoutKey string, opts ExportKeyOpts) string {
	return k.prefix + k.inner.ExportKey(layoutKey, opts)
}

// Key is kind:sha256(json(parts)).
func Key(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	sum := sha256.Sum256(data)
	return kind + ":" + hex.EncodeToString(sum[:])
}

// Hash is the hex SHA-256 of data. Score documents are keyed by the hash of
// their raw bytes.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
