// Package textmetrics measures rendered text for layout.
//
// A Service owns parsed fonts and answers bounding-box queries without ever
// blocking: text in a font that is not loaded yet gets an estimated box and a
// warning, and callers re-run layout once the font arrives. Fonts are loaded
// on background goroutines through Require; WhenReady callbacks fire once
// every pending load has settled.
//
// # Usage
//
//	svc := textmetrics.New(logger)
//	defer svc.Close()
//	svc.RequireBuiltin()
//	svc.WhenReady(func() { engine.Invalidate() })
//
//	box, ok := svc.BoundingBox("Go", "Allegro", 12, "bold")
package textmetrics

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/engraver/pkg/engine/model"
)

// Font styles.
const (
	StyleNormal     = "normal"
	StyleBold       = "bold"
	StyleItalic     = "italic"
	StyleBoldItalic = "bold-italic"
)

// BuiltinFamily is the family registered by RequireBuiltin.
const BuiltinFamily = "Go"

// Loader fetches font file bytes.
type Loader func() ([]byte, error)

// Service is safe for concurrent use.
type Service struct {
	mu        sync.Mutex
	fonts     map[string]*opentype.Font
	failed    map[string]error
	warned    map[string]bool
	loading   map[string]bool
	pending   int
	callbacks []func()
	wg        sync.WaitGroup
	closed    bool
	logger    *log.Logger
}

// New returns a service with no fonts loaded. A nil logger discards output.
func New(logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		fonts:   make(map[string]*opentype.Font),
		failed:  make(map[string]error),
		warned:  make(map[string]bool),
		loading: make(map[string]bool),
		logger:  logger,
	}
}

func key(family, style string) string {
	return strings.ToLower(family) + "/" + normalizeStyle(style)
}

func normalizeStyle(style string) string {
	switch strings.ToLower(style) {
	case "bold":
		return StyleBold
	case "italic":
		return StyleItalic
	case "bold-italic", "bolditalic", "bold italic":
		return StyleBoldItalic
	}
	return StyleNormal
}

// RequireData parses a font synchronously.
func (s *Service) RequireData(family, style string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s %s: %w", family, style, err)
	}
	s.mu.Lock()
	s.fonts[key(family, style)] = f
	delete(s.warned, key(family, style))
	s.mu.Unlock()
	return nil
}

// Require loads a font in the background. Requiring a font that is loaded or
// pending is a no-op.
func (s *Service) Require(family, style string, load Loader) {
	k := key(family, style)
	s.mu.Lock()
	if s.closed || s.fonts[k] != nil || s.loading[k] {
		s.mu.Unlock()
		return
	}
	s.loading[k] = true
	s.pending++
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		data, err := load()
		if err == nil {
			err = s.RequireData(family, style, data)
		}
		s.settle(k, err)
	}()
}

func (s *Service) settle(k string, err error) {
	s.mu.Lock()
	delete(s.loading, k)
	if err != nil {
		s.failed[k] = err
		s.logger.Warn("font failed to load", "font", k, "err", err)
	} else {
		s.logger.Debug("font loaded", "font", k)
	}
	s.pending--
	var ready []func()
	if s.pending == 0 {
		ready, s.callbacks = s.callbacks, nil
	}
	s.mu.Unlock()

	for _, cb := range ready {
		cb()
	}
}

// RequireBuiltin loads the Go font family in all four styles.
func (s *Service) RequireBuiltin() {
	builtins := map[string][]byte{
		StyleNormal:     goregular.TTF,
		StyleBold:       gobold.TTF,
		StyleItalic:     goitalic.TTF,
		StyleBoldItalic: gobolditalic.TTF,
	}
	for style, data := range builtins {
		s.Require(BuiltinFamily, style, func() ([]byte, error) { return data, nil })
	}
}

// WhenReady calls cb once no loads are pending. If none are, cb runs now.
func (s *Service) WhenReady(cb func()) {
	s.mu.Lock()
	if s.pending > 0 {
		s.callbacks = append(s.callbacks, cb)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	cb()
}

// Ready reports whether no loads are pending.
func (s *Service) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending == 0
}

// Loaded reports whether the font is available for measuring.
func (s *Service) Loaded(family, style string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fonts[key(family, style)] != nil
}

// BoundingBox measures text at size points. The box is in points relative to
// the baseline origin, y up. ok is false when the font is not loaded and the
// box is an estimate.
func (s *Service) BoundingBox(family, text string, size float64, style string) (model.TextBox, bool) {
	k := key(family, style)
	s.mu.Lock()
	f := s.fonts[k]
	if f == nil {
		// Fall back to the family's regular face before estimating.
		f = s.fonts[key(family, StyleNormal)]
	}
	if f == nil {
		if !s.warned[k] {
			s.warned[k] = true
			s.logger.Warn("font not loaded, estimating text size", "font", k)
		}
		s.mu.Unlock()
		return estimate(text, size), false
	}
	s.mu.Unlock()

	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingNone})
	if err != nil {
		s.logger.Warn("font face failed", "font", k, "err", err)
		return estimate(text, size), false
	}
	defer face.Close()

	bounds, advance := font.BoundString(face, text)
	return model.TextBox{
		Left:   fixedToFloat(bounds.Min.X),
		Right:  max(fixedToFloat(advance), fixedToFloat(bounds.Max.X)),
		Top:    -fixedToFloat(bounds.Min.Y),
		Bottom: -fixedToFloat(bounds.Max.Y),
	}, true
}

// Close waits for pending loads. Later Require calls are ignored.
func (s *Service) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func estimate(text string, size float64) model.TextBox {
	return model.TextBox{
		Left:   0,
		Right:  model.EstimateTextWidth(text, size),
		Top:    size * 0.75,
		Bottom: -size * 0.25,
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
