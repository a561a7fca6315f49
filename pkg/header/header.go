// Package header describes the score-wide information the layout engine
// consumes but does not own: the part list, scaling, page and system
// geometry, and engraving line widths.
//
// All lengths are in tenths (a tenth of the interline space) unless a field
// says otherwise. Default returns an A4-ish portrait header with MusicXML's
// customary 7mm staff height.
package header

// Points per millimeter, used to convert font sizes to tenths.
const PointsPerMM = 72 / 25.4

// Header is the read-only score context shared by every layout pass.
type Header struct {
	Title      string       `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Composer   string       `json:"composer,omitempty" yaml:"composer,omitempty" toml:"composer,omitempty"`
	PartList   []ScorePart  `json:"parts" yaml:"parts" toml:"parts"`
	Scaling    Scaling      `json:"scaling" yaml:"scaling" toml:"scaling"`
	Page       PageLayout   `json:"page" yaml:"page" toml:"page"`
	System     SystemLayout `json:"system" yaml:"system" toml:"system"`
	Appearance Appearance   `json:"appearance" yaml:"appearance" toml:"appearance"`
}

// ScorePart is one entry of the part list.
type ScorePart struct {
	ID   string `json:"id" yaml:"id" toml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
}

// Scaling relates millimeters to tenths.
type Scaling struct {
	Millimeters float64 `json:"millimeters" yaml:"millimeters" toml:"millimeters"`
	Tenths      float64 `json:"tenths" yaml:"tenths" toml:"tenths"`
}

// MMToTenths converts millimeters to tenths.
func (s Scaling) MMToTenths(mm float64) float64 {
	if s.Millimeters == 0 {
		return mm
	}
	return mm / s.Millimeters * s.Tenths
}

// PointsToTenths converts a font size in points to tenths.
func (s Scaling) PointsToTenths(pt float64) float64 {
	return s.MMToTenths(pt / PointsPerMM)
}

// Margins are distances from the respective edge, in tenths.
type Margins struct {
	Left   float64 `json:"left" yaml:"left" toml:"left"`
	Right  float64 `json:"right" yaml:"right" toml:"right"`
	Top    float64 `json:"top" yaml:"top" toml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom" toml:"bottom"`
}

// PageLayout is the printable page geometry.
type PageLayout struct {
	Width   float64 `json:"width" yaml:"width" toml:"width"`
	Height  float64 `json:"height" yaml:"height" toml:"height"`
	Margins Margins `json:"margins" yaml:"margins" toml:"margins"`
}

// SystemLayout positions systems inside the page margins.
// Only the left and right margins are used.
type SystemLayout struct {
	Margins           Margins `json:"margins" yaml:"margins" toml:"margins"`
	SystemDistance    float64 `json:"system_distance" yaml:"system_distance" toml:"system_distance"`
	TopSystemDistance float64 `json:"top_system_distance" yaml:"top_system_distance" toml:"top_system_distance"`
}

// Appearance holds engraving line widths.
type Appearance struct {
	LightBarline float64 `json:"light_barline" yaml:"light_barline" toml:"light_barline"`
	HeavyBarline float64 `json:"heavy_barline" yaml:"heavy_barline" toml:"heavy_barline"`
	StaffLine    float64 `json:"staff_line" yaml:"staff_line" toml:"staff_line"`
}

// Default values, matching common engraving practice.
const (
	DefaultMillimeters    = 7.0
	DefaultTenths         = 40.0
	DefaultPageWidth      = 1219.0
	DefaultPageHeight     = 1724.0
	DefaultPageMargin     = 144.0
	DefaultSystemDistance = 131.0
	DefaultTopDistance    = 70.0
	DefaultLightBarline   = 1.6
	DefaultHeavyBarline   = 5.0
	DefaultStaffLine      = 1.0
)

// Default returns a header with a single part "P1" and default geometry.
func Default() *Header {
	h := &Header{PartList: []ScorePart{{ID: "P1", Name: "Music"}}}
	h.SetDefaults()
	return h
}

// SetDefaults fills zero-valued geometry fields. It never touches the part list.
func (h *Header) SetDefaults() {
	if h.Scaling.Millimeters <= 0 || h.Scaling.Tenths <= 0 {
		h.Scaling = Scaling{Millimeters: DefaultMillimeters, Tenths: DefaultTenths}
	}
	if h.Page.Width <= 0 {
		h.Page.Width = DefaultPageWidth
	}
	if h.Page.Height <= 0 {
		h.Page.Height = DefaultPageHeight
	}
	if h.Page.Margins == (Margins{}) {
		m := DefaultPageMargin
		h.Page.Margins = Margins{Left: m, Right: m, Top: m, Bottom: m}
	}
	if h.System.SystemDistance <= 0 {
		h.System.SystemDistance = DefaultSystemDistance
	}
	if h.System.TopSystemDistance <= 0 {
		h.System.TopSystemDistance = DefaultTopDistance
	}
	if h.Appearance.LightBarline <= 0 {
		h.Appearance.LightBarline = DefaultLightBarline
	}
	if h.Appearance.HeavyBarline <= 0 {
		h.Appearance.HeavyBarline = DefaultHeavyBarline
	}
	if h.Appearance.StaffLine <= 0 {
		h.Appearance.StaffLine = DefaultStaffLine
	}
}

// PartIDs returns the part ids in declaration order.
func (h *Header) PartIDs() []string {
	ids := make([]string, len(h.PartList))
	for i, p := range h.PartList {
		ids[i] = p.ID
	}
	return ids
}

// HasPart reports whether id is in the part list.
func (h *Header) HasPart(id string) bool {
	for _, p := range h.PartList {
		if p.ID == id {
			return true
		}
	}
	return false
}
