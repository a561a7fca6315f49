// Package export converts engine results into the document handed to
// renderers.
//
// The document lists lines, their measures, and every positioned element with
// its symbol type, render class, bounding boxes and resolved detail. All
// coordinates are in tenths. Element x is relative to the measure origin;
// element y is relative to the top line of its staff, whose y is in the
// measure's origin_y.
//
// # Usage
//
//	doc := export.FromResult(res)
//	err := export.Write(os.Stdout, doc, export.FormatJSON)
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/engraver/pkg/engine"
	"github.com/matzehuels/engraver/pkg/engine/line"
	"github.com/matzehuels/engraver/pkg/engine/measure"
	"github.com/matzehuels/engraver/pkg/errors"
	"github.com/matzehuels/engraver/pkg/symbols"
)

// Format is an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q (use json or yaml)", s)
}

// Layout is a laid-out score.
type Layout struct {
	Title       string      `json:"title,omitempty" yaml:"title,omitempty"`
	Composer    string      `json:"composer,omitempty" yaml:"composer,omitempty"`
	PageWidth   float64     `json:"page_width" yaml:"page_width"`
	PageHeight  float64     `json:"page_height" yaml:"page_height"`
	Bounds      line.Bounds `json:"bounds" yaml:"bounds"`
	Approximate bool        `json:"approximate,omitempty" yaml:"approximate,omitempty"`
	Lines       []Line      `json:"lines" yaml:"lines"`
}

// Line is one system.
type Line struct {
	Index    int       `json:"index" yaml:"index"`
	Top      float64   `json:"top" yaml:"top"`
	Bottom   float64   `json:"bottom" yaml:"bottom"`
	Width    float64   `json:"width" yaml:"width"`
	Measures []Measure `json:"measures" yaml:"measures"`
}

// Measure is one measure on a line.
type Measure struct {
	UUID     string               `json:"uuid" yaml:"uuid"`
	Number   string               `json:"number" yaml:"number"`
	OriginX  float64              `json:"origin_x" yaml:"origin_x"`
	OriginY  map[string][]float64 `json:"origin_y" yaml:"origin_y"`
	Width    float64              `json:"width" yaml:"width"`
	Segments []Segment            `json:"segments" yaml:"segments"`
}

// Segment is one voice or staff of a part.
type Segment struct {
	Part     string    `json:"part" yaml:"part"`
	Owner    string    `json:"owner" yaml:"owner"`
	Number   int       `json:"number" yaml:"number"`
	Elements []Element `json:"elements" yaml:"elements"`
}

// Element is one positioned symbol.
type Element struct {
	Type     string        `json:"type,omitempty" yaml:"type,omitempty"`
	Class    string        `json:"class" yaml:"class"`
	X        float64       `json:"x" yaml:"x"`
	Y        float64       `json:"y" yaml:"y"`
	Division int           `json:"division" yaml:"division"`
	Staff    int           `json:"staff" yaml:"staff"`
	Boxes    []BoundingBox `json:"boxes,omitempty" yaml:"boxes,omitempty"`
	Detail   any           `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// BoundingBox is a box relative to its element.
type BoundingBox struct {
	Left   float64 `json:"left" yaml:"left"`
	Right  float64 `json:"right" yaml:"right"`
	Top    float64 `json:"top" yaml:"top"`
	Bottom float64 `json:"bottom" yaml:"bottom"`
}

// FromResult converts an engine result.
func FromResult(res *engine.Result) *Layout {
	out := &Layout{
		Bounds:      res.Bounds,
		Approximate: res.Approximate,
		Lines:       make([]Line, 0, len(res.Lines)),
	}
	if h := res.Header; h != nil {
		out.Title = h.Title
		out.Composer = h.Composer
		out.PageWidth = h.Page.Width
		out.PageHeight = h.Page.Height
	}
	for _, ll := range res.Lines {
		l := Line{Index: ll.Line, Top: ll.Top, Bottom: ll.Bottom, Width: ll.Width}
		for _, ml := range ll.Measures {
			l.Measures = append(l.Measures, fromMeasure(ml))
		}
		out.Lines = append(out.Lines, l)
	}
	return out
}

func fromMeasure(ml *measure.MeasureLayout) Measure {
	m := Measure{
		UUID:    ml.UUID.String(),
		Number:  ml.Number,
		OriginX: ml.OriginX,
		OriginY: ml.OriginY,
		Width:   ml.Width,
	}
	for i, key := range ml.Segments {
		seg := Segment{Part: key.Part, Owner: key.OwnerType.String(), Number: key.Owner}
		for _, l := range ml.Elements[i] {
			e := Element{
				Class:    l.RenderClass.String(),
				X:        l.X,
				Y:        l.Y,
				Division: l.Division,
				Staff:    l.Staff,
				Detail:   l.Detail,
			}
			if l.Symbol != nil {
				e.Type = symbols.TagOf(l.Symbol)
			}
			for _, b := range l.BoundingBoxes {
				e.Boxes = append(e.Boxes, BoundingBox(b))
			}
			seg.Elements = append(seg.Elements, e)
		}
		m.Segments = append(m.Segments, seg)
	}
	return m
}

// Elements counts the elements of every line.
func (l *Layout) Elements() int {
	n := 0
	for _, ln := range l.Lines {
		for _, m := range ln.Measures {
			for _, s := range m.Segments {
				n += len(s.Elements)
			}
		}
	}
	return n
}

// Write encodes l to w.
func Write(w io.Writer, l *Layout, f Format) error {
	switch f {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", f)
}

// Read decodes a layout written by Write. Element details come back as
// generic maps.
func Read(r io.Reader, f Format) (*Layout, error) {
	var l Layout
	var err error
	switch f {
	case FormatJSON, "":
		err = json.NewDecoder(r).Decode(&l)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&l)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", f)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	return &l, nil
}
