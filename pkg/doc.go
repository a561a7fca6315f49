// Package pkg provides the core libraries for Engraver score layout.
//
// # Overview
//
// Engraver positions the symbols of a music score (notes, barlines,
// attributes, directions, harmonies) into measures and lines. Simultaneous
// symbols across voices and staves line up vertically, horizontal space
// follows durations, and every line is justified to the page width. The
// result is a set of coordinates in tenths that a renderer draws from.
//
// The typical data flow:
//
//	Score document (JSON, YAML, TOML)
//	         ↓
//	    [scorefile] package (decode + build symbols through the registry)
//	         ↓
//	    [engine] package (measure layout → line layout → justification)
//	         ↓
//	    [export] package (serializable layout)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/engraver/pkg/engine"
//	    "github.com/matzehuels/engraver/pkg/export"
//	    "github.com/matzehuels/engraver/pkg/scorefile"
//	    "github.com/matzehuels/engraver/pkg/symbols"
//	)
//
//	sc, _ := scorefile.Import("minuet.yaml", symbols.NewRegistry())
//	res, _ := engine.New(engine.Options{}).Layout(ctx, sc)
//	_ = export.Write(os.Stdout, export.FromResult(res), export.FormatJSON)
//
// # Main Packages
//
// ## Layout
//
// [engine/model] - The symbol contract: Symbol, Cursor, Layout, bounding
// boxes, merge and expand policies, and the cross-voice Merge and Align.
//
// [engine/measure] - Lays out one measure: normalizes the time grid, walks
// columns across segments and merges them into a combined layout.
//
// [engine/line] - Lays out one line: stacks staves, places measures left to
// right and caches measure and line layouts between passes.
//
// [engine/justify] - Stretches a line to the page width.
//
// [engine] - Lays out a whole score line by line.
//
// ## Document
//
// [score], [header] - The document model walked by the engine.
//
// [symbols] - Built-in symbol variants and the default registry.
//
// [textmetrics] - Text bounding boxes from real fonts, loaded in the
// background.
//
// ## Infrastructure
//
// [pipeline] - parse → layout → export with caching, shared by the CLI and
// the HTTP server.
//
// [cache] - File and Redis caches for layouts and exports.
//
// [server] - HTTP API.
//
// [observability] - Hooks for metrics, with a Prometheus implementation.
package pkg
