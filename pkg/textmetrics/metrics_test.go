package textmetrics

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"
)

func TestBoundingBoxLoaded(t *testing.T) {
	s := New(nil)
	defer s.Close()
	if err := s.RequireData(BuiltinFamily, StyleNormal, goregular.TTF); err != nil {
		t.Fatalf("RequireData() error: %v", err)
	}

	small, ok := s.BoundingBox("Go", "Allegro", 10, "")
	if !ok {
		t.Fatal("BoundingBox() ok = false for loaded font")
	}
	if small.Right <= small.Left || small.Top <= 0 {
		t.Errorf("box = %+v", small)
	}

	large, _ := s.BoundingBox("go", "Allegro", 20, "normal")
	ratio := (large.Right - large.Left) / (small.Right - small.Left)
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("width ratio at double size = %v, want about 2", ratio)
	}

	// Missing styles fall back to the regular face.
	if _, ok := s.BoundingBox("Go", "Allegro", 10, "bold"); !ok {
		t.Error("bold fallback ok = false")
	}
}

func TestBoundingBoxDegraded(t *testing.T) {
	s := New(nil)
	defer s.Close()

	box, ok := s.BoundingBox("Alegreya", "rit.", 12, "italic")
	if ok {
		t.Error("BoundingBox() ok = true for missing font")
	}
	if box.Right <= 0 || box.Top <= 0 {
		t.Errorf("estimate = %+v", box)
	}
}

func TestRequireAsyncAndWhenReady(t *testing.T) {
	s := New(nil)
	release := make(chan struct{})
	s.Require("Go", StyleBold, func() ([]byte, error) {
		<-release
		return goregular.TTF, nil
	})

	if s.Ready() {
		t.Error("Ready() = true with a pending load")
	}

	var fired atomic.Int32
	done := make(chan struct{})
	s.WhenReady(func() {
		fired.Add(1)
		close(done)
	})
	if fired.Load() != 0 {
		t.Fatal("WhenReady() fired before the load settled")
	}

	close(release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WhenReady() callback never fired")
	}
	if !s.Loaded("Go", "bold") {
		t.Error("Loaded() = false after load")
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	// Already ready: runs immediately.
	ran := false
	s.WhenReady(func() { ran = true })
	if !ran {
		t.Error("WhenReady() on a ready service did not run")
	}
}

func TestRequirePendingIsNoop(t *testing.T) {
	s := New(nil)
	release := make(chan struct{})
	var calls atomic.Int32
	load := func() ([]byte, error) {
		calls.Add(1)
		<-release
		return goregular.TTF, nil
	}
	s.Require("Go", StyleItalic, load)
	s.Require("Go", StyleItalic, load)
	close(release)
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("loader calls = %d, want 1", got)
	}
	if !s.Loaded("Go", StyleItalic) {
		t.Error("Loaded() = false after load")
	}
}

func TestRequireFailure(t *testing.T) {
	s := New(nil)
	s.Require("Broken", StyleNormal, func() ([]byte, error) {
		return nil, errors.New("no such file")
	})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !s.Ready() {
		t.Error("Ready() = false after a failed load settled")
	}
	if _, ok := s.BoundingBox("Broken", "x", 10, ""); ok {
		t.Error("BoundingBox() ok = true for failed font")
	}
}

func TestRequireBuiltin(t *testing.T) {
	s := New(nil)
	s.RequireBuiltin()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	for _, style := range []string{StyleNormal, StyleBold, StyleItalic, StyleBoldItalic} {
		if !s.Loaded(BuiltinFamily, style) {
			t.Errorf("Loaded(Go, %s) = false", style)
		}
	}
}

func TestRequireDataInvalid(t *testing.T) {
	s := New(nil)
	if err := s.RequireData("Bad", "", []byte("not a font")); err == nil {
		t.Error("RequireData() with garbage = nil error")
	}
}
