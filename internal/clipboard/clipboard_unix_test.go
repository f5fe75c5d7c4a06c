//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func resetInit(t *testing.T) {
	t.Helper()
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")
	initOnce = sync.Once{}
	initErr = nil
}

func TestWriteTextWithoutDisplay(t *testing.T) {
	resetInit(t)

	err := WriteText("hello world")
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}

func TestWriteImageWithoutDisplay(t *testing.T) {
	resetInit(t)

	err := WriteImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
}

func TestInitFailureIsSticky(t *testing.T) {
	resetInit(t)

	if err := WriteText("first"); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}

	// The display showing up later does not help: initialization runs once.
	t.Setenv("DISPLAY", ":0")
	if _, err := ReadText(); !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected cached errNoDisplay, got %v", err)
	}
}
