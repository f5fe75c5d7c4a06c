package ui

import (
	"context"
	"fmt"
	"image"
	"testing"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/easel/internal/command"
	"github.com/example/easel/internal/editor"
	"github.com/example/easel/internal/scene"
	"github.com/example/easel/internal/theme"
)

func TestOptionsApply(t *testing.T) {
	custom := theme.Default()
	custom.Name = "custom"
	var saved, copied string

	cfg := config{theme: theme.Default(), title: "Easel"}
	for _, opt := range []Option{
		WithTheme(custom),
		WithTitle("shot.png"),
		WithReadOnly(),
		WithOnSave(func(p string) { saved = p }),
		WithOnCopy(func(d string) { copied = d }),
	} {
		opt(&cfg)
	}

	if cfg.theme.Name != "custom" {
		t.Errorf("theme = %q, want custom", cfg.theme.Name)
	}
	if cfg.title != "shot.png" {
		t.Errorf("title = %q, want shot.png", cfg.title)
	}
	if !cfg.readOnly {
		t.Error("readOnly not set")
	}
	cfg.onSave("out.png")
	cfg.onCopy("canvas")
	if saved != "out.png" || copied != "canvas" {
		t.Errorf("callbacks got (%q, %q)", saved, copied)
	}
}

func TestWithThemeIgnoresNil(t *testing.T) {
	cfg := config{theme: theme.Default()}
	WithTheme(nil)(&cfg)
	if cfg.theme == nil {
		t.Fatal("nil theme replaced the default")
	}
}

func TestEditTools(t *testing.T) {
	tools := editTools()
	if tools[0].kind != toolSelect {
		t.Errorf("first tool kind = %d, want select", tools[0].kind)
	}
	for _, tl := range tools {
		if tl.kind == toolShape && tl.shape == "" {
			t.Errorf("shape tool %q has no shape kind", tl.label)
		}
		if tl.label == "" {
			t.Error("tool with empty label")
		}
	}
}

func TestIgnorableStackErr(t *testing.T) {
	for _, err := range []error{
		command.ErrEmptyUndoStack,
		command.ErrEmptyRedoStack,
		command.ErrInvokerLocked,
		fmt.Errorf("undo: %w", command.ErrEmptyUndoStack),
	} {
		if !ignorableStackErr(err) {
			t.Errorf("ignorableStackErr(%v) = false", err)
		}
	}
	if ignorableStackErr(fmt.Errorf("boom")) {
		t.Error("unrelated error reported as ignorable")
	}
}

func TestHitTestPicksTopmostObject(t *testing.T) {
	ed := editor.New(editor.WithSize(200, 200))
	w := &window{ed: ed, view: image.Rect(0, toolbarHeight, 200, 200+toolbarHeight)}

	ctx := context.Background()
	bottom, err := ed.AddShape(ctx, scene.KindRect, 10, 10, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	top, err := ed.AddShape(ctx, scene.KindEllipse, 50, 50, 100, 100)
	if err != nil {
		t.Fatal(err)
	}

	// Overlap region belongs to the later, topmost object.
	id, ok := w.hitTest(image.Point{X: 60, Y: 60})
	if !ok {
		t.Fatal("no hit in overlap region")
	}
	if want, _ := ed.Canvas().IDOf(top); id != want {
		t.Errorf("hit id = %d, want topmost %d", id, want)
	}

	id, ok = w.hitTest(image.Point{X: 15, Y: 15})
	if !ok {
		t.Fatal("no hit on bottom object")
	}
	if want, _ := ed.Canvas().IDOf(bottom); id != want {
		t.Errorf("hit id = %d, want bottom %d", id, want)
	}

	if _, ok := w.hitTest(image.Point{X: 190, Y: 190}); ok {
		t.Error("hit reported on empty canvas area")
	}
}

func TestEscapeAbandonsMovePreview(t *testing.T) {
	ed := editor.New(editor.WithSize(200, 200))
	w := &window{ed: ed, view: image.Rect(0, toolbarHeight, 200, 200+toolbarHeight)}
	ctx := context.Background()

	o, err := ed.AddShape(ctx, scene.KindRect, 10, 10, 20, 20)
	if err != nil {
		t.Fatal(err)
	}

	w.mouseSelect(mouse.Event{Button: mouse.ButtonLeft, Direction: mouse.DirPress}, image.Point{X: 15, Y: 15}, true)
	if !w.drag.active {
		t.Fatal("press inside the object did not start a drag")
	}
	for _, pt := range []image.Point{{X: 40, Y: 40}, {X: 80, Y: 90}} {
		w.mouseSelect(mouse.Event{Direction: mouse.DirNone}, pt, true)
	}
	if o.Left == 10 && o.Top == 10 {
		t.Fatal("previews did not move the object")
	}

	w.handleKey(key.Event{Code: key.CodeEscape, Direction: key.DirPress})
	if w.drag.active {
		t.Fatal("escape left the drag active")
	}
	if o.Left != 10 || o.Top != 10 {
		t.Fatalf("object at (%v, %v) after escape, want back at (10, 10)", o.Left, o.Top)
	}
	if got := ed.Invoker().UndoStackLength(); got != 1 {
		t.Fatalf("undo stack length = %d, want 1 (only the add)", got)
	}

	// No preview state may survive the escape: a later committed move of
	// another object must undo to its own start.
	other, err := ed.AddShape(ctx, scene.KindRect, 100, 100, 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	if err := ed.SetObjectPosition(ctx, other, 140, 150); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := ed.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if other.Left != 100 || other.Top != 100 {
		t.Fatalf("moved object undid to (%v, %v), want (100, 100)", other.Left, other.Top)
	}
	if o.Left != 10 || o.Top != 10 {
		t.Fatalf("escaped object dragged to (%v, %v) by an unrelated undo", o.Left, o.Top)
	}
}

func TestDeleteMidDragCancelsGestureFirst(t *testing.T) {
	ed := editor.New(editor.WithSize(200, 200))
	w := &window{ed: ed, view: image.Rect(0, toolbarHeight, 200, 200+toolbarHeight)}
	ctx := context.Background()

	o, err := ed.AddShape(ctx, scene.KindRect, 10, 10, 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	w.mouseSelect(mouse.Event{Button: mouse.ButtonLeft, Direction: mouse.DirPress}, image.Point{X: 15, Y: 15}, true)
	w.mouseSelect(mouse.Event{Direction: mouse.DirNone}, image.Point{X: 60, Y: 60}, true)

	w.handleKey(key.Event{Code: key.CodeDeleteForward, Direction: key.DirPress})
	if w.drag.active {
		t.Fatal("delete left the drag active")
	}
	if o.Left != 10 || o.Top != 10 {
		t.Fatalf("object at (%v, %v), want the gesture rolled back to (10, 10)", o.Left, o.Top)
	}
	if !ed.Canvas().Contains(o) {
		t.Fatal("mid-drag delete removed the object instead of cancelling the gesture")
	}

	// With the gesture over, delete removes the re-selected object.
	if _, err := ed.Select(o.ID); err != nil {
		t.Fatalf("select: %v", err)
	}
	w.handleKey(key.Event{Code: key.CodeDeleteForward, Direction: key.DirPress})
	if ed.Canvas().Contains(o) {
		t.Fatal("second delete did not remove the object")
	}
}

func TestCanvasPtMapsViewCoordinates(t *testing.T) {
	w := &window{view: image.Rect(0, toolbarHeight, 300, toolbarHeight+200)}

	pt, ok := w.canvasPt(mouse.Event{X: 40, Y: float32(toolbarHeight + 25)})
	if !ok {
		t.Fatal("point inside the view rejected")
	}
	if pt != (image.Point{X: 40, Y: 25}) {
		t.Errorf("canvas point = %v, want (40,25)", pt)
	}

	if _, ok := w.canvasPt(mouse.Event{X: 40, Y: 5}); ok {
		t.Error("toolbar point mapped into the canvas")
	}
	if _, ok := w.canvasPt(mouse.Event{X: 40, Y: float32(toolbarHeight + 500)}); ok {
		t.Error("point below the view mapped into the canvas")
	}
}
