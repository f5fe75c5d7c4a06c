package ui

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/easel/internal/scene"
)

type toolKind int

const (
	toolSelect toolKind = iota
	toolShape
	toolText
	toolIcon
)

const defaultIconName = "star"

type tool struct {
	kind  toolKind
	label string
	shape scene.Kind
}

func editTools() []tool {
	return []tool{
		{kind: toolSelect, label: "Select"},
		{kind: toolShape, label: "Rect", shape: scene.KindRect},
		{kind: toolShape, label: "Ellipse", shape: scene.KindEllipse},
		{kind: toolShape, label: "Line", shape: scene.KindLine},
		{kind: toolShape, label: "Arrow", shape: scene.KindArrow},
		{kind: toolText, label: "Text"},
		{kind: toolIcon, label: "Icon"},
	}
}

// pressToolbar handles a click at window x inside the toolbar band. The tool
// buttons latch; the trailing Undo/Redo buttons fire once per click.
func (w *window) pressToolbar(x int) {
	slot := x / buttonWidth
	switch {
	case slot < len(w.tools):
		w.curTool = slot
		w.rubberOn = false
		w.drag = dragState{}
		w.repaint()
	case slot == len(w.tools):
		w.undo()
	case slot == len(w.tools)+1:
		w.redo()
	}
}

func (w *window) drawToolbar(dst *image.RGBA) {
	bar := image.Rect(0, 0, w.size.X, toolbarHeight)
	draw.Draw(dst, bar, &image.Uniform{w.thm.ToolbarBackground}, image.Point{}, draw.Src)
	if w.cfg.readOnly {
		drawLabel(dst, 8, 18, "view only - q closes", w.thm.Foreground)
		return
	}
	x := 0
	for i, t := range w.tools {
		bg := w.thm.ButtonBackground
		if i == w.curTool {
			bg = w.thm.ButtonBackgroundOn
		}
		drawButton(dst, x, t.label, bg, w.thm.ButtonText, w.thm.ButtonBorder)
		x += buttonWidth
	}
	inv := w.ed.Invoker()
	undoText := w.thm.ButtonText
	if inv.IsEmptyUndoStack() {
		undoText = w.thm.ButtonBorder
	}
	redoText := w.thm.ButtonText
	if inv.IsEmptyRedoStack() {
		redoText = w.thm.ButtonBorder
	}
	drawButton(dst, x, "Undo", w.thm.ButtonBackground, undoText, w.thm.ButtonBorder)
	drawButton(dst, x+buttonWidth, "Redo", w.thm.ButtonBackground, redoText, w.thm.ButtonBorder)
}

func drawButton(dst *image.RGBA, x int, label string, bg, text, border color.RGBA) {
	rect := image.Rect(x, 0, x+buttonWidth, toolbarHeight)
	draw.Draw(dst, rect, &image.Uniform{bg}, image.Point{}, draw.Src)
	for bx := rect.Min.X; bx < rect.Max.X; bx++ {
		dst.SetRGBA(bx, rect.Max.Y-1, border)
	}
	dst.SetRGBA(rect.Max.X-1, rect.Min.Y, border)
	for by := rect.Min.Y; by < rect.Max.Y; by++ {
		dst.SetRGBA(rect.Max.X-1, by, border)
	}
	drawLabel(dst, x+6, 18, label, text)
}

func drawLabel(dst *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  &image.Uniform{col},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
