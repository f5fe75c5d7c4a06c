package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"github.com/example/easel/internal/render"
)

const checkerSize = 8

// drawCanvas paints the checkerboard, the flattened scene, the selection
// outline, and any in-progress rubber band into the view band.
func (w *window) drawCanvas(dst *image.RGBA) {
	render.Checkerboard(dst, w.view, w.thm.CheckerLight, w.thm.CheckerDark, checkerSize)

	img, err := w.ed.Flatten(context.Background())
	if err != nil {
		log.Printf("flatten: %v", err)
		return
	}
	r := image.Rectangle{Min: w.view.Min, Max: w.view.Min.Add(img.Bounds().Size())}
	draw.Draw(dst, r.Intersect(w.view), img, image.Point{}, draw.Over)

	// Object bounds only line up with the view while the canvas itself is
	// unrotated; hide the outline rather than draw it in the wrong place.
	if o, ok := w.ed.Canvas().ActiveObject(); ok && w.ed.Canvas().Rotation() == 0 {
		b := o.Bounds().Add(w.view.Min)
		strokeRect(dst, b, w.thm.SelectionStroke)
		for _, corner := range []image.Point{b.Min, {X: b.Max.X, Y: b.Min.Y}, {X: b.Min.X, Y: b.Max.Y}, b.Max} {
			h := image.Rect(corner.X-4, corner.Y-4, corner.X+4, corner.Y+4)
			draw.Draw(dst, h, &image.Uniform{w.thm.SelectionHandle}, image.Point{}, draw.Src)
			strokeRect(dst, h, w.thm.SelectionStroke)
		}
	}
	if w.rubberOn {
		strokeRect(dst, w.rubber.Add(w.view.Min), w.thm.SelectionStroke)
	}
}

var editHints = []string{"^Z Undo", "^Y Redo", "^S Save", "^C Copy", "Del Remove", "Esc Deselect"}

func (w *window) drawStatus(dst *image.RGBA) {
	y := w.size.Y - statusHeight
	bar := image.Rect(0, y, w.size.X, w.size.Y)
	draw.Draw(dst, bar, &image.Uniform{w.thm.ToolbarBackground}, image.Point{}, draw.Src)
	hints := editHints
	if w.cfg.readOnly {
		hints = []string{"^C Copy", "Q Quit"}
	}
	x := 8
	for _, h := range hints {
		drawLabel(dst, x, y+16, h, w.thm.Foreground)
		x += len(h)*7 + 16
	}
	if w.cfg.readOnly {
		return
	}
	inv := w.ed.Invoker()
	counts := fmt.Sprintf("%d obj  undo %d  redo %d",
		len(w.ed.Canvas().Objects()), inv.UndoStackLength(), inv.RedoStackLength())
	drawLabel(dst, w.size.X-len(counts)*7-8, y+16, counts, w.thm.Foreground)
}

func (w *window) drawNote(dst *image.RGBA) {
	if w.note == "" || time.Now().After(w.noteUntil) {
		return
	}
	cy := w.view.Min.Y + w.view.Dy()/2
	box := image.Rect(w.size.X/2-80, cy-16, w.size.X/2+80, cy+16)
	draw.Draw(dst, box, &image.Uniform{w.thm.ToolbarBackground}, image.Point{}, draw.Src)
	strokeRect(dst, box, w.thm.ButtonBorder)
	drawLabel(dst, box.Min.X+8, box.Min.Y+20, w.note, w.thm.Foreground)
}

func strokeRect(dst *image.RGBA, r image.Rectangle, col color.RGBA) {
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.SetRGBA(x, r.Min.Y, col)
		dst.SetRGBA(x, r.Max.Y-1, col)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.SetRGBA(r.Min.X, y, col)
		dst.SetRGBA(r.Max.X-1, y, col)
	}
}
