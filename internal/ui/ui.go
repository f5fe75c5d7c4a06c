// Package ui runs the interactive editor window: a toolbar of object tools,
// the canvas view, and the keyboard shortcuts that drive undo and redo. All
// editing goes through editor commands so every gesture lands on the undo
// stack; drags preview silently and commit once on release, and escape rolls
// an uncommitted preview back.
package ui

import (
	"context"
	"errors"
	"image"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"

	"github.com/example/easel/internal/canvas"
	"github.com/example/easel/internal/clipboard"
	"github.com/example/easel/internal/command"
	"github.com/example/easel/internal/editor"
	"github.com/example/easel/internal/theme"
)

const (
	toolbarHeight = 28
	statusHeight  = 24
	buttonWidth   = 64
	noteDuration  = 2 * time.Second
)

type config struct {
	theme    *theme.Theme
	title    string
	readOnly bool
	onSave   func(string)
	onCopy   func(string)
}

// Option configures the window.
type Option func(*config)

// WithTheme sets the color theme. Defaults to the built-in light theme.
func WithTheme(t *theme.Theme) Option {
	return func(c *config) {
		if t != nil {
			c.theme = t
		}
	}
}

// WithTitle sets the window title.
func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithReadOnly disables every editing gesture; the window only views,
// copies, and quits.
func WithReadOnly() Option {
	return func(c *config) {
		c.readOnly = true
	}
}

// WithOnSave registers a callback invoked with the written path after a
// successful save.
func WithOnSave(fn func(string)) Option {
	return func(c *config) {
		c.onSave = fn
	}
}

// WithOnCopy registers a callback invoked after the canvas was copied to the
// clipboard.
func WithOnCopy(fn func(string)) Option {
	return func(c *config) {
		c.onCopy = fn
	}
}

// Run opens the window over the given editor and blocks until it closes.
func Run(ed *editor.Editor, opts ...Option) error {
	cfg := config{theme: theme.Default(), title: "Easel"}
	for _, opt := range opts {
		opt(&cfg)
	}
	var runErr error
	driver.Main(func(s screen.Screen) {
		runErr = runWindow(s, ed, cfg)
	})
	return runErr
}

type dragState struct {
	active bool
	id     int
	offset image.Point
	moved  bool
	last   image.Point
}

type window struct {
	ed  *editor.Editor
	cfg config
	thm *theme.Theme

	win screen.Window
	buf screen.Buffer

	size image.Point
	view image.Rectangle

	tools   []tool
	curTool int

	drag     dragState
	anchor   image.Point
	rubber   image.Rectangle
	rubberOn bool

	note      string
	noteUntil time.Time
}

func runWindow(s screen.Screen, ed *editor.Editor, cfg config) error {
	cw, ch := ed.Canvas().Size()
	tools := editTools()
	if cfg.readOnly {
		tools = nil
	}
	width := cw
	if minWidth := (len(tools) + 2) * buttonWidth; !cfg.readOnly && width < minWidth {
		width = minWidth
	}
	height := ch + toolbarHeight + statusHeight

	win, err := s.NewWindow(&screen.NewWindowOptions{
		Width:  width,
		Height: height,
		Title:  cfg.title,
	})
	if err != nil {
		return err
	}
	defer win.Release()

	buf, err := s.NewBuffer(image.Point{X: width, Y: height})
	if err != nil {
		return err
	}
	defer buf.Release()

	w := &window{
		ed:    ed,
		cfg:   cfg,
		thm:   cfg.theme,
		win:   win,
		buf:   buf,
		size:  image.Point{X: width, Y: height},
		view:  image.Rect(0, toolbarHeight, width, height-statusHeight),
		tools: tools,
	}

	// Repaint whenever a command touches the canvas. The request channel
	// drops extra signals while one is pending, so this cannot flood the
	// event queue.
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ed.Canvas().RenderRequests():
				win.Send(paint.Event{})
			}
		}
	}()
	win.Send(paint.Event{})

	for {
		switch e := win.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}
		case paint.Event:
			w.paint()
		case mouse.Event:
			if w.handleMouse(e) {
				return nil
			}
		case key.Event:
			if w.handleKey(e) {
				return nil
			}
		}
	}
}

func (w *window) paint() {
	dst := w.buf.RGBA()
	w.drawToolbar(dst)
	w.drawCanvas(dst)
	w.drawStatus(dst)
	w.drawNote(dst)
	w.win.Upload(image.Point{}, w.buf, w.buf.Bounds())
	w.win.Publish()
}

func (w *window) repaint() {
	w.win.Send(paint.Event{})
}

func (w *window) setNote(msg string) {
	w.note = msg
	w.noteUntil = time.Now().Add(noteDuration)
	w.repaint()
}

// canvasPt maps a window point into canvas coordinates.
func (w *window) canvasPt(e mouse.Event) (image.Point, bool) {
	pt := image.Point{X: int(e.X), Y: int(e.Y)}
	if !pt.In(w.view) {
		return image.Point{}, false
	}
	return pt.Sub(w.view.Min), true
}

// handleMouse reacts to one mouse event. It reports true when the window
// should close.
func (w *window) handleMouse(e mouse.Event) bool {
	if w.cfg.readOnly {
		return false
	}
	if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && int(e.Y) < toolbarHeight {
		w.pressToolbar(int(e.X))
		return false
	}
	pt, inView := w.canvasPt(e)
	switch w.tools[w.curTool].kind {
	case toolSelect:
		w.mouseSelect(e, pt, inView)
	case toolText:
		if inView && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
			if _, err := w.ed.AddText(context.Background(), "Text", float64(pt.X), float64(pt.Y)); err != nil {
				log.Printf("add text: %v", err)
			}
		}
	case toolIcon:
		if inView && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
			if _, err := w.ed.AddIcon(context.Background(), defaultIconName, float64(pt.X), float64(pt.Y)); err != nil {
				log.Printf("add icon: %v", err)
			}
		}
	default:
		w.mouseShape(e, pt, inView)
	}
	return false
}

// mouseSelect implements the select tool: click chooses the topmost object,
// dragging previews moves silently and commits once on release.
func (w *window) mouseSelect(e mouse.Event, pt image.Point, inView bool) {
	ctx := context.Background()
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && inView:
		id, ok := w.hitTest(pt)
		if !ok {
			w.ed.DiscardSelection()
			return
		}
		if _, err := w.ed.Select(id); err != nil {
			log.Printf("select %d: %v", id, err)
			return
		}
		o, found := w.ed.Canvas().GetObject(id)
		if !found {
			return
		}
		w.drag = dragState{
			active: true,
			id:     id,
			offset: pt.Sub(o.Bounds().Min),
		}
	case e.Direction == mouse.DirNone && w.drag.active && inView:
		dest := pt.Sub(w.drag.offset)
		w.drag.moved = true
		w.drag.last = dest
		err := w.ed.SetObjectPositionSilent(ctx, w.drag.id, float64(dest.X), float64(dest.Y))
		if err != nil && !errors.Is(err, command.ErrInvokerLocked) {
			log.Printf("move preview: %v", err)
		}
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease && w.drag.active:
		drag := w.drag
		w.drag = dragState{}
		if !drag.moved {
			return
		}
		if err := w.ed.SetObjectPosition(ctx, drag.id, float64(drag.last.X), float64(drag.last.Y)); err != nil {
			log.Printf("move: %v", err)
			// A failed commit leaves the preview uncommitted; roll it back
			// so it cannot coalesce into a later move.
			if err := w.ed.AbortSilent(ctx, editor.CmdSetObjectPosition); err != nil {
				log.Printf("abort move: %v", err)
			}
		}
	}
}

// mouseShape implements the shape tools: drag a rubber band, release to add
// the object as one undoable command.
func (w *window) mouseShape(e mouse.Event, pt image.Point, inView bool) {
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress && inView:
		w.anchor = pt
		w.rubber = image.Rectangle{Min: pt, Max: pt}
		w.rubberOn = true
	case e.Direction == mouse.DirNone && w.rubberOn && inView:
		w.rubber = image.Rectangle{Min: w.anchor, Max: pt}.Canon()
		w.repaint()
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease && w.rubberOn:
		w.rubberOn = false
		r := w.rubber
		w.repaint()
		if r.Dx() < 3 || r.Dy() < 3 {
			return
		}
		kind := w.tools[w.curTool].shape
		_, err := w.ed.AddShape(context.Background(), kind,
			float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		if err != nil {
			log.Printf("add %s: %v", kind, err)
		}
	}
}

// handleKey reacts to one key press. It reports true when the window should
// close.
func (w *window) handleKey(e key.Event) bool {
	if e.Direction != key.DirPress {
		return false
	}
	if w.cfg.readOnly {
		switch {
		case e.Code == key.CodeC && e.Modifiers&key.ModControl != 0:
			w.copyCanvas()
		case e.Code == key.CodeEscape, e.Rune == 'q', e.Rune == 'Q':
			return true
		}
		return false
	}
	ctrl := e.Modifiers&key.ModControl != 0
	shift := e.Modifiers&key.ModShift != 0
	switch {
	case ctrl && e.Code == key.CodeZ && shift:
		w.redo()
	case ctrl && e.Code == key.CodeZ:
		w.undo()
	case ctrl && e.Code == key.CodeY:
		w.redo()
	case ctrl && e.Code == key.CodeS:
		w.save()
	case ctrl && e.Code == key.CodeC:
		w.copyCanvas()
	case e.Code == key.CodeEscape:
		w.abortDrag()
		w.rubberOn = false
		w.ed.DiscardSelection()
	case e.Code == key.CodeDeleteForward, e.Code == key.CodeDeleteBackspace:
		w.deleteSelection()
	}
	return false
}

// abortDrag abandons an in-flight move gesture: the positions applied by the
// silent previews are rolled back and nothing reaches the undo stack. Without
// an active drag it only resets the gesture state.
func (w *window) abortDrag() {
	active := w.drag.active
	w.drag = dragState{}
	if !active {
		return
	}
	if err := w.ed.AbortSilent(context.Background(), editor.CmdSetObjectPosition); err != nil {
		log.Printf("abort move: %v", err)
	}
}

// undo ignores the empty-stack and locked rejections: holding the shortcut
// past the end of history is not an error worth reporting.
func (w *window) undo() {
	err := w.ed.Undo(context.Background())
	if err != nil && !ignorableStackErr(err) {
		log.Printf("undo: %v", err)
	}
}

func (w *window) redo() {
	err := w.ed.Redo(context.Background())
	if err != nil && !ignorableStackErr(err) {
		log.Printf("redo: %v", err)
	}
}

func ignorableStackErr(err error) bool {
	return errors.Is(err, command.ErrEmptyUndoStack) ||
		errors.Is(err, command.ErrEmptyRedoStack) ||
		errors.Is(err, command.ErrInvokerLocked)
}

func (w *window) save() {
	path, err := w.ed.Save(context.Background(), "")
	if err != nil {
		log.Printf("save: %v", err)
		w.setNote("save failed")
		return
	}
	w.setNote("Saved " + filepath.Base(path))
	if w.cfg.onSave != nil {
		w.cfg.onSave(path)
	}
}

func (w *window) copyCanvas() {
	img, err := w.ed.Flatten(context.Background())
	if err != nil {
		log.Printf("flatten: %v", err)
		w.setNote("copy failed")
		return
	}
	if err := clipboard.WriteImage(img); err != nil {
		log.Printf("copy: %v", err)
		w.setNote("copy failed")
		return
	}
	w.setNote("Copied to clipboard")
	if w.cfg.onCopy != nil {
		detail := "canvas"
		if p := w.ed.SavePath(); p != "" {
			detail = filepath.Base(p)
		}
		w.cfg.onCopy(detail)
	}
}

// deleteSelection removes the active selection. A delete mid-drag cancels the
// gesture first; the removal then applies to whatever selection remains.
func (w *window) deleteSelection() {
	w.abortDrag()
	err := w.ed.RemoveObject(context.Background(), nil)
	if err != nil && !errors.Is(err, canvas.ErrNoActiveObject) && !errors.Is(err, command.ErrInvokerLocked) {
		log.Printf("remove: %v", err)
	}
}

// hitTest returns the id of the topmost object whose bounds contain pt.
func (w *window) hitTest(pt image.Point) (int, bool) {
	objs := w.ed.Canvas().Objects()
	for i := len(objs) - 1; i >= 0; i-- {
		if pt.In(objs[i].Bounds()) {
			if id, ok := w.ed.Canvas().IDOf(objs[i]); ok {
				return id, true
			}
		}
	}
	return 0, false
}
