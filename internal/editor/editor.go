// Package editor assembles the editing engine: one canvas, a command
// registry populated with every concrete command, and the invoker running
// them, behind typed facade methods shells and the UI call.
package editor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/example/easel/internal/canvas"
	"github.com/example/easel/internal/command"
	"github.com/example/easel/internal/scene"
)

// Command names as registered with the registry and accepted by shells.
const (
	CmdRotate              = "rotate"
	CmdSetAngle            = "setAngle"
	CmdFlip                = "flip"
	CmdCrop                = "crop"
	CmdResize              = "resize"
	CmdLoadImage           = "loadImage"
	CmdApplyFilter         = "applyFilter"
	CmdRemoveFilter        = "removeFilter"
	CmdAddShape            = "addShape"
	CmdAddText             = "addText"
	CmdAddIcon             = "addIcon"
	CmdAddImage            = "addImage"
	CmdRemoveObject        = "removeObject"
	CmdClearObjects        = "clearObjects"
	CmdSetObjectProperties = "setObjectProperties"
	CmdSetObjectPosition   = "setObjectPosition"
	CmdChangeText          = "changeText"
	CmdChangeTextStyle     = "changeTextStyle"
	CmdChangeIconColor     = "changeIconColor"
	CmdChangeShape         = "changeShape"
)

// Style is the default look applied to objects the editor creates.
type Style struct {
	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
	FontSize    float64
}

// DefaultStyle matches the classic annotation look: red strokes, no fill.
func DefaultStyle() Style {
	return Style{
		Stroke:      color.RGBA{R: 224, G: 36, B: 36, A: 255},
		StrokeWidth: 3,
		FontSize:    scene.DefaultFontSize,
	}
}

// Editor is the facade over canvas, registry and invoker.
type Editor struct {
	canvas   *canvas.Canvas
	registry *command.Registry
	invoker  *command.Invoker

	style    Style
	savePath string

	// silentCache holds, per command name, the undo payload captured before
	// the first silent run of an uncommitted preview sequence. Every entry is
	// the owning command's own payload type, so AbortSilent can hand it
	// straight back to the command's undo. A non-silent run commits the entry
	// and AbortSilent rolls it back; both drop it, so a stale preview never
	// leaks into a later commit.
	silentCache map[string]any
}

type options struct {
	canvasOpts  []canvas.Option
	invokerOpts []command.Option
	style       Style
	savePath    string
}

// Option configures an Editor at construction.
type Option func(*options)

// WithImage starts the editor on an existing base image.
func WithImage(img image.Image) Option {
	return func(o *options) {
		o.canvasOpts = append(o.canvasOpts, canvas.WithImage(img))
	}
}

// WithSize starts the editor on a blank canvas of the given size.
func WithSize(w, h int) Option {
	return func(o *options) {
		o.canvasOpts = append(o.canvasOpts, canvas.WithSize(w, h))
	}
}

// WithStyle sets the default object style.
func WithStyle(s Style) Option {
	return func(o *options) {
		o.style = s
	}
}

// WithSavePath sets where Save writes when called without a path.
func WithSavePath(path string) Option {
	return func(o *options) {
		o.savePath = path
	}
}

// WithInvokerOptions forwards options (typically stack listeners) to the
// underlying invoker.
func WithInvokerOptions(opts ...command.Option) Option {
	return func(o *options) {
		o.invokerOpts = append(o.invokerOpts, opts...)
	}
}

// New builds an editor with every command registered.
func New(opts ...Option) *Editor {
	o := options{style: DefaultStyle()}
	for _, opt := range opts {
		opt(&o)
	}
	ed := &Editor{
		canvas:      canvas.New(o.canvasOpts...),
		registry:    command.NewRegistry(),
		style:       o.style,
		savePath:    o.savePath,
		silentCache: make(map[string]any),
	}
	ed.invoker = command.NewInvoker(ed.registry, ed.canvas, o.invokerOpts...)
	ed.registerCanvasCommands()
	ed.registerObjectCommands()
	return ed
}

// Canvas returns the surface being edited.
func (ed *Editor) Canvas() *canvas.Canvas {
	return ed.canvas
}

// Invoker exposes the command invoker for stack inspection.
func (ed *Editor) Invoker() *command.Invoker {
	return ed.invoker
}

// CommandNames lists every registered command.
func (ed *Editor) CommandNames() []string {
	return ed.registry.Names()
}

// Style returns the default object style.
func (ed *Editor) Style() Style {
	return ed.style
}

// SetStyle replaces the default object style for subsequently added objects.
func (ed *Editor) SetStyle(s Style) {
	ed.style = s
}

// SavePath returns the default save destination, possibly empty.
func (ed *Editor) SavePath() string {
	return ed.savePath
}

// SetSavePath changes the default save destination.
func (ed *Editor) SetSavePath(path string) {
	ed.savePath = path
}

// Execute runs a named command through the invoker, recording it for undo.
func (ed *Editor) Execute(ctx context.Context, name string, args ...any) (any, error) {
	return ed.invoker.Execute(ctx, name, args...)
}

// ExecuteSilent runs a named command without recording it.
func (ed *Editor) ExecuteSilent(ctx context.Context, name string, args ...any) (any, error) {
	return ed.invoker.ExecuteSilent(ctx, name, args...)
}

// Undo reverses the most recent recorded command.
func (ed *Editor) Undo(ctx context.Context) error {
	_, err := ed.invoker.Undo(ctx)
	return err
}

// Redo reapplies the most recently undone command.
func (ed *Editor) Redo(ctx context.Context) error {
	_, err := ed.invoker.Redo(ctx)
	return err
}

// AbortSilent abandons an uncommitted preview run of the named command: the
// snapshot captured before its first silent call is applied back through the
// command's own undo, and the pending entry is dropped so the next run starts
// a fresh sequence. Nothing reaches the stacks. Without a pending preview it
// is a no-op. The entry is dropped even when the rollback fails, so a broken
// preview cannot poison a later commit.
func (ed *Editor) AbortSilent(ctx context.Context, name string) error {
	cached, ok := ed.silentCache[name]
	if !ok {
		return nil
	}
	delete(ed.silentCache, name)
	cmd, err := ed.registry.Create(name)
	if err != nil {
		return err
	}
	cmd.SetUndoData(cached, nil, false)
	if _, err := ed.invoker.UndoCommand(ctx, cmd); err != nil {
		return fmt.Errorf("abort %s: %w", name, err)
	}
	return nil
}

// Rotate turns the base image by delta degrees clockwise.
func (ed *Editor) Rotate(ctx context.Context, delta float64) error {
	_, err := ed.invoker.Execute(ctx, CmdRotate, delta)
	return err
}

// SetAngle sets the base image rotation to an absolute angle.
func (ed *Editor) SetAngle(ctx context.Context, angle float64) error {
	_, err := ed.invoker.Execute(ctx, CmdSetAngle, angle)
	return err
}

// SetAngleSilent previews an absolute rotation without recording it; a later
// SetAngle commits the whole preview run as one undo step.
func (ed *Editor) SetAngleSilent(ctx context.Context, angle float64) error {
	_, err := ed.invoker.ExecuteSilent(ctx, CmdSetAngle, angle)
	return err
}

// Flip mirrors the base image across the named axis ("horizontal" or
// "vertical").
func (ed *Editor) Flip(ctx context.Context, axis string) error {
	_, err := ed.invoker.Execute(ctx, CmdFlip, axis)
	return err
}

// Crop cuts the base image to the given rectangle.
func (ed *Editor) Crop(ctx context.Context, x, y, w, h int) error {
	_, err := ed.invoker.Execute(ctx, CmdCrop, x, y, w, h)
	return err
}

// Resize scales the base image to w by h pixels.
func (ed *Editor) Resize(ctx context.Context, w, h int) error {
	_, err := ed.invoker.Execute(ctx, CmdResize, w, h)
	return err
}

// LoadImage replaces the base image and resets rotation and filters.
func (ed *Editor) LoadImage(ctx context.Context, img image.Image) error {
	_, err := ed.invoker.Execute(ctx, CmdLoadImage, img)
	return err
}

// ApplyFilter appends a named filter to the base image pipeline.
func (ed *Editor) ApplyFilter(ctx context.Context, name string, amount float64) error {
	_, err := ed.invoker.Execute(ctx, CmdApplyFilter, name, amount)
	return err
}

// RemoveFilter removes the most recent pipeline entry with the given name.
func (ed *Editor) RemoveFilter(ctx context.Context, name string) error {
	_, err := ed.invoker.Execute(ctx, CmdRemoveFilter, name)
	return err
}

// AddShape adds a rect, ellipse, line or arrow with the editor's default
// style and selects it.
func (ed *Editor) AddShape(ctx context.Context, kind scene.Kind, left, top, width, height float64) (*scene.Object, error) {
	return ed.executeObject(ctx, CmdAddShape, string(kind), left, top, width, height)
}

// AddText adds a text label at (x, y), sized by measuring the text.
func (ed *Editor) AddText(ctx context.Context, text string, x, y float64) (*scene.Object, error) {
	return ed.executeObject(ctx, CmdAddText, text, x, y)
}

// AddIcon adds a library icon at (x, y).
func (ed *Editor) AddIcon(ctx context.Context, name string, x, y float64) (*scene.Object, error) {
	return ed.executeObject(ctx, CmdAddIcon, name, x, y)
}

// AddImage places a raster image on the canvas at (x, y).
func (ed *Editor) AddImage(ctx context.Context, img image.Image, x, y float64) (*scene.Object, error) {
	return ed.executeObject(ctx, CmdAddImage, img, x, y)
}

func (ed *Editor) executeObject(ctx context.Context, name string, args ...any) (*scene.Object, error) {
	result, err := ed.invoker.Execute(ctx, name, args...)
	if err != nil {
		return nil, err
	}
	o, ok := result.(*scene.Object)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result %T", name, result)
	}
	return o, nil
}

// RemoveObject deletes the target: a registry id, an object, or nil for the
// active selection.
func (ed *Editor) RemoveObject(ctx context.Context, target any) error {
	_, err := ed.invoker.Execute(ctx, CmdRemoveObject, target)
	return err
}

// ClearObjects deletes every object on the canvas.
func (ed *Editor) ClearObjects(ctx context.Context) error {
	_, err := ed.invoker.Execute(ctx, CmdClearObjects)
	return err
}

// SetObjectProperties assigns style and text properties on the target.
func (ed *Editor) SetObjectProperties(ctx context.Context, target any, props map[string]any) error {
	_, err := ed.invoker.Execute(ctx, CmdSetObjectProperties, target, props)
	return err
}

// SetObjectPosition moves the target to an absolute (left, top).
func (ed *Editor) SetObjectPosition(ctx context.Context, target any, left, top float64) error {
	_, err := ed.invoker.Execute(ctx, CmdSetObjectPosition, target, left, top)
	return err
}

// SetObjectPositionSilent previews a move without recording it, the per-drag
// call; the release commits via SetObjectPosition.
func (ed *Editor) SetObjectPositionSilent(ctx context.Context, target any, left, top float64) error {
	_, err := ed.invoker.ExecuteSilent(ctx, CmdSetObjectPosition, target, left, top)
	return err
}

// ChangeText replaces a text object's content and re-measures its frame.
func (ed *Editor) ChangeText(ctx context.Context, target any, text string) error {
	_, err := ed.invoker.Execute(ctx, CmdChangeText, target, text)
	return err
}

// ChangeTextStyle replaces a text object's style and re-measures its frame.
func (ed *Editor) ChangeTextStyle(ctx context.Context, target any, style scene.TextStyle) error {
	_, err := ed.invoker.Execute(ctx, CmdChangeTextStyle, target, style)
	return err
}

// ChangeIconColor recolors the icons in the target.
func (ed *Editor) ChangeIconColor(ctx context.Context, target any, fill color.RGBA) error {
	_, err := ed.invoker.Execute(ctx, CmdChangeIconColor, target, fill)
	return err
}

// ChangeShape morphs shapes in the target within their family: rect and
// ellipse swap, line and arrow swap.
func (ed *Editor) ChangeShape(ctx context.Context, target any, kind scene.Kind) error {
	_, err := ed.invoker.Execute(ctx, CmdChangeShape, target, string(kind))
	return err
}

// Select makes the objects with the given ids the active selection.
func (ed *Editor) Select(ids ...int) (*scene.Object, error) {
	return ed.canvas.Select(ids...)
}

// DiscardSelection drops the active selection, dissolving a group.
func (ed *Editor) DiscardSelection() {
	ed.canvas.DiscardSelection()
}

// Flatten rasterizes the current canvas state.
func (ed *Editor) Flatten(ctx context.Context) (*image.RGBA, error) {
	return ed.canvas.Flatten(ctx)
}

// EncodePNG flattens the canvas and encodes it as PNG bytes.
func (ed *Editor) EncodePNG(ctx context.Context) ([]byte, error) {
	img, err := ed.canvas.Flatten(ctx)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Save flattens the canvas to a PNG file. An empty path falls back to the
// editor's save path. The written path is returned.
func (ed *Editor) Save(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = ed.savePath
	}
	if path == "" {
		return "", fmt.Errorf("save: no output path configured")
	}
	data, err := ed.EncodePNG(ctx)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("save %s: %w", path, err)
	}
	return path, nil
}

// stashUndo routes a fresh undo snapshot through the command's coalescing
// policy, using the per-name cache so a run of silent previews commits the
// state before the first preview.
func (ed *Editor) stashUndo(c *command.Command, snapshot any) {
	if c.IsRedo() {
		return
	}
	name := c.Name()
	next := c.SetUndoData(snapshot, ed.silentCache[name], c.Silent())
	if next == nil {
		delete(ed.silentCache, name)
		return
	}
	ed.silentCache[name] = next
}

// stashObjectUndo is stashUndo for selection-state payloads: the before
// datums coalesce across silent runs, the after datums always come from the
// latest run so redo lands on the committed state. The cache carries a full
// *objectStateUndo, matching what the command's undo expects.
func (ed *Editor) stashObjectUndo(c *command.Command, before, after []canvas.Datum) {
	if c.IsRedo() {
		return
	}
	name := c.Name()
	if cached, ok := ed.silentCache[name].(*objectStateUndo); ok {
		before = cached.Before
	}
	if c.Silent() {
		ed.silentCache[name] = &objectStateUndo{Before: before, After: after}
		return
	}
	delete(ed.silentCache, name)
	c.SetUndoData(&objectStateUndo{Before: before, After: after}, nil, false)
}
