// Package canvas wraps the scene the editor works on: the base image, the
// object list with its identity registry, the active object or selection,
// and the selection snapshotting undo capture depends on.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/example/easel/internal/render"
	"github.com/example/easel/internal/scene"
)

// ErrObjectMissing reports a registry lookup miss. It is an expected state
// when the referenced object already left the scene.
var ErrObjectMissing = errors.New("object is not registered")

// ErrNoActiveObject reports that an operation needing a target had none.
var ErrNoActiveObject = errors.New("no active object")

// Canvas owns one editing surface. All mutation happens on the invoker's
// single in-flight operation, so Canvas itself carries no locking.
type Canvas struct {
	registry *ObjectRegistry

	base    image.Image
	objects []*scene.Object
	active  *scene.Object

	// rotation and filters adjust the base image non-destructively; they are
	// applied when the canvas flattens, so undoing them is a state restore
	// rather than an inverse pixel operation.
	rotation float64
	filters  []render.Filter

	// renderC is the coalescing render-request channel: at most one request
	// is ever pending, extra requests while one is queued are dropped.
	renderC chan struct{}
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithImage sets the initial base image.
func WithImage(img image.Image) Option {
	return func(c *Canvas) {
		c.base = img
	}
}

// WithSize starts the canvas with a transparent base of the given size.
func WithSize(w, h int) Option {
	return func(c *Canvas) {
		c.base = image.NewRGBA(image.Rect(0, 0, w, h))
	}
}

// New creates an empty canvas.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		registry: NewObjectRegistry(),
		renderC:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.base == nil {
		c.base = image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	return c
}

// Image returns the current base image.
func (c *Canvas) Image() image.Image {
	return c.base
}

// SetImage replaces the base image and returns the previous one so commands
// can keep it for undo.
func (c *Canvas) SetImage(img image.Image) image.Image {
	prev := c.base
	c.base = img
	c.RequestRender()
	return prev
}

// Size reports the base image dimensions.
func (c *Canvas) Size() (w, h int) {
	b := c.base.Bounds()
	return b.Dx(), b.Dy()
}

// Rotation returns the base image rotation in degrees clockwise.
func (c *Canvas) Rotation() float64 {
	return c.rotation
}

// SetRotation replaces the base rotation and returns the previous value.
func (c *Canvas) SetRotation(angle float64) float64 {
	prev := c.rotation
	c.rotation = angle
	c.RequestRender()
	return prev
}

// Filters returns the base image filter pipeline in application order. The
// slice is a copy.
func (c *Canvas) Filters() []render.Filter {
	out := make([]render.Filter, len(c.filters))
	copy(out, c.filters)
	return out
}

// SetFilters replaces the filter pipeline and returns the previous one.
func (c *Canvas) SetFilters(filters []render.Filter) []render.Filter {
	prev := c.filters
	c.filters = filters
	c.RequestRender()
	return prev
}

// Stamp assigns (or returns) the object's registry id and records it.
func (c *Canvas) Stamp(o *scene.Object) int {
	return c.registry.Stamp(o)
}

// GetObject resolves a registry id.
func (c *Canvas) GetObject(id int) (*scene.Object, bool) {
	return c.registry.Resolve(id)
}

// IDOf reports the registered id for an object.
func (c *Canvas) IDOf(o *scene.Object) (int, bool) {
	return c.registry.IDOf(o)
}

// Add stamps the objects and appends them to the draw list in order.
func (c *Canvas) Add(objs ...*scene.Object) {
	for _, o := range objs {
		if o == nil || o.IsGroup() {
			continue
		}
		c.registry.Stamp(o)
		c.objects = append(c.objects, o)
	}
	c.RequestRender()
}

// IndexOf reports the draw-list position of the object, -1 when absent.
func (c *Canvas) IndexOf(o *scene.Object) int {
	for i, candidate := range c.objects {
		if candidate == o {
			return i
		}
	}
	return -1
}

// InsertAt stamps the object and splices it into the draw list at index i,
// clamped to the list bounds. Removal undo uses this to put an object back
// at its original z-order.
func (c *Canvas) InsertAt(i int, o *scene.Object) {
	if o == nil || o.IsGroup() {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(c.objects) {
		i = len(c.objects)
	}
	c.registry.Stamp(o)
	c.objects = append(c.objects, nil)
	copy(c.objects[i+1:], c.objects[i:])
	c.objects[i] = o
	c.RequestRender()
}

// Remove takes the object out of the draw list and unregisters it. When the
// target is a selection group, every member is removed. It reports whether
// anything was removed.
func (c *Canvas) Remove(target *scene.Object) bool {
	if target == nil {
		return false
	}
	if target.IsGroup() {
		removed := false
		for _, m := range target.Members {
			if c.removeOne(m) {
				removed = true
			}
		}
		if removed {
			c.RequestRender()
		}
		return removed
	}
	if c.removeOne(target) {
		c.RequestRender()
		return true
	}
	return false
}

func (c *Canvas) removeOne(o *scene.Object) bool {
	for i, candidate := range c.objects {
		if candidate == o {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			c.registry.Unregister(o.ID)
			if c.active == o {
				c.active = nil
			}
			return true
		}
	}
	return false
}

// Clear removes every object. The removed objects are returned in draw order
// so a clear can be undone by re-adding them.
func (c *Canvas) Clear() []*scene.Object {
	removed := c.objects
	for _, o := range removed {
		c.registry.Unregister(o.ID)
	}
	c.objects = nil
	c.active = nil
	if len(removed) > 0 {
		c.RequestRender()
	}
	return removed
}

// Objects returns the draw list, bottom-most first. The slice is a copy; the
// objects are shared.
func (c *Canvas) Objects() []*scene.Object {
	out := make([]*scene.Object, len(c.objects))
	copy(out, c.objects)
	return out
}

// Contains reports whether the object is currently on the draw list.
func (c *Canvas) Contains(o *scene.Object) bool {
	for _, candidate := range c.objects {
		if candidate == o {
			return true
		}
	}
	return false
}

// SetActiveObject marks the object the next object-targeting command applies
// to. Passing nil clears it.
func (c *Canvas) SetActiveObject(o *scene.Object) {
	c.active = o
}

// ActiveObject returns the current target: a plain object or a selection
// group.
func (c *Canvas) ActiveObject() (*scene.Object, bool) {
	if c.active == nil {
		return nil, false
	}
	return c.active, true
}

// Select builds a selection over the objects with the given ids and makes it
// active. A single id selects the object directly; several ids form a group
// whose members are rebased to group-relative coordinates.
func (c *Canvas) Select(ids ...int) (*scene.Object, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("select: no ids given")
	}
	members := make([]*scene.Object, 0, len(ids))
	for _, id := range ids {
		o, ok := c.registry.Resolve(id)
		if !ok {
			return nil, fmt.Errorf("select object %d: %w", id, ErrObjectMissing)
		}
		members = append(members, o)
	}
	c.DiscardSelection()
	if len(members) == 1 {
		c.active = members[0]
		return c.active, nil
	}
	c.active = scene.NewGroup(members...)
	return c.active, nil
}

// DiscardSelection dissolves an active selection group back into absolute
// member coordinates, or simply drops a plain active object.
func (c *Canvas) DiscardSelection() {
	if c.active == nil {
		return
	}
	if c.active.IsGroup() {
		c.active.Dissolve()
	}
	c.active = nil
}

// RequestRender queues a repaint without blocking. If a request is already
// pending the new one is dropped; the consumer repaints at most once per
// pending request.
func (c *Canvas) RequestRender() {
	select {
	case c.renderC <- struct{}{}:
	default:
	}
}

// RenderRequests exposes the repaint channel for the paint loop.
func (c *Canvas) RenderRequests() <-chan struct{} {
	return c.renderC
}

// Flatten rasterizes the filtered, rotated base image and every object into
// a fresh RGBA image.
func (c *Canvas) Flatten(ctx context.Context) (*image.RGBA, error) {
	return render.Compose(ctx, render.State{
		Base:     c.base,
		Rotation: c.rotation,
		Filters:  c.filters,
		Objects:  c.objects,
	})
}
