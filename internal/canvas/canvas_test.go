package canvas

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/example/easel/internal/render"
	"github.com/example/easel/internal/scene"
)

func drainRenders(c *Canvas) {
	select {
	case <-c.RenderRequests():
	default:
	}
}

func TestAddRemoveRoundTrip(t *testing.T) {
	c := New(WithSize(100, 100))
	o := scene.New(scene.KindRect)
	c.Add(o)

	if !c.Contains(o) {
		t.Fatal("object missing from draw list after Add")
	}
	got, ok := c.GetObject(o.ID)
	if !ok || got != o {
		t.Fatal("GetObject should resolve the added object")
	}

	if !c.Remove(o) {
		t.Fatal("Remove reported nothing removed")
	}
	if c.Contains(o) {
		t.Fatal("object still on draw list after Remove")
	}
	if _, ok := c.GetObject(o.ID); ok {
		t.Fatal("object still resolvable after Remove")
	}
}

func TestRemoveSelectionRemovesMembers(t *testing.T) {
	c := New(WithSize(100, 100))
	a := scene.New(scene.KindRect)
	b := scene.New(scene.KindRect)
	c.Add(a, b)

	sel, err := c.Select(a.ID, b.ID)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if !sel.IsGroup() {
		t.Fatal("expected a group selection")
	}
	if !c.Remove(sel) {
		t.Fatal("Remove reported nothing removed")
	}
	if c.Contains(a) || c.Contains(b) {
		t.Fatal("members still on draw list")
	}
}

func TestClearReturnsObjectsInOrder(t *testing.T) {
	c := New(WithSize(10, 10))
	a := scene.New(scene.KindRect)
	b := scene.New(scene.KindEllipse)
	c.Add(a, b)

	removed := c.Clear()
	if len(removed) != 2 || removed[0] != a || removed[1] != b {
		t.Fatalf("unexpected removed list %v", removed)
	}
	if len(c.Objects()) != 0 {
		t.Fatal("draw list not empty after Clear")
	}
	if _, ok := c.GetObject(a.ID); ok {
		t.Fatal("cleared object still resolvable")
	}
}

func TestSelectSingleKeepsObjectPlain(t *testing.T) {
	c := New(WithSize(10, 10))
	o := scene.New(scene.KindRect)
	c.Add(o)

	sel, err := c.Select(o.ID)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if sel != o {
		t.Fatal("single selection should be the object itself")
	}
	active, ok := c.ActiveObject()
	if !ok || active != o {
		t.Fatal("active object not set")
	}
}

func TestSelectMissingObject(t *testing.T) {
	c := New(WithSize(10, 10))
	_, err := c.Select(404)
	if err == nil {
		t.Fatal("expected error for unknown id")
	}
	if !errors.Is(err, ErrObjectMissing) {
		t.Fatalf("expected ErrObjectMissing, got %v", err)
	}
}

func TestDiscardSelectionDissolvesGroup(t *testing.T) {
	c := New(WithSize(100, 100))
	a := scene.New(scene.KindRect)
	a.Left, a.Top, a.Width, a.Height = 10, 10, 5, 5
	b := scene.New(scene.KindRect)
	b.Left, b.Top, b.Width, b.Height = 40, 40, 5, 5
	c.Add(a, b)

	wantLeft := a.Left
	if _, err := c.Select(a.ID, b.ID); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if a.Group == nil {
		t.Fatal("member not attached to selection group")
	}

	c.DiscardSelection()
	if a.Group != nil {
		t.Fatal("member still grouped after discard")
	}
	if a.Left != wantLeft {
		t.Fatalf("discard moved the object: left=%v want %v", a.Left, wantLeft)
	}
	if _, ok := c.ActiveObject(); ok {
		t.Fatal("active object should be cleared")
	}
}

func TestRequestRenderCoalesces(t *testing.T) {
	c := New(WithSize(10, 10))
	drainRenders(c)

	c.RequestRender()
	c.RequestRender()
	c.RequestRender()

	count := 0
	for {
		select {
		case <-c.RenderRequests():
			count++
			continue
		default:
		}
		break
	}
	if count != 1 {
		t.Fatalf("expected exactly one pending render request, got %d", count)
	}
}

func TestSetImageReturnsPrevious(t *testing.T) {
	first := image.NewRGBA(image.Rect(0, 0, 4, 4))
	c := New(WithImage(first))

	next := image.NewRGBA(image.Rect(0, 0, 8, 8))
	prev := c.SetImage(next)
	if prev != first {
		t.Fatal("SetImage did not return the previous base image")
	}
	w, h := c.Size()
	if w != 8 || h != 8 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
}

func TestFlattenEmptyCanvas(t *testing.T) {
	c := New(WithSize(16, 8))
	img, err := c.Flatten(context.Background())
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 16 || got.Dy() != 8 {
		t.Fatalf("unexpected bounds %v", got)
	}
}

func TestSetRotationReturnsPrevious(t *testing.T) {
	c := New(WithSize(16, 8))
	if prev := c.SetRotation(90); prev != 0 {
		t.Fatalf("expected previous rotation 0, got %v", prev)
	}
	if prev := c.SetRotation(180); prev != 90 {
		t.Fatalf("expected previous rotation 90, got %v", prev)
	}

	c.SetRotation(90)
	img, err := c.Flatten(context.Background())
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 8 || got.Dy() != 16 {
		t.Fatalf("rotation not applied on flatten: %v", got)
	}
}

func TestSetFiltersReturnsPrevious(t *testing.T) {
	c := New(WithSize(4, 4))
	first := []render.Filter{{Name: "grayscale"}}
	if prev := c.SetFilters(first); len(prev) != 0 {
		t.Fatalf("expected empty previous pipeline, got %v", prev)
	}
	prev := c.SetFilters([]render.Filter{{Name: "invert"}, {Name: "blur", Amount: 2}})
	if len(prev) != 1 || prev[0].Name != "grayscale" {
		t.Fatalf("unexpected previous pipeline %v", prev)
	}
	if got := c.Filters(); len(got) != 2 || got[0].Name != "invert" {
		t.Fatalf("unexpected pipeline %v", got)
	}
}
