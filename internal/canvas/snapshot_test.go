package canvas

import (
	"errors"
	"testing"

	"github.com/example/easel/internal/scene"
)

func TestSnapshotSelectionTransparency(t *testing.T) {
	c := New(WithSize(200, 200))
	objs := make([]*scene.Object, 3)
	for i := range objs {
		o := scene.New(scene.KindRect)
		o.Left = float64(10 + i*30)
		o.Top = float64(20 + i*10)
		o.Width, o.Height = 15, 15
		o.Angle = float64(i * 7)
		objs[i] = o
	}
	c.Add(objs...)

	sel, err := c.Select(objs[0].ID, objs[1].ID, objs[2].ID)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	// Drag the whole selection so relative and absolute diverge.
	sel.Left += 25
	sel.Top += 5
	sel.Angle = 30

	before := make([]scene.Fields, len(objs))
	for i, o := range objs {
		before[i] = o.CaptureFields()
	}
	drainRenders(c)

	datums := c.SnapshotSelection(sel, c.GeometryDatum())

	if len(datums) != 3 {
		t.Fatalf("expected 3 datums, got %d", len(datums))
	}
	// Relative fields must be bit-identical to their pre-call values.
	for i, o := range objs {
		if o.Transform != before[i] {
			t.Errorf("member %d fields changed: %+v vs %+v", i, o.Transform, before[i])
		}
	}
	// No repaint may be requested between bake and restore.
	select {
	case <-c.RenderRequests():
		t.Fatal("snapshot requested a render")
	default:
	}
	// Datums describe absolute geometry.
	for i, d := range datums {
		if !d.Selection {
			t.Errorf("datum %d not marked as selection member", i)
		}
		if d.ID != objs[i].ID {
			t.Errorf("datum %d id = %d, want %d", i, d.ID, objs[i].ID)
		}
		abs := objs[i].AbsoluteTransform()
		if d.Left != abs.Left || d.Top != abs.Top || d.Angle != abs.Angle {
			t.Errorf("datum %d not absolute: got (%v,%v,%v) want (%v,%v,%v)",
				i, d.Left, d.Top, d.Angle, abs.Left, abs.Top, abs.Angle)
		}
	}
}

func TestSnapshotSingleObject(t *testing.T) {
	c := New(WithSize(50, 50))
	o := scene.New(scene.KindEllipse)
	o.Left, o.Top = 5, 6
	c.Add(o)

	datums := c.SnapshotSelection(o, c.GeometryDatum())
	if len(datums) != 1 {
		t.Fatalf("expected 1 datum, got %d", len(datums))
	}
	d := datums[0]
	if d.Selection {
		t.Error("plain object should not be marked as selection member")
	}
	if d.Left != 5 || d.Top != 6 {
		t.Errorf("unexpected datum geometry (%v,%v)", d.Left, d.Top)
	}
}

func TestPropertyDatumCapturesBag(t *testing.T) {
	c := New(WithSize(50, 50))
	o := scene.New(scene.KindText)
	o.Text = "label"
	o.Style.Size = 18
	c.Add(o)

	datums := c.SnapshotSelection(o, c.PropertyDatum("text", "fontSize"))
	if len(datums) != 1 {
		t.Fatalf("expected 1 datum, got %d", len(datums))
	}
	props := datums[0].Props
	if props["text"] != "label" || props["fontSize"] != float64(18) {
		t.Errorf("unexpected property bag %v", props)
	}
}

func TestApplyDatumRestoresGeometry(t *testing.T) {
	c := New(WithSize(50, 50))
	o := scene.New(scene.KindRect)
	o.Left, o.Top, o.Angle = 1, 2, 3
	c.Add(o)

	datum := c.SnapshotSelection(o, c.GeometryDatum())[0]
	o.Left, o.Top, o.Angle = 9, 9, 90

	if err := c.ApplyDatum(datum); err != nil {
		t.Fatalf("ApplyDatum failed: %v", err)
	}
	if o.Left != 1 || o.Top != 2 || o.Angle != 3 {
		t.Fatalf("datum not restored: %+v", o.Transform)
	}
}

func TestApplyDatumMissingObject(t *testing.T) {
	c := New(WithSize(50, 50))
	err := c.ApplyDatum(Datum{ID: 12345})
	if err == nil {
		t.Fatal("expected error for missing object")
	}
	if !errors.Is(err, ErrObjectMissing) {
		t.Fatalf("expected ErrObjectMissing, got %v", err)
	}
}
