package canvas

import (
	"fmt"

	"github.com/example/easel/internal/scene"
)

// Datum is one object's captured state inside an undo payload: either the
// standard geometry fields or an arbitrary property bag, always tagged with
// the object's registry id and whether it was captured as a selection
// member.
type Datum struct {
	ID        int
	Selection bool

	Left   float64
	Top    float64
	Width  float64
	Height float64
	Angle  float64
	ScaleX float64
	ScaleY float64

	// Props, when non-nil, replaces the geometry fields as the payload.
	Props map[string]any
}

// DatumMaker captures a datum from an object. During a selection snapshot
// the maker sees the member with its transform temporarily baked to absolute
// canvas-space values.
type DatumMaker func(o *scene.Object) Datum

// SnapshotSelection captures one datum per member of the target, in
// selection order. For a group target each member's relative transform
// fields are recorded, the group transform is baked into the member, the
// maker runs against the absolute state, and the recorded fields are
// restored before the next member is visited. Nothing is rendered in
// between, so the bake is never visible. A non-group target is handed to the
// maker as-is.
func (c *Canvas) SnapshotSelection(target *scene.Object, maker DatumMaker) []Datum {
	if target == nil {
		return nil
	}
	if !target.IsGroup() {
		return []Datum{maker(target)}
	}
	datums := make([]Datum, 0, len(target.Members))
	for _, m := range target.Members {
		saved := m.CaptureFields()
		scene.RealizeTransform(target, m)
		d := maker(m)
		m.RestoreFields(saved)
		datums = append(datums, d)
	}
	return datums
}

// GeometryDatum returns the standard maker capturing the transform fields.
func (c *Canvas) GeometryDatum() DatumMaker {
	return func(o *scene.Object) Datum {
		return Datum{
			ID:        c.Stamp(o),
			Selection: o.Group != nil,
			Left:      o.Left,
			Top:       o.Top,
			Width:     o.Width,
			Height:    o.Height,
			Angle:     o.Angle,
			ScaleX:    o.ScaleX,
			ScaleY:    o.ScaleY,
		}
	}
}

// PropertyDatum returns a maker capturing the named properties into a bag.
func (c *Canvas) PropertyDatum(names ...string) DatumMaker {
	return func(o *scene.Object) Datum {
		return Datum{
			ID:        c.Stamp(o),
			Selection: o.Group != nil,
			Props:     o.CaptureProperties(names...),
		}
	}
}

// ApplyDatum restores a captured datum onto the object it references. Datums
// carry absolute values, so callers undoing a selection-wide change discard
// the selection first.
func (c *Canvas) ApplyDatum(d Datum) error {
	o, ok := c.registry.Resolve(d.ID)
	if !ok {
		return fmt.Errorf("apply datum to object %d: %w", d.ID, ErrObjectMissing)
	}
	if d.Props != nil {
		if err := o.SetProperties(d.Props); err != nil {
			return fmt.Errorf("apply datum to object %d: %w", d.ID, err)
		}
		c.RequestRender()
		return nil
	}
	o.RestoreFields(scene.Fields{
		Left:   d.Left,
		Top:    d.Top,
		Width:  d.Width,
		Height: d.Height,
		Angle:  d.Angle,
		ScaleX: d.ScaleX,
		ScaleY: d.ScaleY,
	})
	c.RequestRender()
	return nil
}
