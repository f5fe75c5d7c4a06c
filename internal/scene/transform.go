package scene

import "math"

// Transform is the geometry every object carries. Angle is in degrees,
// clockwise in screen coordinates. Width and Height are the unscaled frame;
// ScaleX/ScaleY stretch it.
type Transform struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
	Angle  float64
	ScaleX float64
	ScaleY float64
}

// Fields is the ordered set of transform fields undo snapshots record and
// restore. It deliberately matches Transform so capture and restore are
// plain copies.
type Fields = Transform

// CaptureFields returns a copy of the object's current transform fields.
func (o *Object) CaptureFields() Fields {
	return o.Transform
}

// RestoreFields writes previously captured fields back onto the object.
func (o *Object) RestoreFields(f Fields) {
	o.Transform = f
}

// RealizeTransform bakes the group's aggregate transform into the member so
// the member's fields read as absolute canvas-space values. The member's
// frame (Width, Height) is left alone; position, angle and scale compose.
// Callers that need the member back in group-relative form restore the
// fields they captured before the call.
func RealizeTransform(group, member *Object) {
	if group == nil || member == nil {
		return
	}
	x, y := rotatePoint(member.Left*group.ScaleX, member.Top*group.ScaleY, group.Angle)
	member.Left = group.Left + x
	member.Top = group.Top + y
	member.Angle += group.Angle
	member.ScaleX *= group.ScaleX
	member.ScaleY *= group.ScaleY
}

// relativizeTo rewrites the member's absolute fields as group-relative ones,
// the inverse of RealizeTransform. Only valid while the group transform is
// invertible (non-zero scale).
func relativizeTo(group, member *Object) {
	dx := member.Left - group.Left
	dy := member.Top - group.Top
	x, y := rotatePoint(dx, dy, -group.Angle)
	member.Left = x / group.ScaleX
	member.Top = y / group.ScaleY
	member.Angle -= group.Angle
	member.ScaleX /= group.ScaleX
	member.ScaleY /= group.ScaleY
}

// NewGroup builds a selection group over the members. The group frame is the
// members' common bounding box and its transform starts neutral, so forming
// a selection does not move anything on screen; member fields are rewritten
// to group-relative values, which is what undo snapshots must see through.
func NewGroup(members ...*Object) *Object {
	g := New(KindGroup)
	if len(members) == 0 {
		return g
	}
	bounds := members[0].Bounds()
	for _, m := range members[1:] {
		bounds = bounds.Union(m.Bounds())
	}
	g.Left = float64(bounds.Min.X)
	g.Top = float64(bounds.Min.Y)
	g.Width = float64(bounds.Dx())
	g.Height = float64(bounds.Dy())
	g.Members = make([]*Object, len(members))
	for i, m := range members {
		relativizeTo(g, m)
		m.Group = g
		g.Members[i] = m
	}
	return g
}

// Dissolve bakes the group transform into every member and detaches them,
// returning the members in their absolute state. The group is empty
// afterwards.
func (o *Object) Dissolve() []*Object {
	if !o.IsGroup() {
		return nil
	}
	members := o.Members
	for _, m := range members {
		RealizeTransform(o, m)
		m.Group = nil
	}
	o.Members = nil
	return members
}

// AbsoluteTransform returns the object's transform composed with every
// enclosing group, without mutating anything.
func (o *Object) AbsoluteTransform() Transform {
	t := o.Transform
	for g := o.Group; g != nil; g = g.Group {
		x, y := rotatePoint(t.Left*g.ScaleX, t.Top*g.ScaleY, g.Angle)
		t.Left = g.Left + x
		t.Top = g.Top + y
		t.Angle += g.Angle
		t.ScaleX *= g.ScaleX
		t.ScaleY *= g.ScaleY
	}
	return t
}

// Apply maps an object-local point through the transform: scale, then
// rotate, then translate.
func (t Transform) Apply(p Point) Point {
	x, y := rotatePoint(p.X*t.ScaleX, p.Y*t.ScaleY, t.Angle)
	return Pt(t.Left+x, t.Top+y)
}

func rotatePoint(x, y, angle float64) (float64, float64) {
	if angle == 0 {
		return x, y
	}
	rad := angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return x*cos - y*sin, x*sin + y*cos
}
