package scene

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRealizeTransformComposesGroup(t *testing.T) {
	g := New(KindGroup)
	g.Left, g.Top = 100, 50
	g.Angle = 90
	g.ScaleX, g.ScaleY = 2, 2

	m := New(KindRect)
	m.Left, m.Top = 10, 0
	m.Width, m.Height = 4, 4
	m.Angle = 15

	RealizeTransform(g, m)

	// (10,0) scaled by 2 then rotated 90 degrees lands at (0,20).
	if !almostEqual(m.Left, 100) || !almostEqual(m.Top, 70) {
		t.Fatalf("unexpected position (%v,%v), want (100,70)", m.Left, m.Top)
	}
	if !almostEqual(m.Angle, 105) {
		t.Errorf("unexpected angle %v, want 105", m.Angle)
	}
	if !almostEqual(m.ScaleX, 2) || !almostEqual(m.ScaleY, 2) {
		t.Errorf("unexpected scale (%v,%v), want (2,2)", m.ScaleX, m.ScaleY)
	}
	if !almostEqual(m.Width, 4) || !almostEqual(m.Height, 4) {
		t.Errorf("frame changed: (%v,%v), want (4,4)", m.Width, m.Height)
	}
}

func TestCaptureRestoreFieldsRoundTrip(t *testing.T) {
	g := New(KindGroup)
	g.Left, g.Top = 33, 44
	g.Angle = 30
	g.ScaleX, g.ScaleY = 1.5, 0.5

	m := New(KindEllipse)
	m.Left, m.Top = 7, 9
	m.Width, m.Height = 20, 10
	m.Angle = 5

	before := m.CaptureFields()
	RealizeTransform(g, m)
	if m.Transform == before {
		t.Fatal("realize did not change the member fields")
	}
	m.RestoreFields(before)
	if m.Transform != before {
		t.Fatalf("restore mismatch: %+v vs %+v", m.Transform, before)
	}
}

func TestNewGroupKeepsAbsolutePositions(t *testing.T) {
	a := New(KindRect)
	a.Left, a.Top, a.Width, a.Height = 10, 10, 20, 20
	b := New(KindRect)
	b.Left, b.Top, b.Width, b.Height = 50, 30, 10, 10

	wantA := a.Transform
	wantB := b.Transform

	g := NewGroup(a, b)
	if a.Group != g || b.Group != g {
		t.Fatal("members not attached to group")
	}
	if a.Transform == wantA {
		t.Fatal("member fields were not rewritten to group-relative values")
	}

	gotA := a.AbsoluteTransform()
	gotB := b.AbsoluteTransform()
	for _, pair := range []struct {
		got, want Transform
	}{{gotA, wantA}, {gotB, wantB}} {
		if !almostEqual(pair.got.Left, pair.want.Left) ||
			!almostEqual(pair.got.Top, pair.want.Top) ||
			!almostEqual(pair.got.Angle, pair.want.Angle) ||
			!almostEqual(pair.got.ScaleX, pair.want.ScaleX) {
			t.Errorf("absolute transform drifted: got %+v want %+v", pair.got, pair.want)
		}
	}
}

func TestDissolveRestoresAbsoluteFields(t *testing.T) {
	a := New(KindRect)
	a.Left, a.Top, a.Width, a.Height = 10, 10, 20, 20
	want := a.Transform

	g := NewGroup(a)
	g.Left += 15
	g.Angle = 45

	members := g.Dissolve()
	if len(members) != 1 || members[0] != a {
		t.Fatalf("unexpected members %v", members)
	}
	if a.Group != nil {
		t.Fatal("member still points at dissolved group")
	}
	if almostEqual(a.Left, want.Left) && almostEqual(a.Top, want.Top) {
		t.Fatal("expected group movement to carry into the member")
	}
	// Moving the group by +15 in x before dissolving must shift the member
	// by the same amount along the rotated axis; verify via a fresh compose.
	if !almostEqual(a.Angle, want.Angle+45) {
		t.Errorf("unexpected angle %v, want %v", a.Angle, want.Angle+45)
	}
}

func TestRelativizeRealizeRoundTrip(t *testing.T) {
	g := New(KindGroup)
	g.Left, g.Top = 12, -3
	g.Angle = 75
	g.ScaleX, g.ScaleY = 2, 4

	m := New(KindIcon)
	m.Left, m.Top = 40, 25
	m.Angle = 10
	m.ScaleX, m.ScaleY = 1.25, 0.75
	want := m.Transform

	relativizeTo(g, m)
	RealizeTransform(g, m)

	if !almostEqual(m.Left, want.Left) || !almostEqual(m.Top, want.Top) ||
		!almostEqual(m.Angle, want.Angle) ||
		!almostEqual(m.ScaleX, want.ScaleX) || !almostEqual(m.ScaleY, want.ScaleY) {
		t.Fatalf("round trip drifted: got %+v want %+v", m.Transform, want)
	}
}
