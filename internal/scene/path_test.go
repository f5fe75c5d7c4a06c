package scene

import (
	"testing"
)

func TestParsePathArrow(t *testing.T) {
	// The arrow icon from the library: one closed subpath.
	data := "M40,12 L40,0 L24,16 L40,32 L40,20 L0,20 L0,12 Z"
	p, err := ParsePath(data)
	if err != nil {
		t.Fatalf("ParsePath failed: %v", err)
	}
	if len(p.Subpaths) != 1 {
		t.Fatalf("expected 1 subpath, got %d", len(p.Subpaths))
	}
	sp := p.Subpaths[0]
	if !sp.Closed {
		t.Error("expected subpath to be closed")
	}
	if len(sp.Points) != 7 {
		t.Fatalf("expected 7 points, got %d", len(sp.Points))
	}
	if sp.Points[0] != Pt(40, 12) {
		t.Errorf("unexpected first point %+v", sp.Points[0])
	}
	w, h := p.Bounds()
	if w != 40 || h != 32 {
		t.Errorf("unexpected bounds %vx%v, want 40x32", w, h)
	}
}

func TestParsePathMultipleSubpaths(t *testing.T) {
	p, err := ParsePath("M0 0 L10 0 L10 10 Z M20 20 L30 20")
	if err != nil {
		t.Fatalf("ParsePath failed: %v", err)
	}
	if len(p.Subpaths) != 2 {
		t.Fatalf("expected 2 subpaths, got %d", len(p.Subpaths))
	}
	if !p.Subpaths[0].Closed {
		t.Error("first subpath should be closed")
	}
	if p.Subpaths[1].Closed {
		t.Error("second subpath should be open")
	}
}

func TestParsePathBareCoordinatesContinue(t *testing.T) {
	p, err := ParsePath("M0 0 L10 0 20 0 30 0")
	if err != nil {
		t.Fatalf("ParsePath failed: %v", err)
	}
	if got := len(p.Subpaths[0].Points); got != 4 {
		t.Fatalf("expected 4 points, got %d", got)
	}
}

func TestParsePathErrors(t *testing.T) {
	cases := []string{
		"",
		"L10 10",
		"M1",
		"M1 banana",
	}
	for _, input := range cases {
		if _, err := ParsePath(input); err == nil {
			t.Errorf("expected error for %q", input)
		}
	}
}
