package scene

import (
	"image/color"
	"strings"
	"testing"
)

func TestPropertyRoundTrip(t *testing.T) {
	o := New(KindText)
	o.Text = "hello"
	o.Style.Size = 24

	props := map[string]any{
		"left":     float64(12),
		"top":      float64(34),
		"angle":    float64(45),
		"fill":     color.RGBA{R: 255, A: 255},
		"text":     "changed",
		"fontSize": float64(32),
		"bold":     true,
	}
	if err := o.SetProperties(props); err != nil {
		t.Fatalf("SetProperties failed: %v", err)
	}

	for name, want := range props {
		got, ok := o.Property(name)
		if !ok {
			t.Fatalf("property %s missing after set", name)
		}
		if got != want {
			t.Errorf("property %s: got %v want %v", name, got, want)
		}
	}
}

func TestSetPropertyAcceptsInts(t *testing.T) {
	o := New(KindRect)
	if err := o.SetProperty("left", 10); err != nil {
		t.Fatalf("int left: %v", err)
	}
	if o.Left != 10 {
		t.Errorf("left = %v, want 10", o.Left)
	}
}

func TestSetPropertyUnknownName(t *testing.T) {
	o := New(KindRect)
	err := o.SetProperty("blur", 1.0)
	if err == nil {
		t.Fatal("expected error for unknown property")
	}
	if !strings.Contains(err.Error(), "unknown property") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSetPropertyTypeMismatch(t *testing.T) {
	o := New(KindText)
	if err := o.SetProperty("text", 42); err == nil {
		t.Fatal("expected type error for text property")
	}
	if err := o.SetProperty("fill", "red"); err == nil {
		t.Fatal("expected type error for fill property")
	}
}

func TestCapturePropertiesSkipsUnknown(t *testing.T) {
	o := New(KindRect)
	o.Left = 5
	bag := o.CaptureProperties("left", "no-such-prop")
	if len(bag) != 1 {
		t.Fatalf("expected 1 captured property, got %d", len(bag))
	}
	if bag["left"] != float64(5) {
		t.Errorf("left = %v, want 5", bag["left"])
	}
}

func TestNewDefaults(t *testing.T) {
	o := New(KindEllipse)
	if o.ScaleX != 1 || o.ScaleY != 1 {
		t.Errorf("scale defaults wrong: (%v,%v)", o.ScaleX, o.ScaleY)
	}
	if o.Opacity != 1 {
		t.Errorf("opacity default wrong: %v", o.Opacity)
	}
	if o.ID != 0 {
		t.Errorf("new object should be unstamped, got id %d", o.ID)
	}
}
