package render

import (
	"context"
	"image/color"
	"testing"

	"github.com/example/easel/internal/scene"
)

func TestMeasureTextGrowsWithSize(t *testing.T) {
	w1, h1, err := MeasureText("easel", scene.TextStyle{Size: 12})
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	w2, h2, err := MeasureText("easel", scene.TextStyle{Size: 24})
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if w1 <= 0 || h1 <= 0 {
		t.Fatalf("degenerate measure %vx%v", w1, h1)
	}
	if w2 <= w1 || h2 <= h1 {
		t.Fatalf("size 24 (%vx%v) should measure larger than size 12 (%vx%v)", w2, h2, w1, h1)
	}
}

func TestMeasureTextMultiline(t *testing.T) {
	_, single, err := MeasureText("a", scene.TextStyle{Size: 16})
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	w, double, err := MeasureText("a\nwide line", scene.TextStyle{Size: 16})
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if double != single*2 {
		t.Fatalf("two lines measured %v, want %v", double, single*2)
	}
	wWide, _, err := MeasureText("wide line", scene.TextStyle{Size: 16})
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	if w != wWide {
		t.Fatalf("multiline width %v, want widest line %v", w, wWide)
	}
}

func TestMeasureTextStyleVariants(t *testing.T) {
	for _, style := range []scene.TextStyle{
		{Size: 16},
		{Size: 16, Bold: true},
		{Size: 16, Italic: true},
		{Size: 16, Bold: true, Italic: true},
	} {
		w, h, err := MeasureText("Mixed", style)
		if err != nil {
			t.Fatalf("measure %+v: %v", style, err)
		}
		if w <= 0 || h <= 0 {
			t.Fatalf("degenerate measure for %+v", style)
		}
	}
}

func TestComposeTextWritesPixels(t *testing.T) {
	label := scene.New(scene.KindText)
	label.Left, label.Top = 5, 5
	label.Text = "Hi"
	label.Style = scene.TextStyle{Size: 20}
	label.Fill = color.RGBA{A: 255}
	w, h, err := MeasureText(label.Text, label.Style)
	if err != nil {
		t.Fatalf("measure: %v", err)
	}
	label.Width, label.Height = w, h

	out, err := Compose(context.Background(), State{Base: whiteBase(80, 60), Objects: []*scene.Object{label}})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	dark := 0
	b := out.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if out.RGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatal("text drew no pixels")
	}
}

func TestComposeTextUnderlineAddsPixels(t *testing.T) {
	count := func(underline bool) int {
		label := scene.New(scene.KindText)
		label.Text = "under"
		label.Style = scene.TextStyle{Size: 20, Underline: underline}
		label.Fill = color.RGBA{A: 255}
		out, err := Compose(context.Background(), State{Base: whiteBase(100, 40), Objects: []*scene.Object{label}})
		if err != nil {
			t.Fatalf("compose: %v", err)
		}
		n := 0
		b := out.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if out.RGBAAt(x, y).R < 128 {
					n++
				}
			}
		}
		return n
	}
	if plain, underlined := count(false), count(true); underlined <= plain {
		t.Fatalf("underline added no pixels: %d vs %d", underlined, plain)
	}
}

func TestFaceForRejectsNothing(t *testing.T) {
	// Zero size falls back to the default instead of failing.
	face, err := faceFor(scene.TextStyle{})
	if err != nil {
		t.Fatalf("faceFor: %v", err)
	}
	if face == nil {
		t.Fatal("nil face")
	}
}

func TestComposeEmptyTextIsNoop(t *testing.T) {
	label := scene.New(scene.KindText)
	label.Fill = color.RGBA{A: 255}
	out, err := Compose(context.Background(), State{Base: whiteBase(10, 10), Objects: []*scene.Object{label}})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if got := out.RGBAAt(5, 5); got.R != 255 {
		t.Fatalf("empty text changed pixels: %+v", got)
	}
}
