package render

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/easel/internal/scene"
)

type fontStyle struct {
	bold   bool
	italic bool
}

type faceKey struct {
	style fontStyle
	size  float64
}

var (
	fontsOnce sync.Once
	fontsErr  error
	fonts     map[fontStyle]*opentype.Font
	faceCache sync.Map // faceKey -> font.Face
)

func loadFonts() {
	sources := []struct {
		style fontStyle
		data  []byte
	}{
		{fontStyle{}, goregular.TTF},
		{fontStyle{bold: true}, gobold.TTF},
		{fontStyle{italic: true}, goitalic.TTF},
		{fontStyle{bold: true, italic: true}, gobolditalic.TTF},
	}
	fonts = make(map[fontStyle]*opentype.Font, len(sources))
	for _, s := range sources {
		f, err := opentype.Parse(s.data)
		if err != nil {
			fontsErr = fmt.Errorf("parse font: %w", err)
			return
		}
		fonts[s.style] = f
	}
}

// faceFor returns a cached face matching the style's weight, slant and point
// size. Faces are built on demand and kept for the life of the process.
func faceFor(style scene.TextStyle) (font.Face, error) {
	fontsOnce.Do(loadFonts)
	if fontsErr != nil {
		return nil, fontsErr
	}
	size := style.Size
	if size <= 0 {
		size = scene.DefaultFontSize
	}
	key := faceKey{style: fontStyle{bold: style.Bold, italic: style.Italic}, size: size}
	if f, ok := faceCache.Load(key); ok {
		return f.(font.Face), nil
	}
	face, err := opentype.NewFace(fonts[key.style], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face for size %v: %w", size, err)
	}
	faceCache.Store(key, face)
	return face, nil
}

// MeasureText reports the pixel box the text occupies when drawn with the
// style. Multi-line text measures as the widest line by the line count.
func MeasureText(text string, style scene.TextStyle) (float64, float64, error) {
	face, err := faceFor(style)
	if err != nil {
		return 0, 0, err
	}
	lineHeight := face.Metrics().Height.Ceil()
	lines := strings.Split(text, "\n")
	var widest fixed.Int26_6
	for _, line := range lines {
		if w := font.MeasureString(face, line); w > widest {
			widest = w
		}
	}
	return float64(widest.Ceil()), float64(lineHeight * len(lines)), nil
}

// drawTextObject rasterizes the text at its natural size, then scales,
// rotates and composites the raster through the object transform.
func drawTextObject(img *image.RGBA, o *scene.Object, t scene.Transform) error {
	if o.Text == "" {
		return nil
	}
	face, err := faceFor(o.Style)
	if err != nil {
		return err
	}
	w, h, err := MeasureText(o.Text, o.Style)
	if err != nil {
		return err
	}
	if w <= 0 || h <= 0 {
		return nil
	}

	layer := image.NewRGBA(image.Rect(0, 0, int(w)+1, int(h)+1))
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()
	src := image.NewUniform(o.Fill)
	for i, line := range strings.Split(o.Text, "\n") {
		baseline := ascent + i*lineHeight
		d := font.Drawer{Dst: layer, Src: src, Face: face, Dot: fixed.P(0, baseline)}
		d.DrawString(line)
		if o.Style.Underline {
			lineWidth := font.MeasureString(face, line).Ceil()
			thick := int(o.Style.Size / 15)
			if thick < 1 {
				thick = 1
			}
			for y := baseline + 2; y < baseline+2+thick && y < layer.Bounds().Max.Y; y++ {
				for x := 0; x < lineWidth; x++ {
					layer.SetRGBA(x, y, o.Fill)
				}
			}
		}
	}
	compositeTransformed(img, layer, t, w, h)
	return nil
}
