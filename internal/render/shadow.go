package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/example/easel/internal/scene"
)

// DefaultShadow returns the drop shadow applied when a caller asks for a
// shadow without tuning it.
func DefaultShadow() scene.Shadow {
	return scene.Shadow{
		Color:   color.RGBA{A: 255},
		Blur:    24,
		OffsetX: 16,
		OffsetY: 16,
		Opacity: 0.55,
	}
}

// compositeShadow draws the blurred silhouette of layer onto dst, offset per
// the shadow. The caller composites the layer itself afterwards, so the
// shadow always sits underneath. Parts that fall outside dst clip away.
func compositeShadow(dst *image.RGBA, layer *image.RGBA, sh scene.Shadow) {
	opacity := clampOpacity(sh.Opacity)
	if opacity == 0 {
		return
	}
	mask := alphaMask(layer)
	blurred := boxBlurGray(mask, sh.Blur)
	tint := sh.Color
	tint.A = uint8(opacity*float64(tint.A) + 0.5)
	if tint.A == 0 {
		return
	}
	at := layer.Bounds().Add(image.Pt(sh.OffsetX, sh.OffsetY))
	draw.DrawMask(dst, at, image.NewUniform(tint), image.Point{}, blurred, blurred.Bounds().Min, draw.Over)
}

// ApplyShadow rebases img onto a canvas grown to hold the shadow and
// composites the blurred silhouette underneath. The returned offset is where
// the original top-left corner landed, so callers can keep viewport math
// stable. Used on export, where growing the output is fine; on-canvas object
// shadows go through compositeShadow and clip instead.
func ApplyShadow(img *image.RGBA, sh scene.Shadow) (*image.RGBA, image.Point) {
	if img == nil {
		return nil, image.Point{}
	}
	if img.Bounds().Empty() || clampOpacity(sh.Opacity) == 0 {
		return img, image.Point{}
	}

	srcBounds := img.Bounds()
	padded := srcBounds
	if sh.Blur > 0 {
		padded = padded.Inset(-sh.Blur)
	}
	shadowBounds := padded.Add(image.Pt(sh.OffsetX, sh.OffsetY))
	composite := srcBounds.Union(shadowBounds)

	dst := image.NewRGBA(composite.Sub(composite.Min))
	layer := image.NewRGBA(dst.Bounds())
	draw.Draw(layer, srcBounds.Sub(composite.Min), img, srcBounds.Min, draw.Src)
	compositeShadow(dst, layer, sh)
	draw.Draw(dst, srcBounds.Sub(composite.Min), img, srcBounds.Min, draw.Over)

	return dst, srcBounds.Min.Sub(composite.Min)
}

// alphaMask extracts the alpha channel of src as a grayscale image with the
// same bounds.
func alphaMask(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	mask := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if a := src.RGBAAt(x, y).A; a != 0 {
				mask.SetGray(x, y, color.Gray{Y: a})
			}
		}
	}
	return mask
}

// boxBlurGray box-blurs the mask with the given radius using prefix sums, one
// horizontal pass then one vertical pass.
func boxBlurGray(src *image.Gray, radius int) *image.Gray {
	if radius <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewGray(b)
	dst := image.NewGray(b)

	prefix := make([]int, w+1)
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(row[x])
		}
		blurSpan(tmp.Pix[y*tmp.Stride:], prefix, w, radius, 1)
	}

	prefix = make([]int, h+1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		blurSpan(dst.Pix[x:], prefix, h, radius, dst.Stride)
	}
	return dst
}

// blurSpan writes n box-averaged samples of prefix into out at the given
// stride.
func blurSpan(out []uint8, prefix []int, n, radius, stride int) {
	for i := 0; i < n; i++ {
		lo := i - radius
		if lo < 0 {
			lo = 0
		}
		hi := i + radius
		if hi >= n {
			hi = n - 1
		}
		out[i*stride] = uint8((prefix[hi+1] - prefix[lo]) / (hi - lo + 1))
	}
}

func clampOpacity(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
