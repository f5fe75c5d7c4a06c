package render

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/example/easel/internal/scene"
)

// setThickPixel stamps a filled square of side 2*thick-1 centred on (x, y).
func setThickPixel(img *image.RGBA, x, y int, col color.RGBA, thick int) {
	if thick < 1 {
		thick = 1
	}
	r := thick - 1
	b := img.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			px, py := x+dx, y+dy
			if px >= b.Min.X && px < b.Max.X && py >= b.Min.Y && py < b.Max.Y {
				img.SetRGBA(px, py, col)
			}
		}
	}
}

// strokeLine draws a Bresenham line from (x0, y0) to (x1, y1).
func strokeLine(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, thick int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 >= x1 {
		sx = -1
	}
	sy := 1
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy
	for {
		setThickPixel(img, x0, y0, col, thick)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// strokeArrow draws a line with a two-stroke head at the (x1, y1) end.
func strokeArrow(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA, thick int) {
	strokeLine(img, x0, y0, x1, y1, col, thick)
	angle := math.Atan2(float64(y1-y0), float64(x1-x0))
	size := float64(6 + thick*2)
	for _, side := range []float64{math.Pi / 6, -math.Pi / 6} {
		hx := x1 - int(size*math.Cos(angle+side))
		hy := y1 - int(size*math.Sin(angle+side))
		strokeLine(img, x1, y1, hx, hy, col, thick)
	}
}

// strokePolygon outlines the points in order, closing back to the first
// point when closed is set.
func strokePolygon(img *image.RGBA, pts []scene.Point, col color.RGBA, thick int, closed bool) {
	if len(pts) < 2 {
		return
	}
	for i := 0; i+1 < len(pts); i++ {
		strokeLine(img, int(pts[i].X), int(pts[i].Y), int(pts[i+1].X), int(pts[i+1].Y), col, thick)
	}
	if closed {
		last := len(pts) - 1
		strokeLine(img, int(pts[last].X), int(pts[last].Y), int(pts[0].X), int(pts[0].Y), col, thick)
	}
}

// fillPolygon rasterizes the polygon with an even-odd scanline sweep. Works
// for the convex and star-shaped outlines the scene produces.
func fillPolygon(img *image.RGBA, pts []scene.Point, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	minY := math.Inf(1)
	maxY := math.Inf(-1)
	for _, p := range pts {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	b := img.Bounds()
	y0 := int(math.Floor(minY))
	y1 := int(math.Ceil(maxY))
	if y0 < b.Min.Y {
		y0 = b.Min.Y
	}
	if y1 > b.Max.Y {
		y1 = b.Max.Y
	}

	xs := make([]float64, 0, len(pts))
	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		xs = xs[:0]
		for i := range pts {
			a := pts[i]
			c := pts[(i+1)%len(pts)]
			if (a.Y <= fy) == (c.Y <= fy) {
				continue
			}
			xs = append(xs, a.X+(fy-a.Y)/(c.Y-a.Y)*(c.X-a.X))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			from := int(math.Ceil(xs[i] - 0.5))
			to := int(math.Floor(xs[i+1] - 0.5))
			if from < b.Min.X {
				from = b.Min.X
			}
			if to >= b.Max.X {
				to = b.Max.X - 1
			}
			for x := from; x <= to; x++ {
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// Checkerboard fills r with an alternating light/dark grid of size-pixel
// cells, the backdrop views draw behind transparent canvas regions. It is
// never part of a flattened export.
func Checkerboard(dst *image.RGBA, r image.Rectangle, light, dark color.RGBA, size int) {
	if size < 1 {
		size = 1
	}
	r = r.Intersect(dst.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			col := light
			if ((x-r.Min.X)/size+(y-r.Min.Y)/size)%2 == 1 {
				col = dark
			}
			dst.SetRGBA(x, y, col)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
