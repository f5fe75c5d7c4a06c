package editor

import "image/color"

// PaletteColor is a quick-pick color offered by the toolbar and the colors
// listing. Names resolve through the SVG 1.1 color table, so they are valid
// arguments wherever a command takes a color.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{Name: "#E02424", Color: color.RGBA{R: 224, G: 36, B: 36, A: 255}},
	{Name: "Black", Color: color.RGBA{A: 255}},
	{Name: "White", Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	{Name: "Red", Color: color.RGBA{R: 255, A: 255}},
	{Name: "Orange", Color: color.RGBA{R: 255, G: 165, A: 255}},
	{Name: "Yellow", Color: color.RGBA{R: 255, G: 255, A: 255}},
	{Name: "Lime", Color: color.RGBA{G: 255, A: 255}},
	{Name: "Green", Color: color.RGBA{G: 128, A: 255}},
	{Name: "Teal", Color: color.RGBA{G: 128, B: 128, A: 255}},
	{Name: "Cyan", Color: color.RGBA{G: 255, B: 255, A: 255}},
	{Name: "Blue", Color: color.RGBA{B: 255, A: 255}},
	{Name: "Navy", Color: color.RGBA{B: 128, A: 255}},
	{Name: "Purple", Color: color.RGBA{R: 128, B: 128, A: 255}},
	{Name: "Magenta", Color: color.RGBA{R: 255, B: 255, A: 255}},
	{Name: "Silver", Color: color.RGBA{R: 192, G: 192, B: 192, A: 255}},
	{Name: "Gray", Color: color.RGBA{R: 128, G: 128, B: 128, A: 255}},
}

var suggestedWidths = []float64{1, 2, 3, 5, 8, 12}

// PaletteColors returns the quick-pick colors in display order.
func PaletteColors() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// SuggestedWidths returns the stroke widths offered by the toolbar.
func SuggestedWidths() []float64 {
	out := make([]float64, len(suggestedWidths))
	copy(out, suggestedWidths)
	return out
}
