// Package scene holds the object model the editor mutates: shapes, text,
// icons, images and ephemeral selection groups, each carrying the transform
// fields undo snapshots are made of.
package scene

import (
	"fmt"
	"image"
	"image/color"
)

// Kind identifies what an Object draws as.
type Kind string

const (
	// KindRect is an axis-aligned rectangle outline or fill.
	KindRect Kind = "rect"
	// KindEllipse is an ellipse inscribed in the object bounds.
	KindEllipse Kind = "ellipse"
	// KindLine is a straight stroke between two points.
	KindLine Kind = "line"
	// KindArrow is a line with an arrow head at its end point.
	KindArrow Kind = "arrow"
	// KindPath is a free polyline or polygon path.
	KindPath Kind = "path"
	// KindText is a text label, possibly spanning several lines.
	KindText Kind = "text"
	// KindIcon is a filled icon resolved from the embedded icon library.
	KindIcon Kind = "icon"
	// KindImage is a raster image placed on the canvas.
	KindImage Kind = "image"
	// KindGroup is a composite of member objects in group-relative
	// coordinates, used for multi-object selections.
	KindGroup Kind = "group"
)

// Point is a coordinate in canvas space (or object-relative space for the
// Points of a line or path).
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Shadow describes a drop shadow drawn behind an object.
type Shadow struct {
	Color   color.RGBA
	Blur    int
	OffsetX int
	OffsetY int
	Opacity float64
}

// DefaultFontSize is used when a text style does not name a size.
const DefaultFontSize = 16

// TextStyle carries the styling of a text object.
type TextStyle struct {
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
}

// Object is a single scene node. One struct covers every Kind; the fields
// that do not apply to a Kind stay at their zero values.
type Object struct {
	// ID is the registry identity stamped by the canvas object registry on
	// first add. Zero means not yet stamped. Ids are never reused while the
	// process runs, and an object keeps its id across remove/re-add cycles.
	ID int

	Kind Kind
	Transform

	Fill        color.RGBA
	Stroke      color.RGBA
	StrokeWidth float64
	Opacity     float64
	Shadow      *Shadow

	// Text fields, used when Kind == KindText.
	Text  string
	Style TextStyle

	// Points are object-relative coordinates for lines and arrows.
	Points []Point

	// Path holds parsed path data for icons and free paths.
	Path Path
	// IconName records which library icon the path came from.
	IconName string

	// Image is the raster payload for KindImage.
	Image image.Image

	// Members are the children of a group, positioned relative to the
	// group's transform. Group is the back-pointer a member holds while it
	// belongs to a group.
	Members []*Object
	Group   *Object
}

// New returns an Object of the given kind with neutral transform and full
// opacity.
func New(kind Kind) *Object {
	return &Object{
		Kind:      kind,
		Transform: Transform{ScaleX: 1, ScaleY: 1},
		Opacity:   1,
	}
}

// IsGroup reports whether the object is a composite selection group.
func (o *Object) IsGroup() bool {
	return o != nil && o.Kind == KindGroup
}

// Bounds returns the axis-aligned bounding box of the object's scaled frame.
// Rotation is ignored; callers needing rotated extents compose corners
// themselves.
func (o *Object) Bounds() image.Rectangle {
	w := o.Width * o.ScaleX
	h := o.Height * o.ScaleY
	return image.Rect(int(o.Left), int(o.Top), int(o.Left+w), int(o.Top+h))
}

// Property returns the named property value. The names mirror the undo datum
// fields plus the style properties concrete commands mutate.
func (o *Object) Property(name string) (any, bool) {
	switch name {
	case "left":
		return o.Left, true
	case "top":
		return o.Top, true
	case "width":
		return o.Width, true
	case "height":
		return o.Height, true
	case "angle":
		return o.Angle, true
	case "scaleX":
		return o.ScaleX, true
	case "scaleY":
		return o.ScaleY, true
	case "fill":
		return o.Fill, true
	case "stroke":
		return o.Stroke, true
	case "strokeWidth":
		return o.StrokeWidth, true
	case "opacity":
		return o.Opacity, true
	case "text":
		return o.Text, true
	case "fontSize":
		return o.Style.Size, true
	case "bold":
		return o.Style.Bold, true
	case "italic":
		return o.Style.Italic, true
	case "underline":
		return o.Style.Underline, true
	case "kind":
		return string(o.Kind), true
	}
	return nil, false
}

// SetProperty assigns the named property. Unknown names and mismatched value
// types are errors so a bad property bag surfaces instead of silently doing
// nothing.
func (o *Object) SetProperty(name string, value any) error {
	switch name {
	case "left", "top", "width", "height", "angle", "scaleX", "scaleY",
		"strokeWidth", "opacity", "fontSize":
		f, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("property %s: want number, got %T", name, value)
		}
		switch name {
		case "left":
			o.Left = f
		case "top":
			o.Top = f
		case "width":
			o.Width = f
		case "height":
			o.Height = f
		case "angle":
			o.Angle = f
		case "scaleX":
			o.ScaleX = f
		case "scaleY":
			o.ScaleY = f
		case "strokeWidth":
			o.StrokeWidth = f
		case "opacity":
			o.Opacity = f
		case "fontSize":
			o.Style.Size = f
		}
		return nil
	case "fill", "stroke":
		c, ok := value.(color.RGBA)
		if !ok {
			return fmt.Errorf("property %s: want color.RGBA, got %T", name, value)
		}
		if name == "fill" {
			o.Fill = c
		} else {
			o.Stroke = c
		}
		return nil
	case "text":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("property text: want string, got %T", value)
		}
		o.Text = s
		return nil
	case "bold", "italic", "underline":
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("property %s: want bool, got %T", name, value)
		}
		switch name {
		case "bold":
			o.Style.Bold = b
		case "italic":
			o.Style.Italic = b
		case "underline":
			o.Style.Underline = b
		}
		return nil
	case "kind":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("property kind: want string, got %T", value)
		}
		o.Kind = Kind(s)
		return nil
	}
	return fmt.Errorf("unknown property %q", name)
}

// SetProperties assigns every property in the bag, failing on the first bad
// entry.
func (o *Object) SetProperties(props map[string]any) error {
	for name, value := range props {
		if err := o.SetProperty(name, value); err != nil {
			return err
		}
	}
	return nil
}

// CaptureProperties snapshots the named properties into a bag. Unknown names
// are skipped so callers can pass a command's full property list without
// caring which apply to the object kind.
func (o *Object) CaptureProperties(names ...string) map[string]any {
	out := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := o.Property(name); ok {
			out[name] = v
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
