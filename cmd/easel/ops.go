package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/example/easel/internal/clipboard"
	"github.com/example/easel/internal/editor"
	"github.com/example/easel/internal/scene"
	"golang.org/x/image/colornames"
)

// runOp executes one editing line against the editor and returns a short
// confirmation. The verbs here are the shared vocabulary of apply, repl,
// session, and render scripts; undo/redo/save stay with the shells because
// their meaning differs per shell.
func runOp(ctx context.Context, ed *editor.Editor, tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", fmt.Errorf("empty operation")
	}
	verb := strings.ToLower(tokens[0])
	args := tokens[1:]
	switch verb {
	case "rotate":
		deg, err := expectFloats(args, 1, verb)
		if err != nil {
			return "", err
		}
		if err := ed.Rotate(ctx, deg[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("rotated by %g", deg[0]), nil
	case "setangle":
		deg, err := expectFloats(args, 1, verb)
		if err != nil {
			return "", err
		}
		if err := ed.SetAngle(ctx, deg[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("angle set to %g", deg[0]), nil
	case "flip":
		if len(args) != 1 {
			return "", fmt.Errorf("flip requires an axis (h or v)")
		}
		if err := ed.Flip(ctx, args[0]); err != nil {
			return "", err
		}
		return "flipped " + args[0], nil
	case "crop":
		vals, err := expectInts(args, 4, verb)
		if err != nil {
			return "", err
		}
		if err := ed.Crop(ctx, vals[0], vals[1], vals[2], vals[3]); err != nil {
			return "", err
		}
		return fmt.Sprintf("cropped to %dx%d", vals[2], vals[3]), nil
	case "resize":
		w, h, err := parseResizeArgs(args)
		if err != nil {
			return "", err
		}
		if err := ed.Resize(ctx, w, h); err != nil {
			return "", err
		}
		return fmt.Sprintf("resized to %dx%d", w, h), nil
	case "load":
		if len(args) != 1 {
			return "", fmt.Errorf("load requires an image path")
		}
		img, err := loadImageFile(args[0])
		if err != nil {
			return "", err
		}
		if err := ed.LoadImage(ctx, img); err != nil {
			return "", err
		}
		return "loaded " + args[0], nil
	case "filter":
		if len(args) < 1 || len(args) > 2 {
			return "", fmt.Errorf("filter requires a name and an optional amount")
		}
		amount := 0.0
		if len(args) == 2 {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return "", fmt.Errorf("invalid filter amount %q", args[1])
			}
			amount = v
		}
		if err := ed.ApplyFilter(ctx, args[0], amount); err != nil {
			return "", err
		}
		return "applied " + args[0], nil
	case "unfilter":
		if len(args) != 1 {
			return "", fmt.Errorf("unfilter requires a filter name")
		}
		if err := ed.RemoveFilter(ctx, args[0]); err != nil {
			return "", err
		}
		return "removed " + args[0], nil
	case "shape":
		if len(args) != 5 {
			return "", fmt.Errorf("shape requires kind x y w h")
		}
		vals, err := expectFloats(args[1:], 4, verb)
		if err != nil {
			return "", err
		}
		o, err := ed.AddShape(ctx, scene.Kind(strings.ToLower(args[0])), vals[0], vals[1], vals[2], vals[3])
		if err != nil {
			return "", err
		}
		return describeObject(ed, o), nil
	case "text":
		if len(args) != 3 {
			return "", fmt.Errorf("text requires quoted content and x y")
		}
		pos, err := expectFloats(args[1:], 2, verb)
		if err != nil {
			return "", err
		}
		o, err := ed.AddText(ctx, args[0], pos[0], pos[1])
		if err != nil {
			return "", err
		}
		return describeObject(ed, o), nil
	case "icon":
		if len(args) != 3 {
			return "", fmt.Errorf("icon requires a name and x y")
		}
		pos, err := expectFloats(args[1:], 2, verb)
		if err != nil {
			return "", err
		}
		o, err := ed.AddIcon(ctx, args[0], pos[0], pos[1])
		if err != nil {
			return "", err
		}
		return describeObject(ed, o), nil
	case "image":
		if len(args) != 3 {
			return "", fmt.Errorf("image requires a path and x y")
		}
		pos, err := expectFloats(args[1:], 2, verb)
		if err != nil {
			return "", err
		}
		img, err := loadImageFile(args[0])
		if err != nil {
			return "", err
		}
		o, err := ed.AddImage(ctx, img, pos[0], pos[1])
		if err != nil {
			return "", err
		}
		return describeObject(ed, o), nil
	case "paste":
		pos := []float64{0, 0}
		if len(args) != 0 {
			var err error
			if pos, err = expectFloats(args, 2, verb); err != nil {
				return "", err
			}
		}
		img, err := clipboard.ReadImage()
		if err != nil {
			return "", fmt.Errorf("paste: %w", err)
		}
		o, err := ed.AddImage(ctx, img, pos[0], pos[1])
		if err != nil {
			return "", err
		}
		return describeObject(ed, o), nil
	case "remove":
		target, rest, err := parseTarget(args)
		if err != nil {
			return "", err
		}
		if len(rest) != 0 {
			return "", fmt.Errorf("remove takes only a target")
		}
		if err := ed.RemoveObject(ctx, target); err != nil {
			return "", err
		}
		return "removed", nil
	case "clear":
		if len(args) != 0 {
			return "", fmt.Errorf("clear takes no arguments")
		}
		if err := ed.ClearObjects(ctx); err != nil {
			return "", err
		}
		return "cleared", nil
	case "move":
		target, rest, err := parseTarget(args)
		if err != nil {
			return "", err
		}
		pos, err := expectFloats(rest, 2, verb)
		if err != nil {
			return "", err
		}
		if err := ed.SetObjectPosition(ctx, target, pos[0], pos[1]); err != nil {
			return "", err
		}
		return fmt.Sprintf("moved to %g,%g", pos[0], pos[1]), nil
	case "set":
		target, rest, err := parseTarget(args)
		if err != nil {
			return "", err
		}
		props, err := parseProps(rest)
		if err != nil {
			return "", err
		}
		if err := ed.SetObjectProperties(ctx, target, props); err != nil {
			return "", err
		}
		return fmt.Sprintf("set %d propert%s", len(props), pluralY(len(props))), nil
	case "retext":
		target, rest, err := parseTarget(args)
		if err != nil {
			return "", err
		}
		if len(rest) != 1 {
			return "", fmt.Errorf("retext requires quoted content")
		}
		if err := ed.ChangeText(ctx, target, rest[0]); err != nil {
			return "", err
		}
		return "text changed", nil
	case "restyle":
		target, rest, err := parseTarget(args)
		if err != nil {
			return "", err
		}
		style, err := parseTextStyle(ed, target, rest)
		if err != nil {
			return "", err
		}
		if err := ed.ChangeTextStyle(ctx, target, style); err != nil {
			return "", err
		}
		return "style changed", nil
	case "recolor":
		target, rest, err := parseTarget(args)
		if err != nil {
			return "", err
		}
		if len(rest) != 1 {
			return "", fmt.Errorf("recolor requires a color")
		}
		fill, err := parseColor(rest[0])
		if err != nil {
			return "", err
		}
		if err := ed.ChangeIconColor(ctx, target, fill); err != nil {
			return "", err
		}
		return "recolored", nil
	case "reshape":
		target, rest, err := parseTarget(args)
		if err != nil {
			return "", err
		}
		if len(rest) != 1 {
			return "", fmt.Errorf("reshape requires a shape kind")
		}
		if err := ed.ChangeShape(ctx, target, scene.Kind(strings.ToLower(rest[0]))); err != nil {
			return "", err
		}
		return "reshaped", nil
	case "select":
		ids, err := expectInts(args, len(args), verb)
		if err != nil {
			return "", err
		}
		if len(ids) == 0 {
			return "", fmt.Errorf("select requires at least one object id")
		}
		if _, err := ed.Select(ids...); err != nil {
			return "", err
		}
		return fmt.Sprintf("selected %d object(s)", len(ids)), nil
	case "deselect":
		if len(args) != 0 {
			return "", fmt.Errorf("deselect takes no arguments")
		}
		ed.DiscardSelection()
		return "selection discarded", nil
	default:
		return "", fmt.Errorf("unknown operation %q", verb)
	}
}

func describeObject(ed *editor.Editor, o *scene.Object) string {
	id, ok := ed.Canvas().IDOf(o)
	if !ok {
		return string(o.Kind)
	}
	return fmt.Sprintf("added %s #%d", o.Kind, id)
}

// parseTarget peels a leading object reference off the argument list. A bare
// integer names a registered object; "active" (or a missing id where the verb
// allows it) targets the current selection.
func parseTarget(args []string) (any, []string, error) {
	if len(args) == 0 {
		return nil, args, nil
	}
	if strings.EqualFold(args[0], "active") {
		return nil, args[1:], nil
	}
	if id, err := strconv.Atoi(args[0]); err == nil {
		return id, args[1:], nil
	}
	return nil, args, nil
}

func parseProps(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("set requires at least one property=value pair")
	}
	props := make(map[string]any, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid property assignment %q", arg)
		}
		val, err := parsePropValue(name, raw)
		if err != nil {
			return nil, err
		}
		props[name] = val
	}
	return props, nil
}

// parsePropValue types a raw value by the property it is assigned to, so the
// scene layer receives what it expects rather than a guess from the string.
func parsePropValue(name, raw string) (any, error) {
	switch name {
	case "fill", "stroke":
		return parseColor(raw)
	case "left", "top", "width", "height", "angle", "scaleX", "scaleY",
		"strokeWidth", "opacity", "fontSize":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("property %s: invalid number %q", name, raw)
		}
		return f, nil
	case "bold", "italic", "underline":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("property %s: invalid boolean %q", name, raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}

// parseTextStyle builds the full text style for restyle: the object's current
// style with the given size/bold/italic/underline overrides applied.
func parseTextStyle(ed *editor.Editor, target any, args []string) (scene.TextStyle, error) {
	style := scene.TextStyle{Size: ed.Style().FontSize}
	if id, ok := target.(int); ok {
		if o, found := ed.Canvas().GetObject(id); found {
			style = o.Style
		}
	} else if o, found := ed.Canvas().ActiveObject(); found {
		style = o.Style
	}
	if len(args) == 0 {
		return scene.TextStyle{}, fmt.Errorf("restyle requires at least one of size, bold, italic, underline")
	}
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return scene.TextStyle{}, fmt.Errorf("invalid style assignment %q", arg)
		}
		switch strings.ToLower(name) {
		case "size":
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return scene.TextStyle{}, fmt.Errorf("invalid size %q", raw)
			}
			style.Size = f
		case "bold", "italic", "underline":
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return scene.TextStyle{}, fmt.Errorf("invalid %s value %q", name, raw)
			}
			switch strings.ToLower(name) {
			case "bold":
				style.Bold = b
			case "italic":
				style.Italic = b
			case "underline":
				style.Underline = b
			}
		default:
			return scene.TextStyle{}, fmt.Errorf("unknown style field %q", name)
		}
	}
	return style, nil
}

func parseResizeArgs(args []string) (int, int, error) {
	switch len(args) {
	case 1:
		return parseSize(args[0])
	case 2:
		vals, err := expectInts(args, 2, "resize")
		if err != nil {
			return 0, 0, err
		}
		return vals[0], vals[1], nil
	default:
		return 0, 0, fmt.Errorf("resize requires WxH or width height")
	}
}

func parseSize(val string) (int, int, error) {
	parts := strings.SplitN(strings.ToLower(val), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", val)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", val)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", val)
	}
	return w, h, nil
}

func parseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	if strings.HasPrefix(spec, "#") && (len(spec) == 7 || len(spec) == 9) {
		r, err := strconv.ParseUint(spec[1:3], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		g, err := strconv.ParseUint(spec[3:5], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		b, err := strconv.ParseUint(spec[5:7], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		a := uint64(255)
		if len(spec) == 9 {
			val, err := strconv.ParseUint(spec[7:9], 16, 8)
			if err != nil {
				return color.RGBA{}, fmt.Errorf("invalid color %q", s)
			}
			a = val
		}
		return color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid color %q", s)
}

func expectInts(args []string, n int, verb string) ([]int, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d integer argument(s)", verb, n)
	}
	vals := make([]int, n)
	for i, raw := range args {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

func expectFloats(args []string, n int, verb string) ([]float64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("%s requires %d numeric argument(s)", verb, n)
	}
	vals := make([]float64, n)
	for i, raw := range args {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		vals[i] = v
	}
	return vals, nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// splitFields tokenizes a repl line. Double quotes group words into one
// token, so text content with spaces survives.
func splitFields(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			if inQuote {
				inQuote = false
			} else {
				inQuote = true
				quoted = true
			}
		case unicode.IsSpace(r) && !inQuote:
			if cur.Len() > 0 || quoted {
				fields = append(fields, cur.String())
				cur.Reset()
				quoted = false
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 || quoted {
		fields = append(fields, cur.String())
	}
	return fields
}

func loadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(f)
	closeErr := f.Close()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return img, nil
}
