package editor

import (
	"fmt"
	"image"
	"image/color"

	"github.com/example/easel/internal/canvas"
	"github.com/example/easel/internal/command"
	"github.com/example/easel/internal/scene"
)

// Argument coercion for command bodies. Args arrive opaque; every mismatch
// is a command-defined error naming the command and position.

func argAt(c *command.Command, i int) (any, error) {
	v, ok := c.Arg(i)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d missing", c.Name(), i)
	}
	return v, nil
}

func floatArg(c *command.Command, i int) (float64, error) {
	v, err := argAt(c, i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("%s: argument %d: want number, got %T", c.Name(), i, v)
}

func intArg(c *command.Command, i int) (int, error) {
	v, err := argAt(c, i)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("%s: argument %d: want integer, got %T", c.Name(), i, v)
}

func stringArg(c *command.Command, i int) (string, error) {
	v, err := argAt(c, i)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: argument %d: want string, got %T", c.Name(), i, v)
	}
	return s, nil
}

func imageArg(c *command.Command, i int) (image.Image, error) {
	v, err := argAt(c, i)
	if err != nil {
		return nil, err
	}
	img, ok := v.(image.Image)
	if !ok || img == nil {
		return nil, fmt.Errorf("%s: argument %d: want image, got %T", c.Name(), i, v)
	}
	return img, nil
}

func colorArg(c *command.Command, i int) (color.RGBA, error) {
	v, err := argAt(c, i)
	if err != nil {
		return color.RGBA{}, err
	}
	rgba, ok := v.(color.RGBA)
	if !ok {
		return color.RGBA{}, fmt.Errorf("%s: argument %d: want color, got %T", c.Name(), i, v)
	}
	return rgba, nil
}

func propsArg(c *command.Command, i int) (map[string]any, error) {
	v, err := argAt(c, i)
	if err != nil {
		return nil, err
	}
	props, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s: argument %d: want property map, got %T", c.Name(), i, v)
	}
	if len(props) == 0 {
		return nil, fmt.Errorf("%s: empty property map", c.Name())
	}
	return props, nil
}

func styleArg(c *command.Command, i int) (scene.TextStyle, error) {
	v, err := argAt(c, i)
	if err != nil {
		return scene.TextStyle{}, err
	}
	style, ok := v.(scene.TextStyle)
	if !ok {
		return scene.TextStyle{}, fmt.Errorf("%s: argument %d: want text style, got %T", c.Name(), i, v)
	}
	return style, nil
}

// targetArg resolves the object a command applies to: a registry id, a
// direct object reference, or nil for the active selection.
func targetArg(cv *canvas.Canvas, c *command.Command, i int) (*scene.Object, error) {
	v, ok := c.Arg(i)
	if !ok || v == nil {
		active, ok := cv.ActiveObject()
		if !ok {
			return nil, fmt.Errorf("%s: %w", c.Name(), canvas.ErrNoActiveObject)
		}
		return active, nil
	}
	switch t := v.(type) {
	case int:
		o, ok := cv.GetObject(t)
		if !ok {
			return nil, fmt.Errorf("%s: object %d: %w", c.Name(), t, canvas.ErrObjectMissing)
		}
		return o, nil
	case *scene.Object:
		if t == nil {
			return nil, fmt.Errorf("%s: %w", c.Name(), canvas.ErrNoActiveObject)
		}
		return t, nil
	}
	return nil, fmt.Errorf("%s: argument %d: want object id, got %T", c.Name(), i, v)
}

// targetMembers expands a selection target into the concrete objects a
// command touches.
func targetMembers(target *scene.Object) []*scene.Object {
	if target.IsGroup() {
		out := make([]*scene.Object, len(target.Members))
		copy(out, target.Members)
		return out
	}
	return []*scene.Object{target}
}
