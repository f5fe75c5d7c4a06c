package editor

import (
	"context"
	"fmt"
	"image"
	"slices"

	"github.com/disintegration/imaging"

	"github.com/example/easel/internal/canvas"
	"github.com/example/easel/internal/command"
	"github.com/example/easel/internal/render"
)

// Undo payloads for the base-image commands. Each command owns its concrete
// type; the invoker never looks inside.
type rotationUndo struct {
	Angle float64
}

type imageUndo struct {
	Image image.Image
}

type loadImageUndo struct {
	Image    image.Image
	Rotation float64
	Filters  []render.Filter
}

type filtersUndo struct {
	Filters []render.Filter
}

func (ed *Editor) registerCanvasCommands() {
	ed.registry.Register(command.Definition{
		Name: CmdRotate,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			delta, err := floatArg(c, 0)
			if err != nil {
				return nil, err
			}
			ed.stashUndo(c, rotationUndo{Angle: cv.Rotation()})
			cv.SetRotation(cv.Rotation() + delta)
			return cv.Rotation(), nil
		},
		Undo: undoRotation,
	})

	ed.registry.Register(command.Definition{
		Name: CmdSetAngle,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			angle, err := floatArg(c, 0)
			if err != nil {
				return nil, err
			}
			ed.stashUndo(c, rotationUndo{Angle: cv.Rotation()})
			cv.SetRotation(angle)
			return cv.Rotation(), nil
		},
		Undo: undoRotation,
	})

	ed.registry.Register(command.Definition{
		Name: CmdFlip,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			axis, err := stringArg(c, 0)
			if err != nil {
				return nil, err
			}
			var flipped image.Image
			switch axis {
			case "horizontal", "h":
				flipped = imaging.FlipH(cv.Image())
			case "vertical", "v":
				flipped = imaging.FlipV(cv.Image())
			default:
				return nil, fmt.Errorf("flip: unknown axis %q", axis)
			}
			ed.stashUndo(c, imageUndo{Image: cv.Image()})
			cv.SetImage(flipped)
			return nil, nil
		},
		Undo: undoImage,
	})

	ed.registry.Register(command.Definition{
		Name: CmdCrop,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			vals := make([]int, 4)
			for i := range vals {
				v, err := intArg(c, i)
				if err != nil {
					return nil, err
				}
				vals[i] = v
			}
			rect := image.Rect(vals[0], vals[1], vals[0]+vals[2], vals[1]+vals[3])
			if vals[2] <= 0 || vals[3] <= 0 {
				return nil, fmt.Errorf("crop: empty rectangle %v", rect)
			}
			if !rect.Overlaps(cv.Image().Bounds()) {
				return nil, fmt.Errorf("crop: rectangle %v outside image %v", rect, cv.Image().Bounds())
			}
			ed.stashUndo(c, imageUndo{Image: cv.Image()})
			cv.SetImage(imaging.Crop(cv.Image(), rect))
			return nil, nil
		},
		Undo: undoImage,
	})

	ed.registry.Register(command.Definition{
		Name: CmdResize,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			w, err := intArg(c, 0)
			if err != nil {
				return nil, err
			}
			h, err := intArg(c, 1)
			if err != nil {
				return nil, err
			}
			if w <= 0 || h <= 0 {
				return nil, fmt.Errorf("resize: invalid size %dx%d", w, h)
			}
			ed.stashUndo(c, imageUndo{Image: cv.Image()})
			cv.SetImage(imaging.Resize(cv.Image(), w, h, imaging.Lanczos))
			return nil, nil
		},
		Undo: undoImage,
	})

	ed.registry.Register(command.Definition{
		Name: CmdLoadImage,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			img, err := imageArg(c, 0)
			if err != nil {
				return nil, err
			}
			ed.stashUndo(c, loadImageUndo{
				Image:    cv.Image(),
				Rotation: cv.Rotation(),
				Filters:  cv.Filters(),
			})
			cv.SetImage(img)
			cv.SetRotation(0)
			cv.SetFilters(nil)
			return nil, nil
		},
		Undo: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			u := c.UndoData().(loadImageUndo)
			cv.SetImage(u.Image)
			cv.SetRotation(u.Rotation)
			cv.SetFilters(u.Filters)
			return nil, nil
		},
	})

	ed.registry.Register(command.Definition{
		Name: CmdApplyFilter,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			name, err := stringArg(c, 0)
			if err != nil {
				return nil, err
			}
			if !slices.Contains(render.FilterNames(), name) {
				return nil, fmt.Errorf("applyFilter: unknown filter %q", name)
			}
			amount := 0.0
			if _, ok := c.Arg(1); ok {
				if amount, err = floatArg(c, 1); err != nil {
					return nil, err
				}
			}
			ed.stashUndo(c, filtersUndo{Filters: cv.Filters()})
			cv.SetFilters(append(cv.Filters(), render.Filter{Name: name, Amount: amount}))
			return nil, nil
		},
		Undo: undoFilters,
	})

	ed.registry.Register(command.Definition{
		Name: CmdRemoveFilter,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			name, err := stringArg(c, 0)
			if err != nil {
				return nil, err
			}
			pipeline := cv.Filters()
			at := -1
			for i := len(pipeline) - 1; i >= 0; i-- {
				if pipeline[i].Name == name {
					at = i
					break
				}
			}
			if at == -1 {
				return nil, fmt.Errorf("removeFilter: %q is not applied", name)
			}
			ed.stashUndo(c, filtersUndo{Filters: cv.Filters()})
			cv.SetFilters(append(pipeline[:at], pipeline[at+1:]...))
			return nil, nil
		},
		Undo: undoFilters,
	})
}

func undoRotation(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
	u := c.UndoData().(rotationUndo)
	cv.SetRotation(u.Angle)
	return cv.Rotation(), nil
}

func undoImage(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
	u := c.UndoData().(imageUndo)
	cv.SetImage(u.Image)
	return nil, nil
}

func undoFilters(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
	u := c.UndoData().(filtersUndo)
	cv.SetFilters(u.Filters)
	return nil, nil
}
