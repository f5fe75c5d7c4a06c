package editor

import (
	"context"
	"fmt"
	"sort"

	"github.com/example/easel/assets"
	"github.com/example/easel/internal/canvas"
	"github.com/example/easel/internal/command"
	"github.com/example/easel/internal/render"
	"github.com/example/easel/internal/scene"
)

// Undo payloads for the object commands.
type addObjectUndo struct {
	Object *scene.Object
}

type removedObject struct {
	Object *scene.Object
	Index  int
}

type removeObjectsUndo struct {
	Removed []removedObject
}

type clearObjectsUndo struct {
	Objects []*scene.Object
}

// objectStateUndo captures selection-wide state twice: Before for undo,
// After so a redo can reapply the committed state even though the selection
// it was made through is long gone.
type objectStateUndo struct {
	Before []canvas.Datum
	After  []canvas.Datum
}

// applyState restores captured datums. Datums are absolute, so any live
// selection is discarded first.
func applyState(cv *canvas.Canvas, datums []canvas.Datum) error {
	cv.DiscardSelection()
	for _, d := range datums {
		if err := cv.ApplyDatum(d); err != nil {
			return err
		}
	}
	return nil
}

func undoObjectState(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
	u := c.UndoData().(*objectStateUndo)
	return nil, applyState(cv, u.Before)
}

func undoAddObject(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
	u := c.UndoData().(addObjectUndo)
	cv.Remove(u.Object)
	return nil, nil
}

func isGeometryProp(name string) bool {
	switch name {
	case "left", "top", "width", "height", "angle", "scaleX", "scaleY":
		return true
	}
	return false
}

func shapeFamily(kind scene.Kind) string {
	switch kind {
	case scene.KindRect, scene.KindEllipse:
		return "box"
	case scene.KindLine, scene.KindArrow:
		return "stroke"
	}
	return ""
}

func (ed *Editor) registerObjectCommands() {
	ed.registry.Register(command.Definition{
		Name: CmdAddShape,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				o := c.UndoData().(addObjectUndo).Object
				cv.Add(o)
				cv.SetActiveObject(o)
				return o, nil
			}
			kindName, err := stringArg(c, 0)
			if err != nil {
				return nil, err
			}
			kind := scene.Kind(kindName)
			if shapeFamily(kind) == "" {
				return nil, fmt.Errorf("addShape: unknown shape kind %q", kindName)
			}
			vals := make([]float64, 4)
			for i := range vals {
				if vals[i], err = floatArg(c, i+1); err != nil {
					return nil, err
				}
			}
			if vals[2] <= 0 || vals[3] <= 0 {
				return nil, fmt.Errorf("addShape: invalid size %vx%v", vals[2], vals[3])
			}
			o := scene.New(kind)
			o.Left, o.Top, o.Width, o.Height = vals[0], vals[1], vals[2], vals[3]
			o.Fill = ed.style.Fill
			o.Stroke = ed.style.Stroke
			o.StrokeWidth = ed.style.StrokeWidth
			if kind == scene.KindLine || kind == scene.KindArrow {
				o.Points = []scene.Point{scene.Pt(0, 0), scene.Pt(o.Width, o.Height)}
			}
			cv.Add(o)
			cv.SetActiveObject(o)
			ed.stashUndo(c, addObjectUndo{Object: o})
			return o, nil
		},
		Undo: undoAddObject,
	})

	ed.registry.Register(command.Definition{
		Name: CmdAddText,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				o := c.UndoData().(addObjectUndo).Object
				cv.Add(o)
				cv.SetActiveObject(o)
				return o, nil
			}
			text, err := stringArg(c, 0)
			if err != nil {
				return nil, err
			}
			if text == "" {
				return nil, fmt.Errorf("addText: empty text")
			}
			x, err := floatArg(c, 1)
			if err != nil {
				return nil, err
			}
			y, err := floatArg(c, 2)
			if err != nil {
				return nil, err
			}
			style := scene.TextStyle{Size: ed.style.FontSize}
			w, h, err := render.MeasureText(text, style)
			if err != nil {
				return nil, fmt.Errorf("addText: %w", err)
			}
			o := scene.New(scene.KindText)
			o.Text = text
			o.Style = style
			o.Left, o.Top, o.Width, o.Height = x, y, w, h
			o.Fill = ed.style.Stroke
			cv.Add(o)
			cv.SetActiveObject(o)
			ed.stashUndo(c, addObjectUndo{Object: o})
			return o, nil
		},
		Undo: undoAddObject,
	})

	ed.registry.Register(command.Definition{
		Name: CmdAddIcon,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				o := c.UndoData().(addObjectUndo).Object
				cv.Add(o)
				cv.SetActiveObject(o)
				return o, nil
			}
			name, err := stringArg(c, 0)
			if err != nil {
				return nil, err
			}
			x, err := floatArg(c, 1)
			if err != nil {
				return nil, err
			}
			y, err := floatArg(c, 2)
			if err != nil {
				return nil, err
			}
			data, err := assets.IconPath(name)
			if err != nil {
				return nil, fmt.Errorf("addIcon: %w", err)
			}
			path, err := scene.ParsePath(data)
			if err != nil {
				return nil, fmt.Errorf("addIcon %q: %w", name, err)
			}
			o := scene.New(scene.KindIcon)
			o.Path = path
			o.IconName = name
			o.Left, o.Top = x, y
			o.Width, o.Height = assets.IconSize, assets.IconSize
			o.Fill = ed.style.Stroke
			cv.Add(o)
			cv.SetActiveObject(o)
			ed.stashUndo(c, addObjectUndo{Object: o})
			return o, nil
		},
		Undo: undoAddObject,
	})

	ed.registry.Register(command.Definition{
		Name: CmdAddImage,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				o := c.UndoData().(addObjectUndo).Object
				cv.Add(o)
				cv.SetActiveObject(o)
				return o, nil
			}
			img, err := imageArg(c, 0)
			if err != nil {
				return nil, err
			}
			x, err := floatArg(c, 1)
			if err != nil {
				return nil, err
			}
			y, err := floatArg(c, 2)
			if err != nil {
				return nil, err
			}
			b := img.Bounds()
			if b.Empty() {
				return nil, fmt.Errorf("addImage: empty image")
			}
			o := scene.New(scene.KindImage)
			o.Image = img
			o.Left, o.Top = x, y
			o.Width, o.Height = float64(b.Dx()), float64(b.Dy())
			cv.Add(o)
			cv.SetActiveObject(o)
			ed.stashUndo(c, addObjectUndo{Object: o})
			return o, nil
		},
		Undo: undoAddObject,
	})

	ed.registry.Register(command.Definition{
		Name: CmdRemoveObject,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				u := c.UndoData().(removeObjectsUndo)
				for _, r := range u.Removed {
					cv.Remove(r.Object)
				}
				return len(u.Removed), nil
			}
			target, err := targetArg(cv, c, 0)
			if err != nil {
				return nil, err
			}
			objs := targetMembers(target)
			if target.IsGroup() {
				// Bake the group transform back into the members before they
				// leave the scene, so re-adding them on undo restores the
				// positions the user saw.
				if active, ok := cv.ActiveObject(); ok && active == target {
					cv.DiscardSelection()
				} else {
					target.Dissolve()
				}
			}
			removed := make([]removedObject, 0, len(objs))
			for _, o := range objs {
				removed = append(removed, removedObject{Object: o, Index: cv.IndexOf(o)})
			}
			sort.Slice(removed, func(i, j int) bool { return removed[i].Index < removed[j].Index })
			for _, r := range removed {
				cv.Remove(r.Object)
			}
			ed.stashUndo(c, removeObjectsUndo{Removed: removed})
			return len(removed), nil
		},
		Undo: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			u := c.UndoData().(removeObjectsUndo)
			for _, r := range u.Removed {
				cv.InsertAt(r.Index, r.Object)
			}
			return len(u.Removed), nil
		},
	})

	ed.registry.Register(command.Definition{
		Name: CmdClearObjects,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if len(cv.Objects()) == 0 {
				return nil, fmt.Errorf("clearObjects: canvas has no objects")
			}
			cv.DiscardSelection()
			removed := cv.Clear()
			ed.stashUndo(c, clearObjectsUndo{Objects: removed})
			return len(removed), nil
		},
		Undo: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			u := c.UndoData().(clearObjectsUndo)
			cv.Add(u.Objects...)
			return len(u.Objects), nil
		},
	})

	ed.registry.Register(command.Definition{
		Name: CmdSetObjectProperties,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				u := c.UndoData().(*objectStateUndo)
				return nil, applyState(cv, u.After)
			}
			target, err := targetArg(cv, c, 0)
			if err != nil {
				return nil, err
			}
			props, err := propsArg(c, 1)
			if err != nil {
				return nil, err
			}
			names := make([]string, 0, len(props))
			for name := range props {
				if isGeometryProp(name) {
					return nil, fmt.Errorf("setObjectProperties: %q is geometry, use setObjectPosition", name)
				}
				names = append(names, name)
			}
			members := targetMembers(target)
			for _, m := range members {
				probe := *m
				if err := probe.SetProperties(props); err != nil {
					return nil, fmt.Errorf("setObjectProperties: %w", err)
				}
			}

			before := cv.SnapshotSelection(target, cv.PropertyDatum(names...))
			for _, m := range members {
				if err := m.SetProperties(props); err != nil {
					return nil, fmt.Errorf("setObjectProperties: %w", err)
				}
			}
			after := cv.SnapshotSelection(target, cv.PropertyDatum(names...))
			cv.RequestRender()
			ed.stashObjectUndo(c, before, after)
			return nil, nil
		},
		Undo: undoObjectState,
	})

	ed.registry.Register(command.Definition{
		Name: CmdSetObjectPosition,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				u := c.UndoData().(*objectStateUndo)
				return nil, applyState(cv, u.After)
			}
			target, err := targetArg(cv, c, 0)
			if err != nil {
				return nil, err
			}
			left, err := floatArg(c, 1)
			if err != nil {
				return nil, err
			}
			top, err := floatArg(c, 2)
			if err != nil {
				return nil, err
			}
			before := cv.SnapshotSelection(target, cv.GeometryDatum())
			target.Left, target.Top = left, top
			after := cv.SnapshotSelection(target, cv.GeometryDatum())
			cv.RequestRender()
			ed.stashObjectUndo(c, before, after)
			return nil, nil
		},
		Undo: undoObjectState,
	})

	ed.registry.Register(command.Definition{
		Name: CmdChangeText,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				u := c.UndoData().(*objectStateUndo)
				return nil, applyState(cv, u.After)
			}
			target, err := targetArg(cv, c, 0)
			if err != nil {
				return nil, err
			}
			if target.Kind != scene.KindText {
				return nil, fmt.Errorf("changeText: target is %s, want a text object", target.Kind)
			}
			text, err := stringArg(c, 1)
			if err != nil {
				return nil, err
			}
			if text == "" {
				return nil, fmt.Errorf("changeText: empty text")
			}
			w, h, err := render.MeasureText(text, target.Style)
			if err != nil {
				return nil, fmt.Errorf("changeText: %w", err)
			}
			before := cv.SnapshotSelection(target, cv.PropertyDatum("text", "width", "height"))
			target.Text = text
			target.Width, target.Height = w, h
			after := cv.SnapshotSelection(target, cv.PropertyDatum("text", "width", "height"))
			cv.RequestRender()
			ed.stashObjectUndo(c, before, after)
			return nil, nil
		},
		Undo: undoObjectState,
	})

	ed.registry.Register(command.Definition{
		Name: CmdChangeTextStyle,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				u := c.UndoData().(*objectStateUndo)
				return nil, applyState(cv, u.After)
			}
			target, err := targetArg(cv, c, 0)
			if err != nil {
				return nil, err
			}
			if target.Kind != scene.KindText {
				return nil, fmt.Errorf("changeTextStyle: target is %s, want a text object", target.Kind)
			}
			style, err := styleArg(c, 1)
			if err != nil {
				return nil, err
			}
			w, h, err := render.MeasureText(target.Text, style)
			if err != nil {
				return nil, fmt.Errorf("changeTextStyle: %w", err)
			}
			names := []string{"fontSize", "bold", "italic", "underline", "width", "height"}
			before := cv.SnapshotSelection(target, cv.PropertyDatum(names...))
			target.Style = style
			target.Width, target.Height = w, h
			after := cv.SnapshotSelection(target, cv.PropertyDatum(names...))
			cv.RequestRender()
			ed.stashObjectUndo(c, before, after)
			return nil, nil
		},
		Undo: undoObjectState,
	})

	ed.registry.Register(command.Definition{
		Name: CmdChangeIconColor,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				u := c.UndoData().(*objectStateUndo)
				return nil, applyState(cv, u.After)
			}
			target, err := targetArg(cv, c, 0)
			if err != nil {
				return nil, err
			}
			fill, err := colorArg(c, 1)
			if err != nil {
				return nil, err
			}
			var icons []*scene.Object
			for _, m := range targetMembers(target) {
				if m.Kind == scene.KindIcon {
					icons = append(icons, m)
				}
			}
			if len(icons) == 0 {
				return nil, fmt.Errorf("changeIconColor: no icon in selection")
			}
			before := cv.SnapshotSelection(target, cv.PropertyDatum("fill"))
			for _, icon := range icons {
				icon.Fill = fill
			}
			after := cv.SnapshotSelection(target, cv.PropertyDatum("fill"))
			cv.RequestRender()
			ed.stashObjectUndo(c, before, after)
			return nil, nil
		},
		Undo: undoObjectState,
	})

	ed.registry.Register(command.Definition{
		Name: CmdChangeShape,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *command.Command) (any, error) {
			if c.IsRedo() {
				u := c.UndoData().(*objectStateUndo)
				return nil, applyState(cv, u.After)
			}
			target, err := targetArg(cv, c, 0)
			if err != nil {
				return nil, err
			}
			kindName, err := stringArg(c, 1)
			if err != nil {
				return nil, err
			}
			kind := scene.Kind(kindName)
			family := shapeFamily(kind)
			if family == "" {
				return nil, fmt.Errorf("changeShape: unknown shape kind %q", kindName)
			}
			var shapes []*scene.Object
			for _, m := range targetMembers(target) {
				if shapeFamily(m.Kind) == family {
					shapes = append(shapes, m)
				}
			}
			if len(shapes) == 0 {
				return nil, fmt.Errorf("changeShape: nothing in the selection can become %s", kind)
			}
			before := cv.SnapshotSelection(target, cv.PropertyDatum("kind"))
			for _, s := range shapes {
				s.Kind = kind
			}
			after := cv.SnapshotSelection(target, cv.PropertyDatum("kind"))
			cv.RequestRender()
			ed.stashObjectUndo(c, before, after)
			return nil, nil
		},
		Undo: undoObjectState,
	})
}
