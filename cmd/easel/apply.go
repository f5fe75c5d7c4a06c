package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/easel/internal/capture"
	"github.com/example/easel/internal/clipboard"
	"github.com/example/easel/internal/editor"
	"github.com/example/easel/internal/render"
	"github.com/example/easel/internal/scene"
)

type applyCmd struct {
	file          string
	newSize       string
	fromScreen    bool
	output        string
	toClipboard   bool
	stdout        bool
	shadow        bool
	shadowBlur    int
	shadowOffset  string
	shadowOpacity float64
	shadowPoint   image.Point
	ops           [][]string
	*root
	fs *flag.FlagSet
}

func (a *applyCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func (a *applyCmd) Template() string {
	return "apply.txt"
}

func parseApplyCmd(args []string, r *root) (*applyCmd, error) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	a := &applyCmd{root: r, fs: fs}
	fs.Usage = usageFunc(a)
	defaults := render.DefaultShadow()
	fs.StringVar(&a.file, "file", "", "input image file")
	fs.StringVar(&a.newSize, "new", "", "start from a blank canvas of this size (WxH)")
	fs.BoolVar(&a.fromScreen, "from-screen", false, "start from a screenshot of the desktop")
	fs.StringVar(&a.output, "output", "", "output file path (defaults to the input file)")
	fs.BoolVar(&a.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&a.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	fs.BoolVar(&a.stdout, "stdout", false, "write PNG data to stdout")
	fs.BoolVar(&a.shadow, "shadow", false, "apply a drop shadow to the result")
	fs.IntVar(&a.shadowBlur, "shadow-blur", defaults.Blur, "drop shadow blur radius in pixels")
	fs.StringVar(&a.shadowOffset, "shadow-offset", fmt.Sprintf("%d,%d", defaults.OffsetX, defaults.OffsetY), "drop shadow offset as dx,dy")
	fs.Float64Var(&a.shadowOpacity, "shadow-opacity", defaults.Opacity, "drop shadow opacity between 0 and 1")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	pt, err := parseOffset(a.shadowOffset)
	if err != nil {
		return nil, err
	}
	a.shadowPoint = pt
	if a.toClipboard && a.stdout {
		return nil, fmt.Errorf("-stdout cannot be used with -to-clipboard")
	}
	if err := a.checkSource(); err != nil {
		return nil, err
	}
	if a.output == "" && !a.stdout && !a.toClipboard {
		if a.file == "" {
			return nil, fmt.Errorf("output file is required without an input file")
		}
		a.output = a.file
	}

	a.ops = splitOps(fs.Args())
	if len(a.ops) == 0 {
		return nil, &UsageError{of: a}
	}
	return a, nil
}

func (a *applyCmd) checkSource() error {
	sources := 0
	if a.file != "" {
		sources++
	}
	if a.newSize != "" {
		sources++
	}
	if a.fromScreen {
		sources++
	}
	if sources == 0 {
		return fmt.Errorf("an input is required: -file, -new, or -from-screen")
	}
	if sources > 1 {
		return fmt.Errorf("-file, -new, and -from-screen are mutually exclusive")
	}
	return nil
}

// splitOps cuts the positional arguments into operations at standalone
// comma tokens.
func splitOps(args []string) [][]string {
	var ops [][]string
	var cur []string
	for _, arg := range args {
		if arg == "," {
			if len(cur) > 0 {
				ops = append(ops, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, arg)
	}
	if len(cur) > 0 {
		ops = append(ops, cur)
	}
	return ops
}

func (a *applyCmd) Run() error {
	ctx := context.Background()
	ed, err := a.newEditor()
	if err != nil {
		return err
	}
	for _, op := range a.ops {
		if _, err := runOp(ctx, ed, op); err != nil {
			return fmt.Errorf("%s: %w", strings.Join(op, " "), err)
		}
	}
	img, err := ed.Flatten(ctx)
	if err != nil {
		return err
	}
	if a.shadow {
		img, _ = render.ApplyShadow(img, a.shadowSettings())
	}
	return a.export(img)
}

func (a *applyCmd) newEditor() (*editor.Editor, error) {
	switch {
	case a.file != "":
		img, err := loadImageFile(a.file)
		if err != nil {
			return nil, err
		}
		return editor.New(editor.WithImage(img), editor.WithSavePath(a.output)), nil
	case a.newSize != "":
		w, h, err := parseSize(a.newSize)
		if err != nil {
			return nil, err
		}
		return editor.New(editor.WithSize(w, h), editor.WithSavePath(a.output)), nil
	default:
		img, err := capture.Screen()
		if err != nil {
			return nil, fmt.Errorf("capture screen: %w", err)
		}
		return editor.New(editor.WithImage(img), editor.WithSavePath(a.output)), nil
	}
}

func (a *applyCmd) shadowSettings() scene.Shadow {
	sh := render.DefaultShadow()
	if a.shadowBlur >= 0 {
		sh.Blur = a.shadowBlur
	}
	sh.OffsetX = a.shadowPoint.X
	sh.OffsetY = a.shadowPoint.Y
	switch {
	case a.shadowOpacity <= 0:
		sh.Opacity = 0
	case a.shadowOpacity >= 1:
		sh.Opacity = 1
	default:
		sh.Opacity = a.shadowOpacity
	}
	return sh
}

func (a *applyCmd) export(img *image.RGBA) error {
	if a.toClipboard {
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("copy PNG to clipboard: %w", err)
		}
		detail := filepath.Base(a.output)
		if detail == "" || detail == "." {
			detail = "image"
		}
		fmt.Fprintf(os.Stderr, "copied %s to clipboard\n", detail)
		a.root.notifyCopy(detail)
		return nil
	}
	var w io.Writer
	if a.stdout {
		w = os.Stdout
	} else {
		f, err := os.Create(a.output)
		if err != nil {
			return fmt.Errorf("create output %q: %w", a.output, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				log.Printf("close %s: %v", a.output, cerr)
			}
		}()
		w = f
	}
	if err := png.Encode(w, img); err != nil {
		if a.stdout {
			return fmt.Errorf("write PNG to stdout: %w", err)
		}
		return fmt.Errorf("write PNG to %q: %w", a.output, err)
	}
	if a.stdout {
		fmt.Fprintln(os.Stderr, "wrote PNG data to stdout")
		return nil
	}
	saved := a.output
	if abs, err := filepath.Abs(a.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "saved %s\n", saved)
	a.root.notifyExport(fmt.Sprintf("%d operation(s) to %s", len(a.ops), filepath.Base(saved)), img)
	return nil
}

func parseOffset(val string) (image.Point, error) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		return image.Point{}, fmt.Errorf("invalid offset %q", val)
	}
	vals := make([]int, 2)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Point{}, fmt.Errorf("invalid offset %q", val)
		}
		vals[i] = v
	}
	return image.Pt(vals[0], vals[1]), nil
}
