package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/example/easel/internal/capture"
	"github.com/example/easel/internal/editor"
	"github.com/example/easel/internal/ui"
)

const (
	defaultCanvasWidth  = 800
	defaultCanvasHeight = 600
)

type editCmd struct {
	file       string
	newSize    string
	fromScreen bool
	output     string
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *editCmd) Template() string {
	return "edit.txt"
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	e := &editCmd{root: r, fs: fs}
	fs.Usage = usageFunc(e)
	fs.StringVar(&e.file, "file", "", "image file to open")
	fs.StringVar(&e.newSize, "new", "", "start from a blank canvas of this size (WxH)")
	fs.BoolVar(&e.fromScreen, "from-screen", false, "start from a screenshot of the desktop")
	fs.StringVar(&e.output, "output", "", "save path (defaults to the input file)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: e}
	}
	sources := 0
	if e.file != "" {
		sources++
	}
	if e.newSize != "" {
		sources++
	}
	if e.fromScreen {
		sources++
	}
	if sources > 1 {
		return nil, fmt.Errorf("-file, -new, and -from-screen are mutually exclusive")
	}
	return e, nil
}

func (e *editCmd) Run() error {
	ed, label, err := e.newEditor()
	if err != nil {
		return err
	}
	title := windowTitle(titleOptions{File: label})
	return ui.Run(ed,
		ui.WithTheme(e.root.activeTheme),
		ui.WithTitle(title),
		ui.WithOnSave(e.root.notifySave),
		ui.WithOnCopy(e.root.notifyCopy),
	)
}

func (e *editCmd) newEditor() (*editor.Editor, string, error) {
	savePath := e.output
	switch {
	case e.file != "":
		img, err := loadImageFile(e.file)
		if err != nil {
			return nil, "", err
		}
		if savePath == "" {
			savePath = e.file
		}
		ed := editor.New(editor.WithImage(img), editor.WithSavePath(savePath))
		return ed, filepath.Base(e.file), nil
	case e.newSize != "":
		w, h, err := parseSize(e.newSize)
		if err != nil {
			return nil, "", err
		}
		ed := editor.New(editor.WithSize(w, h), editor.WithSavePath(savePath))
		return ed, "", nil
	case e.fromScreen:
		img, err := capture.Screen()
		if err != nil {
			return nil, "", fmt.Errorf("capture screen: %w", err)
		}
		ed := editor.New(editor.WithImage(img), editor.WithSavePath(savePath))
		return ed, "screenshot", nil
	default:
		ed := editor.New(editor.WithSize(defaultCanvasWidth, defaultCanvasHeight), editor.WithSavePath(savePath))
		return ed, "", nil
	}
}
