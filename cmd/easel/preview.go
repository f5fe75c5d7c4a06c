package main

import (
	"flag"
	"path/filepath"

	"github.com/example/easel/internal/editor"
	"github.com/example/easel/internal/ui"
)

type previewCmd struct {
	file string
	*root
	fs *flag.FlagSet
}

func (p *previewCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func (p *previewCmd) Template() string {
	return "preview.txt"
}

func parsePreviewCmd(args []string, r *root) (*previewCmd, error) {
	fs := flag.NewFlagSet("preview", flag.ExitOnError)
	p := &previewCmd{root: r, fs: fs}
	fs.Usage = usageFunc(p)
	fs.StringVar(&p.file, "file", "", "image file to open")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if p.file == "" && fs.NArg() == 1 {
		p.file = fs.Arg(0)
	} else if fs.NArg() != 0 {
		return nil, &UsageError{of: p}
	}
	if p.file == "" {
		return nil, &UsageError{of: p}
	}
	return p, nil
}

func (p *previewCmd) Run() error {
	img, err := loadImageFile(p.file)
	if err != nil {
		return err
	}
	ed := editor.New(editor.WithImage(img))
	title := windowTitle(titleOptions{File: filepath.Base(p.file), Tool: "preview"})
	return ui.Run(ed,
		ui.WithTheme(p.root.activeTheme),
		ui.WithTitle(title),
		ui.WithReadOnly(),
	)
}
