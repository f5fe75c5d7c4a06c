package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/example/easel/internal/editor"
)

// sceneScript is the TOML shape of a render script: a canvas size and the
// repl lines to execute against it, in order.
type sceneScript struct {
	Width  int         `toml:"width"`
	Height int         `toml:"height"`
	Steps  []sceneStep `toml:"step"`
}

type sceneStep struct {
	Run string `toml:"run"`
}

type renderCmd struct {
	scene  string
	output string
	*root
	fs *flag.FlagSet
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *renderCmd) Template() string {
	return "render.txt"
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.scene, "scene", "", "TOML scene script to execute")
	fs.StringVar(&c.output, "output", "", "output PNG file (defaults to the script name with a .png extension)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.scene == "" && fs.NArg() == 1 {
		c.scene = fs.Arg(0)
	} else if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.scene == "" {
		return nil, &UsageError{of: c}
	}
	if c.output == "" {
		c.output = strings.TrimSuffix(c.scene, filepath.Ext(c.scene)) + ".png"
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	var script sceneScript
	if _, err := toml.DecodeFile(c.scene, &script); err != nil {
		return fmt.Errorf("read scene %q: %w", c.scene, err)
	}
	if script.Width <= 0 || script.Height <= 0 {
		return fmt.Errorf("scene %q must set a positive width and height", c.scene)
	}
	if len(script.Steps) == 0 {
		return fmt.Errorf("scene %q has no steps", c.scene)
	}

	ctx := context.Background()
	ed := editor.New(editor.WithSize(script.Width, script.Height))
	for i, step := range script.Steps {
		tokens := splitFields(strings.TrimSpace(step.Run))
		if len(tokens) == 0 {
			return fmt.Errorf("step %d: empty run line", i+1)
		}
		if _, err := runOp(ctx, ed, tokens); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step.Run, err)
		}
	}

	img, err := ed.Flatten(ctx)
	if err != nil {
		return err
	}
	f, err := os.Create(c.output)
	if err != nil {
		return fmt.Errorf("create output %q: %w", c.output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Printf("close %s: %v", c.output, cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("write PNG to %q: %w", c.output, err)
	}
	saved := c.output
	if abs, err := filepath.Abs(c.output); err == nil {
		saved = abs
	}
	fmt.Fprintf(os.Stderr, "rendered %d step(s) to %s\n", len(script.Steps), saved)
	c.root.notifyExport(fmt.Sprintf("%d step(s) to %s", len(script.Steps), filepath.Base(saved)), img)
	return nil
}
