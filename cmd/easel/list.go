package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/example/easel/assets"
	"github.com/example/easel/internal/editor"
	"github.com/example/easel/internal/render"
)

type colorsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseColorsCmd(args []string, r *root) (*colorsCmd, error) {
	fs := flag.NewFlagSet("colors", flag.ExitOnError)
	cmd := &colorsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *colorsCmd) Run() error {
	palette := editor.PaletteColors()
	if len(palette) == 0 {
		fmt.Fprintln(os.Stdout, "no colors available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "available colors (* marks the default stroke):")
	defaultStroke := editor.DefaultStyle().Stroke
	for idx, entry := range palette {
		marker := " "
		if entry.Color == defaultStroke {
			marker = "*"
		}
		hex := fmt.Sprintf("#%02X%02X%02X", entry.Color.R, entry.Color.G, entry.Color.B)
		block := fmt.Sprintf("\x1b[48;2;%d;%d;%dm  \x1b[0m", entry.Color.R, entry.Color.G, entry.Color.B)
		fmt.Fprintf(os.Stdout, "%s %2d: %-12s %s %s\n", marker, idx, entry.Name, hex, block)
	}
	fmt.Fprintln(os.Stdout, "any SVG 1.1 color name or #RRGGBB[AA] value is accepted")
	return nil
}

func (c *colorsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *colorsCmd) Template() string {
	return "colors.txt"
}

type widthsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseWidthsCmd(args []string, r *root) (*widthsCmd, error) {
	fs := flag.NewFlagSet("widths", flag.ExitOnError)
	cmd := &widthsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *widthsCmd) Run() error {
	widths := editor.SuggestedWidths()
	if len(widths) == 0 {
		fmt.Fprintln(os.Stdout, "no widths available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "suggested stroke widths (* marks the default width):")
	defaultWidth := editor.DefaultStyle().StrokeWidth
	for _, width := range widths {
		marker := " "
		if width == defaultWidth {
			marker = "*"
		}
		fmt.Fprintf(os.Stdout, "%s %3gpx\n", marker, width)
	}
	return nil
}

func (c *widthsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *widthsCmd) Template() string {
	return "widths.txt"
}

type iconsCmd struct {
	*root
	fs *flag.FlagSet
}

func parseIconsCmd(args []string, r *root) (*iconsCmd, error) {
	fs := flag.NewFlagSet("icons", flag.ExitOnError)
	cmd := &iconsCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *iconsCmd) Run() error {
	names := assets.IconNames()
	if len(names) == 0 {
		fmt.Fprintln(os.Stdout, "no icons available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "available icons:")
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %s\n", name)
	}
	return nil
}

func (c *iconsCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *iconsCmd) Template() string {
	return "icons.txt"
}

type filtersCmd struct {
	*root
	fs *flag.FlagSet
}

func parseFiltersCmd(args []string, r *root) (*filtersCmd, error) {
	fs := flag.NewFlagSet("filters", flag.ExitOnError)
	cmd := &filtersCmd{root: r, fs: fs}
	fs.Usage = usageFunc(cmd)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: cmd}
	}
	return cmd, nil
}

func (c *filtersCmd) Run() error {
	names := render.FilterNames()
	if len(names) == 0 {
		fmt.Fprintln(os.Stdout, "no filters available")
		return nil
	}
	fmt.Fprintln(os.Stdout, "available filters:")
	for _, name := range names {
		fmt.Fprintf(os.Stdout, "  %s\n", name)
	}
	return nil
}

func (c *filtersCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *filtersCmd) Template() string {
	return "filters.txt"
}
