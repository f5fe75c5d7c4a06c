package main

import (
	"fmt"
	"strings"
)

const programTitle = "Easel"

type titleOptions struct {
	File      string
	Tool      string
	Dirty     bool
	UndoDepth int
	Extras    []string
}

// windowTitle composes the editor window title from whatever parts are set.
// The file, when present, comes right after the program name; build metadata
// trails at the end.
func windowTitle(opts titleOptions) string {
	parts := []string{programTitle}

	file := strings.TrimSpace(opts.File)
	if file != "" {
		if opts.Dirty {
			file = "*" + file
		}
		parts = append(parts, file)
	} else if opts.Dirty {
		parts = append(parts, "*unsaved")
	}

	tool := strings.TrimSpace(opts.Tool)
	if tool != "" {
		parts = append(parts, tool)
	}

	extras := make([]string, 0, len(opts.Extras)+3)

	if opts.UndoDepth > 0 {
		extras = append(extras, fmt.Sprintf("%d undo", opts.UndoDepth))
	}

	if strings.TrimSpace(version) != "" {
		extras = append(extras, fmt.Sprintf("v%s", strings.TrimSpace(version)))
	}

	if strings.TrimSpace(commit) != "" {
		extras = append(extras, fmt.Sprintf("commit %s", strings.TrimSpace(commit)))
	}

	if strings.TrimSpace(date) != "" {
		extras = append(extras, strings.TrimSpace(date))
	}

	if len(opts.Extras) > 0 {
		extras = append(extras, opts.Extras...)
	}

	if len(extras) > 0 {
		parts = append(parts, extras...)
	}

	return strings.Join(parts, " - ")
}
