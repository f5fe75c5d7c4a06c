package main

import (
	"bytes"
	"embed"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"text/template"
)

//go:embed templates/*.txt
var helpFS embed.FS

var (
	helpOnce sync.Once
	helpTmpl *template.Template
)

func parseHelpTemplates() {
	helpTmpl = template.Must(template.New("").ParseFS(helpFS, "templates/*.txt"))
}

type flagInfo struct {
	Name     string
	DefValue string
	Usage    string
}

// HelpData is what a command must expose to render its usage text.
type HelpData interface {
	Program() string
	Template() string
	FlagSet() *flag.FlagSet
}

// UsageError renders the help template of the command it wraps. Returning it
// from parse or Run prints usage without the non-zero exit a real failure has.
type UsageError struct {
	of HelpData
}

func (e *UsageError) Error() string {
	help, err := e.renderHelp()
	if err != nil {
		return err.Error()
	}
	return help
}

func (e *UsageError) renderHelp() (string, error) {
	helpOnce.Do(parseHelpTemplates)
	var buf bytes.Buffer
	data := struct {
		Program string
		Version string
		Flags   []flagInfo
	}{
		Program: e.of.Program(),
		Version: version,
	}
	if fs := e.of.FlagSet(); fs != nil {
		fs.VisitAll(func(f *flag.Flag) {
			data.Flags = append(data.Flags, flagInfo{f.Name, f.DefValue, f.Usage})
		})
	}
	if err := helpTmpl.ExecuteTemplate(&buf, e.of.Template(), data); err != nil {
		log.Printf("render help template %s: %v", e.of.Template(), err)
		return "", err
	}
	return buf.String(), nil
}

func usageFunc(h HelpData) func() {
	return func() {
		err := &UsageError{of: h}
		fmt.Fprintln(os.Stderr, err.Error())
	}
}

func (r *root) Template() string {
	return "root.txt"
}
