package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/easel/internal/editor"
	"golang.org/x/term"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// replSession holds one live editor and executes repl lines against it. The
// repl command drives it from stdin; the session server drives it from a
// socket.
type replSession struct {
	ed      *editor.Editor
	history []string
	stdout  io.Writer
	stderr  io.Writer
}

func newReplSession(ed *editor.Editor) *replSession {
	return &replSession{ed: ed, stdout: os.Stdout, stderr: os.Stderr}
}

// withIO swaps the session's output streams and returns a restore func.
func (s *replSession) withIO(stdout, stderr io.Writer) func() {
	prevOut, prevErr := s.stdout, s.stderr
	if stdout != nil {
		s.stdout = stdout
	}
	if stderr != nil {
		s.stderr = stderr
	}
	return func() {
		s.stdout = prevOut
		s.stderr = prevErr
	}
}

// executeLine runs one line. done reports that the session should end.
func (s *replSession) executeLine(line string) (done bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	tokens := splitFields(line)
	if len(tokens) == 0 {
		return false, nil
	}
	ctx := context.Background()
	verb := strings.ToLower(tokens[0])
	switch verb {
	case "quit", "exit":
		return true, nil
	case "undo":
		if err := s.ed.Undo(ctx); err != nil {
			return false, err
		}
		s.record(line)
		return false, s.print("undone")
	case "redo":
		if err := s.ed.Redo(ctx); err != nil {
			return false, err
		}
		s.record(line)
		return false, s.print("redone")
	case "history":
		if len(s.history) == 0 {
			return false, s.print("no commands executed yet")
		}
		for i, entry := range s.history {
			if err := s.printf("%3d  %s", i+1, entry); err != nil {
				return false, err
			}
		}
		return false, nil
	case "status":
		return false, s.print(s.statusLine())
	case "save":
		path := ""
		if len(tokens) > 1 {
			path = tokens[1]
		}
		saved, err := s.ed.Save(ctx, path)
		if err != nil {
			return false, err
		}
		s.record(line)
		return false, s.printf("saved %s", saved)
	default:
		out, err := runOp(ctx, s.ed, tokens)
		if err != nil {
			return false, err
		}
		s.record(line)
		return false, s.print(out)
	}
}

func (s *replSession) record(line string) {
	s.history = append(s.history, line)
}

func (s *replSession) statusLine() string {
	cv := s.ed.Canvas()
	w, h := cv.Size()
	inv := s.ed.Invoker()
	return fmt.Sprintf("canvas %dx%d, rotation %g, %d filter(s), %d object(s), undo %d, redo %d",
		w, h, cv.Rotation(), len(cv.Filters()), len(cv.Objects()),
		inv.UndoStackLength(), inv.RedoStackLength())
}

func (s *replSession) print(msg string) error {
	_, err := fmt.Fprintln(s.stdout, msg)
	return err
}

func (s *replSession) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(s.stdout, format+"\n", args...)
	return err
}

type replCmd struct {
	file    string
	newSize string
	execs   commandList
	*root
	fs *flag.FlagSet
}

func (c *replCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *replCmd) Template() string {
	return "repl.txt"
}

func parseReplCmd(args []string, r *root) (*replCmd, error) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	c := &replCmd{root: r, fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.file, "file", "", "image file to open")
	fs.StringVar(&c.newSize, "new", "", "start from a blank canvas of this size (WxH)")
	fs.Var(&c.execs, "e", "execute a repl line and exit (may be given multiple times)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.file != "" && c.newSize != "" {
		return nil, fmt.Errorf("-file and -new are mutually exclusive")
	}
	return c, nil
}

// newLineEditor builds the editor a line-driven session starts from: the
// given file, a blank canvas of the given size, or the default blank canvas.
func newLineEditor(file, newSize string) (*editor.Editor, error) {
	switch {
	case file != "":
		img, err := loadImageFile(file)
		if err != nil {
			return nil, err
		}
		return editor.New(editor.WithImage(img), editor.WithSavePath(file)), nil
	case newSize != "":
		w, h, err := parseSize(newSize)
		if err != nil {
			return nil, err
		}
		return editor.New(editor.WithSize(w, h)), nil
	default:
		return editor.New(editor.WithSize(defaultCanvasWidth, defaultCanvasHeight)), nil
	}
}

func (c *replCmd) Run() error {
	ed, err := newLineEditor(c.file, c.newSize)
	if err != nil {
		return err
	}
	session := newReplSession(ed)

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := session.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if interactive {
		fmt.Fprintln(os.Stdout, "enter commands ('quit' to leave, 'status' for the canvas state)")
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactive {
			fmt.Fprint(os.Stdout, "> ")
		}
		if !scanner.Scan() {
			break
		}
		done, err := session.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if done {
			break
		}
	}
	return scanner.Err()
}
