package command

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/example/easel/internal/canvas"
)

// ErrUnknownCommand reports a Create call for a name nothing registered.
var ErrUnknownCommand = errors.New("unknown command")

// ExecFunc is the shape of a definition's execute and undo bodies. The
// command carries the invocation arguments and the undo payload; the canvas
// is the surface being edited.
type ExecFunc func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error)

// Definition is a named execute/undo template concrete commands register.
type Definition struct {
	Name    string
	Execute ExecFunc
	Undo    ExecFunc
}

// Registry maps command names to definitions. It is populated once while an
// editor is being assembled and handed to the invoker; there is no hidden
// package-global registry.
type Registry struct {
	defs map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register stores the definition under its name. Registering a name again
// overwrites the previous definition for subsequent Create calls; commands
// already created keep the definition they were built with. Invalid
// definitions are programmer errors and panic.
func (r *Registry) Register(def Definition) {
	if def.Name == "" {
		panic("command: Register with empty name")
	}
	if def.Execute == nil || def.Undo == nil {
		panic(fmt.Sprintf("command: Register %q with nil execute or undo", def.Name))
	}
	r.defs[def.Name] = def
}

// Create builds a fresh command for the named definition bound to args.
func (r *Registry) Create(name string, args ...any) (*Command, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return NewCommand(def, args...), nil
}

// Has reports whether a definition is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.defs[name]
	return ok
}

// Names lists the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
