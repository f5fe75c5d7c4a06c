// Package command implements the reversible command engine: named commands
// created from a registry of definitions, and the invoker that runs them
// under a single-flight lock while maintaining the undo and redo stacks.
package command

// Command is one reversible edit operation: a definition bound to the
// arguments of a single invocation. Its undo payload starts empty and is
// filled by the definition's execute on first success; whichever stack holds
// the command owns it until that stack is cleared or overwritten.
type Command struct {
	def  Definition
	args []any

	// undoData is the command's undo payload. Each definition stores its own
	// concrete payload type here; the invoker never inspects it.
	undoData any

	// silent mirrors the invoker's silent flag for the duration of one run,
	// so execute bodies can thread it into SetUndoData.
	silent bool

	executeCallback func(any)
	undoCallback    func(any)
}

// NewCommand binds a definition to one invocation's arguments. Most callers
// go through Registry.Create; NewCommand exists for pre-built commands that
// are pushed onto a stack directly.
func NewCommand(def Definition, args ...any) *Command {
	return &Command{def: def, args: args}
}

// Name returns the registered command name.
func (c *Command) Name() string {
	return c.def.Name
}

// Args returns the bound argument list.
func (c *Command) Args() []any {
	return c.args
}

// Arg returns the i-th argument, reporting whether it exists.
func (c *Command) Arg(i int) (any, bool) {
	if i < 0 || i >= len(c.args) {
		return nil, false
	}
	return c.args[i], true
}

// IsRedo reports whether the command has executed successfully before: a
// non-empty undo payload means this run is a redo and the payload must not
// be recaptured.
func (c *Command) IsRedo() bool {
	return c.undoData != nil
}

// UndoData returns the stored undo payload, nil until the first non-silent
// execute succeeds.
func (c *Command) UndoData() any {
	return c.undoData
}

// Silent reports whether the current run was started through ExecuteSilent.
// Only meaningful inside the definition's execute.
func (c *Command) Silent() bool {
	return c.silent
}

// SetUndoData applies the silent-run coalescing policy and returns the new
// cache value. cached is the snapshot captured at the start of the current
// silent run; when present it wins over next, so the payload that finally
// sticks describes the state before the first silent call. A non-silent call
// commits the winner into the command's undo payload and clears the cache by
// returning nil; a silent call leaves the payload untouched and returns the
// winner for the caller to carry into the next call.
func (c *Command) SetUndoData(next, cached any, silent bool) any {
	if cached != nil {
		next = cached
	}
	if silent {
		return next
	}
	c.undoData = next
	return nil
}

// SetExecuteCallback installs a hook invoked with execute's result after a
// successful run. It returns the command for chaining.
func (c *Command) SetExecuteCallback(fn func(result any)) *Command {
	c.executeCallback = fn
	return c
}

// SetUndoCallback installs a hook invoked with undo's result after a
// successful undo.
func (c *Command) SetUndoCallback(fn func(result any)) *Command {
	c.undoCallback = fn
	return c
}
