package command

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/example/easel/internal/canvas"
)

var (
	// ErrInvokerLocked reports an operation attempted while another execute,
	// undo or redo was in flight. Callers are rejected, never queued.
	ErrInvokerLocked = errors.New("invoker is locked: another operation is in flight")
	// ErrEmptyUndoStack reports an undo with nothing to undo.
	ErrEmptyUndoStack = errors.New("undo stack is empty")
	// ErrEmptyRedoStack reports a redo with nothing to redo.
	ErrEmptyRedoStack = errors.New("redo stack is empty")
	// ErrNilCommand reports an execute of a nil command instance.
	ErrNilCommand = errors.New("nil command")
)

// Invoker owns the undo and redo stacks and runs commands against one
// canvas. At most one operation is in flight at a time: a second caller is
// rejected with ErrInvokerLocked immediately rather than queued, so rapid
// repeated undo from a keyboard shortcut degrades to ordinary, ignorable
// errors.
type Invoker struct {
	registry *Registry
	canvas   *canvas.Canvas

	// locked is the single-flight gate. It is held for the full duration of
	// an operation, including the command's own work, and released on
	// success and failure alike.
	locked atomic.Bool

	// mu guards the two stacks. It is never held across a command's execute
	// or undo; ordering comes from the single-flight gate, mu only keeps
	// stack reads consistent for callers polling lengths.
	mu        sync.Mutex
	undoStack []*Command
	redoStack []*Command

	undoStackListeners []func(length int)
	redoStackListeners []func(length int)
	executeListeners   []func(*Command)
	afterUndoListeners []func(*Command)
	afterRedoListeners []func(*Command)
}

// Option configures an Invoker at construction.
type Option func(*Invoker)

// WithUndoStackListener subscribes fn to undo-stack length changes.
func WithUndoStackListener(fn func(length int)) Option {
	return func(inv *Invoker) {
		inv.undoStackListeners = append(inv.undoStackListeners, fn)
	}
}

// WithRedoStackListener subscribes fn to redo-stack length changes.
func WithRedoStackListener(fn func(length int)) Option {
	return func(inv *Invoker) {
		inv.redoStackListeners = append(inv.redoStackListeners, fn)
	}
}

// WithExecuteListener subscribes fn to every non-silent command execution,
// including redo re-executions.
func WithExecuteListener(fn func(*Command)) Option {
	return func(inv *Invoker) {
		inv.executeListeners = append(inv.executeListeners, fn)
	}
}

// WithAfterUndoListener subscribes fn to successful undos.
func WithAfterUndoListener(fn func(*Command)) Option {
	return func(inv *Invoker) {
		inv.afterUndoListeners = append(inv.afterUndoListeners, fn)
	}
}

// WithAfterRedoListener subscribes fn to successful redos.
func WithAfterRedoListener(fn func(*Command)) Option {
	return func(inv *Invoker) {
		inv.afterRedoListeners = append(inv.afterRedoListeners, fn)
	}
}

// NewInvoker builds an invoker running commands from reg against cv.
func NewInvoker(reg *Registry, cv *canvas.Canvas, opts ...Option) *Invoker {
	inv := &Invoker{registry: reg, canvas: cv}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Canvas returns the surface this invoker edits.
func (inv *Invoker) Canvas() *canvas.Canvas {
	return inv.canvas
}

// Registry returns the command registry, mainly so shells can list names.
func (inv *Invoker) Registry() *Registry {
	return inv.registry
}

// Execute creates the named command bound to args and runs it. On success
// the command lands on top of the undo stack and the redo stack is cleared.
func (inv *Invoker) Execute(ctx context.Context, name string, args ...any) (any, error) {
	cmd, err := inv.registry.Create(name, args...)
	if err != nil {
		return nil, err
	}
	return inv.ExecuteCommand(ctx, cmd)
}

// ExecuteSilent runs the named command without recording it: neither stack
// is touched and no stack notification fires, but the command's business
// logic and its undo-data coalescing still run.
func (inv *Invoker) ExecuteSilent(ctx context.Context, name string, args ...any) (any, error) {
	cmd, err := inv.registry.Create(name, args...)
	if err != nil {
		return nil, err
	}
	return inv.ExecuteCommandSilent(ctx, cmd)
}

// ExecuteCommand runs a pre-built command instance, recording it on success.
func (inv *Invoker) ExecuteCommand(ctx context.Context, cmd *Command) (any, error) {
	return inv.run(ctx, cmd, false)
}

// ExecuteCommandSilent runs a pre-built command instance without recording.
func (inv *Invoker) ExecuteCommandSilent(ctx context.Context, cmd *Command) (any, error) {
	return inv.run(ctx, cmd, true)
}

func (inv *Invoker) run(ctx context.Context, cmd *Command, silent bool) (any, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}
	if !inv.locked.CompareAndSwap(false, true) {
		return nil, ErrInvokerLocked
	}
	defer inv.locked.Store(false)

	cmd.silent = silent
	result, err := cmd.def.Execute(ctx, inv.canvas, cmd)
	cmd.silent = false
	if err != nil {
		// The stacks were never touched; release the lock and re-raise.
		return nil, err
	}

	if !silent {
		inv.push(&inv.undoStack, cmd)
		inv.notifyUndoStack()
		if inv.clear(&inv.redoStack) {
			inv.notifyRedoStack()
		}
		inv.notifyExecute(cmd)
	}
	if cmd.executeCallback != nil {
		cmd.executeCallback(result)
	}
	return result, nil
}

// Undo pops the most recent command, runs its undo, and moves it to the redo
// stack. An empty undo stack is an expected rejection; the error notes when
// the invoker was also locked at the time, which helps diagnose rapid-fire
// callers.
func (inv *Invoker) Undo(ctx context.Context) (any, error) {
	if inv.IsEmptyUndoStack() {
		if inv.Locked() {
			return nil, fmt.Errorf("%w (%w)", ErrEmptyUndoStack, ErrInvokerLocked)
		}
		return nil, ErrEmptyUndoStack
	}
	if !inv.locked.CompareAndSwap(false, true) {
		return nil, ErrInvokerLocked
	}
	defer inv.locked.Store(false)

	cmd, ok := inv.pop(&inv.undoStack)
	if !ok {
		return nil, ErrEmptyUndoStack
	}
	result, err := cmd.def.Undo(ctx, inv.canvas, cmd)
	if err != nil {
		// Put the command back so a failed undo leaves both stacks exactly
		// as they were; no notifications fire.
		inv.push(&inv.undoStack, cmd)
		return nil, err
	}

	inv.push(&inv.redoStack, cmd)
	inv.notifyUndoStack()
	inv.notifyRedoStack()
	inv.notifyAfterUndo(cmd)
	if cmd.undoCallback != nil {
		cmd.undoCallback(result)
	}
	return result, nil
}

// Redo pops the redo stack, re-runs the command's execute, and moves it back
// to the undo stack.
func (inv *Invoker) Redo(ctx context.Context) (any, error) {
	if inv.IsEmptyRedoStack() {
		if inv.Locked() {
			return nil, fmt.Errorf("%w (%w)", ErrEmptyRedoStack, ErrInvokerLocked)
		}
		return nil, ErrEmptyRedoStack
	}
	if !inv.locked.CompareAndSwap(false, true) {
		return nil, ErrInvokerLocked
	}
	defer inv.locked.Store(false)

	cmd, ok := inv.pop(&inv.redoStack)
	if !ok {
		return nil, ErrEmptyRedoStack
	}
	result, err := cmd.def.Execute(ctx, inv.canvas, cmd)
	if err != nil {
		inv.push(&inv.redoStack, cmd)
		return nil, err
	}

	inv.push(&inv.undoStack, cmd)
	inv.notifyUndoStack()
	inv.notifyRedoStack()
	inv.notifyExecute(cmd)
	inv.notifyAfterRedo(cmd)
	if cmd.executeCallback != nil {
		cmd.executeCallback(result)
	}
	return result, nil
}

// UndoCommand runs a pre-built command's undo without involving the stacks:
// nothing is recorded, nothing becomes redoable, and no stack notification
// fires. It is the rollback path for preview state applied through the
// silent execute variants.
func (inv *Invoker) UndoCommand(ctx context.Context, cmd *Command) (any, error) {
	if cmd == nil {
		return nil, ErrNilCommand
	}
	if !inv.locked.CompareAndSwap(false, true) {
		return nil, ErrInvokerLocked
	}
	defer inv.locked.Store(false)

	result, err := cmd.def.Undo(ctx, inv.canvas, cmd)
	if err != nil {
		return nil, err
	}
	if cmd.undoCallback != nil {
		cmd.undoCallback(result)
	}
	return result, nil
}

// PushUndoStack records a pre-built command without running it, for commands
// that already applied themselves at creation time. silent suppresses the
// stack notification.
func (inv *Invoker) PushUndoStack(cmd *Command, silent bool) {
	if cmd == nil {
		return
	}
	inv.push(&inv.undoStack, cmd)
	if !silent {
		inv.notifyUndoStack()
	}
}

// PushRedoStack records a pre-built command on the redo stack. silent
// suppresses the stack notification.
func (inv *Invoker) PushRedoStack(cmd *Command, silent bool) {
	if cmd == nil {
		return
	}
	inv.push(&inv.redoStack, cmd)
	if !silent {
		inv.notifyRedoStack()
	}
}

// ClearUndoStack discards every undo entry, notifying only when the stack
// was non-empty.
func (inv *Invoker) ClearUndoStack() {
	if inv.clear(&inv.undoStack) {
		inv.notifyUndoStack()
	}
}

// ClearRedoStack discards every redo entry, notifying only when the stack
// was non-empty.
func (inv *Invoker) ClearRedoStack() {
	if inv.clear(&inv.redoStack) {
		inv.notifyRedoStack()
	}
}

// IsEmptyUndoStack reports whether there is nothing to undo.
func (inv *Invoker) IsEmptyUndoStack() bool {
	return inv.UndoStackLength() == 0
}

// IsEmptyRedoStack reports whether there is nothing to redo.
func (inv *Invoker) IsEmptyRedoStack() bool {
	return inv.RedoStackLength() == 0
}

// UndoStackLength returns the undo stack depth.
func (inv *Invoker) UndoStackLength() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.undoStack)
}

// RedoStackLength returns the redo stack depth.
func (inv *Invoker) RedoStackLength() int {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return len(inv.redoStack)
}

// Locked reports whether an operation is currently in flight.
func (inv *Invoker) Locked() bool {
	return inv.locked.Load()
}

// PeekUndo returns the command on top of the undo stack without removing it.
func (inv *Invoker) PeekUndo() (*Command, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if len(inv.undoStack) == 0 {
		return nil, false
	}
	return inv.undoStack[len(inv.undoStack)-1], true
}

func (inv *Invoker) push(stack *[]*Command, cmd *Command) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	*stack = append(*stack, cmd)
}

func (inv *Invoker) pop(stack *[]*Command) (*Command, bool) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := len(*stack)
	if n == 0 {
		return nil, false
	}
	cmd := (*stack)[n-1]
	(*stack)[n-1] = nil
	*stack = (*stack)[:n-1]
	return cmd, true
}

// clear empties the stack and reports whether it held anything.
func (inv *Invoker) clear(stack *[]*Command) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	if len(*stack) == 0 {
		return false
	}
	*stack = nil
	return true
}

func (inv *Invoker) notifyUndoStack() {
	length := inv.UndoStackLength()
	for _, fn := range inv.undoStackListeners {
		fn(length)
	}
}

func (inv *Invoker) notifyRedoStack() {
	length := inv.RedoStackLength()
	for _, fn := range inv.redoStackListeners {
		fn(length)
	}
}

func (inv *Invoker) notifyExecute(cmd *Command) {
	for _, fn := range inv.executeListeners {
		fn(cmd)
	}
}

func (inv *Invoker) notifyAfterUndo(cmd *Command) {
	for _, fn := range inv.afterUndoListeners {
		fn(cmd)
	}
}

func (inv *Invoker) notifyAfterRedo(cmd *Command) {
	for _, fn := range inv.afterRedoListeners {
		fn(cmd)
	}
}
