package command

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/example/easel/internal/canvas"
)

func newEngine(opts ...Option) (*Invoker, *Registry) {
	reg := NewRegistry()
	return NewInvoker(reg, canvas.New(canvas.WithSize(8, 8)), opts...), reg
}

// valueDefinition builds a command that sets a shared scalar and restores the
// previous value on undo. The closure-held cache carries the pre-first-silent
// snapshot across a run of silent previews, the same way drag handlers do.
func valueDefinition(name string, value *float64) Definition {
	var cache any
	return Definition{
		Name: name,
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			if !c.IsRedo() {
				cache = c.SetUndoData(*value, cache, c.Silent())
			}
			arg, ok := c.Arg(0)
			if !ok {
				return nil, errors.New("missing value argument")
			}
			*value = arg.(float64)
			return *value, nil
		},
		Undo: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			*value = c.UndoData().(float64)
			return *value, nil
		},
	}
}

func TestExecuteUndoRedoRoundTrip(t *testing.T) {
	inv, reg := newEngine()
	value := 0.0
	reg.Register(valueDefinition("setValue", &value))
	ctx := context.Background()

	if _, err := inv.Execute(ctx, "setValue", 10.0); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if value != 10 || inv.UndoStackLength() != 1 {
		t.Fatalf("after execute: value=%v undo=%d", value, inv.UndoStackLength())
	}

	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if value != 0 || inv.UndoStackLength() != 0 || inv.RedoStackLength() != 1 {
		t.Fatalf("after undo: value=%v undo=%d redo=%d", value, inv.UndoStackLength(), inv.RedoStackLength())
	}

	if _, err := inv.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if value != 10 || inv.UndoStackLength() != 1 || inv.RedoStackLength() != 0 {
		t.Fatalf("after redo: value=%v undo=%d redo=%d", value, inv.UndoStackLength(), inv.RedoStackLength())
	}
}

func TestExecuteClearsRedoStack(t *testing.T) {
	inv, reg := newEngine()
	value := 0.0
	reg.Register(valueDefinition("setValue", &value))
	ctx := context.Background()

	for _, v := range []float64{1, 2} {
		if _, err := inv.Execute(ctx, "setValue", v); err != nil {
			t.Fatalf("execute %v: %v", v, err)
		}
	}
	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if inv.RedoStackLength() != 1 {
		t.Fatalf("redo stack should hold the undone command, len=%d", inv.RedoStackLength())
	}

	if _, err := inv.Execute(ctx, "setValue", 3.0); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if inv.RedoStackLength() != 0 {
		t.Fatal("a fresh execute should clear the redo stack")
	}
	if inv.UndoStackLength() != 2 {
		t.Fatalf("undo stack len=%d, want 2", inv.UndoStackLength())
	}
}

func TestSilentRunsCoalesceIntoOneUndoEntry(t *testing.T) {
	inv, reg := newEngine()
	angle := 0.0
	reg.Register(valueDefinition("setAngle", &angle))
	ctx := context.Background()

	for _, a := range []float64{5, 15, 20} {
		if _, err := inv.ExecuteSilent(ctx, "setAngle", a); err != nil {
			t.Fatalf("silent %v: %v", a, err)
		}
	}
	if angle != 20 {
		t.Fatalf("silent runs did not apply: angle=%v", angle)
	}
	if inv.UndoStackLength() != 0 || inv.RedoStackLength() != 0 {
		t.Fatal("silent runs must not touch the stacks")
	}

	if _, err := inv.Execute(ctx, "setAngle", 20.0); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if inv.UndoStackLength() != 1 {
		t.Fatalf("commit should add exactly one undo entry, len=%d", inv.UndoStackLength())
	}

	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if angle != 0 {
		t.Fatalf("undo should restore the pre-first-silent state, angle=%v", angle)
	}
	if _, err := inv.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if angle != 20 {
		t.Fatalf("redo should reapply the committed value, angle=%v", angle)
	}
}

func TestRedoDoesNotRecaptureUndoData(t *testing.T) {
	inv, reg := newEngine()
	value := 7.0
	reg.Register(valueDefinition("setValue", &value))
	ctx := context.Background()

	if _, err := inv.Execute(ctx, "setValue", 10.0); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if _, err := inv.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	// A second undo must restore the original pre-execute state, proving the
	// redo run did not overwrite the payload with the undone state.
	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("second undo: %v", err)
	}
	if value != 7 {
		t.Fatalf("payload was recaptured during redo: value=%v", value)
	}
}

func TestInFlightCommandLocksInvoker(t *testing.T) {
	inv, reg := newEngine()
	started := make(chan struct{})
	release := make(chan struct{})
	reg.Register(Definition{
		Name: "block",
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			close(started)
			<-release
			return "done", nil
		},
		Undo: nopExec,
	})
	inv.PushUndoStack(NewCommand(nopDef("seed")), true)
	ctx := context.Background()

	type outcome struct {
		result any
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := inv.Execute(ctx, "block")
		done <- outcome{result, err}
	}()
	<-started

	if _, err := inv.Execute(ctx, "block"); !errors.Is(err, ErrInvokerLocked) {
		t.Fatalf("second execute: got %v, want ErrInvokerLocked", err)
	}
	if _, err := inv.Undo(ctx); !errors.Is(err, ErrInvokerLocked) {
		t.Fatalf("undo while locked: got %v, want ErrInvokerLocked", err)
	}
	if !inv.Locked() {
		t.Fatal("invoker should report locked while a command is in flight")
	}

	close(release)
	got := <-done
	if got.err != nil || got.result != "done" {
		t.Fatalf("blocked execute finished with %v, %v", got.result, got.err)
	}
	if inv.Locked() {
		t.Fatal("lock not released after completion")
	}
	if inv.UndoStackLength() != 2 {
		t.Fatalf("undo stack len=%d, want seed + block", inv.UndoStackLength())
	}
	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo after release: %v", err)
	}
}

func TestUndoEmptyStackErrors(t *testing.T) {
	inv, _ := newEngine()
	_, err := inv.Undo(context.Background())
	if !errors.Is(err, ErrEmptyUndoStack) {
		t.Fatalf("got %v, want ErrEmptyUndoStack", err)
	}
	if errors.Is(err, ErrInvokerLocked) {
		t.Fatalf("idle invoker should not report the lock: %v", err)
	}

	_, err = inv.Redo(context.Background())
	if !errors.Is(err, ErrEmptyRedoStack) {
		t.Fatalf("got %v, want ErrEmptyRedoStack", err)
	}
}

func TestUndoEmptyStackWhileLockedMentionsBoth(t *testing.T) {
	inv, reg := newEngine()
	started := make(chan struct{})
	release := make(chan struct{})
	reg.Register(Definition{
		Name: "block",
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			close(started)
			<-release
			return nil, nil
		},
		Undo: nopExec,
	})
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := inv.ExecuteSilent(context.Background(), "block"); err != nil {
			t.Errorf("blocked execute: %v", err)
		}
	}()
	<-started

	_, err := inv.Undo(context.Background())
	if !errors.Is(err, ErrEmptyUndoStack) || !errors.Is(err, ErrInvokerLocked) {
		t.Fatalf("got %v, want both empty-stack and locked", err)
	}

	close(release)
	<-done
}

func TestFailedExecuteLeavesStacksUntouched(t *testing.T) {
	inv, reg := newEngine()
	value := 0.0
	reg.Register(valueDefinition("setValue", &value))
	errBoom := errors.New("boom")
	reg.Register(Definition{
		Name: "boom",
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			return nil, errBoom
		},
		Undo: nopExec,
	})
	ctx := context.Background()

	if _, err := inv.Execute(ctx, "setValue", 5.0); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}

	_, err := inv.Execute(ctx, "boom")
	if !errors.Is(err, errBoom) {
		t.Fatalf("command error should pass through, got %v", err)
	}
	if inv.UndoStackLength() != 0 || inv.RedoStackLength() != 1 {
		t.Fatalf("failed execute changed stacks: undo=%d redo=%d", inv.UndoStackLength(), inv.RedoStackLength())
	}
	if inv.Locked() {
		t.Fatal("lock not released after failed execute")
	}
	if _, err := inv.Redo(ctx); err != nil {
		t.Fatalf("redo after failed execute: %v", err)
	}
	if value != 5 {
		t.Fatalf("redo did not reapply, value=%v", value)
	}
}

func TestFailedUndoRestoresStack(t *testing.T) {
	var undoEvents, redoEvents []int
	inv, reg := newEngine(
		WithUndoStackListener(func(n int) { undoEvents = append(undoEvents, n) }),
		WithRedoStackListener(func(n int) { redoEvents = append(redoEvents, n) }),
	)
	errStuck := errors.New("stuck")
	reg.Register(Definition{
		Name:    "oneway",
		Execute: nopExec,
		Undo: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			return nil, errStuck
		},
	})
	ctx := context.Background()
	if _, err := inv.Execute(ctx, "oneway"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	cmd, _ := inv.PeekUndo()
	undoEvents, redoEvents = nil, nil

	_, err := inv.Undo(ctx)
	if !errors.Is(err, errStuck) {
		t.Fatalf("got %v, want the command's own error", err)
	}
	if inv.UndoStackLength() != 1 || inv.RedoStackLength() != 0 {
		t.Fatalf("failed undo changed stacks: undo=%d redo=%d", inv.UndoStackLength(), inv.RedoStackLength())
	}
	if top, _ := inv.PeekUndo(); top != cmd {
		t.Fatal("failed undo replaced the top command")
	}
	if len(undoEvents) != 0 || len(redoEvents) != 0 {
		t.Fatalf("failed undo fired notifications: %v %v", undoEvents, redoEvents)
	}
	if inv.Locked() {
		t.Fatal("lock not released after failed undo")
	}
}

func TestNotificationSequence(t *testing.T) {
	var undoEvents, redoEvents []int
	var executed, afterUndo, afterRedo []string
	inv, reg := newEngine(
		WithUndoStackListener(func(n int) { undoEvents = append(undoEvents, n) }),
		WithRedoStackListener(func(n int) { redoEvents = append(redoEvents, n) }),
		WithExecuteListener(func(c *Command) { executed = append(executed, c.Name()) }),
		WithAfterUndoListener(func(c *Command) { afterUndo = append(afterUndo, c.Name()) }),
		WithAfterRedoListener(func(c *Command) { afterRedo = append(afterRedo, c.Name()) }),
	)
	value := 0.0
	reg.Register(valueDefinition("setValue", &value))
	ctx := context.Background()

	if _, err := inv.Execute(ctx, "setValue", 1.0); err != nil {
		t.Fatalf("execute: %v", err)
	}
	// Clearing an already-empty redo stack must not notify.
	if len(undoEvents) != 1 || undoEvents[0] != 1 || len(redoEvents) != 0 {
		t.Fatalf("after execute: undo=%v redo=%v", undoEvents, redoEvents)
	}
	if len(executed) != 1 || executed[0] != "setValue" {
		t.Fatalf("execute listener: %v", executed)
	}

	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if len(undoEvents) != 2 || undoEvents[1] != 0 || len(redoEvents) != 1 || redoEvents[0] != 1 {
		t.Fatalf("after undo: undo=%v redo=%v", undoEvents, redoEvents)
	}
	if len(afterUndo) != 1 || afterUndo[0] != "setValue" {
		t.Fatalf("afterUndo listener: %v", afterUndo)
	}

	if _, err := inv.Redo(ctx); err != nil {
		t.Fatalf("redo: %v", err)
	}
	if len(undoEvents) != 3 || undoEvents[2] != 1 || len(redoEvents) != 2 || redoEvents[1] != 0 {
		t.Fatalf("after redo: undo=%v redo=%v", undoEvents, redoEvents)
	}
	if len(executed) != 2 {
		t.Fatalf("redo should notify execute listeners: %v", executed)
	}
	if len(afterRedo) != 1 || afterRedo[0] != "setValue" {
		t.Fatalf("afterRedo listener: %v", afterRedo)
	}
}

func TestExecuteSilentNotifiesNothing(t *testing.T) {
	var events int
	inv, reg := newEngine(
		WithUndoStackListener(func(int) { events++ }),
		WithRedoStackListener(func(int) { events++ }),
		WithExecuteListener(func(*Command) { events++ }),
	)
	value := 0.0
	reg.Register(valueDefinition("setValue", &value))

	if _, err := inv.ExecuteSilent(context.Background(), "setValue", 3.0); err != nil {
		t.Fatalf("silent execute: %v", err)
	}
	if value != 3 {
		t.Fatalf("silent execute did not run: value=%v", value)
	}
	if events != 0 {
		t.Fatalf("silent execute fired %d notifications", events)
	}
}

func TestUndoCommandBypassesStacks(t *testing.T) {
	var undoEvents, redoEvents []int
	inv, reg := newEngine(
		WithUndoStackListener(func(n int) { undoEvents = append(undoEvents, n) }),
		WithRedoStackListener(func(n int) { redoEvents = append(redoEvents, n) }),
	)
	value := 0.0
	reg.Register(valueDefinition("setValue", &value))
	ctx := context.Background()

	// Apply preview state silently, then roll it back through a pre-built
	// command carrying the captured payload.
	if _, err := inv.ExecuteSilent(ctx, "setValue", 9.0); err != nil {
		t.Fatalf("silent execute: %v", err)
	}
	cmd, err := inv.Registry().Create("setValue")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cmd.SetUndoData(0.0, nil, false)
	var undoGot any
	cmd.SetUndoCallback(func(r any) { undoGot = r })

	if _, err := inv.UndoCommand(ctx, cmd); err != nil {
		t.Fatalf("undo command: %v", err)
	}
	if value != 0 {
		t.Fatalf("rollback did not apply: value=%v", value)
	}
	if undoGot != 0.0 {
		t.Fatalf("undo callback got %v", undoGot)
	}
	if inv.UndoStackLength() != 0 || inv.RedoStackLength() != 0 {
		t.Fatalf("rollback touched the stacks: undo=%d redo=%d", inv.UndoStackLength(), inv.RedoStackLength())
	}
	if len(undoEvents) != 0 || len(redoEvents) != 0 {
		t.Fatalf("rollback fired notifications: %v %v", undoEvents, redoEvents)
	}
	if inv.Locked() {
		t.Fatal("lock not released after rollback")
	}
}

func TestUndoCommandPassesErrorThrough(t *testing.T) {
	inv, reg := newEngine()
	errStuck := errors.New("stuck")
	reg.Register(Definition{
		Name:    "oneway",
		Execute: nopExec,
		Undo: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			return nil, errStuck
		},
	})
	cmd, err := inv.Registry().Create("oneway")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := inv.UndoCommand(context.Background(), cmd); !errors.Is(err, errStuck) {
		t.Fatalf("got %v, want the command's own error", err)
	}
	if inv.Locked() {
		t.Fatal("lock not released after failed rollback")
	}
	if _, err := inv.UndoCommand(context.Background(), nil); !errors.Is(err, ErrNilCommand) {
		t.Fatalf("got %v, want ErrNilCommand", err)
	}
}

func TestClearStacksNotifyOnlyWhenNonEmpty(t *testing.T) {
	var undoEvents, redoEvents []int
	inv, _ := newEngine(
		WithUndoStackListener(func(n int) { undoEvents = append(undoEvents, n) }),
		WithRedoStackListener(func(n int) { redoEvents = append(redoEvents, n) }),
	)

	inv.ClearUndoStack()
	inv.ClearRedoStack()
	if len(undoEvents) != 0 || len(redoEvents) != 0 {
		t.Fatalf("clearing empty stacks notified: %v %v", undoEvents, redoEvents)
	}

	inv.PushUndoStack(NewCommand(nopDef("a")), true)
	inv.PushRedoStack(NewCommand(nopDef("b")), true)
	if len(undoEvents) != 0 || len(redoEvents) != 0 {
		t.Fatal("silent pushes must not notify")
	}

	inv.PushUndoStack(NewCommand(nopDef("c")), false)
	if len(undoEvents) != 1 || undoEvents[0] != 2 {
		t.Fatalf("non-silent push events: %v", undoEvents)
	}

	inv.ClearUndoStack()
	inv.ClearRedoStack()
	if len(undoEvents) != 2 || undoEvents[1] != 0 {
		t.Fatalf("clear events: %v", undoEvents)
	}
	if len(redoEvents) != 1 || redoEvents[0] != 0 {
		t.Fatalf("clear events: %v", redoEvents)
	}
}

func TestExecuteNilCommand(t *testing.T) {
	inv, _ := newEngine()
	if _, err := inv.ExecuteCommand(context.Background(), nil); !errors.Is(err, ErrNilCommand) {
		t.Fatalf("got %v, want ErrNilCommand", err)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	inv, _ := newEngine()
	if _, err := inv.Execute(context.Background(), "nope"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("got %v, want ErrUnknownCommand", err)
	}
}

func TestCommandCallbacksFire(t *testing.T) {
	inv, reg := newEngine()
	value := 0.0
	reg.Register(valueDefinition("setValue", &value))

	var execGot, undoGot any
	cmd, err := inv.Registry().Create("setValue", 9.0)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	cmd.SetExecuteCallback(func(r any) { execGot = r }).SetUndoCallback(func(r any) { undoGot = r })

	ctx := context.Background()
	if _, err := inv.ExecuteCommand(ctx, cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if execGot != 9.0 {
		t.Fatalf("execute callback got %v", execGot)
	}
	if _, err := inv.Undo(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if undoGot != 0.0 {
		t.Fatalf("undo callback got %v", undoGot)
	}
}

func TestConcurrentExecutesAdmitOneAtATime(t *testing.T) {
	inv, reg := newEngine()
	count := 0
	reg.Register(Definition{
		Name: "incr",
		Execute: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			count++
			return count, nil
		},
		Undo: func(ctx context.Context, cv *canvas.Canvas, c *Command) (any, error) {
			count--
			return count, nil
		},
	})

	var successes, rejected atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				switch _, err := inv.Execute(context.Background(), "incr"); {
				case err == nil:
					successes.Add(1)
				case errors.Is(err, ErrInvokerLocked):
					rejected.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	if successes.Load() == 0 {
		t.Fatal("no execute ever succeeded")
	}
	if got := int64(count); got != successes.Load() {
		t.Fatalf("count=%d, want one increment per success %d", got, successes.Load())
	}
	if got := int64(inv.UndoStackLength()); got != successes.Load() {
		t.Fatalf("undo stack %d, want %d", got, successes.Load())
	}
}
