package notify

import (
	"image"
	"strings"
	"testing"

	"github.com/example/easel/internal/platform"
)

type sent struct {
	title string
	body  string
	opts  platform.Options
}

func captureDispatch(t *testing.T) *[]sent {
	t.Helper()
	var calls []sent
	orig := notifyFn
	notifyFn = func(title, body string, opts platform.Options) error {
		calls = append(calls, sent{title: title, body: body, opts: opts})
		return nil
	}
	t.Cleanup(func() { notifyFn = orig })
	return &calls
}

func TestDisabledEventsStaySilent(t *testing.T) {
	calls := captureDispatch(t)
	n := New(DefaultPreferences())

	n.Save("/tmp/out.png")
	n.Copy("image")
	n.Export("render", nil)

	if len(*calls) != 0 {
		t.Fatalf("dispatched %d notifications with everything disabled", len(*calls))
	}
}

func TestEnabledEventDispatches(t *testing.T) {
	calls := captureDispatch(t)
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)

	n.Copy("selection")

	if len(*calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(*calls))
	}
	got := (*calls)[0]
	if got.title != "Easel" {
		t.Errorf("title = %q, want Easel", got.title)
	}
	if got.body != "Copied selection to clipboard" {
		t.Errorf("body = %q", got.body)
	}
}

func TestCopyDefaultsDetail(t *testing.T) {
	calls := captureDispatch(t)
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)

	n.Copy("   ")

	if len(*calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(*calls))
	}
	if !strings.Contains((*calls)[0].body, "image") {
		t.Errorf("body = %q, want fallback detail", (*calls)[0].body)
	}
}

func TestExportAttachesPreview(t *testing.T) {
	calls := captureDispatch(t)
	n := New(DefaultPreferences())
	n.Enable(EventExport, true)

	n.Export("out.png", image.NewRGBA(image.Rect(0, 0, 2, 2)))

	if len(*calls) != 1 {
		t.Fatalf("dispatched %d notifications, want 1", len(*calls))
	}
	if (*calls)[0].opts.IconPath == "" {
		t.Error("expected a preview icon path")
	}
}

func TestLoadPreferencesEnvOverrides(t *testing.T) {
	t.Setenv("EASEL_NOTIFY_TITLE", "My Editor")
	t.Setenv("EASEL_NOTIFY_SAVE_TEXT", "Wrote %s")

	prefs := LoadPreferences()
	if prefs.Title != "My Editor" {
		t.Errorf("Title = %q", prefs.Title)
	}
	if prefs.Events[EventSave].Template != "Wrote %s" {
		t.Errorf("save template = %q", prefs.Events[EventSave].Template)
	}
	if prefs.Events[EventCopy].Template != "Copied %s to clipboard" {
		t.Errorf("copy template = %q, want default", prefs.Events[EventCopy].Template)
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.Enable(EventSave, true)
	n.Save("x.png")
	n.Copy("y")
}
