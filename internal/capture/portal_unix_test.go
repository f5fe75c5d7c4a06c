//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestPortalScreenshotOptions(t *testing.T) {
	prevToken := portalHandleToken
	portalHandleToken = func() string { return "test-token" }
	t.Cleanup(func() { portalHandleToken = prevToken })

	values := portalScreenshotOptions()

	if got := boolVariant(t, values, "interactive"); got {
		t.Fatalf("interactive = %v, want false", got)
	}
	if got := boolVariant(t, values, "modal"); got {
		t.Fatalf("modal = %v, want false", got)
	}
	if got := stringVariant(t, values, "cursor_mode"); got != "hidden" {
		t.Fatalf("cursor_mode = %q, want %q", got, "hidden")
	}
	if got := stringVariant(t, values, "handle_token"); got != "test-token" {
		t.Fatalf("handle_token = %q, want %q", got, "test-token")
	}
	if len(values) != 4 {
		t.Fatalf("expected 4 options, got %d", len(values))
	}
}

func boolVariant(t *testing.T, values map[string]dbus.Variant, key string) bool {
	t.Helper()
	variant, ok := values[key]
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	v, ok := variant.Value().(bool)
	if !ok {
		t.Fatalf("key %q value is %T, want bool", key, variant.Value())
	}
	return v
}

func stringVariant(t *testing.T, values map[string]dbus.Variant, key string) string {
	t.Helper()
	variant, ok := values[key]
	if !ok {
		t.Fatalf("missing key %q", key)
	}
	v, ok := variant.Value().(string)
	if !ok {
		t.Fatalf("key %q value is %T, want string", key, variant.Value())
	}
	return v
}
