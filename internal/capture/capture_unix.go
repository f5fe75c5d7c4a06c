//go:build linux || freebsd || openbsd || netbsd || dragonfly

package capture

import (
	"fmt"
	"image"
	"os"
	"strings"
)

// Test seams.
var (
	x11ScreenshotFn    = x11Screenshot
	portalScreenshotFn = portalScreenshot
)

func grabScreen() (*image.RGBA, error) {
	if preferX11() {
		img, x11Err := x11ScreenshotFn()
		if x11Err == nil {
			return img, nil
		}
		img, err := portalScreenshotFn()
		if err != nil {
			return nil, fmt.Errorf("x11 screenshot: %v; portal fallback: %w", x11Err, err)
		}
		return img, nil
	}
	img, err := portalScreenshotFn()
	if err != nil {
		return nil, fmt.Errorf("portal screenshot: %w", err)
	}
	return img, nil
}

// preferX11 reports whether reading the root window directly is worth
// attempting. Under Wayland the X server is XWayland and the root window
// holds no desktop pixels, so the portal is the only real option there.
func preferX11() bool {
	if os.Getenv("DISPLAY") == "" {
		return false
	}
	return !runningOnWayland()
}

func runningOnWayland() bool {
	sessionType := strings.ToLower(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")))
	if sessionType == "wayland" {
		return true
	}
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return true
	}
	return false
}
