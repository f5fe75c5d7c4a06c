// Package capture grabs the desktop so an editing session can start from
// a screenshot instead of a file. It is an image source only: picking
// individual windows or monitors is left to dedicated screenshot tools.
package capture

import "image"

// Screen captures the full desktop. X11 sessions are read straight off the
// root window; Wayland sessions go through the freedesktop portal, which may
// prompt the user depending on the compositor.
func Screen() (*image.RGBA, error) {
	return grabScreen()
}
