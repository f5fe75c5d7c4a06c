//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"fmt"
	"image"
)

func grabScreen() (*image.RGBA, error) {
	return nil, fmt.Errorf("screen capture is not supported on this platform")
}
