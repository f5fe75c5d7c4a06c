// Package assets holds the embedded icon library: one .path file per icon
// containing M/L/Z path data in a 32x32 box.
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
)

//go:embed icons/*.path
var embeddedIcons embed.FS

var (
	loadIconsOnce sync.Once
	loadIconsErr  error

	iconPaths = map[string]string{}
)

func loadIcons() {
	entries, err := fs.ReadDir(embeddedIcons, "icons")
	if err != nil {
		loadIconsErr = err
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".path") {
			continue
		}
		data, err := embeddedIcons.ReadFile(path.Join("icons", name))
		if err != nil {
			loadIconsErr = err
			return
		}
		iconPaths[strings.TrimSuffix(name, ".path")] = strings.TrimSpace(string(data))
	}
}

func ensureIcons() error {
	loadIconsOnce.Do(loadIcons)
	return loadIconsErr
}

// IconPath returns the path data for a named icon.
func IconPath(name string) (string, error) {
	if err := ensureIcons(); err != nil {
		return "", err
	}
	data, ok := iconPaths[name]
	if !ok {
		return "", fmt.Errorf("icon %q not embedded", name)
	}
	return data, nil
}

// IconNames lists the embedded icon names in sorted order.
func IconNames() []string {
	if err := ensureIcons(); err != nil {
		return nil
	}
	names := make([]string, 0, len(iconPaths))
	for name := range iconPaths {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IconSize is the design box the icon path coordinates live in.
const IconSize = 32
