package theme

import "embed"

// EmbeddedThemes ships the built-in themes so a name like "dark" resolves
// without any files on disk.
//
//go:embed defaults/*.theme
var EmbeddedThemes embed.FS
