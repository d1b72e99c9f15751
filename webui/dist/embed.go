//go:build !debug

package dist

import (
	"embed"
	"io/fs"
)

//go:embed index.html
var embedded embed.FS

// Content is the tracker's web UI.
var Content fs.FS = embedded
