//go:build !debug

package main

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
)

// StaticHandler serves the embedded UI. Embedded files carry no modification time, so each one gets a
// content-hash ETag and browsers revalidate on every load instead of caching a stale UI.
func StaticHandler(fsys fs.FS) http.Handler {
	etags := make(map[string]string)
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(b)
		etags[name] = `"` + hex.EncodeToString(sum[:8]) + `"`
		return nil
	})
	if err != nil {
		log.Printf("web: hashing embedded ui: %v\n", err)
	}

	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if etag, ok := etags[embeddedName(r.URL.Path)]; ok {
			w.Header().Set("ETag", etag)
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	})
}

// embeddedName maps a request path to its name in the embedded file system.
func embeddedName(p string) string {
	if strings.HasSuffix(p, "/") {
		p += "index.html"
	}
	return strings.TrimPrefix(path.Clean(p), "/")
}
