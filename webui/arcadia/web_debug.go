//go:build debug

package main

import (
	"io/fs"
	"net/http"
)

// StaticHandler serves the UI from disk with caching disabled so edits show up on reload.
func StaticHandler(fsys fs.FS) http.Handler {
	files := http.FileServer(http.FS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		files.ServeHTTP(w, r)
	})
}
