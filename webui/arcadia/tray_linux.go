package main

import (
	"os"
	"os/signal"
	"syscall"
)

func createSystray() {
	// just open the browser UI on startup unless asked not to:
	if os.Getenv("ARCADIA_NO_BROWSER") == "" {
		openWebUI()
	}

	// block until interrupted:
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
