//go:build !linux

package main

import (
	"fmt"
	"log"

	"github.com/getlantern/systray"
	"github.com/skratchdot/open-golang/open"
)

func createSystray() {
	// Start up a systray:
	systray.Run(trayStart, trayExit)
}

func quitSystray() {
	systray.Quit()
}

func trayExit() {
	fmt.Println("Finished quitting")
}

func trayStart() {
	systray.SetTitle("Arcadia")
	systray.SetTooltip("ArcadiaBox - NES score tracker")
	mOpenWeb := systray.AddMenuItem("Web UI", "Opens the web UI in the default browser")
	mDebug := systray.AddMenuItem("Session debug", "Opens the session debug dump")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit")

	go func() {
		for {
			select {
			case <-mOpenWeb.ClickedCh:
				openWebUI()
			case <-mDebug.ClickedCh:
				if err := open.Start(browserUrl + "debug/session"); err != nil {
					log.Println(err)
				}
			case <-mQuit.ClickedCh:
				fmt.Println("Requesting quit")
				quitSystray()
				return
			}
		}
	}()
}
