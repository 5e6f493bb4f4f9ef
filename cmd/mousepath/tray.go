package main

import (
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/systray"

	"github.com/bpaydar/mousepath/internal/app"
)

const trayUpdateInterval = time.Second

// Menu item references for dynamic updates.
var (
	mMeters     *systray.MenuItem
	mKilometers *systray.MenuItem
	mMiles      *systray.MenuItem
	mToggle     *systray.MenuItem
	mReset      *systray.MenuItem
	mSave       *systray.MenuItem
	mQuit       *systray.MenuItem

	lastTitle  string
	titleMutex sync.Mutex

	// trayDone stops the menu goroutines when the tray loop exits.
	trayDone chan struct{}
)

// runTrayLoop blocks in the systray event loop until quit.
func runTrayLoop(engine *app.Engine) {
	systray.Run(func() { onReady(engine) }, func() { onExit(engine) })
}

func quitTray() {
	systray.Quit()
}

func onReady(engine *app.Engine) {
	trayDone = make(chan struct{})

	systray.SetTitle("🖱️")
	systray.SetTooltip("Mouse Path Tracker")

	mMeters = systray.AddMenuItem("Meters:     --", "")
	mMeters.Disable()
	mKilometers = systray.AddMenuItem("Kilometers: --", "")
	mKilometers.Disable()
	mMiles = systray.AddMenuItem("Miles:      --", "")
	mMiles.Disable()

	systray.AddSeparator()

	mToggle = systray.AddMenuItem(toggleLabel(engine.Tracking()), "Pause or resume tracking")
	mReset = systray.AddMenuItem("Reset", "Zero the distance counter")
	mSave = systray.AddMenuItem("Save Now", "Write the state file immediately")

	systray.AddSeparator()

	mQuit = systray.AddMenuItem("Quit", "Save and exit")

	go handleClicks(engine)

	go menuRefreshLoop(trayUpdateInterval, trayDone, func() { updateMenu(engine) })
}

// menuRefreshLoop invokes update once immediately and then on every tick
// until done closes.
func menuRefreshLoop(interval time.Duration, done <-chan struct{}, update func()) {
	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			update()
		}
	}
}

func onExit(engine *app.Engine) {
	log.Println("Tray exiting...")
	close(trayDone)
	engine.Close()
}

func handleClicks(engine *app.Engine) {
	for {
		select {
		case <-trayDone:
			return

		case <-mToggle.ClickedCh:
			tracking := engine.Toggle()
			mToggle.SetTitle(toggleLabel(tracking))
			log.Printf("Tracking %s", map[bool]string{true: "resumed", false: "paused"}[tracking])

		case <-mReset.ClickedCh:
			engine.Reset()
			updateMenu(engine)
			log.Println("Counter reset")

		case <-mSave.ClickedCh:
			if err := engine.Save(); err != nil {
				log.Printf("Manual save failed: %v", err)
			}

		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func toggleLabel(tracking bool) string {
	if tracking {
		return "Pause"
	}
	return "Start"
}

func updateMenu(engine *app.Engine) {
	totals := engine.Totals()

	mMeters.SetTitle(fmt.Sprintf("Meters:     %.4f m", totals.Meters))
	mKilometers.SetTitle(fmt.Sprintf("Kilometers: %.6f km", totals.Kilometers))
	mMiles.SetTitle(fmt.Sprintf("Miles:      %.6f mi", totals.Miles))
	mToggle.SetTitle(toggleLabel(engine.Tracking()))

	setTrayTitle(fmt.Sprintf("🖱️ %.1f m", totals.Meters))
}

// setTrayTitle skips the systray call when the text has not changed.
func setTrayTitle(title string) {
	titleMutex.Lock()
	defer titleMutex.Unlock()
	if title == lastTitle {
		return
	}
	lastTitle = title
	systray.SetTitle(title)
}
