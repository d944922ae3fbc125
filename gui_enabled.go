//go:build gui

package main

import (
	"runtime"
	"time"

	"murmur/gui"
	"murmur/indicator"
	"murmur/platform"
	"murmur/settings"
)

var guiApp *gui.App

// initGUI takes over the main thread for the Fyne event loop and runs
// the control plane in a goroutine.
func initGUI() {
	runtime.LockOSThread()
	guiApp = gui.NewApp(func() {
		run()
		guiApp.Quit()
	})
	if err := gui.Run(guiApp); err != nil {
		panic(err)
	}
}

// indicatorSurface wraps the Fyne window in a platform adapter so
// window-manager hints are applied before it first appears. A saved
// dialog position overrides the bottom-center default.
func indicatorSurface(store *settings.Store) indicator.Surface {
	if guiApp == nil {
		return noopSurface{}
	}
	x := store.GetInt(settings.KeyDialogX)
	y := store.GetInt(settings.KeyDialogY)
	if x != 0 || y != 0 {
		guiApp.SetPosition(x, y)
	}
	return platform.NewAdapter(guiApp, platform.Properties{
		AlwaysOnTop:   true,
		OnAllDesktops: true,
	})
}

type guiSink struct{}

func (guiSink) RecordingChanged(on bool)    { guiApp.RecordingChanged(on) }
func (guiSink) TranscribingChanged(on bool) { guiApp.TranscribingChanged(on) }
func (guiSink) AudioLevel(level float64)    { guiApp.AudioLevel(level) }

// The visibility coordinator owns show/hide; the window just renders.
func (guiSink) DialogChanged(bool)                                {}
func (guiSink) Result(string, bool, time.Duration, time.Duration) {}
func (guiSink) Error(string)                                      {}
func (guiSink) StatusLine(string)                                 {}

func guiSinkIfEnabled() DisplaySink {
	if guiApp == nil {
		return nil
	}
	return guiSink{}
}
