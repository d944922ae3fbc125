//go:build gui

package gui

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"

	"murmur/platform"
)

// App owns the floating indicator window. It satisfies
// platform.Window, so the visibility coordinator drives it through a
// platform.Adapter like any other native window.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	meter   *MeterWidget
	onReady func()

	posX int
	posY int

	mu      sync.Mutex
	visible bool
	mapped  chan struct{}
}

func NewApp(onReady func()) *App {
	return &App{
		onReady: onReady,
		mapped:  make(chan struct{}, 4),
	}
}

// Run must be called from the main goroutine; it blocks until the app
// quits.
func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.murmur.indicator")
	a.fyneApp.Settings().SetTheme(&darkTheme{})

	// Work area of the primary monitor, for bottom-center placement.
	var screenW, screenH int
	monitor := glfw.GetPrimaryMonitor()
	if monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080
	}

	// Frameless splash window, no decorations or taskbar entry.
	if drv, ok := a.fyneApp.Driver().(desktop.Driver); ok {
		a.window = drv.CreateSplashWindow()
	} else {
		a.window = a.fyneApp.NewWindow("murmur")
	}

	a.meter = NewMeterWidget()
	a.window.SetContent(a.meter)
	a.window.SetFixedSize(true)
	a.window.SetPadded(false)

	size := a.meter.MinSize()
	a.window.Resize(size)

	a.posX = (screenW - int(size.Width)) / 2
	a.posY = screenH - int(size.Height) - 24

	go a.onReady()

	// Event loop runs with the window hidden until the coordinator
	// asks for it.
	a.fyneApp.Run()
	return nil
}

// SetPosition overrides the computed screen position. Call before the
// first Show.
func (a *App) SetPosition(x, y int) {
	a.posX = x
	a.posY = y
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) Show() {
	fyne.Do(func() {
		if a.window == nil {
			return
		}
		if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
			glfwWin.SetPos(a.posX, a.posY)
			glfwWin.SetAttrib(glfw.FocusOnShow, glfw.False)
			glfwWin.Show()
		} else {
			a.window.Show()
		}
		a.mu.Lock()
		a.visible = true
		a.mu.Unlock()
		select {
		case a.mapped <- struct{}{}:
		default:
		}
	})
}

func (a *App) Hide() {
	fyne.Do(func() {
		if a.window != nil {
			a.window.Hide()
		}
		a.mu.Lock()
		a.visible = false
		a.mu.Unlock()
	})
}

func (a *App) Visible() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visible
}

func (a *App) SetAlwaysOnTop(on bool) error {
	var err error
	fyne.DoAndWait(func() {
		glfwWin := glfw.GetCurrentContext()
		if glfwWin == nil {
			err = platform.ErrUnsupported
			return
		}
		v := glfw.False
		if on {
			v = glfw.True
		}
		glfwWin.SetAttrib(glfw.Floating, v)
	})
	return err
}

// GLFW has no sticky/on-all-desktops attribute; the adapter degrades.
func (a *App) SetOnAllDesktops(bool) error {
	return platform.ErrUnsupported
}

func (a *App) Mapped() <-chan struct{} {
	return a.mapped
}

// Display hooks, called from the state snapshot stream.

func (a *App) RecordingChanged(rec bool) {
	a.meter.SetRecording(rec)
}

func (a *App) TranscribingChanged(t bool) {
	a.meter.SetTranscribing(t)
}

func (a *App) AudioLevel(l float64) {
	a.meter.PushLevel(l)
}
