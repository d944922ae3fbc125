// Package tray is the system tray surface: a status icon plus a menu
// mirroring the user-facing settings. Callbacks are registered before
// Init; the menu never talks to the rest of the app directly.
package tray

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/systray"
)

type Provider struct {
	Name   string
	Label  string
	HasKey bool
	Active bool
}

type Language struct {
	Code  string // ISO-639-1, "" means auto-detect
	Label string
}

var Languages = []Language{
	{"", "Auto-detect"},
	{"zh", "Chinese"},
	{"cs", "Czech"},
	{"da", "Danish"},
	{"nl", "Dutch"},
	{"en", "English"},
	{"fi", "Finnish"},
	{"fr", "French"},
	{"de", "German"},
	{"el", "Greek"},
	{"hi", "Hindi"},
	{"hu", "Hungarian"},
	{"id", "Indonesian"},
	{"it", "Italian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"no", "Norwegian"},
	{"pl", "Polish"},
	{"pt", "Portuguese"},
	{"ro", "Romanian"},
	{"ru", "Russian"},
	{"es", "Spanish"},
	{"sv", "Swedish"},
	{"th", "Thai"},
	{"tr", "Turkish"},
	{"uk", "Ukrainian"},
	{"vi", "Vietnamese"},
}

// StyleOption pairs a settings value with its menu label.
type StyleOption struct {
	Value string
	Label string
}

var StyleOptions = []StyleOption{
	{"none", "No indicator"},
	{"traditional", "Progress window"},
	{"applet", "Floating applet"},
}

// Config is the initial menu state.
type Config struct {
	Style     string
	Autohide  bool
	AutoPaste bool
	Language  string
	Providers []Provider
}

var (
	quitCh    = make(chan struct{})
	closeOnce sync.Once

	toggleFn    func()
	indicatorFn func()
	copyLastFn  func()
	styleFn     func(string)
	autohideFn  func(bool)
	autoPasteFn func(bool)
	langFn      func(string)
	providerFn  func(string)

	mu        sync.Mutex
	mRecord   *systray.MenuItem
	mCopy     *systray.MenuItem
	mAutohide *systray.MenuItem
	recording bool
)

func OnToggleRecord(fn func())    { toggleFn = fn }
func OnToggleIndicator(fn func()) { indicatorFn = fn }
func OnCopyLast(fn func())        { copyLastFn = fn }
func OnStyle(fn func(string))     { styleFn = fn }
func OnAutohide(fn func(bool))    { autohideFn = fn }
func OnAutoPaste(fn func(bool))   { autoPasteFn = fn }
func OnLanguage(fn func(string))  { langFn = fn }
func OnProvider(fn func(string))  { providerFn = fn }

// Init starts the tray loop on its own goroutine and returns a channel
// closed when the user picks Quit.
func Init(cfg Config) <-chan struct{} {
	go systray.Run(func() { onReady(cfg) }, onExit)
	return quitCh
}

func Quit() {
	closeOnce.Do(func() { close(quitCh) })
	systray.Quit()
}

func SetRecording(rec bool) {
	mu.Lock()
	defer mu.Unlock()
	recording = rec
	if rec {
		systray.SetIcon(iconRec)
	} else {
		systray.SetIcon(iconIdle)
	}
	if mRecord == nil {
		return
	}
	if rec {
		mRecord.SetTitle("Stop Recording")
	} else {
		mRecord.SetTitle("Start Recording")
	}
}

// SetError flashes the warning icon and tooltip, then reverts.
func SetError(msg string) {
	systray.SetIcon(iconErr)
	systray.SetTooltip("murmur – " + msg)
	go func() {
		time.Sleep(10 * time.Second)
		mu.Lock()
		rec := recording
		mu.Unlock()
		if rec {
			systray.SetIcon(iconRec)
		} else {
			systray.SetIcon(iconIdle)
		}
		systray.SetTooltip("murmur – press Ctrl+Shift+Space to dictate")
	}()
}

// SetLastResult enables the copy-last item with a timing summary.
func SetLastResult(audio time.Duration, elapsed time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if mCopy == nil {
		return
	}
	mCopy.SetTitle(fmt.Sprintf("Copy Last Text (%.1fs | %dms)", audio.Seconds(), elapsed.Milliseconds()))
	mCopy.Enable()
}

// SetAutohideChecked mirrors an externally made settings change, e.g.
// a dialog dismiss demoting to popup.
func SetAutohideChecked(on bool) {
	mu.Lock()
	defer mu.Unlock()
	if mAutohide == nil {
		return
	}
	if on {
		mAutohide.Check()
	} else {
		mAutohide.Uncheck()
	}
}

// clicks pumps a menu item's click channel into a handler.
func clicks(item *systray.MenuItem, fn func()) {
	go func() {
		for range item.ClickedCh {
			fn()
		}
	}()
}

func onReady(cfg Config) {
	systray.SetIcon(iconIdle)
	systray.SetTitle("murmur")
	systray.SetTooltip("murmur – press Ctrl+Shift+Space to dictate")

	mu.Lock()
	mRecord = systray.AddMenuItem("Start Recording", "Start or stop dictation")
	mCopy = systray.AddMenuItem("Copy Last Text", "Copy the last transcription again")
	mCopy.Disable()
	mu.Unlock()
	mIndicator := systray.AddMenuItem("Show/Hide Indicator", "Show or dismiss the floating indicator")

	clicks(mRecord, func() {
		if toggleFn != nil {
			toggleFn()
		}
	})
	clicks(mCopy, func() {
		if copyLastFn != nil {
			copyLastFn()
		}
	})
	clicks(mIndicator, func() {
		if indicatorFn != nil {
			indicatorFn()
		}
	})

	systray.AddSeparator()
	mSettings := systray.AddMenuItem("Settings", "Settings")

	mStyle := mSettings.AddSubMenuItem("Indicator", "Indicator style")
	styleItems := make([]*systray.MenuItem, len(StyleOptions))
	for i, opt := range StyleOptions {
		styleItems[i] = mStyle.AddSubMenuItemCheckbox(opt.Label, opt.Label, opt.Value == cfg.Style)
	}
	for i := range StyleOptions {
		i := i
		clicks(styleItems[i], func() {
			for j, it := range styleItems {
				if j == i {
					it.Check()
				} else {
					it.Uncheck()
				}
			}
			if styleFn != nil {
				styleFn(StyleOptions[i].Value)
			}
		})
	}

	mu.Lock()
	mAutohide = mSettings.AddSubMenuItemCheckbox("Hide applet when idle", "Auto-hide the floating applet", cfg.Autohide)
	mu.Unlock()
	clicks(mAutohide, func() {
		mu.Lock()
		if mAutohide.Checked() {
			mAutohide.Uncheck()
		} else {
			mAutohide.Check()
		}
		on := mAutohide.Checked()
		mu.Unlock()
		if autohideFn != nil {
			autohideFn(on)
		}
	})

	mPaste := mSettings.AddSubMenuItemCheckbox("Auto-paste", "Paste transcribed text into the focused app", cfg.AutoPaste)
	clicks(mPaste, func() {
		if mPaste.Checked() {
			mPaste.Uncheck()
		} else {
			mPaste.Check()
		}
		if autoPasteFn != nil {
			autoPasteFn(mPaste.Checked())
		}
	})

	if len(cfg.Providers) > 0 {
		mBackend := mSettings.AddSubMenuItem("Transcriber", "Select transcription backend")
		items := make([]*systray.MenuItem, len(cfg.Providers))
		for i, p := range cfg.Providers {
			title := p.Label
			if !p.HasKey {
				title += " (no API key)"
			}
			items[i] = mBackend.AddSubMenuItemCheckbox(title, title, p.Active)
			if !p.HasKey {
				items[i].Disable()
			}
		}
		for i, p := range cfg.Providers {
			if !p.HasKey {
				continue
			}
			i, p := i, p
			clicks(items[i], func() {
				for j, it := range items {
					if j == i {
						it.Check()
					} else {
						it.Uncheck()
					}
				}
				if providerFn != nil {
					providerFn(p.Name)
				}
			})
		}
	}

	mLanguage := mSettings.AddSubMenuItem("Language", "Transcription language")
	langItems := make([]*systray.MenuItem, len(Languages))
	for i, lang := range Languages {
		langItems[i] = mLanguage.AddSubMenuItemCheckbox(lang.Label, lang.Label, lang.Code == cfg.Language)
	}
	for i := range Languages {
		i := i
		clicks(langItems[i], func() {
			for j, it := range langItems {
				if j == i {
					it.Check()
				} else {
					it.Uncheck()
				}
			}
			if langFn != nil {
				langFn(Languages[i].Code)
			}
		})
	}

	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Quit murmur")
	clicks(mQuit, Quit)
}

func onExit() {
	closeOnce.Do(func() { close(quitCh) })
}
