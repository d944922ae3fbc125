// Package platform isolates window-manager integration. Window hints
// like always-on-top are requests, not guarantees; a backend that
// cannot honor them reports ErrUnsupported and the adapter degrades.
package platform

import (
	"errors"
	"sync"

	"murmur/log"
)

var ErrUnsupported = errors.New("window hint not supported on this platform")

// Properties are the window-manager hints the indicator dialog wants.
type Properties struct {
	AlwaysOnTop   bool
	OnAllDesktops bool
}

// Window is a native window the adapter manages. Mapped delivers one
// signal each time the window manager actually maps the window; hints
// set before mapping can be silently discarded by some WMs, so the
// adapter re-applies them on that signal.
type Window interface {
	Show()
	Hide()
	Visible() bool
	SetAlwaysOnTop(bool) error
	SetOnAllDesktops(bool) error
	Mapped() <-chan struct{}
}

// Adapter applies Properties to a Window at the right moments: before
// the first show, and again after every mapped event while visible.
// Unsupported hints degrade to best-effort and are reported once.
type Adapter struct {
	win   Window
	props Properties

	mu       sync.Mutex
	shown    bool
	degraded bool

	stop chan struct{}
	done chan struct{}
}

func NewAdapter(win Window, props Properties) *Adapter {
	a := &Adapter{
		win:   win,
		props: props,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go a.watchMapped()
	return a
}

func (a *Adapter) watchMapped() {
	defer close(a.done)
	for {
		select {
		case _, ok := <-a.win.Mapped():
			if !ok {
				return
			}
			a.mu.Lock()
			if a.win.Visible() {
				a.applyLocked()
			}
			a.mu.Unlock()
		case <-a.stop:
			return
		}
	}
}

func (a *Adapter) Close() {
	close(a.stop)
	<-a.done
}

// Show applies the hints first so the window never appears without
// them, then maps it.
func (a *Adapter) Show() {
	a.mu.Lock()
	a.applyLocked()
	a.shown = true
	a.mu.Unlock()
	a.win.Show()
}

func (a *Adapter) Hide() {
	a.win.Hide()
}

// Degraded reports whether a hint was refused this session.
func (a *Adapter) Degraded() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.degraded
}

// SetProperties updates the hints; if the window is already visible
// they take effect immediately.
func (a *Adapter) SetProperties(props Properties) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.props = props
	if a.shown && a.win.Visible() {
		a.applyLocked()
	}
}

func (a *Adapter) applyLocked() {
	a.hint("always_on_top", a.win.SetAlwaysOnTop(a.props.AlwaysOnTop))
	a.hint("on_all_desktops", a.win.SetOnAllDesktops(a.props.OnAllDesktops))
}

func (a *Adapter) hint(name string, err error) {
	if err == nil {
		return
	}
	if !errors.Is(err, ErrUnsupported) {
		log.Warnf("window hint %s: %v", name, err)
		return
	}
	if a.degraded {
		return
	}
	a.degraded = true
	log.Warnf("window hint %s unsupported, continuing without window-manager integration", name)
}
