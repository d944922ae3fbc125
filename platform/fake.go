package platform

import "sync"

// FakeWindow records every hint application for tests and lets them
// fire mapped events by hand.
type FakeWindow struct {
	mu      sync.Mutex
	visible bool

	AlwaysOnTop   bool
	OnAllDesktops bool

	// Applied logs hint applications in order, e.g. "top=true".
	Applied []string

	// HintErr, when set, is returned from every hint setter.
	HintErr error

	mapped chan struct{}
}

func NewFakeWindow() *FakeWindow {
	return &FakeWindow{mapped: make(chan struct{}, 4)}
}

func (w *FakeWindow) Show() {
	w.mu.Lock()
	w.visible = true
	w.mu.Unlock()
	w.mapped <- struct{}{}
}

func (w *FakeWindow) Hide() {
	w.mu.Lock()
	w.visible = false
	w.mu.Unlock()
}

func (w *FakeWindow) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *FakeWindow) SetAlwaysOnTop(v bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.HintErr != nil {
		return w.HintErr
	}
	w.AlwaysOnTop = v
	if v {
		w.Applied = append(w.Applied, "top=true")
	} else {
		w.Applied = append(w.Applied, "top=false")
	}
	return nil
}

func (w *FakeWindow) SetOnAllDesktops(v bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.HintErr != nil {
		return w.HintErr
	}
	w.OnAllDesktops = v
	if v {
		w.Applied = append(w.Applied, "sticky=true")
	} else {
		w.Applied = append(w.Applied, "sticky=false")
	}
	return nil
}

func (w *FakeWindow) Mapped() <-chan struct{} { return w.mapped }

// Remap simulates the window manager mapping the window again, e.g.
// after a desktop switch.
func (w *FakeWindow) Remap() { w.mapped <- struct{}{} }

func (w *FakeWindow) AppliedLog() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, len(w.Applied))
	copy(out, w.Applied)
	return out
}
