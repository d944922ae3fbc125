package settings

import "murmur/log"

// User is the snapshot of the user-facing keys the backend settings
// are derived from.
type User struct {
	Style    string
	Autohide bool
}

// Backend is the derived configuration. It is never edited directly;
// Derive overwrites every field on each relevant change.
type Backend struct {
	ShowProgressWindow  bool
	ShowIndicatorDialog bool
	Mode                string
}

// Derive maps the user-facing indicator settings to the backend ones.
//
//	style        autohide  progress  dialog  mode
//	none         -         false     false   off
//	traditional  -         true      false   off
//	applet       true      false     true    popup
//	applet       false     false     true    persistent
func Derive(u User) Backend {
	switch u.Style {
	case StyleTraditional:
		return Backend{ShowProgressWindow: true, Mode: ModeOff}
	case StyleApplet:
		mode := ModePersistent
		if u.Autohide {
			mode = ModePopup
		}
		return Backend{ShowIndicatorDialog: true, Mode: mode}
	default:
		return Backend{Mode: ModeOff}
	}
}

// Infer reverse-maps a backend combination to the user-facing settings
// that produce it. Used once, when loading a legacy config file that
// predates the user-facing keys. Returns false for combinations no
// table row produces.
func Infer(b Backend) (User, bool) {
	for _, u := range []User{
		{Style: StyleNone},
		{Style: StyleNone, Autohide: true},
		{Style: StyleTraditional},
		{Style: StyleTraditional, Autohide: true},
		{Style: StyleApplet, Autohide: true},
		{Style: StyleApplet},
	} {
		if Derive(u) == b {
			return u, true
		}
	}
	return User{}, false
}

// Engine keeps the backend keys converged with the user-facing ones.
// It consumes the store's ordered change stream on a single goroutine,
// so two overlapping recomputations can never interleave.
type Engine struct {
	store *Store
	stop  chan struct{}
	done  chan struct{}
}

func NewEngine(store *Store) *Engine {
	return &Engine{
		store: store,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start performs one initial derivation pass (so stale persisted
// backend keys are overwritten at startup) and then recomputes on
// every user-facing change.
func (e *Engine) Start() {
	sub := e.store.Subscribe()
	e.apply()
	go func() {
		defer close(e.done)
		for {
			select {
			case <-e.stop:
				return
			case c, ok := <-sub:
				if !ok {
					return
				}
				if isBackendKey(c.Key) {
					continue
				}
				e.apply()
			}
		}
	}()
}

func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

// apply writes every backend key, changed or not. The overwrite is
// idempotent so convergence does not depend on what triggered it.
func (e *Engine) apply() {
	b := Derive(e.store.UserSnapshot())
	if err := e.store.Set(KeyShowProgressWindow, Bool(b.ShowProgressWindow)); err != nil {
		log.Errorf("derive: %v", err)
	}
	if err := e.store.Set(KeyShowIndicatorDialog, Bool(b.ShowIndicatorDialog)); err != nil {
		log.Errorf("derive: %v", err)
	}
	if err := e.store.Set(KeyIndicatorMode, Enum(b.Mode)); err != nil {
		log.Errorf("derive: %v", err)
	}
}
