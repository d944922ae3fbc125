// Package indicator decides when the floating status dialog is shown.
// It owns no pixels: a Surface renders, the coordinator only drives it.
package indicator

import (
	"sync"
	"time"

	"murmur/log"
	"murmur/settings"
	"murmur/state"
)

// Surface is whatever actually draws the dialog.
type Surface interface {
	Show()
	Hide()
}

// DismissPolicy controls what dismissing a persistent dialog does.
type DismissPolicy int

const (
	// DismissDemotes flips applet_autohide on, so the dialog drops to
	// popup behavior and stays out of the way until the next recording.
	DismissDemotes DismissPolicy = iota
	// DismissHides hides the dialog without touching settings; it
	// reappears on the next mode change.
	DismissHides
)

const defaultHideDelay = 500 * time.Millisecond

// Coordinator runs the dialog visibility state machine over
// indicator_mode. In popup mode the dialog auto-shows when recording
// starts and auto-hides shortly after a result is delivered; a new
// recording inside that window keeps it up. Persistent mode keeps it
// visible until dismissed.
type Coordinator struct {
	st      *state.State
	store   *settings.Store
	surface Surface
	policy  DismissPolicy

	hideDelay time.Duration

	mu      sync.Mutex
	mode    string
	visible bool
	hideGen uint64
	started bool

	stop chan struct{}
	done chan struct{}
}

func NewCoordinator(st *state.State, store *settings.Store, surface Surface) *Coordinator {
	return &Coordinator{
		st:        st,
		store:     store,
		surface:   surface,
		policy:    DismissDemotes,
		hideDelay: defaultHideDelay,
		mode:      settings.ModeOff,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// SetDismissPolicy must be called before Start.
func (c *Coordinator) SetDismissPolicy(p DismissPolicy) {
	c.policy = p
}

// SetHideDelay must be called before Start.
func (c *Coordinator) SetHideDelay(d time.Duration) {
	c.hideDelay = d
}

// Start applies the current mode and begins following indicator_mode
// changes from the settings store.
func (c *Coordinator) Start() {
	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	c.applyMode(c.store.GetString(settings.KeyIndicatorMode), state.SourceStartup)

	ch := c.store.Subscribe()
	go c.follow(ch)
}

func (c *Coordinator) follow(ch <-chan settings.Change) {
	defer close(c.done)
	for {
		select {
		case chg, ok := <-ch:
			if !ok {
				return
			}
			if chg.Key != settings.KeyIndicatorMode {
				continue
			}
			c.applyMode(chg.New.String(), state.SourceUserAction)
		case <-c.stop:
			return
		}
	}
}

func (c *Coordinator) Close() {
	close(c.stop)
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	// done is closed by follow, which only runs after Start.
	if started {
		<-c.done
	}
}

func (c *Coordinator) Mode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Coordinator) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *Coordinator) applyMode(mode string, source state.VisibilitySource) {
	c.mu.Lock()
	if mode == c.mode {
		c.mu.Unlock()
		return
	}
	c.mode = mode
	c.hideGen++
	switch mode {
	case settings.ModePersistent:
		c.showLocked(source)
	default:
		c.hideLocked(source)
	}
	c.mu.Unlock()
	log.Transition("indicator_mode="+mode, source.String())
}

// OnRecordingStarted cancels any pending auto-hide and, in popup mode,
// brings the dialog up.
func (c *Coordinator) OnRecordingStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideGen++
	if c.mode == settings.ModePopup {
		c.showLocked(state.SourceAutoPopup)
	}
}

// OnResultDelivered arms the auto-hide timer in popup mode. The timer
// is generation-tagged: a recording that starts before it fires bumps
// the generation and the stale timer does nothing.
func (c *Coordinator) OnResultDelivered() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode != settings.ModePopup || !c.visible {
		return
	}
	c.hideGen++
	gen := c.hideGen
	time.AfterFunc(c.hideDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.hideGen != gen {
			return
		}
		c.hideLocked(state.SourceAutoHide)
	})
}

// Toggle flips dialog visibility at the user's request, in any mode.
// Showing works even in off mode and sticks until dismissed or the
// mode changes; hiding goes through Dismiss so the dismiss policy
// applies.
func (c *Coordinator) Toggle() {
	c.mu.Lock()
	visible := c.visible
	c.mu.Unlock()

	if visible {
		c.Dismiss()
		return
	}
	c.mu.Lock()
	c.hideGen++
	c.showLocked(state.SourceUserAction)
	c.mu.Unlock()
}

// Dismiss handles the user closing the dialog. In persistent mode the
// default policy demotes to popup by turning applet_autohide on, which
// re-derives indicator_mode and hides through the normal mode path.
func (c *Coordinator) Dismiss() {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()

	if mode == settings.ModePersistent && c.policy == DismissDemotes {
		if err := c.store.Set(settings.KeyAppletAutohide, settings.Bool(true)); err != nil {
			log.Warnf("dismiss: %v", err)
		}
		return
	}

	c.mu.Lock()
	c.hideGen++
	c.hideLocked(state.SourceUserAction)
	c.mu.Unlock()
}

func (c *Coordinator) showLocked(source state.VisibilitySource) {
	if c.visible {
		return
	}
	c.visible = true
	c.surface.Show()
	c.st.SetDialogVisible(true, source)
}

func (c *Coordinator) hideLocked(source state.VisibilitySource) {
	if !c.visible {
		return
	}
	c.visible = false
	c.surface.Hide()
	c.st.SetDialogVisible(false, source)
}
