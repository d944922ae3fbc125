package indicator

import (
	"sync"
	"testing"
	"time"

	"murmur/settings"
	"murmur/state"
)

type recordingSurface struct {
	mu    sync.Mutex
	shows int
	hides int
}

func (s *recordingSurface) Show() {
	s.mu.Lock()
	s.shows++
	s.mu.Unlock()
}

func (s *recordingSurface) Hide() {
	s.mu.Lock()
	s.hides++
	s.mu.Unlock()
}

func (s *recordingSurface) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shows, s.hides
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type fixture struct {
	store   *settings.Store
	engine  *settings.Engine
	st      *state.State
	surface *recordingSurface
	coord   *Coordinator
}

func newFixture(t *testing.T, style string, autohide bool) *fixture {
	t.Helper()
	store, err := settings.NewStore(settings.NewMemStorage(nil), time.Hour)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if err := store.Set(settings.KeyIndicatorStyle, settings.Enum(style)); err != nil {
		t.Fatalf("set style: %v", err)
	}
	if err := store.Set(settings.KeyAppletAutohide, settings.Bool(autohide)); err != nil {
		t.Fatalf("set autohide: %v", err)
	}

	engine := settings.NewEngine(store)
	engine.Start()

	st := state.New()
	surface := &recordingSurface{}
	coord := NewCoordinator(st, store, surface)
	coord.SetHideDelay(30 * time.Millisecond)

	t.Cleanup(func() {
		coord.Close()
		engine.Stop()
		st.Close()
		store.Close()
	})
	return &fixture{store: store, engine: engine, st: st, surface: surface, coord: coord}
}

func TestPersistentShowsImmediatelyAndDismissDemotes(t *testing.T) {
	f := newFixture(t, settings.StyleApplet, false)

	waitFor(t, "persistent mode derived", func() bool {
		return f.store.GetString(settings.KeyIndicatorMode) == settings.ModePersistent
	})
	f.coord.Start()

	if !f.coord.Visible() {
		t.Fatal("dialog not visible in persistent mode")
	}

	f.coord.Dismiss()

	waitFor(t, "autohide flipped on", func() bool {
		return f.store.GetBool(settings.KeyAppletAutohide)
	})
	waitFor(t, "mode demoted to popup", func() bool {
		return f.coord.Mode() == settings.ModePopup
	})
	waitFor(t, "dialog hidden", func() bool {
		return !f.coord.Visible()
	})
}

func TestPopupShowsOnRecordingAndAutoHides(t *testing.T) {
	f := newFixture(t, settings.StyleApplet, true)

	waitFor(t, "popup mode derived", func() bool {
		return f.store.GetString(settings.KeyIndicatorMode) == settings.ModePopup
	})
	f.coord.Start()

	if f.coord.Visible() {
		t.Fatal("dialog visible before recording")
	}

	f.coord.OnRecordingStarted()
	if !f.coord.Visible() {
		t.Fatal("dialog not shown on recording start")
	}
	waitFor(t, "auto-popup source observed", func() bool {
		snap := f.st.Snapshot()
		return snap.DialogVisible && snap.DialogSource == state.SourceAutoPopup
	})

	f.coord.OnResultDelivered()
	waitFor(t, "auto-hide after delay", func() bool {
		return !f.coord.Visible()
	})
	snap := f.st.Snapshot()
	if snap.DialogSource != state.SourceAutoHide {
		t.Fatalf("hide source = %v, want auto_hide", snap.DialogSource)
	}
}

func TestNewRecordingCancelsPendingHide(t *testing.T) {
	f := newFixture(t, settings.StyleApplet, true)
	f.coord.Start()

	f.coord.OnRecordingStarted()
	f.coord.OnResultDelivered()
	f.coord.OnRecordingStarted()

	time.Sleep(100 * time.Millisecond)
	if !f.coord.Visible() {
		t.Fatal("pending hide was not cancelled by new recording")
	}
}

func TestDismissInPopupJustHides(t *testing.T) {
	f := newFixture(t, settings.StyleApplet, true)
	f.coord.Start()

	f.coord.OnRecordingStarted()
	f.coord.Dismiss()
	if f.coord.Visible() {
		t.Fatal("dialog still visible after dismiss")
	}
	// Settings untouched: still popup, autohide still on.
	if !f.store.GetBool(settings.KeyAppletAutohide) {
		t.Fatal("popup dismiss changed applet_autohide")
	}
}

func TestDismissHidesPolicyKeepsPersistentMode(t *testing.T) {
	f := newFixture(t, settings.StyleApplet, false)
	waitFor(t, "persistent mode derived", func() bool {
		return f.store.GetString(settings.KeyIndicatorMode) == settings.ModePersistent
	})
	f.coord.SetDismissPolicy(DismissHides)
	f.coord.Start()

	f.coord.Dismiss()
	if f.coord.Visible() {
		t.Fatal("dialog still visible after dismiss")
	}
	if f.coord.Mode() != settings.ModePersistent {
		t.Fatalf("mode = %q, want persistent", f.coord.Mode())
	}
	if f.store.GetBool(settings.KeyAppletAutohide) {
		t.Fatal("DismissHides changed applet_autohide")
	}
}

func TestOffModeNeverShows(t *testing.T) {
	f := newFixture(t, settings.StyleNone, true)
	waitFor(t, "off mode derived", func() bool {
		return f.store.GetString(settings.KeyIndicatorMode) == settings.ModeOff
	})
	f.coord.Start()

	f.coord.OnRecordingStarted()
	f.coord.OnResultDelivered()
	if f.coord.Visible() {
		t.Fatal("dialog shown in off mode")
	}
	shows, _ := f.surface.counts()
	if shows != 0 {
		t.Fatalf("surface shows = %d, want 0", shows)
	}
}

func TestUserToggleShowsInOffMode(t *testing.T) {
	f := newFixture(t, settings.StyleNone, true)
	waitFor(t, "off mode derived", func() bool {
		return f.store.GetString(settings.KeyIndicatorMode) == settings.ModeOff
	})
	f.coord.Start()

	f.coord.Toggle()
	if !f.coord.Visible() {
		t.Fatal("user toggle did not show the dialog in off mode")
	}
	waitFor(t, "user action source observed", func() bool {
		snap := f.st.Snapshot()
		return snap.DialogVisible && snap.DialogSource == state.SourceUserAction
	})

	// Auto-hide never runs in off mode; the dialog stays up.
	f.coord.OnResultDelivered()
	time.Sleep(100 * time.Millisecond)
	if !f.coord.Visible() {
		t.Fatal("user-shown dialog hidden by result delivery in off mode")
	}

	f.coord.Toggle()
	if f.coord.Visible() {
		t.Fatal("second toggle did not hide the dialog")
	}
}

func TestToggleWhilePersistentAppliesDismissPolicy(t *testing.T) {
	f := newFixture(t, settings.StyleApplet, false)
	waitFor(t, "persistent mode derived", func() bool {
		return f.store.GetString(settings.KeyIndicatorMode) == settings.ModePersistent
	})
	f.coord.Start()

	if !f.coord.Visible() {
		t.Fatal("dialog not visible in persistent mode")
	}
	f.coord.Toggle()

	waitFor(t, "autohide flipped on", func() bool {
		return f.store.GetBool(settings.KeyAppletAutohide)
	})
	waitFor(t, "dialog hidden", func() bool {
		return !f.coord.Visible()
	})
}

func TestCloseWithoutStart(t *testing.T) {
	store, err := settings.NewStore(settings.NewMemStorage(nil), time.Hour)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	st := state.New()
	coord := NewCoordinator(st, store, &recordingSurface{})

	closed := make(chan struct{})
	go func() {
		coord.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close blocked when Start was never called")
	}
	st.Close()
	store.Close()
}
