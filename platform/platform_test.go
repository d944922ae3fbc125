package platform

import (
	"testing"
	"time"
)

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

func TestHintsAppliedBeforeFirstShow(t *testing.T) {
	win := NewFakeWindow()
	a := NewAdapter(win, Properties{AlwaysOnTop: true, OnAllDesktops: true})
	defer a.Close()

	a.Show()

	log := win.AppliedLog()
	if len(log) < 2 {
		t.Fatalf("applied log = %v, want hints before show", log)
	}
	if log[0] != "top=true" || log[1] != "sticky=true" {
		t.Fatalf("first applications = %v", log[:2])
	}
	if !win.Visible() {
		t.Fatal("window not shown")
	}
}

func TestHintsReappliedAfterMapped(t *testing.T) {
	win := NewFakeWindow()
	a := NewAdapter(win, Properties{AlwaysOnTop: true})
	defer a.Close()

	a.Show()
	waitFor(t, "show-time map applications", func() bool {
		return len(win.AppliedLog()) >= 4
	})
	before := len(win.AppliedLog())

	win.Remap()
	waitFor(t, "re-application after remap", func() bool {
		return len(win.AppliedLog()) > before
	})
}

func TestMappedWhileHiddenDoesNotApply(t *testing.T) {
	win := NewFakeWindow()
	a := NewAdapter(win, Properties{AlwaysOnTop: true})
	defer a.Close()

	win.Remap()
	time.Sleep(50 * time.Millisecond)
	if n := len(win.AppliedLog()); n != 0 {
		t.Fatalf("hints applied %d times on hidden window, want 0", n)
	}
}

func TestUnsupportedHintDegradesOnce(t *testing.T) {
	win := NewFakeWindow()
	win.HintErr = ErrUnsupported
	a := NewAdapter(win, Properties{AlwaysOnTop: true, OnAllDesktops: true})
	defer a.Close()

	a.Show()
	if !a.Degraded() {
		t.Fatal("adapter not degraded after unsupported hint")
	}

	// Window still usable.
	if !win.Visible() {
		t.Fatal("window not shown despite unsupported hints")
	}
	a.Hide()
	if win.Visible() {
		t.Fatal("window still visible after hide")
	}
}

func TestSetPropertiesWhileVisibleAppliesImmediately(t *testing.T) {
	win := NewFakeWindow()
	a := NewAdapter(win, Properties{})
	defer a.Close()

	a.Show()
	waitFor(t, "initial applications", func() bool {
		return len(win.AppliedLog()) >= 2
	})

	a.SetProperties(Properties{AlwaysOnTop: true})
	waitFor(t, "always-on-top applied", func() bool {
		win.mu.Lock()
		defer win.mu.Unlock()
		return win.AlwaysOnTop
	})
}
