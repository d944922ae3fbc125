package main

import (
	"strings"
	"sync"
	"testing"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/hotkey"
	"murmur/indicator"
	"murmur/settings"
	"murmur/state"
	"murmur/transcriber"
)

type captureSink struct {
	mu      sync.Mutex
	results []string
	errors  []string
}

func (s *captureSink) RecordingChanged(bool)    {}
func (s *captureSink) TranscribingChanged(bool) {}
func (s *captureSink) AudioLevel(float64)       {}
func (s *captureSink) DialogChanged(bool)       {}
func (s *captureSink) StatusLine(string)        {}

func (s *captureSink) Result(text string, noSpeech bool, _, _ time.Duration) {
	s.mu.Lock()
	if noSpeech {
		text = "(no speech)"
	}
	s.results = append(s.results, text)
	s.mu.Unlock()
}

func (s *captureSink) Error(text string) {
	s.mu.Lock()
	s.errors = append(s.errors, text)
	s.mu.Unlock()
}

func (s *captureSink) snapshot() ([]string, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.results...), append([]string(nil), s.errors...)
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

type appFixture struct {
	app   *App
	st    *state.State
	store *settings.Store
	vis   *indicator.Coordinator
	fakeT *transcriber.Fake
	sink  *captureSink
	hk    *hotkey.FakeHotkey
}

func (f *appFixture) press() { f.hk.SimPress() }

// 1s of audio at 16kHz mono s16le.
func testPCM() []byte { return make([]byte, 32000) }

func newAppFixture(t *testing.T, pcm []byte, fakeT *transcriber.Fake) *appFixture {
	t.Helper()
	beep.Disable()

	store, err := settings.NewStore(settings.NewMemStorage(nil), time.Hour)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	engine := settings.NewEngine(store)
	engine.Start()

	st := state.New()
	sink := &captureSink{}
	sinks := []DisplaySink{sink}

	capture := audio.NewController(audio.NewFakeCapture(pcm), audio.SampleRate, nil)
	jobs := transcriber.NewCoordinator(fakeT)

	vis := indicator.NewCoordinator(st, store, noopSurface{})
	vis.SetHideDelay(20 * time.Millisecond)
	vis.Start()

	app := NewApp(store, st, capture, jobs, vis, "wav", sinks)
	go fanOut(st.Subscribe(), sinks)

	hk := hotkey.NewFake()
	if err := hk.Register(); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	go app.Run(hk.Presses())

	t.Cleanup(func() {
		app.Quit()
		app.Wait()
		hk.Unregister()
		vis.Close()
		engine.Stop()
		st.Close()
		store.Close()
	})
	return &appFixture{app: app, st: st, store: store, vis: vis, fakeT: fakeT, sink: sink, hk: hk}
}

func TestDictationRoundTrip(t *testing.T) {
	f := newAppFixture(t, testPCM(), &transcriber.Fake{Text: "hello world"})

	f.press()
	waitFor(t, "recording started", func() bool {
		return f.st.Snapshot().Recording
	})
	waitFor(t, "popup shown", func() bool {
		return f.vis.Visible()
	})

	f.press()
	waitFor(t, "transcription delivered", func() bool {
		return f.app.SessionCount() == 1
	})

	snap := f.st.Snapshot()
	if snap.Recording || snap.Transcribing {
		t.Fatalf("state not idle after delivery: %+v", snap)
	}
	results, errs := f.sink.snapshot()
	if len(results) != 1 || results[0] != "hello world" {
		t.Fatalf("results = %v", results)
	}
	if len(errs) != 0 {
		// Clipboard may be unavailable on CI; anything else is a bug.
		for _, e := range errs {
			if !strings.Contains(e, "clipboard") {
				t.Fatalf("unexpected error: %q", e)
			}
		}
	}

	// Popup releases only after the result was handed over.
	waitFor(t, "popup auto-hide", func() bool {
		return !f.vis.Visible()
	})
}

func TestSecondPressDuringTranscriptionIsRejected(t *testing.T) {
	f := newAppFixture(t, testPCM(), &transcriber.Fake{Text: "slow", Delay: 300 * time.Millisecond})

	f.press()
	waitFor(t, "recording started", func() bool {
		return f.st.Snapshot().Recording
	})
	f.press()
	waitFor(t, "transcription started", func() bool {
		return f.st.Snapshot().Transcribing
	})

	f.press()
	waitFor(t, "busy error surfaced", func() bool {
		_, errs := f.sink.snapshot()
		return len(errs) > 0
	})
	if f.st.Snapshot().Recording {
		t.Fatal("recording started while transcribing")
	}

	// First job still completes normally.
	waitFor(t, "first job completed", func() bool {
		return f.app.SessionCount() == 1
	})
}

func TestNewRecordingDuringHideWindowKeepsPopup(t *testing.T) {
	f := newAppFixture(t, testPCM(), &transcriber.Fake{Text: "x"})

	f.press()
	waitFor(t, "recording started", func() bool {
		return f.st.Snapshot().Recording
	})
	f.press()
	waitFor(t, "delivery", func() bool {
		return f.app.SessionCount() == 1
	})

	// Start again before the 20ms hide window elapses.
	f.press()
	waitFor(t, "second recording", func() bool {
		return f.st.Snapshot().Recording
	})
	time.Sleep(60 * time.Millisecond)
	if !f.vis.Visible() {
		t.Fatal("popup hidden while a new recording is active")
	}
}

func TestTooShortRecordingSkipsTranscription(t *testing.T) {
	// 50ms of audio, below the accidental-tap threshold.
	fake := &transcriber.Fake{Text: "never"}
	f := newAppFixture(t, make([]byte, 1600), fake)

	f.press()
	waitFor(t, "recording started", func() bool {
		return f.st.Snapshot().Recording
	})
	f.press()
	waitFor(t, "short result reported", func() bool {
		results, _ := f.sink.snapshot()
		return len(results) == 1
	})

	results, _ := f.sink.snapshot()
	if results[0] != "(no speech)" {
		t.Fatalf("result = %q, want no-speech marker", results[0])
	}
	if fake.Calls != 0 {
		t.Fatalf("transcriber called %d times for a too-short recording", fake.Calls)
	}
	if f.app.SessionCount() != 0 {
		t.Fatalf("session count = %d, want 0", f.app.SessionCount())
	}
	if f.st.Snapshot().Transcribing {
		t.Fatal("transcription started for a too-short recording")
	}
}

func TestNoSpeechOutcome(t *testing.T) {
	f := newAppFixture(t, testPCM(), &transcriber.Fake{})

	f.press()
	waitFor(t, "recording started", func() bool {
		return f.st.Snapshot().Recording
	})
	f.press()
	waitFor(t, "no-speech result", func() bool {
		results, _ := f.sink.snapshot()
		return len(results) == 1
	})

	results, _ := f.sink.snapshot()
	if results[0] != "(no speech)" {
		t.Fatalf("result = %q", results[0])
	}
	if f.app.SessionCount() != 0 {
		t.Fatalf("session count = %d, want 0", f.app.SessionCount())
	}
	waitFor(t, "state idle", func() bool {
		snap := f.st.Snapshot()
		return !snap.Recording && !snap.Transcribing
	})
}
