package state

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func newState(t *testing.T) *State {
	t.Helper()
	s := New()
	t.Cleanup(s.Close)
	return s
}

func TestRecordingLifecycle(t *testing.T) {
	s := newState(t)

	if err := s.BeginRecording(); err != nil {
		t.Fatal(err)
	}
	if !s.Snapshot().Recording {
		t.Fatal("expected recording")
	}
	if err := s.BeginRecording(); !errors.Is(err, ErrAlreadyRecording) {
		t.Fatalf("expected ErrAlreadyRecording, got %v", err)
	}
	if err := s.EndRecording(); err != nil {
		t.Fatal(err)
	}
	if err := s.EndRecording(); !errors.Is(err, ErrNotRecording) {
		t.Fatalf("expected ErrNotRecording, got %v", err)
	}
}

func TestRecordingBlockedWhileTranscribing(t *testing.T) {
	s := newState(t)

	if err := s.BeginTranscription(); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginRecording(); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if err := s.CompleteTranscription(); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginRecording(); err != nil {
		t.Fatal(err)
	}
}

func TestFailTranscription(t *testing.T) {
	s := newState(t)

	if err := s.BeginTranscription(); err != nil {
		t.Fatal(err)
	}
	if err := s.FailTranscription(errors.New("engine error")); err != nil {
		t.Fatal(err)
	}
	if s.Snapshot().Transcribing {
		t.Fatal("still transcribing after failure")
	}
	if err := s.FailTranscription(errors.New("again")); !errors.Is(err, ErrNotTranscribing) {
		t.Fatalf("expected ErrNotTranscribing, got %v", err)
	}
}

// Recording and transcribing must never be observed true at once, for
// any sequence of transition attempts.
func TestNeverRecordingAndTranscribing(t *testing.T) {
	s := newState(t)
	r := rand.New(rand.NewSource(1))

	ops := []func() error{
		s.BeginRecording,
		s.EndRecording,
		s.BeginTranscription,
		s.CompleteTranscription,
		func() error { return s.FailTranscription(errors.New("x")) },
	}
	for i := 0; i < 1000; i++ {
		ops[r.Intn(len(ops))]()
		snap := s.Snapshot()
		if snap.Recording && snap.Transcribing {
			t.Fatalf("invariant violated at step %d: %+v", i, snap)
		}
	}
}

func TestSubscriberReceivesSnapshots(t *testing.T) {
	s := newState(t)
	sub := s.Subscribe()

	if err := s.BeginRecording(); err != nil {
		t.Fatal(err)
	}
	select {
	case snap := <-sub:
		if !snap.Recording {
			t.Fatalf("expected recording snapshot, got %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestNotificationIsAsynchronous(t *testing.T) {
	// A subscriber that is not draining must not block transitions.
	s := newState(t)
	s.Subscribe() // never read

	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			s.BeginRecording()
			s.EndRecording()
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("transitions blocked by a stuck subscriber")
	}
}

func TestDialogVisibility(t *testing.T) {
	s := newState(t)
	sub := s.Subscribe()

	s.SetDialogVisible(true, SourceAutoPopup)
	select {
	case snap := <-sub:
		if !snap.DialogVisible || snap.DialogSource != SourceAutoPopup {
			t.Fatalf("got %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	s.SetDialogVisible(false, SourceAutoHide)
	if s.Snapshot().DialogVisible {
		t.Fatal("dialog still visible")
	}
}
