// Package state holds the single mutable record of what is currently
// true: is a recording active, is a transcription running, is the
// indicator dialog visible. All mutation goes through named transition
// methods; subscribers receive immutable snapshots on a dispatch
// goroutine, never a nested callback into the mutator.
package state

import (
	"errors"
	"sync"

	"murmur/log"
)

var (
	ErrAlreadyRecording = errors.New("recording already active")
	ErrBusy             = errors.New("transcription in progress")
	ErrNotRecording     = errors.New("no recording active")
	ErrNotTranscribing  = errors.New("no transcription active")
)

// VisibilitySource tags who last changed dialog visibility. It exists
// for diagnostics only; branching logic uses the visible boolean alone.
type VisibilitySource int

const (
	SourceStartup VisibilitySource = iota
	SourceUserAction
	SourceAutoPopup
	SourceAutoHide
)

func (v VisibilitySource) String() string {
	switch v {
	case SourceUserAction:
		return "user_action"
	case SourceAutoPopup:
		return "auto_popup"
	case SourceAutoHide:
		return "auto_hide"
	default:
		return "startup"
	}
}

// Snapshot is an immutable copy of the application state.
type Snapshot struct {
	Recording     bool
	Transcribing  bool
	DialogVisible bool
	DialogSource  VisibilitySource
}

type State struct {
	mu   sync.Mutex
	snap Snapshot
	subs []chan Snapshot

	notifyCh     chan Snapshot
	dispatchDone chan struct{}
	closed       bool
}

func New() *State {
	s := &State{
		notifyCh:     make(chan Snapshot, 64),
		dispatchDone: make(chan struct{}),
	}
	go s.dispatch()
	return s
}

func (s *State) dispatch() {
	defer close(s.dispatchDone)
	for snap := range s.notifyCh {
		s.mu.Lock()
		subs := append([]chan Snapshot(nil), s.subs...)
		s.mu.Unlock()
		for _, sub := range subs {
			select {
			case sub <- snap:
			default:
				log.Warn("state: subscriber lagging, dropped snapshot")
			}
		}
	}
}

// Subscribe returns a channel receiving a snapshot after every
// transition, in transition order.
func (s *State) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 64)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *State) emitLocked() {
	if s.closed {
		return
	}
	select {
	case s.notifyCh <- s.snap:
	default:
		log.Warn("state: notification queue full, dropped snapshot")
	}
}

// BeginRecording moves Idle -> Recording. Fails while a recording or a
// transcription is active, so recording and transcribing can never be
// true at once.
func (s *State) BeginRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Recording {
		return ErrAlreadyRecording
	}
	if s.snap.Transcribing {
		return ErrBusy
	}
	s.snap.Recording = true
	s.emitLocked()
	log.Transition("begin_recording", "")
	return nil
}

// EndRecording moves Recording -> Idle. The capture controller must
// have drained before callers hand the session on.
func (s *State) EndRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Recording {
		return ErrNotRecording
	}
	s.snap.Recording = false
	s.emitLocked()
	log.Transition("end_recording", "")
	return nil
}

// BeginTranscription moves Idle -> Processing.
func (s *State) BeginTranscription() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Recording {
		return ErrAlreadyRecording
	}
	if s.snap.Transcribing {
		return ErrBusy
	}
	s.snap.Transcribing = true
	s.emitLocked()
	log.Transition("begin_transcription", "")
	return nil
}

// CompleteTranscription moves Processing -> Idle on success.
func (s *State) CompleteTranscription() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Transcribing {
		return ErrNotTranscribing
	}
	s.snap.Transcribing = false
	s.emitLocked()
	log.Transition("complete_transcription", "")
	return nil
}

// FailTranscription moves Processing -> Idle on error. Failure is a
// terminal transition, so one failed job produces one notification no
// matter how many components observe it.
func (s *State) FailTranscription(reason error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.snap.Transcribing {
		return ErrNotTranscribing
	}
	s.snap.Transcribing = false
	s.emitLocked()
	log.Errorf("transcription failed: %v", reason)
	log.Transition("fail_transcription", "")
	return nil
}

// SetDialogVisible records indicator dialog visibility. The source tag
// is carried for the logs only.
func (s *State) SetDialogVisible(visible bool, source VisibilitySource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.DialogVisible = visible
	s.snap.DialogSource = source
	s.emitLocked()
	if visible {
		log.Transition("dialog_show", source.String())
	} else {
		log.Transition("dialog_hide", source.String())
	}
}

// Close stops the dispatch goroutine and closes subscriber channels.
func (s *State) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	subs := s.subs
	s.mu.Unlock()

	close(s.notifyCh)
	<-s.dispatchDone
	for _, sub := range subs {
		close(sub)
	}
}
