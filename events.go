package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"murmur/state"
)

// DisplaySink abstracts a display surface so the Bubble Tea TUI and
// the Fyne indicator window receive the same event stream.
type DisplaySink interface {
	RecordingChanged(on bool)
	TranscribingChanged(on bool)
	AudioLevel(level float64)
	DialogChanged(visible bool)
	Result(text string, noSpeech bool, audio, elapsed time.Duration)
	Error(text string)
	StatusLine(text string)
}

// tuiSink forwards events into the Bubble Tea program as messages.
type tuiSink struct {
	prog *tea.Program
}

func (s *tuiSink) send(msg tea.Msg) {
	if s.prog != nil {
		s.prog.Send(msg)
	}
}

func (s *tuiSink) RecordingChanged(on bool)    { s.send(recordingMsg{On: on}) }
func (s *tuiSink) TranscribingChanged(on bool) { s.send(transcribingMsg{On: on}) }
func (s *tuiSink) AudioLevel(level float64)    { s.send(levelMsg{Level: level}) }
func (s *tuiSink) DialogChanged(visible bool)  { s.send(dialogMsg{Visible: visible}) }
func (s *tuiSink) Error(text string)           { s.send(errorTextMsg{Text: text}) }
func (s *tuiSink) StatusLine(text string)      { s.send(statusLineMsg{Text: text}) }

func (s *tuiSink) Result(text string, noSpeech bool, audio, elapsed time.Duration) {
	s.send(resultMsg{Text: text, NoSpeech: noSpeech, Audio: audio, Elapsed: elapsed})
}

// noopSurface stands in for the indicator window when the build has
// no GUI; popup timing still runs, nothing is drawn.
type noopSurface struct{}

func (noopSurface) Show() {}
func (noopSurface) Hide() {}

// fanOut pumps state snapshots to the sinks, tracking edges so each
// surface only hears actual changes.
func fanOut(snapshots <-chan state.Snapshot, sinks []DisplaySink) {
	var prev state.Snapshot
	first := true
	for snap := range snapshots {
		for _, sink := range sinks {
			if first || snap.Recording != prev.Recording {
				sink.RecordingChanged(snap.Recording)
			}
			if first || snap.Transcribing != prev.Transcribing {
				sink.TranscribingChanged(snap.Transcribing)
			}
			if first || snap.DialogVisible != prev.DialogVisible {
				sink.DialogChanged(snap.DialogVisible)
			}
		}
		prev = snap
		first = false
	}
}
