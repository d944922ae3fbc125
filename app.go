package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/clipboard"
	"murmur/indicator"
	"murmur/log"
	"murmur/settings"
	"murmur/state"
	"murmur/transcriber"
)

// Recordings shorter than this are accidental taps, not dictation.
const minRecording = 100 * time.Millisecond

// App owns the control loop. Every recording starts and stops through
// toggle(), whichever surface asked for it, so ordering decisions
// (deliver text, then release the popup) live in exactly one place.
type App struct {
	store   *settings.Store
	st      *state.State
	capture *audio.Controller
	jobs    *transcriber.Coordinator
	vis     *indicator.Coordinator
	sinks   []DisplaySink

	format string

	toggleCh chan struct{}
	copyCh   chan struct{}
	quit     chan struct{}
	done     chan struct{}

	mu       sync.Mutex
	lastText string
	count    int
}

func NewApp(store *settings.Store, st *state.State, capture *audio.Controller, jobs *transcriber.Coordinator, vis *indicator.Coordinator, format string, sinks []DisplaySink) *App {
	return &App{
		store:    store,
		st:       st,
		capture:  capture,
		jobs:     jobs,
		vis:      vis,
		sinks:    sinks,
		format:   format,
		toggleCh: make(chan struct{}, 1),
		copyCh:   make(chan struct{}, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Toggle requests a recording start or stop from any surface. Safe to
// call from tray and hotkey goroutines.
func (a *App) Toggle() {
	select {
	case a.toggleCh <- struct{}{}:
	default:
	}
}

// CopyLast puts the most recent transcription back on the clipboard.
func (a *App) CopyLast() {
	select {
	case a.copyCh <- struct{}{}:
	default:
	}
}

func (a *App) Quit() {
	select {
	case <-a.quit:
	default:
		close(a.quit)
	}
}

// SessionCount reports how many transcriptions completed this run.
func (a *App) SessionCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

// Run drives the control loop until Quit. presses is the hotkey
// stream; both it and tray toggles funnel into the same toggle path.
func (a *App) Run(presses <-chan struct{}) {
	defer close(a.done)
	for {
		select {
		case <-presses:
			a.toggle()
		case <-a.toggleCh:
			a.toggle()
		case <-a.copyCh:
			a.copyLast()
		case out := <-a.jobs.Results():
			a.handleOutcome(out)
		case <-a.quit:
			if a.capture.Recording() {
				a.capture.Stop()
			}
			return
		}
	}
}

// Wait blocks until the control loop has exited.
func (a *App) Wait() {
	<-a.done
}

func (a *App) toggle() {
	if a.capture.Recording() {
		a.stopRecording()
		return
	}
	a.startRecording()
}

func (a *App) startRecording() {
	if err := a.st.BeginRecording(); err != nil {
		if errors.Is(err, state.ErrBusy) {
			a.reportError("still transcribing, try again in a moment")
		} else {
			a.reportError(err.Error())
		}
		go beep.PlayError()
		return
	}
	if err := a.capture.Start(); err != nil {
		a.st.EndRecording()
		log.Errorf("capture start: %v", err)
		a.reportError("microphone error: " + err.Error())
		go beep.PlayError()
		return
	}
	log.Info("recording_device: " + a.capture.DeviceName())
	a.vis.OnRecordingStarted()
	setTrayRecording(true)
	go beep.PlayStart()
}

func (a *App) stopRecording() {
	sess := a.capture.Stop()
	if err := a.st.EndRecording(); err != nil {
		log.Warnf("end recording: %v", err)
	}
	setTrayRecording(false)
	go beep.PlayEnd()
	if sess == nil {
		return
	}

	if sess.Duration() < minRecording {
		log.Info("recording_too_short")
		a.sendResult("", true, sess.Duration(), 0)
		a.vis.OnResultDelivered()
		return
	}

	if err := a.st.BeginTranscription(); err != nil {
		log.Warnf("begin transcription: %v", err)
		return
	}
	job := transcriber.Job{
		PCM:        sess.PCM(),
		SampleRate: sess.SampleRate,
		Format:     a.format,
		Language:   a.store.GetString(settings.KeyLanguage),
		Duration:   sess.Duration(),
	}
	if err := a.jobs.Submit(context.Background(), job); err != nil {
		a.st.FailTranscription(err)
		a.reportError(err.Error())
		go beep.PlayError()
	}
}

// handleOutcome finishes a job: state transition first, then clipboard
// delivery, then the popup auto-hide window starts.
func (a *App) handleOutcome(out transcriber.Outcome) {
	switch {
	case errors.Is(out.Err, transcriber.ErrNoSpeech):
		if err := a.st.FailTranscription(out.Err); err != nil {
			log.Warnf("fail transcription: %v", err)
		}
		a.sendResult("", true, out.Duration, out.Elapsed)

	case out.Err != nil:
		if err := a.st.FailTranscription(out.Err); err != nil {
			log.Warnf("fail transcription: %v", err)
		}
		a.reportError(out.Err.Error())
		go beep.PlayError()

	default:
		if err := a.st.CompleteTranscription(); err != nil {
			log.Warnf("complete transcription: %v", err)
		}
		if err := clipboard.Deliver(out.Text, a.store.GetBool(settings.KeyAutoPaste)); err != nil {
			log.Errorf("clipboard: %v", err)
			a.reportError("clipboard error: " + err.Error())
		}
		a.mu.Lock()
		a.lastText = out.Text
		a.count++
		a.mu.Unlock()
		log.TranscriptionText(out.Text)
		setTrayLastResult(out.Duration, out.Elapsed)
		a.sendResult(out.Text, false, out.Duration, out.Elapsed)
	}
	a.vis.OnResultDelivered()
}

func (a *App) copyLast() {
	a.mu.Lock()
	text := a.lastText
	a.mu.Unlock()
	if text == "" {
		return
	}
	if err := clipboard.Copy(text); err != nil {
		log.Errorf("clipboard: %v", err)
	}
}

func (a *App) sendResult(text string, noSpeech bool, audioDur, elapsed time.Duration) {
	for _, s := range a.sinks {
		s.Result(text, noSpeech, audioDur, elapsed)
	}
}

func (a *App) reportError(msg string) {
	setTrayError(msg)
	for _, s := range a.sinks {
		s.Error(msg)
	}
}

// statusLine summarizes the active configuration for the TUI footer.
func (a *App) statusLine() string {
	provider := a.store.GetString(settings.KeyProvider)
	lang := a.store.GetString(settings.KeyLanguage)
	if lang == "" {
		lang = "auto"
	}
	return fmt.Sprintf("[%s | %s (%s)] mic: %s", a.format, provider, lang, a.capture.DeviceName())
}

func (a *App) pushStatusLine() {
	line := a.statusLine()
	for _, s := range a.sinks {
		s.StatusLine(line)
	}
}
