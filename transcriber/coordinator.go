package transcriber

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"murmur/encoder"
	"murmur/log"
)

// Job is one recording handed off for transcription.
type Job struct {
	PCM        []byte
	SampleRate int
	Format     string
	Language   string
	Duration   time.Duration
}

// Outcome is the single terminal result of a job, delivered on the
// coordinator's results channel.
type Outcome struct {
	Text       string
	Confidence float64
	Duration   time.Duration
	Elapsed    time.Duration
	Err        error
}

// Coordinator runs at most one transcription at a time. Submit
// rejects with ErrBusy while a job is in flight; every accepted job
// produces exactly one Outcome.
type Coordinator struct {
	mu      sync.Mutex
	t       Transcriber
	busy    atomic.Bool
	results chan Outcome
}

func NewCoordinator(t Transcriber) *Coordinator {
	return &Coordinator{
		t:       t,
		results: make(chan Outcome, 1),
	}
}

// Results delivers one Outcome per accepted job.
func (c *Coordinator) Results() <-chan Outcome {
	return c.results
}

func (c *Coordinator) Busy() bool {
	return c.busy.Load()
}

// SetTranscriber swaps the provider. Refused while a job is running so
// an in-flight outcome is always attributed to the provider that
// produced it.
func (c *Coordinator) SetTranscriber(t Transcriber) error {
	if c.busy.Load() {
		return ErrBusy
	}
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
	return nil
}

func (c *Coordinator) transcriber() Transcriber {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Submit accepts the job and starts it on a background goroutine, or
// returns ErrBusy if another job has not finished yet.
func (c *Coordinator) Submit(ctx context.Context, job Job) error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	go c.run(ctx, job)
	return nil
}

func (c *Coordinator) run(ctx context.Context, job Job) {
	start := time.Now()
	t := c.transcriber()
	out := c.process(ctx, t, job)
	out.Duration = job.Duration
	out.Elapsed = time.Since(start)

	// Results has capacity 1 and carries at most one in-flight
	// outcome, so this send never blocks.
	c.results <- out
	c.busy.Store(false)

	switch {
	case errors.Is(out.Err, ErrNoSpeech):
		log.TranscriptionDone(t.Name(), job.Duration.Seconds(), float64(out.Elapsed.Milliseconds()), true)
	case out.Err != nil:
		log.Errorf("transcription failed: %v", out.Err)
	default:
		log.TranscriptionDone(t.Name(), job.Duration.Seconds(), float64(out.Elapsed.Milliseconds()), false)
	}
}

func (c *Coordinator) process(ctx context.Context, t Transcriber, job Job) Outcome {
	encoded, err := encoder.Encode(job.PCM, job.Format)
	if err != nil {
		return Outcome{Err: err}
	}
	res, err := t.Transcribe(ctx, encoded, job.Format, job.Language)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Text: res.Text, Confidence: res.Confidence}
}
