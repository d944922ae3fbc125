package transcriber

import (
	"context"
	"time"
)

// Fake returns canned results for tests. Delay simulates network
// latency; a nil Err with empty Text behaves like ErrNoSpeech.
type Fake struct {
	Text  string
	Err   error
	Delay time.Duration

	Calls int
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Transcribe(ctx context.Context, audio []byte, format, language string) (Result, error) {
	f.Calls++
	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if f.Err != nil {
		return Result{}, f.Err
	}
	if f.Text == "" {
		return Result{}, ErrNoSpeech
	}
	return Result{Text: f.Text, Confidence: 1}, nil
}
