// Package transcriber sends finished recordings to an external
// speech-to-text engine and owns the worker that runs at most one job
// at a time.
package transcriber

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

var (
	// ErrBusy is returned by Submit while a job is still in flight.
	ErrBusy = errors.New("transcription already in flight")
	// ErrNotConfigured means the provider has no usable credentials.
	ErrNotConfigured = errors.New("transcriber not configured")
	// ErrNoSpeech is the terminal reason for an empty result.
	ErrNoSpeech = errors.New("no speech detected")
)

type Result struct {
	Text       string
	Confidence float64
	Duration   float64 // audio seconds as reported by the engine
}

// Transcriber is a blocking speech-to-text engine. Safe to call from a
// dedicated worker goroutine; not reentrant.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio []byte, format, language string) (Result, error)
}

// New selects a provider by name, reading its credentials from the
// environment.
func New(provider string) (Transcriber, error) {
	switch provider {
	case "groq":
		key := os.Getenv("GROQ_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("%w: set GROQ_API_KEY", ErrNotConfigured)
		}
		return NewGroq(key), nil
	case "whisper":
		key := os.Getenv("WHISPER_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("%w: set WHISPER_API_KEY", ErrNotConfigured)
		}
		return NewWhisper(key, os.Getenv("WHISPER_API_URL")), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

const requestTimeout = 60 * time.Second

// uploadMultipart posts audio as a multipart form the whisper-style
// endpoints expect, returning the raw response body.
func uploadMultipart(ctx context.Context, client *http.Client, url, apiKey string, audio []byte, format string, fields map[string]string) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	for k, v := range fields {
		writer.WriteField(k, v)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
