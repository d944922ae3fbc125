package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const defaultWhisperAPIURL = "https://api.openai.com/v1/audio/transcriptions"

// Whisper talks to any OpenAI-compatible transcription endpoint,
// including self-hosted whisper servers.
type Whisper struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewWhisper(apiKey, baseURL string) *Whisper {
	if baseURL == "" {
		baseURL = defaultWhisperAPIURL
	}
	return &Whisper{
		apiKey: apiKey,
		apiURL: baseURL,
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (w *Whisper) Name() string { return "whisper" }

type whisperResponse struct {
	Text string `json:"text"`
}

func (w *Whisper) Transcribe(ctx context.Context, audio []byte, format, language string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	fields := map[string]string{"model": "whisper-1"}
	if language != "" {
		fields["language"] = language
	}

	body, err := uploadMultipart(ctx, w.client, w.apiURL, w.apiKey, audio, format, fields)
	if err != nil {
		return Result{}, fmt.Errorf("whisper: %w", err)
	}

	var resp whisperResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, fmt.Errorf("whisper response parse error: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Result{}, ErrNoSpeech
	}
	return Result{Text: text}, nil
}
