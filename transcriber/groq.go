package transcriber

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
)

const groqAPIURL = "https://api.groq.com/openai/v1/audio/transcriptions"

type Groq struct {
	apiKey string
	apiURL string
	client *http.Client
}

func NewGroq(apiKey string) *Groq {
	return &Groq{
		apiKey: apiKey,
		apiURL: groqAPIURL,
		client: &http.Client{Timeout: requestTimeout},
	}
}

func (g *Groq) Name() string { return "groq" }

type groqResponse struct {
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Text         string  `json:"text"`
		NoSpeechProb float64 `json:"no_speech_prob"`
		AvgLogProb   float64 `json:"avg_logprob"`
	} `json:"segments"`
}

func (g *Groq) Transcribe(ctx context.Context, audio []byte, format, language string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	fields := map[string]string{
		"model":           "whisper-large-v3-turbo",
		"response_format": "verbose_json",
	}
	if language != "" {
		fields["language"] = language
	}

	body, err := uploadMultipart(ctx, g.client, g.apiURL, g.apiKey, audio, format, fields)
	if err != nil {
		return Result{}, fmt.Errorf("groq: %w", err)
	}

	var resp groqResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Result{}, fmt.Errorf("groq response parse error: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return Result{}, ErrNoSpeech
	}

	// Whisper flags hallucinated segments with a high no-speech
	// probability; treat an all-suspect transcript as silence.
	if len(resp.Segments) > 0 {
		suspect := 0
		var logProbSum float64
		for _, seg := range resp.Segments {
			if seg.NoSpeechProb > 0.8 {
				suspect++
			}
			logProbSum += seg.AvgLogProb
		}
		if suspect == len(resp.Segments) {
			return Result{}, ErrNoSpeech
		}
		avg := logProbSum / float64(len(resp.Segments))
		return Result{Text: text, Confidence: logProbToConfidence(avg), Duration: resp.Duration}, nil
	}

	return Result{Text: text, Duration: resp.Duration}, nil
}

func logProbToConfidence(avgLogProb float64) float64 {
	return math.Min(1, math.Exp(avgLogProb))
}
