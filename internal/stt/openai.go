package stt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/rbright/jarvis/internal/audio"
	"github.com/rbright/jarvis/internal/config"
	"github.com/rbright/jarvis/internal/transcript"
)

// OpenAI sends utterances to a hosted transcription endpoint.
type OpenAI struct {
	client   openai.Client
	model    string
	language string
	timeout  time.Duration
}

// NewOpenAI builds a client from cfg and OPENAI_API_KEY. A nil httpClient
// dials directly, or through cfg.OpenAIProxy when set.
func NewOpenAI(cfg config.STTConfig, httpClient *http.Client) (*OpenAI, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is not set", ErrUnavailable)
	}

	timeout := requestTimeout(cfg)
	if httpClient == nil {
		var err error
		httpClient, err = NewHTTPClient(cfg.OpenAIProxy, timeout)
		if err != nil {
			return nil, err
		}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(1),
	}
	if base := strings.TrimSpace(cfg.OpenAIBaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}

	model := strings.TrimSpace(cfg.OpenAIModel)
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}

	return &OpenAI{
		client:   openai.NewClient(opts...),
		model:    model,
		language: cfg.Language,
		timeout:  timeout,
	}, nil
}

// Transcribe uploads pcm as a WAV file.
func (o *OpenAI) Transcribe(ctx context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", ErrNoSpeech
	}

	file, err := os.CreateTemp("", "jarvis-utterance-*.wav")
	if err != nil {
		return "", fmt.Errorf("create utterance file: %w", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	if err := audio.WriteWAV(file, pcm); err != nil {
		return "", err
	}
	if _, err := file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("rewind utterance file: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(file, "utterance.wav", "audio/wav"),
		Model: openai.AudioModel(o.model),
	}
	if lang := strings.TrimSpace(o.language); lang != "" {
		params.Language = openai.String(lang)
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	resp, err := o.client.Audio.Transcriptions.New(reqCtx, params)
	if err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text := transcript.Assemble([]string{resp.Text})
	if text == "" {
		return "", ErrNoSpeech
	}
	return text, nil
}

// Close is a no-op; the HTTP client holds no per-engine resources.
func (o *OpenAI) Close() error { return nil }
