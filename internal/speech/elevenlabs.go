// Package speech turns chat replies into audio and publishes them.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/harunnryd/mimir/internal/config"
)

const maxAudioBytes = 20 << 20

// ElevenLabs is a text-to-speech client for the ElevenLabs REST API.
type ElevenLabs struct {
	client  *http.Client
	baseURL string
	apiKey  string
	voiceID string
	modelID string
}

func NewElevenLabs(cfg config.SpeechConfig) (*ElevenLabs, error) {
	timeout, err := config.DurationOrDefault(cfg.Timeout, config.DefaultSpeechTimeout)
	if err != nil {
		return nil, fmt.Errorf("speech.timeout: %w", err)
	}

	e := &ElevenLabs{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		voiceID: cfg.VoiceID,
		modelID: cfg.ModelID,
	}
	if e.baseURL == "" {
		e.baseURL = config.DefaultSpeechBaseURL
	}
	if e.voiceID == "" {
		e.voiceID = config.DefaultSpeechVoiceID
	}
	if e.modelID == "" {
		e.modelID = config.DefaultSpeechModelID
	}
	return e, nil
}

// Configured reports whether an API key is present.
func (e *ElevenLabs) Configured() bool {
	return e != nil && e.apiKey != ""
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize returns mp3 bytes for text, or nil when speech is unavailable.
// Every failure is logged rather than returned.
func (e *ElevenLabs) Synthesize(ctx context.Context, text string) []byte {
	if !e.Configured() {
		slog.Debug("Speech synthesis skipped, no API key")
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	payload, err := json.Marshal(ttsRequest{
		Text:          text,
		ModelID:       e.modelID,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		slog.Error("Encode speech request failed", "error", err)
		return nil
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", e.baseURL, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		slog.Error("Build speech request failed", "error", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", e.apiKey)

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		slog.Error("Speech request failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("Speech synthesis rejected", "status", resp.StatusCode, "body", strings.TrimSpace(string(detail)))
		return nil
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		slog.Error("Read speech audio failed", "error", err)
		return nil
	}
	if len(audio) == 0 {
		slog.Error("Speech synthesis returned no audio")
		return nil
	}

	slog.Debug("Speech synthesized", "bytes", len(audio), "duration", time.Since(start))
	return audio
}
