package tts

import (
	"context"
	"errors"
	"fmt"

	"github.com/tahcohcat/healplay/config"
)

// ErrDisabled is returned when no speech backend is configured.
var ErrDisabled = errors.New("speech synthesis is disabled")

// Synthesizer turns narration text into MP3 audio. Mood adjusts pacing and
// pitch ("calm", "cheerful", "encouraging", ...).
type Synthesizer interface {
	Synthesize(ctx context.Context, text, mood string) ([]byte, error)
	Name() string
}

// New builds the synthesizer selected by tts.type. A disabled config, or
// type "none", yields a synthesizer that always returns ErrDisabled.
func New(ctx context.Context, cfg config.TtsConfig) (Synthesizer, error) {
	if !cfg.Enabled {
		return NewDisabled(), nil
	}
	switch cfg.Type {
	case "google", "":
		return NewGoogleTTS(ctx, cfg)
	case "none":
		return NewDisabled(), nil
	default:
		return nil, fmt.Errorf("unsupported TTS type: %s", cfg.Type)
	}
}
