package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/logger"
)

const defaultVoice = "en-US-Chirp-HD-F"

type GoogleTTS struct {
	client *texttospeech.Client
	voice  string
	logger *logger.Log
}

// NewGoogleTTS uses tts.credentials_file when set, otherwise application
// default credentials (GOOGLE_APPLICATION_CREDENTIALS).
func NewGoogleTTS(ctx context.Context, cfg config.TtsConfig) (*GoogleTTS, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google TTS client: %w", err)
	}

	voice := cfg.Voice
	if voice == "" {
		voice = defaultVoice
	}
	return &GoogleTTS{client: client, voice: voice, logger: logger.New()}, nil
}

// languageCode extracts the locale from a voice name
// ("en-US-Chirp-HD-F" -> "en-US").
func languageCode(voice string) string {
	parts := strings.Split(voice, "-")
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}

// cleanText drops stage directions in square brackets.
func cleanText(text string) string {
	var b strings.Builder
	depth := 0
	for _, r := range text {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text, mood string) ([]byte, error) {
	text = cleanText(text)
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageCode(g.voice),
			Name:         g.voice,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding:   ttspb.AudioEncoding_MP3,
			SpeakingRate:    speakingRate(mood),
			Pitch:           pitch(mood),
			SampleRateHertz: 22050,
		},
	}

	g.logger.Debug(fmt.Sprintf("Generating Google TTS audio with voice: %s, mood: %s", g.voice, mood))

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("empty audio content received from Google TTS")
	}
	return resp.AudioContent, nil
}

func (g *GoogleTTS) Name() string {
	return "Google Cloud Text-to-Speech"
}

func (g *GoogleTTS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func speakingRate(mood string) float64 {
	switch strings.ToLower(mood) {
	case "cheerful", "excited", "happy":
		return 1.10
	case "encouraging", "warm":
		return 1.0
	case "calm", "soothing", "breathing":
		return 0.85
	case "gentle", "reflective":
		return 0.92
	default:
		return 1.0
	}
}

func pitch(mood string) float64 {
	switch strings.ToLower(mood) {
	case "cheerful", "excited", "happy":
		return 2.0
	case "encouraging", "warm":
		return 1.0
	case "calm", "soothing", "breathing":
		return -2.0
	case "gentle", "reflective":
		return -1.0
	default:
		return 0.0
	}
}
