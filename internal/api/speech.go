package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/tahcohcat/healplay/internal/tts"
)

const maxSpeechChars = 1000

type SpeechHandler struct {
	synth tts.Synthesizer
}

func NewSpeechHandler(synth tts.Synthesizer) *SpeechHandler {
	if synth == nil {
		synth = tts.NewDisabled()
	}
	return &SpeechHandler{synth: synth}
}

type speechRequest struct {
	Text string `json:"text"`
	Mood string `json:"mood"`
}

// POST /api/parent/speech - narrate text as MP3
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if len(req.Text) > maxSpeechChars {
		writeError(w, http.StatusBadRequest, "Text is too long")
		return
	}
	if req.Mood == "" {
		req.Mood = "calm"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	audio, err := h.synth.Synthesize(ctx, req.Text, req.Mood)
	if errors.Is(err, tts.ErrDisabled) {
		writeError(w, http.StatusServiceUnavailable, "Speech is not available")
		return
	} else if err != nil {
		logErr(err, "Failed to generate speech")
		writeError(w, http.StatusBadGateway, "Failed to generate speech")
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(audio)
}

func (h *SpeechHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/speech", h.Speak).Methods("POST")
}
