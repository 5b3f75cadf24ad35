// Package coach writes short supportive replies to parent reflections.
package coach

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tahcohcat/healplay/internal/llm"
	"github.com/tahcohcat/healplay/internal/logger"
)

const systemPrompt = `You are a warm, practical parenting coach inside a short wellbeing game.
A parent has written a brief reflection. Reply with one or two encouraging
sentences that acknowledge what they wrote and suggest one small next step.
Never diagnose, never lecture, never mention that you are an AI.
Respond ONLY with JSON of the form {"feedback": "..."}.`

// maxFeedbackLen is counted in runes.
const maxFeedbackLen = 400

type reply struct {
	Feedback string `json:"feedback"`
}

type Coach struct {
	llm     llm.LLM
	timeout time.Duration
	logger  *logger.Log
}

// New returns a coach backed by client. A nil client always yields the
// fallback text.
func New(client llm.LLM, timeout time.Duration) *Coach {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Coach{llm: client, timeout: timeout, logger: logger.New()}
}

func buildPrompt(gameTitle, question, reflection string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Game: %s\n", gameTitle)
	fmt.Fprintf(&b, "Question: %s\n", question)
	fmt.Fprintf(&b, "Parent's reflection: %s\n", reflection)
	return b.String()
}

// parseReply accepts a bare JSON object or one wrapped in prose or code
// fences.
func parseReply(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start < 0 || end <= start {
			return "", false
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &r); err != nil {
			return "", false
		}
	}
	fb := strings.TrimSpace(r.Feedback)
	if fb == "" {
		return "", false
	}
	if runes := []rune(fb); len(runes) > maxFeedbackLen {
		fb = strings.TrimSpace(string(runes[:maxFeedbackLen])) + "…"
	}
	return fb, true
}

// Feedback asks the model to respond to a reflection. Any failure returns
// fallback.
func (c *Coach) Feedback(ctx context.Context, gameTitle, question, reflection, fallback string) string {
	if c == nil || c.llm == nil || strings.TrimSpace(reflection) == "" {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.llm.Generate(ctx, systemPrompt, buildPrompt(gameTitle, question, reflection))
	if err != nil {
		c.logger.WithError(err).Warn("Coach unavailable, using static feedback")
		return fallback
	}

	fb, ok := parseReply(raw)
	if !ok {
		c.logger.Warn(fmt.Sprintf("Coach reply not understood: %q", raw))
		return fallback
	}
	return fb
}
