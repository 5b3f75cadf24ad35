package tts

import (
	"context"

	"github.com/tahcohcat/healplay/internal/logger"
)

type Disabled struct {
	logger *logger.Log
}

func NewDisabled() *Disabled {
	return &Disabled{logger: logger.New()}
}

func (d *Disabled) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	d.logger.Debug("no tts configured. ignoring speech request")
	return nil, ErrDisabled
}

func (d *Disabled) Name() string {
	return "disabled"
}
