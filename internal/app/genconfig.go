package app

import (
	"strings"
	"time"

	"chacha-backend/internal/config"
)

// GenerationSettings are the per-request decoding knobs derived from the
// speed preset, device, and explicit overrides.
type GenerationSettings struct {
	MaxNewTokens int
	MaxTime      time.Duration
	Temperature  float64
	TopP         float64
}

type speedPreset struct {
	maxNewTokens int
	maxTime      time.Duration
}

var speedPresets = map[string]speedPreset{
	"fast":     {maxNewTokens: 96, maxTime: 20 * time.Second},
	"balanced": {maxNewTokens: 160, maxTime: 40 * time.Second},
	"quality":  {maxNewTokens: 256, maxTime: 75 * time.Second},
}

// DeriveGenerationSettings resolves the preset (request override first, then
// config), applies explicit token/time overrides, and adjusts for the device.
// CPU halves the token budget and decodes deterministically; accelerated
// devices sample.
func DeriveGenerationSettings(cfg config.LLMConfig, requestSpeed string) GenerationSettings {
	name := strings.ToLower(strings.TrimSpace(requestSpeed))
	if name == "" {
		name = strings.ToLower(strings.TrimSpace(cfg.SpeedPreset))
	}
	preset, ok := speedPresets[name]
	if !ok {
		preset = speedPresets["balanced"]
	}

	s := GenerationSettings{
		MaxNewTokens: preset.maxNewTokens,
		MaxTime:      preset.maxTime,
	}
	if cfg.MaxNewTokens > 0 {
		s.MaxNewTokens = cfg.MaxNewTokens
	}
	if cfg.MaxTimeSeconds > 0 {
		s.MaxTime = time.Duration(cfg.MaxTimeSeconds) * time.Second
	}

	if isCPU(cfg.Device) {
		s.MaxNewTokens = s.MaxNewTokens / 2
		if s.MaxNewTokens < 32 {
			s.MaxNewTokens = 32
		}
		s.Temperature = 0
		s.TopP = 0
	} else {
		s.Temperature = 0.7
		s.TopP = 0.95
	}
	return s
}

// continuationSettings expands the budget for the single follow-up call made
// when the first generation looks truncated.
func continuationSettings(s GenerationSettings) GenerationSettings {
	s.MaxNewTokens = s.MaxNewTokens * 2
	s.MaxTime = s.MaxTime + s.MaxTime/2
	return s
}

func isCPU(device string) bool {
	d := strings.ToLower(strings.TrimSpace(device))
	return d == "" || d == "cpu"
}
