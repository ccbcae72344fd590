package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Voice is one installed Piper voice: an .onnx model paired with its JSON
// config, discovered under the voices directory.
type Voice struct {
	ID         string `json:"id"`
	ShortName  string `json:"shortName"`
	Locale     string `json:"locale,omitempty"`
	ModelPath  string `json:"-"`
	ConfigPath string `json:"-"`
}

// ListPiperVoices scans voicesDir for model/config pairs. Configs may be
// named model.onnx.json or model.json; both conventions appear in the wild.
func ListPiperVoices(voicesDir string) []Voice {
	var voices []Voice
	info, err := os.Stat(voicesDir)
	if err != nil || !info.IsDir() {
		return nil
	}
	_ = filepath.Walk(voicesDir, func(path string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".onnx") {
			return nil
		}

		cfgPath := path + ".json"
		if _, err := os.Stat(cfgPath); err != nil {
			alt := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
			if _, err := os.Stat(alt); err != nil {
				return nil
			}
			cfgPath = alt
		}

		shortName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		voices = append(voices, Voice{
			ID:         shortName,
			ShortName:  shortName,
			Locale:     localeFromConfig(cfgPath),
			ModelPath:  path,
			ConfigPath: cfgPath,
		})
		return nil
	})
	return voices
}

func localeFromConfig(cfgPath string) string {
	raw, err := os.ReadFile(cfgPath)
	if err != nil {
		return ""
	}
	var cfg struct {
		Espeak struct {
			Voice string `json:"voice"`
		} `json:"espeak"`
		PhonemeLanguage string `json:"phoneme_language"`
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return ""
	}
	if cfg.Espeak.Voice != "" {
		return cfg.Espeak.Voice
	}
	return cfg.PhonemeLanguage
}

// SynthesizeWithPiper shells out to the Piper CLI, feeding text on stdin and
// writing a WAV to outPath.
func SynthesizeWithPiper(ctx context.Context, piperPath string, voice Voice, text, outPath string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is empty")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create audio dir failed: %w", err)
	}

	cmd := exec.CommandContext(ctx, piperPath,
		"-m", voice.ModelPath,
		"-c", voice.ConfigPath,
		"-f", outPath,
	)
	cmd.Stdin = strings.NewReader(text)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("piper synthesis failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}
	return nil
}
