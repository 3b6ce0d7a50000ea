// Package whisper runs the openai-whisper command line tool for local
// speech-to-text.
package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TradersPost/pinescript-agents/shared/config"
)

// ErrEmptyTranscript is returned when whisper writes no text.
var ErrEmptyTranscript = errors.New("whisper produced an empty transcript")

type Transcriber struct {
	path    string
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func NewTranscriber(cfg *config.TranscriptConfig, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		path:    cfg.WhisperPath,
		model:   cfg.WhisperModel,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		logger:  logger,
	}
}

// TranscribeFile transcribes audioPath. Whisper writes <name>.txt next to
// the audio file, so the output shares the audio file's lifetime.
func (t *Transcriber) TranscribeFile(ctx context.Context, audioPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	outDir := filepath.Dir(audioPath)
	t.logger.Info("transcribing with whisper", zap.String("model", t.model), zap.String("audio", audioPath))

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path,
		audioPath,
		"--model", t.model,
		"--output_format", "txt",
		"--output_dir", outDir,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("whisper timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("whisper failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".txt"))
	if err != nil {
		return "", fmt.Errorf("failed to read whisper output: %w", err)
	}

	text := strings.Join(strings.Fields(string(data)), " ")
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
