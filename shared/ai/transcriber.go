package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/TradersPost/pinescript-agents/shared/config"
)

// ErrEmptyTranscript is returned when the model answers with no text.
var ErrEmptyTranscript = errors.New("empty transcript from model")

const (
	defaultAudioMIME = "audio/mpeg"
	videoMIME        = "video/mp4"

	transcribePrompt = `Transcribe the spoken content of this recording verbatim.
Return only the transcript as plain text: no timestamps, no speaker labels, no commentary.`
)

// contentGenerator is the part of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Transcriber turns audio files or YouTube URLs into text with Gemini.
type Transcriber struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

func NewTranscriber(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (*Transcriber, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Transcriber{
		models: client.Models,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

// TranscribeFile sends the audio file inline and returns its transcript.
func (t *Transcriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	mimeType := defaultAudioMIME
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		mimeType = kind.MIME.Value
	}

	t.logger.Info("transcribing audio with Gemini",
		zap.String("model", t.model),
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(data)))

	return t.generate(ctx, genai.NewPartFromBytes(data, mimeType))
}

// TranscribeVideoURL lets Gemini read a YouTube video directly.
func (t *Transcriber) TranscribeVideoURL(ctx context.Context, url string) (string, error) {
	t.logger.Info("transcribing video URL with Gemini", zap.String("model", t.model), zap.String("url", url))
	return t.generate(ctx, genai.NewPartFromURI(url, videoMIME))
}

func (t *Transcriber) generate(ctx context.Context, media *genai.Part) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(transcribePrompt),
		media,
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}
