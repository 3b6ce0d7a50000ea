// Package transcript provides the ways a video's spoken text can be obtained:
// downloading audio for speech-to-text, scraping published captions, or
// letting Gemini read the video directly.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/youtube"
	"github.com/TradersPost/pinescript-agents/shared/ai"
	"github.com/TradersPost/pinescript-agents/shared/config"
	"github.com/TradersPost/pinescript-agents/shared/whisper"
)

// ErrEmpty is returned when a source yields only whitespace.
var ErrEmpty = errors.New("transcript is empty")

// Source produces the transcript of one video.
type Source interface {
	Transcript(ctx context.Context, url, videoID string) (string, error)
}

// FileTranscriber converts an audio file to text.
type FileTranscriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

// AudioDownloader writes a video's audio track into dir.
type AudioDownloader interface {
	DownloadAudio(ctx context.Context, url, dir string) (string, error)
}

// AudioSource downloads the audio into a private temporary directory and
// transcribes it. The directory is removed before Transcript returns.
type AudioSource struct {
	downloader  AudioDownloader
	transcriber FileTranscriber
	tempRoot    string
	logger      *zap.Logger
}

func NewAudioSource(downloader AudioDownloader, transcriber FileTranscriber, logger *zap.Logger) *AudioSource {
	return &AudioSource{
		downloader:  downloader,
		transcriber: transcriber,
		logger:      logger,
	}
}

func (s *AudioSource) Transcript(ctx context.Context, url, videoID string) (string, error) {
	dir, err := os.MkdirTemp(s.tempRoot, "video-analyzer-"+videoID+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			s.logger.Warn("failed to remove temp dir", zap.String("dir", dir), zap.Error(err))
		}
	}()

	audioPath, err := s.downloader.DownloadAudio(ctx, url, dir)
	if err != nil {
		return "", err
	}

	text, err := s.transcriber.TranscribeFile(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return nonEmpty(text)
}

// CaptionsSource reads the captions YouTube publishes for a video.
type CaptionsSource struct {
	client  *youtube.CaptionsClient
	timeout time.Duration
}

func NewCaptionsSource(client *youtube.CaptionsClient, timeout time.Duration) *CaptionsSource {
	return &CaptionsSource{client: client, timeout: timeout}
}

func (s *CaptionsSource) Transcript(ctx context.Context, _, videoID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.client.Transcript(ctx, videoID)
	if err != nil {
		return "", err
	}
	return nonEmpty(text)
}

// URLTranscriber transcribes a video straight from its URL.
type URLTranscriber interface {
	TranscribeVideoURL(ctx context.Context, url string) (string, error)
}

// GeminiURLSource hands the canonical watch URL to Gemini.
type GeminiURLSource struct {
	transcriber URLTranscriber
}

func NewGeminiURLSource(transcriber URLTranscriber) *GeminiURLSource {
	return &GeminiURLSource{transcriber: transcriber}
}

func (s *GeminiURLSource) Transcript(ctx context.Context, _, videoID string) (string, error) {
	text, err := s.transcriber.TranscribeVideoURL(ctx, youtube.WatchURL(videoID))
	if err != nil {
		return "", err
	}
	return nonEmpty(text)
}

// New builds the source selected by cfg.Transcript.Source.
func New(ctx context.Context, cfg *config.Config, downloader AudioDownloader, logger *zap.Logger) (Source, error) {
	switch cfg.Transcript.Source {
	case config.SourceAudio:
		var fileTranscriber FileTranscriber
		if cfg.Transcript.Transcriber == config.TranscriberGemini {
			t, err := ai.NewTranscriber(ctx, &cfg.AI, logger)
			if err != nil {
				return nil, err
			}
			fileTranscriber = t
		} else {
			fileTranscriber = whisper.NewTranscriber(&cfg.Transcript, logger)
		}
		return NewAudioSource(downloader, fileTranscriber, logger), nil

	case config.SourceCaptions:
		timeout := time.Duration(cfg.Transcript.CaptionTimeoutSeconds) * time.Second
		client := youtube.NewCaptionsClient(&http.Client{Timeout: timeout}, cfg.Transcript.Languages, logger)
		return NewCaptionsSource(client, timeout), nil

	case config.SourceGeminiURL:
		t, err := ai.NewTranscriber(ctx, &cfg.AI, logger)
		if err != nil {
			return nil, err
		}
		return NewGeminiURLSource(t), nil
	}
	return nil, fmt.Errorf("unknown transcript source %q", cfg.Transcript.Source)
}

func nonEmpty(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}
