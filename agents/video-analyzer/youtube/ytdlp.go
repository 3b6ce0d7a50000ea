package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TradersPost/pinescript-agents/internal/models"
	"github.com/TradersPost/pinescript-agents/shared/config"
)

const (
	maxDescriptionLength = 500
	audioBaseName        = "audio"
)

// YTDLP wraps the yt-dlp command line tool.
type YTDLP struct {
	path            string
	metadataTimeout time.Duration
	downloadTimeout time.Duration
	logger          *zap.Logger
}

func NewYTDLP(cfg *config.YouTubeConfig, logger *zap.Logger) *YTDLP {
	return &YTDLP{
		path:            cfg.YTDLPPath,
		metadataTimeout: time.Duration(cfg.MetadataTimeoutSeconds) * time.Second,
		downloadTimeout: time.Duration(cfg.DownloadTimeoutSeconds) * time.Second,
		logger:          logger,
	}
}

// ytdlpInfo is the subset of `yt-dlp --dump-json` output we read.
type ytdlpInfo struct {
	Title       string   `json:"title"`
	Uploader    string   `json:"uploader"`
	Duration    *float64 `json:"duration"`
	Description string   `json:"description"`
	UploadDate  string   `json:"upload_date"`
	ViewCount   *int64   `json:"view_count"`
}

// Metadata fetches video metadata without downloading the video.
func (y *YTDLP) Metadata(ctx context.Context, url string) (*models.VideoMetadata, error) {
	ctx, cancel := context.WithTimeout(ctx, y.metadataTimeout)
	defer cancel()

	out, err := y.run(ctx, "--dump-json", "--no-download", url)
	if err != nil {
		return nil, err
	}
	return parseMetadata(out)
}

func parseMetadata(data []byte) (*models.VideoMetadata, error) {
	var info ytdlpInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode yt-dlp metadata: %w", err)
	}

	meta := &models.VideoMetadata{
		Title:       orUnknown(info.Title),
		Author:      orUnknown(info.Uploader),
		Description: truncateRunes(info.Description, maxDescriptionLength),
		PublishDate: orUnknown(info.UploadDate),
	}
	if info.Duration != nil {
		meta.Length = int(*info.Duration)
	}
	if info.ViewCount != nil {
		meta.Views = *info.ViewCount
	}
	return meta, nil
}

// DownloadAudio extracts the best quality audio of a video as mp3 into dir
// and returns the path of the written file.
func (y *YTDLP) DownloadAudio(ctx context.Context, url, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, y.downloadTimeout)
	defer cancel()

	y.logger.Info("downloading audio", zap.String("url", url))
	_, err := y.run(ctx,
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"-o", filepath.Join(dir, audioBaseName+".%(ext)s"),
		"--no-playlist",
		url,
	)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, audioBaseName+".*"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", errors.New("yt-dlp produced no audio file")
	}
	for _, m := range matches {
		if strings.HasSuffix(m, ".mp3") {
			return m, nil
		}
	}
	return matches[0], nil
}

func (y *YTDLP) run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("yt-dlp timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
