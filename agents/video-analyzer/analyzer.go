package videoanalyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/analysis"
	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/transcript"
	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/youtube"
	"github.com/TradersPost/pinescript-agents/internal/models"
)

var (
	// ErrInvalidInput is returned when the URL holds no YouTube video ID.
	ErrInvalidInput = errors.New("invalid YouTube URL")
	// ErrTranscriptUnavailable is returned when no usable transcript could be produced.
	ErrTranscriptUnavailable = errors.New("could not transcribe video")
)

const transcriptFailureMessage = "Could not transcribe video"

// MetadataResolver looks up descriptive information about a video.
type MetadataResolver interface {
	Metadata(ctx context.Context, url string) (*models.VideoMetadata, error)
}

// Analyzer runs the full pipeline for one video URL.
type Analyzer struct {
	metadata  MetadataResolver
	source    transcript.Source
	extractor *analysis.Extractor
	logger    *zap.Logger
}

func NewAnalyzer(metadata MetadataResolver, source transcript.Source, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		metadata:  metadata,
		source:    source,
		extractor: analysis.NewExtractor(),
		logger:    logger,
	}
}

// AnalyzeVideo resolves metadata, obtains a transcript and derives a Pine
// Script specification from it.
//
// An invalid URL returns ErrInvalidInput and a nil result. A transcript
// failure returns a failure result together with ErrTranscriptUnavailable.
// Metadata failures are recorded on the result and never stop the analysis.
func (a *Analyzer) AnalyzeVideo(ctx context.Context, url string) (*models.AnalysisResult, error) {
	videoID, err := youtube.ExtractVideoID(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, url)
	}
	logger := a.logger.With(zap.String("video_id", videoID))

	metadata := a.resolveMetadata(ctx, url, logger)

	logger.Info("fetching transcript")
	text, err := a.source.Transcript(ctx, url, videoID)
	if err == nil && text == "" {
		err = transcript.ErrEmpty
	}
	if err != nil {
		logger.Warn("transcript unavailable", zap.Error(err))
		return &models.AnalysisResult{
			Success:  false,
			Error:    transcriptFailureMessage,
			Metadata: metadata,
		}, fmt.Errorf("%w: %w", ErrTranscriptUnavailable, err)
	}

	concepts := a.extractor.Extract(text)
	components := analysis.IdentifyComponents(text)
	spec := analysis.BuildSpec(concepts, components, metadata)

	result := &models.AnalysisResult{
		Success:          true,
		Summary:          analysis.FormatSummary(spec),
		DetailedSpec:     spec,
		RawConcepts:      concepts,
		RawComponents:    components,
		TranscriptLength: utf8.RuneCountInString(text),
		AnalysisID:       AnalysisID(videoID),
		Metadata:         metadata,
	}

	logger.Info("analysis complete",
		zap.String("analysis_id", result.AnalysisID),
		zap.String("detected_type", spec.DetectedType),
		zap.Int("complexity", spec.ComplexityScore),
		zap.Int("transcript_length", result.TranscriptLength))

	return result, nil
}

func (a *Analyzer) resolveMetadata(ctx context.Context, url string, logger *zap.Logger) *models.VideoMetadata {
	metadata, err := a.metadata.Metadata(ctx, url)
	if err != nil || metadata == nil {
		if err == nil {
			err = errors.New("no metadata returned")
		}
		logger.Warn("metadata lookup failed", zap.Error(err))
		return &models.VideoMetadata{
			URL:   url,
			Error: fmt.Sprintf("Failed to get metadata: %v", err),
		}
	}
	metadata.URL = url
	return metadata
}

// AnalysisID is the first 8 hex characters of the MD5 digest of videoID.
func AnalysisID(videoID string) string {
	sum := md5.Sum([]byte(videoID))
	return hex.EncodeToString(sum[:])[:8]
}
