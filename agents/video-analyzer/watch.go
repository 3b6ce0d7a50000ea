package videoanalyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/youtube"
	"github.com/TradersPost/pinescript-agents/internal/models"
	"github.com/TradersPost/pinescript-agents/shared/scheduler"
	"github.com/TradersPost/pinescript-agents/shared/storage"
)

// ResultStore persists analysis results.
type ResultStore interface {
	Save(result *models.AnalysisResult) (string, error)
	Load(analysisID string) (*models.AnalysisResult, error)
	Path(analysisID string) string
}

// Notifier is told about each analysis the agent produces.
type Notifier interface {
	SendAnalysis(result *models.AnalysisResult, savedTo string) error
}

// WatchAgent re-analyzes a single video on a schedule until a transcript
// becomes available. It implements scheduler.Agent and scheduler.Finisher.
type WatchAgent struct {
	url      string
	analyzer *Analyzer
	store    ResultStore
	notifier Notifier
	logger   *zap.Logger

	videoID  string
	once     sync.Once
	done     chan struct{}
	result   *models.AnalysisResult
	savePath string
}

func NewWatchAgent(url string, analyzer *Analyzer, store ResultStore, logger *zap.Logger) *WatchAgent {
	return &WatchAgent{
		url:      url,
		analyzer: analyzer,
		store:    store,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

type watchMetrics struct {
	analysisID   string
	detectedType string
	path         string
}

// WithNotifier sets who is told about the finished analysis.
func (w *WatchAgent) WithNotifier(n Notifier) *WatchAgent {
	w.notifier = n
	return w
}

func (m watchMetrics) GetSummary() string {
	return fmt.Sprintf("analysis %s (%s) saved to %s", m.analysisID, m.detectedType, m.path)
}

func (w *WatchAgent) Name() string {
	return "Video Analyzer"
}

func (w *WatchAgent) Initialize() error {
	videoID, err := youtube.ExtractVideoID(w.url)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, w.url)
	}
	w.videoID = videoID
	w.logger.Info("watching video", zap.String("url", w.url), zap.String("video_id", videoID))
	return nil
}

func (w *WatchAgent) Done() <-chan struct{} {
	return w.done
}

// Result returns the successful analysis and where it was saved, once the
// agent is done.
func (w *WatchAgent) Result() (*models.AnalysisResult, string) {
	return w.result, w.savePath
}

func (w *WatchAgent) RunOnce(ctx context.Context, events *scheduler.AgentEvents) error {
	if w.finished() {
		return nil
	}
	startTime := time.Now()
	analysisID := AnalysisID(w.videoID)

	if existing, err := w.store.Load(analysisID); err == nil && existing.Success {
		w.logger.Info("analysis already saved", zap.String("analysis_id", analysisID))
		w.finish(existing, w.store.Path(analysisID))
		events.OnSuccess(watchMetrics{analysisID, detectedType(existing), w.savePath}, time.Since(startTime))
		return nil
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		w.logger.Warn("failed to read saved analysis", zap.Error(err))
	}

	result, err := w.analyzer.AnalyzeVideo(ctx, w.url)
	if errors.Is(err, ErrTranscriptUnavailable) {
		// captions often appear some time after upload
		events.OnPartialFailure(err, time.Since(startTime))
		return nil
	}
	if err != nil {
		return err
	}

	path, err := w.store.Save(result)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	w.finish(result, path)
	if w.notifier != nil {
		if err := w.notifier.SendAnalysis(result, path); err != nil {
			events.OnPartialFailure(fmt.Errorf("failed to send notification: %w", err), time.Since(startTime))
		}
	}
	events.OnSuccess(watchMetrics{result.AnalysisID, detectedType(result), path}, time.Since(startTime))
	return nil
}

func (w *WatchAgent) finished() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *WatchAgent) finish(result *models.AnalysisResult, path string) {
	w.once.Do(func() {
		w.result = result
		w.savePath = path
		close(w.done)
	})
}

func detectedType(result *models.AnalysisResult) string {
	if result.DetailedSpec == nil {
		return "unknown"
	}
	return result.DetailedSpec.DetectedType
}
