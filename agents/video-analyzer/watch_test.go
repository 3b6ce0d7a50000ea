package videoanalyzer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/TradersPost/pinescript-agents/internal/models"
	"github.com/TradersPost/pinescript-agents/shared/scheduler"
	"github.com/TradersPost/pinescript-agents/shared/storage"
)

type recordedEvents struct {
	successes []string
	partial   []error
	critical  []error
}

func (r *recordedEvents) events() *scheduler.AgentEvents {
	return &scheduler.AgentEvents{
		OnSuccess: func(m scheduler.Metrics, _ time.Duration) {
			r.successes = append(r.successes, m.GetSummary())
		},
		OnPartialFailure:  func(err error, _ time.Duration) { r.partial = append(r.partial, err) },
		OnCriticalFailure: func(err error, _ time.Duration) { r.critical = append(r.critical, err) },
	}
}

func isDone(w *WatchAgent) bool {
	select {
	case <-w.Done():
		return true
	default:
		return false
	}
}

func TestWatchAgentRetriesUntilTranscriptAvailable(t *testing.T) {
	src := &fakeSource{err: errors.New("no captions yet")}
	store := storage.NewAnalysisStore(t.TempDir())
	agent := NewWatchAgent("https://youtu.be/dQw4w9WgXcQ", newTestAnalyzer(t, sampleMetadata(), src), store, zaptest.NewLogger(t))
	require.NoError(t, agent.Initialize())

	rec := &recordedEvents{}
	require.NoError(t, agent.RunOnce(context.Background(), rec.events()))
	assert.Len(t, rec.partial, 1)
	assert.ErrorIs(t, rec.partial[0], ErrTranscriptUnavailable)
	assert.False(t, isDone(agent))

	src.err = nil
	src.text = sampleTranscript
	require.NoError(t, agent.RunOnce(context.Background(), rec.events()))
	require.Len(t, rec.successes, 1)
	assert.True(t, isDone(agent))

	result, path := agent.Result()
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, store.Path(AnalysisID("dQw4w9WgXcQ")), path)
	assert.FileExists(t, path)

	// finished agents do nothing
	require.NoError(t, agent.RunOnce(context.Background(), rec.events()))
	assert.Equal(t, 2, src.calls)
}

func TestWatchAgentUsesSavedAnalysis(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewAnalysisStore(dir)

	first := NewWatchAgent("https://youtu.be/dQw4w9WgXcQ", newTestAnalyzer(t, sampleMetadata(), &fakeSource{text: sampleTranscript}), store, zaptest.NewLogger(t))
	require.NoError(t, first.Initialize())
	require.NoError(t, first.RunOnce(context.Background(), (&recordedEvents{}).events()))

	src := &fakeSource{text: sampleTranscript}
	second := NewWatchAgent("https://www.youtube.com/watch?v=dQw4w9WgXcQ", newTestAnalyzer(t, sampleMetadata(), src), store, zaptest.NewLogger(t))
	require.NoError(t, second.Initialize())

	rec := &recordedEvents{}
	require.NoError(t, second.RunOnce(context.Background(), rec.events()))
	assert.Zero(t, src.calls)
	assert.True(t, isDone(second))
	assert.Len(t, rec.successes, 1)

	_, path := second.Result()
	assert.Equal(t, filepath.Join(dir, "video_analysis_"+AnalysisID("dQw4w9WgXcQ")+".json"), path)
}

func TestWatchAgentInvalidURL(t *testing.T) {
	agent := NewWatchAgent("not a url", newTestAnalyzer(t, sampleMetadata(), &fakeSource{}), storage.NewAnalysisStore(t.TempDir()), zaptest.NewLogger(t))
	assert.ErrorIs(t, agent.Initialize(), ErrInvalidInput)
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendAnalysis(result *models.AnalysisResult, savedTo string) error {
	f.sent = append(f.sent, result.AnalysisID+" "+savedTo)
	return f.err
}

func TestWatchAgentNotifies(t *testing.T) {
	store := storage.NewAnalysisStore(t.TempDir())
	n := &fakeNotifier{err: errors.New("smtp down")}
	agent := NewWatchAgent("https://youtu.be/dQw4w9WgXcQ", newTestAnalyzer(t, sampleMetadata(), &fakeSource{text: sampleTranscript}), store, zaptest.NewLogger(t)).
		WithNotifier(n)
	require.NoError(t, agent.Initialize())

	rec := &recordedEvents{}
	require.NoError(t, agent.RunOnce(context.Background(), rec.events()))

	id := AnalysisID("dQw4w9WgXcQ")
	assert.Equal(t, []string{id + " " + store.Path(id)}, n.sent)
	assert.Len(t, rec.partial, 1, "notification failures are partial")
	assert.Len(t, rec.successes, 1)
}
