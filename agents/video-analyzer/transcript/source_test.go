package transcript

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/TradersPost/pinescript-agents/agents/video-analyzer/youtube"
	"github.com/TradersPost/pinescript-agents/shared/config"
)

type fakeDownloader struct {
	err     error
	gotDir  string
	gotURL  string
	created string
}

func (f *fakeDownloader) DownloadAudio(_ context.Context, url, dir string) (string, error) {
	f.gotURL = url
	f.gotDir = dir
	if f.err != nil {
		return "", f.err
	}
	f.created = filepath.Join(dir, "audio.mp3")
	return f.created, os.WriteFile(f.created, []byte("ID3"), 0o600)
}

type fakeFileTranscriber struct {
	text    string
	err     error
	gotPath string
}

func (f *fakeFileTranscriber) TranscribeFile(_ context.Context, path string) (string, error) {
	f.gotPath = path
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return f.text, f.err
}

func newTestAudioSource(t *testing.T, d *fakeDownloader, tr *fakeFileTranscriber) (*AudioSource, string) {
	t.Helper()
	root := t.TempDir()
	s := NewAudioSource(d, tr, zaptest.NewLogger(t))
	s.tempRoot = root
	return s, root
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary audio directory was not removed")
}

func TestAudioSourceTranscript(t *testing.T) {
	d := &fakeDownloader{}
	tr := &fakeFileTranscriber{text: "  Enter long when RSI crosses 30.\n"}
	s, root := newTestAudioSource(t, d, tr)

	text, err := s.Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "Enter long when RSI crosses 30.", text)
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", d.gotURL)
	assert.Equal(t, d.created, tr.gotPath)
	assert.NoDirExists(t, d.gotDir)
	assertEmptyDir(t, root)
}

func TestAudioSourceCleansUpOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		d       *fakeDownloader
		tr      *fakeFileTranscriber
		wantErr error
	}{
		{"download fails", &fakeDownloader{err: errors.New("HTTP Error 403")}, &fakeFileTranscriber{}, nil},
		{"transcriber fails", &fakeDownloader{}, &fakeFileTranscriber{err: errors.New("model not found")}, nil},
		{"empty transcript", &fakeDownloader{}, &fakeFileTranscriber{text: " \n "}, ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, root := newTestAudioSource(t, tt.d, tt.tr)

			_, err := s.Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assertEmptyDir(t, root)
		})
	}
}

type fakeURLTranscriber struct {
	text   string
	gotURL string
}

func (f *fakeURLTranscriber) TranscribeVideoURL(_ context.Context, url string) (string, error) {
	f.gotURL = url
	return f.text, nil
}

func TestGeminiURLSource(t *testing.T) {
	f := &fakeURLTranscriber{text: "hello traders"}
	text, err := NewGeminiURLSource(f).Transcript(context.Background(), "https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ")
	require.NoError(t, err)

	assert.Equal(t, "hello traders", text)
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", f.gotURL)

	_, err = NewGeminiURLSource(&fakeURLTranscriber{}).Transcript(context.Background(), "", "dQw4w9WgXcQ")
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestCaptionsSource(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/timedtext","languageCode":"en"}]}}};</script>`, srv.URL)
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<transcript><text start="0" dur="1">Buy the breakout</text></transcript>`))
	})

	client := youtube.NewCaptionsClient(srv.Client(), []string{"en"}, zaptest.NewLogger(t)).WithBaseURL(srv.URL)
	text, err := NewCaptionsSource(client, 5*time.Second).Transcript(context.Background(), "", "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "Buy the breakout", text)
}

func TestNewSelectsSource(t *testing.T) {
	logger := zaptest.NewLogger(t)

	cfg := &config.Config{Transcript: config.TranscriptConfig{
		Source:      config.SourceAudio,
		Transcriber: config.TranscriberWhisper,
		WhisperPath: "whisper",
	}}
	src, err := New(context.Background(), cfg, &fakeDownloader{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &AudioSource{}, src)

	cfg.Transcript.Source = config.SourceCaptions
	cfg.Transcript.CaptionTimeoutSeconds = 5
	src, err = New(context.Background(), cfg, &fakeDownloader{}, logger)
	require.NoError(t, err)
	assert.IsType(t, &CaptionsSource{}, src)

	cfg.Transcript.Source = "carrier-pigeon"
	_, err = New(context.Background(), cfg, &fakeDownloader{}, logger)
	assert.Error(t, err)
}
