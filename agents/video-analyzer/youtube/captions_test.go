package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const watchPageTemplate = `<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[%s]}},"videoDetails":{"title":"a {tricky} \"title\""}};var meta = {};</script></html>`

func captionsServer(t *testing.T, tracks string, timedText string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "vid123", r.URL.Query().Get("v"))
		fmt.Fprintf(w, watchPageTemplate, fmt.Sprintf(tracks, srv.URL))
	})
	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "en", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(timedText))
	})
	return srv
}

func TestCaptionsClientTranscript(t *testing.T) {
	srv := captionsServer(t,
		`{"baseUrl":"%[1]s/timedtext?lang=de","languageCode":"de"},{"baseUrl":"%[1]s/timedtext?lang=en","languageCode":"en","kind":"asr"}`,
		`<?xml version="1.0" encoding="utf-8"?><transcript><text start="0" dur="2">Enter long when</text><text start="2" dur="2">RSI &amp;#39;crosses&amp;#39;   30.</text><text start="4" dur="1"> </text></transcript>`)

	client := NewCaptionsClient(srv.Client(), []string{"en"}, zaptest.NewLogger(t)).WithBaseURL(srv.URL)
	text, err := client.Transcript(context.Background(), "vid123")
	require.NoError(t, err)
	assert.Equal(t, "Enter long when RSI 'crosses' 30.", text)
}

func TestCaptionsClientNoCaptions(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<script>var ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"}};</script>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := NewCaptionsClient(srv.Client(), []string{"en"}, zaptest.NewLogger(t)).WithBaseURL(srv.URL)
	_, err := client.Transcript(context.Background(), "vid123")
	assert.ErrorIs(t, err, ErrNoCaptions)
}

func TestCaptionsClientWatchPageError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewCaptionsClient(srv.Client(), []string{"en"}, zaptest.NewLogger(t)).WithBaseURL(srv.URL)
	_, err := client.Transcript(context.Background(), "vid123")
	assert.Error(t, err)
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a":"}","b":{"c":"\"{"}}`, string(extractJSONObject([]byte(`{"a":"}","b":{"c":"\"{"}};rest`))))
	assert.Nil(t, extractJSONObject([]byte(`[1,2]`)))
	assert.Nil(t, extractJSONObject([]byte(`{"unterminated":`)))
}

func TestPickBestTrack(t *testing.T) {
	manualEN := captionTrack{BaseURL: "u1", LanguageCode: "en"}
	autoEN := captionTrack{BaseURL: "u2", LanguageCode: "en", Kind: "asr"}
	britishEN := captionTrack{BaseURL: "u3", LanguageCode: "en-GB"}
	german := captionTrack{BaseURL: "u4", LanguageCode: "de"}
	blocked := captionTrack{BaseURL: "u5&exp=xpe", LanguageCode: "en"}

	tests := []struct {
		name   string
		tracks []captionTrack
		langs  []string
		want   captionTrack
		ok     bool
	}{
		{"manual preferred over auto", []captionTrack{autoEN, manualEN}, []string{"en"}, manualEN, true},
		{"auto in preferred language", []captionTrack{german, autoEN}, []string{"en"}, autoEN, true},
		{"any english fallback", []captionTrack{german, britishEN}, []string{"fr"}, britishEN, true},
		{"first usable fallback", []captionTrack{german}, []string{"fr"}, german, true},
		{"potoken tracks skipped", []captionTrack{blocked, german}, []string{"en"}, german, true},
		{"nothing usable", []captionTrack{blocked}, []string{"en"}, captionTrack{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tt.tracks, tt.langs)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
