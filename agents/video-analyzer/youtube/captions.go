package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// ErrNoCaptions is returned when a video exposes no usable caption track.
var ErrNoCaptions = errors.New("no captions available")

const (
	defaultWatchBaseURL  = "https://www.youtube.com"
	playerResponseMarker = "ytInitialPlayerResponse = "
	maxWatchPageBytes    = 6 << 20
	maxTimedTextBytes    = 1 << 20
	browserUserAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// CaptionsClient fetches caption transcripts by scraping the watch page for
// its caption tracks and downloading the timedtext XML.
type CaptionsClient struct {
	httpClient *http.Client
	baseURL    string
	languages  []string
	logger     *zap.Logger
}

func NewCaptionsClient(httpClient *http.Client, languages []string, logger *zap.Logger) *CaptionsClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CaptionsClient{
		httpClient: httpClient,
		baseURL:    defaultWatchBaseURL,
		languages:  languages,
		logger:     logger,
	}
}

// WithBaseURL points the client at another host serving /watch pages.
func (c *CaptionsClient) WithBaseURL(baseURL string) *CaptionsClient {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type playerResponse struct {
	Captions *struct {
		Tracklist struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// Transcript returns the plain caption text of a video.
func (c *CaptionsClient) Transcript(ctx context.Context, videoID string) (string, error) {
	page, err := c.get(ctx, c.baseURL+"/watch?v="+videoID, maxWatchPageBytes)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return "", err
	}
	track, ok := pickBestTrack(tracks, c.languages)
	if !ok {
		return "", fmt.Errorf("%w: all caption tracks require a PoToken", ErrNoCaptions)
	}
	c.logger.Debug("fetching caption track",
		zap.String("video_id", videoID),
		zap.String("language", track.LanguageCode),
		zap.String("kind", track.Kind))

	body, err := c.get(ctx, track.BaseURL, maxTimedTextBytes)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	text, err := parseTimedText(body)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("%w: caption track is empty", ErrNoCaptions)
	}
	return text, nil
}

func (c *CaptionsClient) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// parseCaptionTracks extracts the caption tracks from the player response
// JSON embedded in a watch page.
func parseCaptionTracks(page []byte) ([]captionTrack, error) {
	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	raw := extractJSONObject(page[idx+len(playerResponseMarker):])
	if raw == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var resp playerResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if resp.Captions == nil || len(resp.Captions.Tracklist.CaptionTracks) == 0 {
		return nil, ErrNoCaptions
	}
	return resp.Captions.Tracklist.CaptionTracks, nil
}

// extractJSONObject returns the balanced {...} object at the start of data.
func extractJSONObject(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	depth := 0
	inString, escaped := false, false
	for i, b := range data {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return data[:i+1]
			}
		}
	}
	return nil
}

// needsPoToken reports whether a track URL can only be fetched by a browser.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack prefers a manual track in a preferred language, then an
// auto-generated one, then any English track, then the first usable track.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}

	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

func parseTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	parts := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := strings.Join(strings.Fields(html.UnescapeString(line.Text)), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
