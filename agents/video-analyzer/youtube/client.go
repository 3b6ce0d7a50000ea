package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/TradersPost/pinescript-agents/internal/models"
	"github.com/TradersPost/pinescript-agents/shared/config"
)

// APIClient resolves video metadata through the YouTube Data API v3.
type APIClient struct {
	service *youtube.Service
	logger  *zap.Logger
}

// NewAPIClient authenticates with an API key when one is configured and
// falls back to the OAuth device flow otherwise.
func NewAPIClient(ctx context.Context, cfg *config.YouTubeConfig, logger *zap.Logger) (*APIClient, error) {
	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	} else {
		httpClient, err := newOAuthHTTPClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return NewAPIClientFromService(service, logger), nil
}

// NewAPIClientFromService wraps an already configured service.
func NewAPIClientFromService(service *youtube.Service, logger *zap.Logger) *APIClient {
	return &APIClient{service: service, logger: logger}
}

// Metadata looks up title, channel, duration, description, publish date and
// view count for the video referenced by url.
func (c *APIClient) Metadata(ctx context.Context, url string) (*models.VideoMetadata, error) {
	videoID, err := ExtractVideoID(url)
	if err != nil {
		return nil, err
	}

	resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video details for %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	item := resp.Items[0]
	meta := &models.VideoMetadata{
		Title:       "Unknown",
		Author:      "Unknown",
		PublishDate: "Unknown",
	}
	if item.Snippet != nil {
		meta.Title = orUnknown(item.Snippet.Title)
		meta.Author = orUnknown(item.Snippet.ChannelTitle)
		meta.Description = truncateRunes(item.Snippet.Description, maxDescriptionLength)
		if publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt); err == nil {
			meta.PublishDate = publishedAt.Format("20060102")
		}
	}
	if item.ContentDetails != nil {
		meta.Length = parseDurationSeconds(item.ContentDetails.Duration)
	}
	if item.Statistics != nil {
		meta.Views = int64(item.Statistics.ViewCount)
	}

	c.logger.Debug("resolved metadata via Data API", zap.String("video_id", videoID), zap.String("title", meta.Title))
	return meta, nil
}

var isoDurationRE = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// parseDurationSeconds converts an ISO 8601 duration such as "PT1H2M3S".
func parseDurationSeconds(duration string) int {
	matches := isoDurationRE.FindStringSubmatch(duration)
	if matches == nil {
		return 0
	}

	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if matches[i+1] == "" {
			continue
		}
		if n, err := strconv.Atoi(matches[i+1]); err == nil {
			total += n * unit
		}
	}
	return total
}
