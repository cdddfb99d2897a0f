package search

import (
	"context"
	"fmt"
	"time"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

type youtubeVideos struct {
	svc     *youtube.Service
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[string]
}

// NewVideoSearcher uses the YouTube Data API. A missing key yields the fallback searcher.
func NewVideoSearcher(ctx context.Context, apiKey string, timeout time.Duration, opts ...option.ClientOption) (VideoSearcher, error) {
	if apiKey == "" {
		config.WithContext(ctx).Warn("YouTube API key missing, using fallback videos")
		return staticVideos{}, nil
	}
	svc, err := youtube.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create youtube client: %w", err)
	}
	return &youtubeVideos{
		svc:     svc,
		timeout: timeout,
		breaker: llm.NewBreaker[string]("video-search"),
	}, nil
}

func (s *youtubeVideos) FindVideo(ctx context.Context, query string) string {
	if query == "" {
		return FallbackVideoURL
	}
	log := config.WithContext(ctx).WithField("query", query)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	videoID, err := s.breaker.Execute(func() (string, error) {
		res, err := s.svc.Search.List([]string{"id"}).
			Q(query).
			Type("video").
			VideoDuration("medium").
			VideoEmbeddable("true").
			MaxResults(1).
			Context(ctx).
			Do()
		if err != nil {
			return "", err
		}
		if len(res.Items) == 0 || res.Items[0].Id == nil {
			return "", nil
		}
		return res.Items[0].Id.VideoId, nil
	})
	if err != nil || videoID == "" {
		if err != nil {
			log.WithError(err).Warn("Video search failed, using fallback video")
		}
		metrics.Fallbacks.WithLabelValues("video").Inc()
		return FallbackVideoURL
	}
	return "https://www.youtube.com/watch?v=" + videoID
}
