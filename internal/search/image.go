package search

import (
	"context"
	"fmt"
	"time"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

type customSearchImages struct {
	svc     *customsearch.Service
	cx      string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[string]
}

// NewImageSearcher uses Google Custom Search. Missing credentials yield the placeholder searcher.
func NewImageSearcher(ctx context.Context, apiKey, cx string, timeout time.Duration, opts ...option.ClientOption) (ImageSearcher, error) {
	if apiKey == "" || cx == "" {
		config.WithContext(ctx).Warn("Image search credentials missing, using placeholder images")
		return staticImages{}, nil
	}
	svc, err := customsearch.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create custom search client: %w", err)
	}
	return &customSearchImages{
		svc:     svc,
		cx:      cx,
		timeout: timeout,
		breaker: llm.NewBreaker[string]("image-search"),
	}, nil
}

func (s *customSearchImages) FindImage(ctx context.Context, title, description string) string {
	log := config.WithContext(ctx).WithField("title", title)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	link, err := s.breaker.Execute(func() (string, error) {
		res, err := s.svc.Cse.List().
			Cx(s.cx).
			Q(title).
			SearchType("image").
			Num(1).
			Safe("active").
			ImgSize("medium").
			Context(ctx).
			Do()
		if err != nil {
			return "", err
		}
		if len(res.Items) == 0 || res.Items[0].Link == "" {
			return "", nil
		}
		return res.Items[0].Link, nil
	})
	if err != nil {
		log.WithError(err).Warn("Image search failed, using placeholder")
		metrics.Fallbacks.WithLabelValues("image").Inc()
		return FallbackImageURL
	}
	if link == "" {
		metrics.Fallbacks.WithLabelValues("image").Inc()
		return FallbackImageURL
	}
	return link
}
