// Package search finds a cover image and chapter videos. Every lookup degrades to a
// fixed fallback URL; callers never see an error.
package search

import "context"

const (
	FallbackImageURL = "https://images.unsplash.com/photo-1516321318423-f06f85e504b3?auto=format&fit=crop&w=1740&q=80"
	FallbackVideoURL = "https://www.youtube.com/watch?v=KfVpPpXwXqY"
)

type ImageSearcher interface {
	FindImage(ctx context.Context, title, description string) string
}

type VideoSearcher interface {
	FindVideo(ctx context.Context, query string) string
}

type staticImages struct{}

func (staticImages) FindImage(context.Context, string, string) string { return FallbackImageURL }

type staticVideos struct{}

func (staticVideos) FindVideo(context.Context, string) string { return FallbackVideoURL }
