package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/metrics"
	"github.com/grivax/grivax-api/internal/search"
	"github.com/grivax/grivax-api/internal/workpool"
)

const readingMaxTokens = 2000

// Builder assembles the rows of one unit: a video per chapter, then reading material.
type Builder struct {
	provider    llm.Provider
	videos      search.VideoSearcher
	videoPool   *workpool.Pool
	readingPool *workpool.Pool
}

func NewBuilder(provider llm.Provider, videos search.VideoSearcher, videoPool, readingPool *workpool.Pool) *Builder {
	return &Builder{
		provider:    provider,
		videos:      videos,
		videoPool:   videoPool,
		readingPool: readingPool,
	}
}

func (b *Builder) Build(ctx context.Context, courseID string, position int, pu PlannedUnit) (*course.Unit, error) {
	links := workpool.Map(ctx, b.videoPool, pu.Chapters, func(ctx context.Context, _ int, ch PlannedChapter) string {
		return b.videos.FindVideo(ctx, ch.YoutubeSearchQuery)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	readings := workpool.Map(ctx, b.readingPool, pu.Chapters, func(ctx context.Context, _ int, ch PlannedChapter) string {
		return b.reading(ctx, ch)
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unit := &course.Unit{
		CourseID: courseID,
		Position: position,
		Name:     pu.Title,
		Chapters: make([]course.Chapter, len(pu.Chapters)),
	}
	for i, ch := range pu.Chapters {
		unit.Chapters[i] = course.Chapter{
			Position:        i + 1,
			Name:            ch.Title,
			YoutubeVidLink:  links[i],
			ReadingMaterial: readings[i],
		}
	}
	return unit, nil
}

func (b *Builder) reading(ctx context.Context, ch PlannedChapter) string {
	text, err := b.provider.Complete(ctx, llm.Prompt("reading", buildReadingPrompt(ch), readingMaxTokens))
	if err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	config.WithContext(ctx).WithError(err).WithField("chapter", ch.Title).Warn("Reading material generation failed")
	metrics.Fallbacks.WithLabelValues("reading").Inc()
	return placeholderReading(ch.Title)
}

func placeholderReading(title string) string {
	return fmt.Sprintf("# %s\n\nReading material could not be generated. Please refer to the suggested resources.", title)
}

func buildReadingPrompt(ch PlannedChapter) string {
	return fmt.Sprintf(`Create concise reading material for: %q

Description: %s
Learning Points: %s

Format as markdown with:
# %s
## Overview
## Key Points (bullet format)
## Summary

Keep it concise and educational. Focus on practical information.`,
		ch.Title, ch.Description, strings.Join(ch.LearningPoints, ", "), ch.Title)
}
