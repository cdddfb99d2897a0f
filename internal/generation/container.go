package generation

import (
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/search"
	"github.com/grivax/grivax-api/internal/workpool"
	"gorm.io/gorm"
)

type GenerationContainer struct {
	Handler *Handler
	Service Service
	Worker  *Worker
	Sweeper *Sweeper
	PubSub  *gochannel.GoChannel
}

func NewGenerationContainer(
	db *gorm.DB,
	outlines outline.Repository,
	courses course.Repository,
	provider llm.Provider,
	images search.ImageSearcher,
	videos search.VideoSearcher,
	settings config.GenerationSettings,
) *GenerationContainer {
	pubSub := NewPubSub()
	jobs := NewRepository(db)
	dispatcher := NewDispatcher(pubSub)

	builder := NewBuilder(provider, videos,
		workpool.New("video", settings.VideoConcurrency),
		workpool.New("reading", settings.ReadingConcurrency),
	)
	runner := NewRunner(jobs, outlines, courses, NewPlanner(provider), builder, images,
		workpool.New("unit", settings.UnitConcurrency),
	)

	service := NewService(jobs, outlines, courses, dispatcher)

	return &GenerationContainer{
		Handler: NewHandler(service),
		Service: service,
		Worker:  NewWorker(jobs, runner, pubSub, settings.JobConcurrency, settings.MaxAttempts, settings.JobTimeout),
		Sweeper: NewSweeper(jobs, dispatcher, settings.StaleAfter, settings.MaxAttempts, settings.SweepSchedule),
		PubSub:  pubSub,
	}
}

func (c *GenerationContainer) Close() error {
	return c.PubSub.Close()
}
