package outline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/llm"
	util "github.com/grivax/grivax-api/internal/utils"
	"github.com/sirupsen/logrus"
)

var (
	ErrMalformedOutline = errors.New("model returned a malformed course outline")
	ErrOutlineNotFound  = errors.New("course outline not found")
	ErrAlreadyAccepted  = errors.New("course generation already started")
)

// Starter hands an accepted outline to course generation.
type Starter interface {
	Started(ctx context.Context, courseID string) (bool, error)
	Start(ctx context.Context, g *GenCourse) (jobID string, err error)
}

type Service interface {
	Generate(ctx context.Context, userID string, dto GenerateDTO) (*GenCourse, error)
	Get(ctx context.Context, userID, courseID string) (*GenCourse, error)
	Update(ctx context.Context, userID, courseID string, dto UpdateDTO) (*GenCourse, string, error)
}

type service struct {
	repo     Repository
	provider llm.Provider
	starter  Starter
}

func NewService(repo Repository, provider llm.Provider, starter Starter) Service {
	return &service{repo: repo, provider: provider, starter: starter}
}

type rawOutline struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Modules     []Module `json:"modules"`
}

func (s *service) Generate(ctx context.Context, userID string, dto GenerateDTO) (*GenCourse, error) {
	weeks := dto.Pace.Weeks()
	log := config.WithContext(ctx).WithField("weeks", weeks)

	text, err := s.provider.Complete(ctx, llm.Prompt("outline", buildPrompt(dto.Topic, dto.Difficulty, weeks), outlineMaxTokens))
	if err != nil {
		log.WithError(err).Error("Outline request failed")
		return nil, fmt.Errorf("request outline: %w", err)
	}

	var raw rawOutline
	if err := llm.ExtractObject(text, &raw); err != nil {
		log.WithError(err).Error("Could not parse course structure from response")
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutline, err)
	}
	if strings.TrimSpace(raw.Title) == "" || len(raw.Modules) == 0 {
		log.Error("Course structure is missing a title or modules")
		return nil, ErrMalformedOutline
	}
	for i := range raw.Modules {
		if raw.Modules[i].Week == 0 {
			raw.Modules[i].Week = i + 1
		}
	}

	g := &GenCourse{
		UserID:      userID,
		CourseID:    util.ShortID(),
		Title:       raw.Title,
		Description: raw.Description,
		Modules:     raw.Modules,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		log.WithError(err).Error("Failed to store course outline")
		return nil, fmt.Errorf("store outline: %w", err)
	}

	log.WithFields(logrus.Fields{"course_id": g.CourseID, "modules": len(g.Modules)}).Info("Course outline stored")
	return g, nil
}

func (s *service) Get(ctx context.Context, userID, courseID string) (*GenCourse, error) {
	g, err := s.repo.GetByCourse(ctx, userID, courseID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to fetch course outline")
		return nil, err
	}
	if g == nil {
		return nil, ErrOutlineNotFound
	}
	return g, nil
}

// Update stores the edited outline and starts generation for it. It returns the job id.
func (s *service) Update(ctx context.Context, userID, courseID string, dto UpdateDTO) (*GenCourse, string, error) {
	log := config.WithContext(ctx).WithField("course_id", courseID)

	g, err := s.Get(ctx, userID, courseID)
	if err != nil {
		return nil, "", err
	}

	started, err := s.starter.Started(ctx, courseID)
	if err != nil {
		log.WithError(err).Error("Failed to check generation state")
		return nil, "", err
	}
	if started {
		return nil, "", ErrAlreadyAccepted
	}

	g.Title = dto.Title
	g.Description = dto.Description
	g.Modules = dto.Modules
	if err := s.repo.Update(ctx, g); err != nil {
		log.WithError(err).Error("Failed to update course outline")
		return nil, "", fmt.Errorf("update outline: %w", err)
	}

	jobID, err := s.starter.Start(ctx, g)
	if err != nil {
		log.WithError(err).Error("Failed to start course generation")
		return g, "", fmt.Errorf("start generation: %w", err)
	}
	return g, jobID, nil
}
