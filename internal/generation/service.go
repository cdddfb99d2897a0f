package generation

import (
	"context"
	"errors"
	"fmt"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/search"
	util "github.com/grivax/grivax-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOutlineNotFound = outline.ErrOutlineNotFound
	ErrCourseNotFound  = course.ErrCourseNotFound
)

type Service interface {
	outline.Starter
	Confirm(ctx context.Context, userID, courseID, id string) (*outline.GenCourse, error)
	Accept(ctx context.Context, userID, courseID, id string) (*Job, error)
	Status(ctx context.Context, userID, courseID string) (*StatusView, error)
	Acknowledge(ctx context.Context, userID, courseID string) error
}

type service struct {
	jobs       Repository
	outlines   outline.Repository
	courses    course.Repository
	dispatcher Dispatcher
}

func NewService(jobs Repository, outlines outline.Repository, courses course.Repository, dispatcher Dispatcher) Service {
	return &service{jobs: jobs, outlines: outlines, courses: courses, dispatcher: dispatcher}
}

func (s *service) Confirm(ctx context.Context, userID, courseID, id string) (*outline.GenCourse, error) {
	g, err := s.outlines.GetByID(ctx, userID, courseID, id)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to fetch course outline")
		return nil, err
	}
	if g == nil {
		return nil, ErrOutlineNotFound
	}
	return g, nil
}

func (s *service) Accept(ctx context.Context, userID, courseID, id string) (*Job, error) {
	g, err := s.Confirm(ctx, userID, courseID, id)
	if err != nil {
		return nil, err
	}
	jobID, err := s.Start(ctx, g)
	if err != nil {
		return nil, err
	}
	return s.jobs.Get(ctx, jobID)
}

func (s *service) Started(ctx context.Context, courseID string) (bool, error) {
	j, err := s.jobs.GetByCourse(ctx, courseID)
	if err != nil {
		return false, err
	}
	return j != nil, nil
}

// Start makes sure the course row and its job exist, then announces the job.
// Calling it again for the same course is harmless; a failed job is reset.
func (s *service) Start(ctx context.Context, g *outline.GenCourse) (string, error) {
	log := config.WithContext(ctx).WithField("course_id", g.CourseID)

	_, created, err := s.courses.Ensure(ctx, &course.Course{
		CourseID: g.CourseID,
		UserID:   g.UserID,
		GenID:    g.ID,
		Title:    g.Title,
		Image:    search.FallbackImageURL,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create course")
		return "", fmt.Errorf("ensure course: %w", err)
	}
	if created {
		log.Info("Course created")
	}

	job, err := s.ensureJob(ctx, g)
	if err != nil {
		log.WithError(err).Error("Failed to create generation job")
		return "", err
	}

	switch job.Status {
	case StatusFailed:
		if err := s.jobs.Reset(ctx, job.JobID); err != nil {
			log.WithError(err).Error("Failed to reset generation job")
			return "", fmt.Errorf("reset job: %w", err)
		}
		log.WithField("job_id", job.JobID).Info("Failed generation job requeued")
	case StatusRunning, StatusCompleted:
		return job.JobID, nil
	}

	s.dispatcher.Dispatch(ctx, job.JobID)
	return job.JobID, nil
}

func (s *service) ensureJob(ctx context.Context, g *outline.GenCourse) (*Job, error) {
	job, err := s.jobs.GetByCourse(ctx, g.CourseID)
	if err != nil {
		return nil, err
	}
	if job != nil {
		return job, nil
	}

	job = &Job{
		CourseID: g.CourseID,
		UserID:   g.UserID,
		GenID:    g.ID,
		Status:   StatusQueued,
		Stage:    StagePlan,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.jobs.GetByCourse(ctx, g.CourseID)
		}
		return nil, fmt.Errorf("create job: %w", err)
	}
	config.WithContext(ctx).WithField("job_id", job.JobID).Info("Generation job queued")
	return job, nil
}

func (s *service) Status(ctx context.Context, userID, courseID string) (*StatusView, error) {
	log := config.WithContext(ctx).WithField("course_id", courseID)

	c, err := s.courses.Get(ctx, userID, courseID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch course")
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}

	units, err := s.courses.ListUnits(ctx, courseID)
	if err != nil {
		log.WithError(err).Error("Failed to list units")
		return nil, err
	}
	g, err := s.outlines.FindByCourseID(ctx, courseID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch course outline")
		return nil, err
	}
	job, err := s.jobs.GetByCourse(ctx, courseID)
	if err != nil {
		log.WithError(err).Error("Failed to fetch generation job")
		return nil, err
	}

	intended := len(units)
	if g != nil {
		intended = len(g.Modules)
	}
	view := &StatusView{
		CourseID: c.CourseID,
		UserID:   c.UserID,
		Progress: measure(units, intended),
	}
	if job != nil {
		view.Job = &JobView{
			JobID:       job.JobID,
			Status:      job.Status,
			Stage:       job.Stage,
			Attempts:    job.Attempts,
			Error:       job.Error,
			StartedAt:   job.StartedAt,
			HeartbeatAt: job.HeartbeatAt,
			FinishedAt:  job.FinishedAt,
		}
	}

	p := view.Progress
	switch {
	case job != nil && job.Status == StatusCompleted,
		job == nil && p.TotalIntendedUnits > 0 && p.CompletedUnits == p.TotalIntendedUnits:
		view.Status = StateCompleted
		view.Message = "Course generation completed"
		view.Progress.Percent = 100
	case job != nil && job.Status == StatusFailed:
		view.Status = StateFailed
		view.Message = "Course generation failed"
	default:
		view.Status = StateGenerating
		view.Message = "Course is still being generated"
	}
	return view, nil
}

// measure counts a unit as complete once it has at least one chapter.
func measure(units []course.Unit, intended int) Progress {
	p := Progress{
		UnitsCreated:       len(units),
		TotalIntendedUnits: intended,
		ChaptersPerUnit:    make([]UnitChapters, len(units)),
	}
	for i, u := range units {
		n := len(u.Chapters)
		p.ChaptersPerUnit[i] = UnitChapters{UnitID: u.UnitID, Chapters: n}
		p.TotalChapters += n
		if n > 0 {
			p.CompletedUnits++
		}
	}
	p.Percent = util.Percent(p.CompletedUnits, p.TotalIntendedUnits)
	if p.Percent > 100 {
		p.Percent = 100
	}
	return p
}

func (s *service) Acknowledge(ctx context.Context, userID, courseID string) error {
	c, err := s.courses.Get(ctx, userID, courseID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to fetch course")
		return err
	}
	if c == nil {
		return ErrCourseNotFound
	}
	config.WithContext(ctx).WithField("course_id", courseID).Info("Course generation acknowledgment received")
	return nil
}
