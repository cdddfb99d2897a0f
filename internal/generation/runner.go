package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/search"
	"github.com/grivax/grivax-api/internal/workpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrOutlineMissing = errors.New("outline for job not found")

// Runner executes one attempt of a job: plan, then build every unit not yet stored.
type Runner struct {
	jobs     Repository
	outlines outline.Repository
	courses  course.Repository
	planner  *Planner
	builder  *Builder
	images   search.ImageSearcher
	unitPool *workpool.Pool
	now      func() time.Time
}

func NewRunner(jobs Repository, outlines outline.Repository, courses course.Repository, planner *Planner, builder *Builder, images search.ImageSearcher, unitPool *workpool.Pool) *Runner {
	return &Runner{
		jobs:     jobs,
		outlines: outlines,
		courses:  courses,
		planner:  planner,
		builder:  builder,
		images:   images,
		unitPool: unitPool,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (r *Runner) Run(ctx context.Context, job *Job) error {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"job_id":    job.JobID,
		"course_id": job.CourseID,
		"attempt":   job.Attempts,
	})

	g, err := r.outlines.FindByCourseID(ctx, job.CourseID)
	if err != nil {
		return fmt.Errorf("load outline: %w", err)
	}
	if g == nil {
		return ErrOutlineMissing
	}

	plan := []PlannedUnit(job.Plan)
	if len(plan) == 0 {
		plan, err = r.plan(ctx, job, g)
		if err != nil {
			return err
		}
		log.WithField("units", len(plan)).Info("Course plan stored")
	}
	plan = normalizePlan(plan, g.Modules)

	existing, err := r.courses.ListUnits(ctx, job.CourseID)
	if err != nil {
		return fmt.Errorf("list units: %w", err)
	}
	byPosition := make(map[int]course.Unit, len(existing))
	for _, u := range existing {
		byPosition[u.Position] = u
	}

	type pendingUnit struct {
		position int
		unit     PlannedUnit
		stale    string
	}
	var pending []pendingUnit
	for i, pu := range plan {
		position := i + 1
		u, ok := byPosition[position]
		if ok && len(u.Chapters) > 0 {
			continue
		}
		p := pendingUnit{position: position, unit: pu}
		if ok {
			p.stale = u.UnitID
		}
		pending = append(pending, p)
	}
	if len(pending) < len(plan) {
		log.WithField("remaining", len(pending)).Info("Resuming generation")
	}

	return workpool.Each(ctx, r.unitPool, pending, func(ctx context.Context, _ int, p pendingUnit) error {
		if p.stale != "" {
			if err := r.courses.DeleteUnit(ctx, p.stale); err != nil {
				return fmt.Errorf("remove empty unit %d: %w", p.position, err)
			}
		}

		unit, err := r.builder.Build(ctx, job.CourseID, p.position, p.unit)
		if err != nil {
			return fmt.Errorf("build unit %d: %w", p.position, err)
		}
		if err := r.courses.CreateUnit(ctx, unit); err != nil {
			return fmt.Errorf("store unit %d: %w", p.position, err)
		}
		log.WithFields(logrus.Fields{"unit": p.position, "chapters": len(unit.Chapters)}).Info("Unit created")

		if err := r.jobs.Heartbeat(ctx, job.JobID, r.now()); err != nil {
			log.WithError(err).Warn("Failed to record heartbeat")
		}
		return nil
	})
}

// plan requests the plan and the cover image together and stores both.
func (r *Runner) plan(ctx context.Context, job *Job, g *outline.GenCourse) ([]PlannedUnit, error) {
	var (
		plan  []PlannedUnit
		image string
	)
	var eg errgroup.Group
	eg.Go(func() error {
		plan = r.planner.Plan(ctx, g)
		return nil
	})
	eg.Go(func() error {
		image = r.images.FindImage(ctx, g.Title, g.Description)
		return nil
	})
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.courses.UpdateImage(ctx, job.CourseID, image); err != nil {
		return nil, fmt.Errorf("store course image: %w", err)
	}
	if err := r.jobs.SavePlan(ctx, job.JobID, plan); err != nil {
		return nil, fmt.Errorf("store plan: %w", err)
	}
	return plan, nil
}
