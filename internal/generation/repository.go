package generation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, jobID string) (*Job, error)
	GetByCourse(ctx context.Context, courseID string) (*Job, error)
	Reset(ctx context.Context, jobID string) error
	Claim(ctx context.Context, jobID string, now time.Time) (bool, error)
	SavePlan(ctx context.Context, jobID string, plan []PlannedUnit) error
	Heartbeat(ctx context.Context, jobID string, now time.Time) error
	Complete(ctx context.Context, jobID string, now time.Time) error
	Fail(ctx context.Context, jobID, reason string, retry bool, now time.Time) error
	Release(ctx context.Context, jobID string) error
	RequeueStale(ctx context.Context, before time.Time, maxAttempts int) (requeued, failed int64, err error)
	ListQueued(ctx context.Context, limit int) ([]Job, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, j *Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *repository) Get(ctx context.Context, jobID string) (*Job, error) {
	return r.first(ctx, "job_id = ?", jobID)
}

func (r *repository) GetByCourse(ctx context.Context, courseID string) (*Job, error) {
	return r.first(ctx, "course_id = ?", courseID)
}

// Reset puts a failed job back in the queue with a fresh attempt budget.
func (r *repository) Reset(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).
		Model(&Job{}).
		Where("job_id = ? AND status = ?", jobID, StatusFailed).
		Updates(map[string]interface{}{
			"status":      StatusQueued,
			"attempts":    0,
			"error":       "",
			"finished_at": nil,
		}).Error
}

// Claim moves a queued job to running. Only one caller can win; the others get false.
func (r *repository) Claim(ctx context.Context, jobID string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Job{}).
		Where("job_id = ? AND status = ?", jobID, StatusQueued).
		Updates(map[string]interface{}{
			"status":       StatusRunning,
			"attempts":     gorm.Expr("attempts + 1"),
			"started_at":   now,
			"heartbeat_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) SavePlan(ctx context.Context, jobID string, plan []PlannedUnit) error {
	return r.db.WithContext(ctx).
		Model(&Job{JobID: jobID}).
		Select("plan", "stage").
		Updates(&Job{Plan: plan, Stage: StageUnits}).Error
}

func (r *repository) Heartbeat(ctx context.Context, jobID string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Job{}).
		Where("job_id = ? AND status = ?", jobID, StatusRunning).
		Update("heartbeat_at", now).Error
}

func (r *repository) Complete(ctx context.Context, jobID string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Job{}).
		Where("job_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":      StatusCompleted,
			"stage":       StageDone,
			"error":       "",
			"finished_at": now,
		}).Error
}

// Fail ends a running attempt. With retry the job returns to the queue,
// otherwise it is marked failed for good.
func (r *repository) Fail(ctx context.Context, jobID, reason string, retry bool, now time.Time) error {
	updates := map[string]interface{}{
		"status": StatusFailed,
		"error":  reason,
	}
	if retry {
		updates["status"] = StatusQueued
	} else {
		updates["finished_at"] = now
	}
	return r.db.WithContext(ctx).
		Model(&Job{}).
		Where("job_id = ? AND status = ?", jobID, StatusRunning).
		Updates(updates).Error
}

// Release returns a running job to the queue and gives back the attempt its
// claim consumed.
func (r *repository) Release(ctx context.Context, jobID string) error {
	return r.db.WithContext(ctx).
		Model(&Job{}).
		Where("job_id = ? AND status = ?", jobID, StatusRunning).
		Updates(map[string]interface{}{
			"status":   StatusQueued,
			"attempts": gorm.Expr("CASE WHEN attempts > 0 THEN attempts - 1 ELSE 0 END"),
		}).Error
}

// RequeueStale recovers running jobs whose heartbeat is older than before. Jobs
// out of attempts are failed instead.
func (r *repository) RequeueStale(ctx context.Context, before time.Time, maxAttempts int) (int64, int64, error) {
	var requeued, failed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Job{}).
			Where("status = ? AND heartbeat_at < ? AND attempts >= ?", StatusRunning, before, maxAttempts).
			Updates(map[string]interface{}{
				"status":      StatusFailed,
				"error":       "worker stopped responding",
				"finished_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		failed = res.RowsAffected

		res = tx.Model(&Job{}).
			Where("status = ? AND heartbeat_at < ?", StatusRunning, before).
			Updates(map[string]interface{}{
				"status": StatusQueued,
				"error":  "worker stopped responding",
			})
		if res.Error != nil {
			return res.Error
		}
		requeued = res.RowsAffected
		return nil
	})
	return requeued, failed, err
}

func (r *repository) ListQueued(ctx context.Context, limit int) ([]Job, error) {
	var jobs []Job
	if err := r.db.WithContext(ctx).
		Where("status = ?", StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *repository) first(ctx context.Context, query string, args ...interface{}) (*Job, error) {
	var j Job
	if err := r.db.WithContext(ctx).Where(query, args...).First(&j).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &j, nil
}
