package generation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Stage string

const (
	StagePlan  Stage = "plan"
	StageUnits Stage = "units"
	StageDone  Stage = "done"
)

// Job is the durable record of one course's content generation. The row, not
// any in-flight message, decides what runs next.
type Job struct {
	JobID       string                           `gorm:"primaryKey;size:36" json:"job_id"`
	CourseID    string                           `gorm:"size:10;not null;uniqueIndex" json:"course_id"`
	UserID      string                           `gorm:"size:10;not null;index" json:"user_id"`
	GenID       string                           `gorm:"size:36;not null" json:"gen_id"`
	Status      Status                           `gorm:"size:16;not null;index" json:"status"`
	Stage       Stage                            `gorm:"size:16;not null" json:"stage"`
	Attempts    int                              `gorm:"not null;default:0" json:"attempts"`
	Error       string                           `gorm:"type:text" json:"error,omitempty"`
	Plan        datatypes.JSONSlice[PlannedUnit] `json:"-"`
	HeartbeatAt *time.Time                       `json:"heartbeatAt,omitempty"`
	StartedAt   *time.Time                       `json:"startedAt,omitempty"`
	FinishedAt  *time.Time                       `json:"finishedAt,omitempty"`
	CreatedAt   time.Time                        `json:"createdAt"`
	UpdatedAt   time.Time                        `json:"updatedAt"`
}

func (Job) TableName() string { return "generation_jobs" }

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.JobID == "" {
		j.JobID = uuid.NewString()
	}
	return nil
}

// PlannedUnit is one unit of the detailed course plan, kept on the job so a
// retried attempt builds the same units.
type PlannedUnit struct {
	UnitNumber  int              `json:"unitNumber"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Chapters    []PlannedChapter `json:"chapters"`
}

type PlannedChapter struct {
	ChapterNumber      int      `json:"chapterNumber"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	EstimatedTime      string   `json:"estimatedTime"`
	LearningPoints     []string `json:"learningPoints"`
	Resources          []string `json:"resources"`
	YoutubeSearchQuery string   `json:"youtubeSearchQuery"`
}
