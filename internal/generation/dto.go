package generation

import "time"

type ConfirmResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
}

type AcceptResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
	JobID    string `json:"job_id"`
	Started  bool   `json:"started"`
}

type UnitChapters struct {
	UnitID   string `json:"unit_id"`
	Chapters int    `json:"chapters"`
}

type Progress struct {
	Percent            int            `json:"percent"`
	UnitsCreated       int            `json:"unitsCreated"`
	CompletedUnits     int            `json:"completedUnits"`
	TotalIntendedUnits int            `json:"totalIntendedUnits"`
	TotalChapters      int            `json:"totalChapters"`
	ChaptersPerUnit    []UnitChapters `json:"chaptersPerUnit"`
}

type JobView struct {
	JobID       string     `json:"job_id"`
	Status      Status     `json:"status"`
	Stage       Stage      `json:"stage"`
	Attempts    int        `json:"attempts"`
	Error       string     `json:"error,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	HeartbeatAt *time.Time `json:"heartbeatAt,omitempty"`
	FinishedAt  *time.Time `json:"finishedAt,omitempty"`
}

const (
	StateGenerating = "generating"
	StateCompleted  = "completed"
	StateFailed     = "failed"
)

type StatusView struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	CourseID string   `json:"course_id"`
	UserID   string   `json:"user_id"`
	Progress Progress `json:"progress"`
	Job      *JobView `json:"job,omitempty"`
}

type AcknowledgeResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	CourseID string `json:"course_id"`
	UserID   string `json:"user_id"`
}
