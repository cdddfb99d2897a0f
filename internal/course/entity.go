package course

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	CourseID  string        `gorm:"primaryKey;size:10" json:"course_id"`
	UserID    string        `gorm:"size:10;not null;index" json:"user_id"`
	GenID     string        `gorm:"size:36;not null" json:"genId"`
	Title     string        `gorm:"not null" json:"title"`
	Image     string        `json:"image"`
	Progress  int           `gorm:"not null;default:0" json:"progress"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Units     []Unit        `gorm:"foreignKey:CourseID;references:CourseID;constraint:OnDelete:CASCADE" json:"units,omitempty"`
	Quiz      *QuizOverview `gorm:"foreignKey:CourseID;references:CourseID;-:migration" json:"quiz,omitempty"`
}

type Unit struct {
	UnitID    string    `gorm:"primaryKey;size:36" json:"unit_id"`
	CourseID  string    `gorm:"size:10;not null;uniqueIndex:idx_unit_course_position" json:"course_id"`
	Position  int       `gorm:"not null;uniqueIndex:idx_unit_course_position" json:"position"`
	Name      string    `gorm:"not null" json:"name"`
	Progress  int       `gorm:"not null;default:0" json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
	Chapters  []Chapter `gorm:"foreignKey:UnitID;references:UnitID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
}

func (u *Unit) BeforeCreate(tx *gorm.DB) error {
	if u.UnitID == "" {
		u.UnitID = uuid.NewString()
	}
	return nil
}

type Chapter struct {
	ChapterID       string    `gorm:"primaryKey;size:36" json:"chapter_id"`
	UnitID          string    `gorm:"size:36;not null;index" json:"unit_id"`
	Position        int       `gorm:"not null" json:"position"`
	Name            string    `gorm:"not null" json:"name"`
	YoutubeVidLink  string    `json:"youtubeVidLink"`
	ReadingMaterial string    `gorm:"type:text" json:"readingMaterial"`
	IsCompleted     bool      `gorm:"not null;default:false" json:"isCompleted"`
	CreatedAt       time.Time `json:"createdAt"`
}

func (c *Chapter) BeforeCreate(tx *gorm.DB) error {
	if c.ChapterID == "" {
		c.ChapterID = uuid.NewString()
	}
	return nil
}

// QuizOverview and AttemptOverview are read-only views of the quiz tables used
// when listing a user's courses.
type QuizOverview struct {
	QuizID   string            `gorm:"primaryKey" json:"quiz_id"`
	CourseID string            `json:"course_id"`
	Attempts []AttemptOverview `gorm:"foreignKey:QuizID;references:QuizID" json:"attempts"`
}

func (QuizOverview) TableName() string { return "quizzes" }

type AttemptOverview struct {
	AttemptID      string    `gorm:"primaryKey" json:"attempt_id"`
	QuizID         string    `json:"quiz_id"`
	UserID         string    `json:"user_id"`
	Score          int       `json:"score"`
	CorrectCount   int       `json:"correctCount"`
	TotalQuestions int       `json:"totalQuestions"`
	CompletedAt    time.Time `json:"completedAt"`
}

func (AttemptOverview) TableName() string { return "quiz_attempts" }
