package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QuestionCount = 5
	OptionCount   = 4
)

type Question struct {
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

type Quiz struct {
	QuizID    string                        `gorm:"primaryKey;size:36" json:"quiz_id"`
	CourseID  string                        `gorm:"size:10;not null;uniqueIndex" json:"course_id"`
	Questions datatypes.JSONSlice[Question] `gorm:"not null" json:"questions"`
	CreatedAt time.Time                     `json:"createdAt"`
	Attempts  []Attempt                     `gorm:"foreignKey:QuizID;references:QuizID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Quiz) TableName() string { return "quizzes" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.QuizID == "" {
		q.QuizID = uuid.NewString()
	}
	return nil
}

// Attempt is a graded submission. A user has at most one per quiz.
type Attempt struct {
	AttemptID      string                   `gorm:"primaryKey;size:36" json:"attempt_id"`
	QuizID         string                   `gorm:"size:36;not null;uniqueIndex:idx_attempt_quiz_user" json:"quiz_id"`
	UserID         string                   `gorm:"size:10;not null;uniqueIndex:idx_attempt_quiz_user" json:"user_id"`
	Answers        datatypes.JSONSlice[int] `gorm:"not null" json:"answers"`
	Score          int                      `gorm:"not null" json:"score"`
	CorrectCount   int                      `gorm:"not null" json:"correctCount"`
	TotalQuestions int                      `gorm:"not null" json:"totalQuestions"`
	CompletedAt    time.Time                `gorm:"autoCreateTime" json:"completedAt"`
}

func (Attempt) TableName() string { return "quiz_attempts" }

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.AttemptID == "" {
		a.AttemptID = uuid.NewString()
	}
	return nil
}
