package quiz

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type QuizRepository interface {
	Create(ctx context.Context, q *Quiz) error
	GetByCourse(ctx context.Context, courseID string) (*Quiz, error)
	CreateAttempt(ctx context.Context, a *Attempt) error
	GetAttempt(ctx context.Context, quizID, userID string) (*Attempt, error)
}

type quizRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) Create(ctx context.Context, q *Quiz) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *quizRepository) GetByCourse(ctx context.Context, courseID string) (*Quiz, error) {
	var q Quiz
	if err := r.db.WithContext(ctx).First(&q, "course_id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *quizRepository) CreateAttempt(ctx context.Context, a *Attempt) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *quizRepository) GetAttempt(ctx context.Context, quizID, userID string) (*Attempt, error) {
	var a Attempt
	if err := r.db.WithContext(ctx).
		Where("quiz_id = ? AND user_id = ?", quizID, userID).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
