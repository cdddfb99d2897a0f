package outline

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, g *GenCourse) error
	GetByCourse(ctx context.Context, userID, courseID string) (*GenCourse, error)
	GetByID(ctx context.Context, userID, courseID, id string) (*GenCourse, error)
	FindByCourseID(ctx context.Context, courseID string) (*GenCourse, error)
	Update(ctx context.Context, g *GenCourse) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, g *GenCourse) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *repository) GetByCourse(ctx context.Context, userID, courseID string) (*GenCourse, error) {
	return r.first(ctx, "user_id = ? AND course_id = ?", userID, courseID)
}

func (r *repository) GetByID(ctx context.Context, userID, courseID, id string) (*GenCourse, error) {
	return r.first(ctx, "id = ? AND user_id = ? AND course_id = ?", id, userID, courseID)
}

func (r *repository) FindByCourseID(ctx context.Context, courseID string) (*GenCourse, error) {
	return r.first(ctx, "course_id = ?", courseID)
}

func (r *repository) Update(ctx context.Context, g *GenCourse) error {
	return r.db.WithContext(ctx).
		Model(&GenCourse{}).
		Where("id = ?", g.ID).
		Updates(map[string]interface{}{
			"title":       g.Title,
			"description": g.Description,
			"modules":     g.Modules,
		}).Error
}

func (r *repository) first(ctx context.Context, query string, args ...interface{}) (*GenCourse, error) {
	var g GenCourse
	if err := r.db.WithContext(ctx).Where(query, args...).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}
