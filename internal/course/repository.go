package course

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Ensure(ctx context.Context, c *Course) (*Course, bool, error)
	FindByID(ctx context.Context, courseID string) (*Course, error)
	Get(ctx context.Context, userID, courseID string) (*Course, error)
	GetWithContent(ctx context.Context, userID, courseID string) (*Course, error)
	ListByUser(ctx context.Context, userID string) ([]Course, error)
	ListOverview(ctx context.Context, userID string) ([]Course, error)
	UpdateImage(ctx context.Context, courseID, image string) error

	ListUnits(ctx context.Context, courseID string) ([]Unit, error)
	CreateUnit(ctx context.Context, u *Unit) error
	DeleteUnit(ctx context.Context, unitID string) error
	GetChapter(ctx context.Context, courseID, unitID, chapterID string) (*Chapter, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func orderedUnits(db *gorm.DB) *gorm.DB {
	return db.Order("units.position ASC")
}

func orderedChapters(db *gorm.DB) *gorm.DB {
	return db.Order("chapters.position ASC")
}

// Ensure returns the course row for c.CourseID, creating it from c when missing.
func (r *repository) Ensure(ctx context.Context, c *Course) (*Course, bool, error) {
	var existing Course
	res := r.db.WithContext(ctx).
		Where(Course{CourseID: c.CourseID}).
		Attrs(c).
		FirstOrCreate(&existing)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		found, err := r.FindByID(ctx, c.CourseID)
		return found, false, err
	}
	if res.Error != nil {
		return nil, false, res.Error
	}
	return &existing, res.RowsAffected > 0, nil
}

func (r *repository) FindByID(ctx context.Context, courseID string) (*Course, error) {
	var c Course
	if err := r.db.WithContext(ctx).First(&c, "course_id = ?", courseID).Error; err != nil {
		return nilIfNotFound[Course](err)
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, userID, courseID string) (*Course, error) {
	var c Course
	if err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&c).Error; err != nil {
		return nilIfNotFound[Course](err)
	}
	return &c, nil
}

func (r *repository) GetWithContent(ctx context.Context, userID, courseID string) (*Course, error) {
	var c Course
	if err := r.db.WithContext(ctx).
		Preload("Units", orderedUnits).
		Preload("Units.Chapters", orderedChapters).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&c).Error; err != nil {
		return nilIfNotFound[Course](err)
	}
	return &c, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Course, error) {
	var courses []Course
	if err := r.db.WithContext(ctx).
		Preload("Units", orderedUnits).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repository) ListOverview(ctx context.Context, userID string) ([]Course, error) {
	var courses []Course
	if err := r.db.WithContext(ctx).
		Preload("Units", orderedUnits).
		Preload("Units.Chapters", orderedChapters).
		Preload("Quiz").
		Preload("Quiz.Attempts", "user_id = ?", userID).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *repository) UpdateImage(ctx context.Context, courseID, image string) error {
	return r.db.WithContext(ctx).
		Model(&Course{}).
		Where("course_id = ?", courseID).
		Update("image", image).Error
}

func (r *repository) ListUnits(ctx context.Context, courseID string) ([]Unit, error) {
	var units []Unit
	if err := r.db.WithContext(ctx).
		Preload("Chapters", orderedChapters).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

// CreateUnit inserts the unit and its chapters in one transaction.
func (r *repository) CreateUnit(ctx context.Context, u *Unit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		chapters := u.Chapters
		u.Chapters = nil
		if err := tx.Create(u).Error; err != nil {
			u.Chapters = chapters
			return err
		}
		for i := range chapters {
			chapters[i].UnitID = u.UnitID
		}
		u.Chapters = chapters
		if len(chapters) == 0 {
			return nil
		}
		return tx.Create(&u.Chapters).Error
	})
}

func (r *repository) DeleteUnit(ctx context.Context, unitID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("unit_id = ?", unitID).Delete(&Chapter{}).Error; err != nil {
			return err
		}
		return tx.Where("unit_id = ?", unitID).Delete(&Unit{}).Error
	})
}

func (r *repository) GetChapter(ctx context.Context, courseID, unitID, chapterID string) (*Chapter, error) {
	var ch Chapter
	if err := r.db.WithContext(ctx).
		Joins("JOIN units ON units.unit_id = chapters.unit_id").
		Where("chapters.chapter_id = ? AND chapters.unit_id = ? AND units.course_id = ?", chapterID, unitID, courseID).
		First(&ch).Error; err != nil {
		return nilIfNotFound[Chapter](err)
	}
	return &ch, nil
}

func nilIfNotFound[T any](err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}
