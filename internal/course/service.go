package course

import (
	"context"
	"errors"
	"fmt"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrChapterNotFound = errors.New("chapter not found")
)

type Service interface {
	ListByUser(ctx context.Context, userID string) ([]Course, error)
	Overview(ctx context.Context, userID string) ([]Course, error)
	Get(ctx context.Context, userID, courseID string) (*Course, error)
	CompleteChapter(ctx context.Context, userID, courseID, unitID, chapterID string) (*CompletionResult, error)
	ChapterStatus(ctx context.Context, userID, courseID, unitID, chapterID string) (*ChapterStatus, error)
}

type service struct {
	repo Repository
	db   *gorm.DB
}

func NewService(db *gorm.DB, repo Repository) Service {
	return &service{repo: repo, db: db}
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]Course, error) {
	courses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list courses")
		return nil, err
	}
	if courses == nil {
		courses = []Course{}
	}
	return courses, nil
}

func (s *service) Overview(ctx context.Context, userID string) ([]Course, error) {
	courses, err := s.repo.ListOverview(ctx, userID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list course overview")
		return nil, err
	}
	if courses == nil {
		courses = []Course{}
	}
	for i := range courses {
		applyProgress(&courses[i])
	}
	return courses, nil
}

func (s *service) Get(ctx context.Context, userID, courseID string) (*Course, error) {
	c, err := s.repo.GetWithContent(ctx, userID, courseID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to get course")
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}
	applyProgress(c)
	return c, nil
}

// CompleteChapter marks the chapter completed and stores the unit and course
// percentages recomputed from chapter rows, all in one transaction.
func (s *service) CompleteChapter(ctx context.Context, userID, courseID, unitID, chapterID string) (*CompletionResult, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"course_id":  courseID,
		"chapter_id": chapterID,
	})

	var result CompletionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c Course
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.Where("course_id = ? AND user_id = ?", courseID, userID).First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourseNotFound
			}
			return err
		}

		var ch Chapter
		if err := tx.
			Joins("JOIN units ON units.unit_id = chapters.unit_id").
			Where("chapters.chapter_id = ? AND chapters.unit_id = ? AND units.course_id = ?", chapterID, unitID, courseID).
			First(&ch).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChapterNotFound
			}
			return err
		}

		if !ch.IsCompleted {
			if err := tx.Model(&Chapter{}).Where("chapter_id = ?", ch.ChapterID).Update("is_completed", true).Error; err != nil {
				return fmt.Errorf("mark chapter completed: %w", err)
			}
			ch.IsCompleted = true
		}

		var units []Unit
		if err := tx.Preload("Chapters").Where("course_id = ?", courseID).Find(&units).Error; err != nil {
			return err
		}

		unitProgress := 0
		for _, u := range units {
			p := UnitProgress(u.Chapters)
			if u.UnitID == unitID {
				unitProgress = p
			}
			if p == u.Progress {
				continue
			}
			if err := tx.Model(&Unit{}).Where("unit_id = ?", u.UnitID).Update("progress", p).Error; err != nil {
				return fmt.Errorf("store unit progress: %w", err)
			}
		}

		courseProgress := CourseProgress(units)
		if err := tx.Model(&Course{}).Where("course_id = ?", courseID).Update("progress", courseProgress).Error; err != nil {
			return fmt.Errorf("store course progress: %w", err)
		}

		result = CompletionResult{
			Success:        true,
			Message:        "Chapter marked as completed",
			Chapter:        &ch,
			UnitProgress:   unitProgress,
			CourseProgress: courseProgress,
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrCourseNotFound) && !errors.Is(err, ErrChapterNotFound) {
			log.WithError(err).Error("Failed to update chapter completion")
		}
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"unit_progress":   result.UnitProgress,
		"course_progress": result.CourseProgress,
	}).Info("Chapter completed")
	return &result, nil
}

func (s *service) ChapterStatus(ctx context.Context, userID, courseID, unitID, chapterID string) (*ChapterStatus, error) {
	c, err := s.repo.Get(ctx, userID, courseID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to get course")
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}

	ch, err := s.repo.GetChapter(ctx, courseID, unitID, chapterID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to get chapter")
		return nil, err
	}
	if ch == nil {
		return nil, ErrChapterNotFound
	}
	return &ChapterStatus{Success: true, IsCompleted: ch.IsCompleted}, nil
}
