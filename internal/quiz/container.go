package quiz

import (
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/llm"
	"gorm.io/gorm"
)

type QuizContainer struct {
	Handler *Handler
}

func NewQuizContainer(db *gorm.DB, courses course.Repository, provider llm.Provider) *QuizContainer {
	repo := NewRepository(db)
	service := NewService(repo, courses, provider)
	handler := NewHandler(service)

	return &QuizContainer{
		Handler: handler,
	}
}
