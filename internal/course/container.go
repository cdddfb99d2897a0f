package course

import "gorm.io/gorm"

type CourseContainer struct {
	Handler *Handler
	Service Service
	Repo    Repository
}

func NewCourseContainer(db *gorm.DB) *CourseContainer {
	repo := NewRepository(db)
	service := NewService(db, repo)

	return &CourseContainer{
		Handler: NewHandler(service),
		Service: service,
		Repo:    repo,
	}
}
