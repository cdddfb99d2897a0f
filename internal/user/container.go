package user

import (
	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/config"
	"gorm.io/gorm"
)

type UserContainer struct {
	Handler *Handler
	Service UserService
}

func NewUserContainer(db *gorm.DB, settings *config.Settings, session *auth.Handler, cipher *config.Cipher) *UserContainer {
	var providers []*OAuthProvider
	if settings.GoogleClientID != "" {
		providers = append(providers, NewGoogleProvider(settings.GoogleClientID, settings.GoogleClientSecret, settings.GoogleRedirectURL))
	}
	if settings.GithubClientID != "" {
		providers = append(providers, NewGithubProvider(settings.GithubClientID, settings.GithubClientSecret, settings.GithubRedirectURL))
	}

	repo := NewRepository(db)
	service := NewService(repo)
	handler := NewHandler(service, session, cipher, settings.BaseURL, providers...)

	return &UserContainer{
		Handler: handler,
		Service: service,
	}
}
