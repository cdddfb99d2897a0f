package outline

import "github.com/grivax/grivax-api/internal/llm"

type OutlineContainer struct {
	Handler *Handler
	Service Service
}

func NewOutlineContainer(repo Repository, provider llm.Provider, starter Starter) *OutlineContainer {
	service := NewService(repo, provider, starter)
	return &OutlineContainer{
		Handler: NewHandler(service),
		Service: service,
	}
}
