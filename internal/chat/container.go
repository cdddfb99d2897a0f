package chat

import "github.com/grivax/grivax-api/internal/llm"

type ChatContainer struct {
	Handler *Handler
}

func NewChatContainer(provider llm.Provider) *ChatContainer {
	service := NewService(provider)
	handler := NewHandler(service)

	return &ChatContainer{
		Handler: handler,
	}
}
