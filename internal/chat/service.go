package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/llm"
)

const (
	chatMaxTokens   = 1000
	chatTemperature = float32(0.7)
)

var ErrNoMessages = errors.New("no messages to reply to")

const systemPrompt = `You are a helpful assistant for Grivax, an educational platform where learners generate and follow AI-built courses.
Provide concise, accurate and friendly answers. If you are unsure about something, say so.`

type Service interface {
	Reply(ctx context.Context, messages []MessageDTO) (string, error)
}

type service struct {
	provider llm.Provider
}

func NewService(provider llm.Provider) Service {
	return &service{provider: provider}
}

func (s *service) Reply(ctx context.Context, messages []MessageDTO) (string, error) {
	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		history = append(history, llm.Message{Role: mapRole(m.Role), Content: m.Content})
	}
	if len(history) == 0 {
		return "", ErrNoMessages
	}

	temperature := chatTemperature
	reply, err := s.provider.Complete(ctx, llm.Request{
		Purpose:     "chat",
		System:      systemPrompt,
		Messages:    history,
		MaxTokens:   chatMaxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Chat completion failed")
		return "", err
	}
	return reply, nil
}

// mapRole keeps assistant turns and treats every other role as the user.
func mapRole(role string) llm.Role {
	if role == string(llm.RoleAssistant) {
		return llm.RoleAssistant
	}
	return llm.RoleUser
}
