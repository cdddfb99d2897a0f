// Package llm wraps the language-model API used for outlines, plans, reading
// material, quizzes and the support chat.
package llm

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("empty response from model")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Request is one completion call. Purpose labels the call in logs and metrics.
type Request struct {
	Purpose     string
	System      string
	Messages    []Message
	MaxTokens   int32
	Temperature *float32
}

// Prompt builds a single-turn request.
func Prompt(purpose, text string, maxTokens int32) Request {
	return Request{
		Purpose:   purpose,
		Messages:  []Message{{Role: RoleUser, Content: text}},
		MaxTokens: maxTokens,
	}
}

type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}
