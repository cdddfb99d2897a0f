package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/metrics"
	gobreaker "github.com/sony/gobreaker/v2"
	"google.golang.org/genai"
)

type geminiProvider struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[string]
}

func NewGeminiProvider(ctx context.Context, apiKey, model string, timeout time.Duration) (Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &geminiProvider{
		client:  client,
		model:   model,
		timeout: timeout,
		breaker: NewBreaker[string]("gemini"),
	}, nil
}

func (p *geminiProvider) Complete(ctx context.Context, req Request) (string, error) {
	log := config.WithContext(ctx).WithField("purpose", req.Purpose)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: req.MaxTokens,
		Temperature:     req.Temperature,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := genai.Role(genai.RoleUser)
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}

	text, err := p.breaker.Execute(func() (string, error) {
		result, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
		if err != nil {
			return "", err
		}
		raw := result.Text()
		if raw == "" {
			return "", ErrEmptyResponse
		}
		return raw, nil
	})
	if err != nil {
		metrics.LLMRequests.WithLabelValues(req.Purpose, "error").Inc()
		log.WithError(err).Error("Model call failed")
		return "", fmt.Errorf("generate content: %w", err)
	}

	metrics.LLMRequests.WithLabelValues(req.Purpose, "ok").Inc()
	log.WithField("chars", len(text)).Debug("Model call succeeded")
	return text, nil
}
