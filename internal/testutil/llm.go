package testutil

import (
	"context"
	"sync"

	"github.com/grivax/grivax-api/internal/llm"
)

// Provider is a scripted llm.Provider. Reply picks the answer for each call;
// Requests records every request it saw.
type Provider struct {
	mu       sync.Mutex
	Reply    func(req llm.Request) (string, error)
	Requests []llm.Request
}

func NewProvider(reply func(req llm.Request) (string, error)) *Provider {
	return &Provider{Reply: reply}
}

// Static answers every call with text.
func Static(text string) *Provider {
	return NewProvider(func(llm.Request) (string, error) { return text, nil })
}

// Failing returns err on every call.
func Failing(err error) *Provider {
	return NewProvider(func(llm.Request) (string, error) { return "", err })
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (string, error) {
	p.mu.Lock()
	p.Requests = append(p.Requests, req)
	p.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.Reply(req)
}

// Calls returns how many requests carried the given purpose.
func (p *Provider) Calls(purpose string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, r := range p.Requests {
		if r.Purpose == purpose {
			n++
		}
	}
	return n
}
