package llm

import (
	"context"
	"errors"
)

var ErrProviderUnavailable = errors.New("language model is not configured")

type unavailable struct{}

// Unavailable fails every call, so callers take their fallback paths.
func Unavailable() Provider { return unavailable{} }

func (unavailable) Complete(context.Context, Request) (string, error) {
	return "", ErrProviderUnavailable
}
