// Package recaptcha relays reCAPTCHA v3 tokens to Google's siteverify endpoint.
package recaptcha

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/grivax/grivax-api/internal/config"
)

const (
	DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	MinScore         = 0.5
)

type Result struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	ErrorCodes []string `json:"errorCodes,omitempty"`
}

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) (*Result, error)
}

type verifier struct {
	client    *resty.Client
	secret    string
	verifyURL string
}

func NewVerifier(secret, verifyURL string, timeout time.Duration) Verifier {
	if verifyURL == "" {
		verifyURL = DefaultVerifyURL
	}
	return &verifier{
		client:    resty.New().SetTimeout(timeout),
		secret:    secret,
		verifyURL: verifyURL,
	}
}

type siteVerifyResponse struct {
	Success    bool     `json:"success"`
	Score      float64  `json:"score"`
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Verify passes only when Google accepts the token with a score above MinScore.
func (v *verifier) Verify(ctx context.Context, token, remoteIP string) (*Result, error) {
	form := map[string]string{
		"secret":   v.secret,
		"response": token,
	}
	if remoteIP != "" {
		form["remoteip"] = remoteIP
	}

	var out siteVerifyResponse
	resp, err := v.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&out).
		Post(v.verifyURL)
	if err != nil {
		return nil, fmt.Errorf("siteverify request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("siteverify status %d", resp.StatusCode())
	}

	res := &Result{Success: out.Success && out.Score > MinScore, Score: out.Score}
	if !res.Success {
		res.ErrorCodes = out.ErrorCodes
		config.WithContext(ctx).WithField("score", out.Score).WithField("error_codes", out.ErrorCodes).Info("reCAPTCHA rejected")
	}
	return res, nil
}
