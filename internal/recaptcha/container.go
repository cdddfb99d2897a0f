package recaptcha

import "time"

const verifyTimeout = 5 * time.Second

type RecaptchaContainer struct {
	Handler  *Handler
	Verifier Verifier
}

func NewRecaptchaContainer(secret string) *RecaptchaContainer {
	verifier := NewVerifier(secret, DefaultVerifyURL, verifyTimeout)
	return &RecaptchaContainer{
		Handler:  NewHandler(verifier),
		Verifier: verifier,
	}
}
