package user

type SignupDTO struct {
	Name          string `json:"name" validate:"max=100"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required_without=OAuthProvider,max=72"`
	OAuthProvider string `json:"oauthProvider" validate:"omitempty,oneof=google github"`
}

type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
