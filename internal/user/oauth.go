package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
)

var ErrNoVerifiedEmail = errors.New("provider returned no verified email")

type Profile struct {
	Email string
	Name  string
}

// OAuthProvider is one sign-in provider: its oauth2 config and how to read the
// signed-in profile with the exchanged token.
type OAuthProvider struct {
	Name         string
	Config       *oauth2.Config
	FetchProfile func(ctx context.Context, client *resty.Client) (*Profile, error)
}

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "google",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		FetchProfile: GoogleProfile("https://www.googleapis.com/oauth2/v2/userinfo"),
	}
}

func NewGithubProvider(clientID, clientSecret, redirectURL string) *OAuthProvider {
	return &OAuthProvider{
		Name: "github",
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		FetchProfile: GithubProfile("https://api.github.com"),
	}
}

func GoogleProfile(userInfoURL string) func(ctx context.Context, client *resty.Client) (*Profile, error) {
	return func(ctx context.Context, client *resty.Client) (*Profile, error) {
		var out struct {
			Email         string `json:"email"`
			Name          string `json:"name"`
			VerifiedEmail bool   `json:"verified_email"`
		}
		resp, err := client.R().SetContext(ctx).SetResult(&out).Get(userInfoURL)
		if err != nil {
			return nil, fmt.Errorf("fetch google profile: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch google profile: status %d", resp.StatusCode())
		}
		if out.Email == "" || !out.VerifiedEmail {
			return nil, ErrNoVerifiedEmail
		}
		return &Profile{Email: out.Email, Name: out.Name}, nil
	}
}

func GithubProfile(apiBase string) func(ctx context.Context, client *resty.Client) (*Profile, error) {
	return func(ctx context.Context, client *resty.Client) (*Profile, error) {
		var u struct {
			Login string `json:"login"`
			Name  string `json:"name"`
			Email string `json:"email"`
		}
		resp, err := client.R().SetContext(ctx).SetResult(&u).Get(apiBase + "/user")
		if err != nil {
			return nil, fmt.Errorf("fetch github profile: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch github profile: status %d", resp.StatusCode())
		}

		name := u.Name
		if name == "" {
			name = u.Login
		}
		if u.Email != "" {
			return &Profile{Email: u.Email, Name: name}, nil
		}

		// Private emails are only listed on /user/emails.
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		resp, err = client.R().SetContext(ctx).SetResult(&emails).Get(apiBase + "/user/emails")
		if err != nil {
			return nil, fmt.Errorf("fetch github emails: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("fetch github emails: status %d", resp.StatusCode())
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				return &Profile{Email: e.Email, Name: name}, nil
			}
		}
		return nil, ErrNoVerifiedEmail
	}
}
