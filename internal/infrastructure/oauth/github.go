package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/psyclinic/clinic-api/internal/core/domain"
)

const defaultAPIBaseURL = "https://api.github.com"

// GitHubConfig configures the GitHub provider. Endpoint and APIBaseURL default
// to github.com and are only overridden in tests.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
	Endpoint     *oauth2.Endpoint
	APIBaseURL   string
	Timeout      time.Duration
}

// GitHubProvider implements ports.OAuthProvider against GitHub.
type GitHubProvider struct {
	cfg     *oauth2.Config
	apiBase string
	timeout time.Duration
}

func NewGitHubProvider(c GitHubConfig) *GitHubProvider {
	endpoint := github.Endpoint
	if c.Endpoint != nil {
		endpoint = *c.Endpoint
	}
	apiBase := c.APIBaseURL
	if apiBase == "" {
		apiBase = defaultAPIBaseURL
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GitHubProvider{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.CallbackURL,
			Scopes:       []string{"user:email"},
			Endpoint:     endpoint,
		},
		apiBase: strings.TrimRight(apiBase, "/"),
		timeout: timeout,
	}
}

func (p *GitHubProvider) Name() string { return "github" }

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	HTMLURL   string `json:"html_url"`
	AvatarURL string `json:"avatar_url"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades code for a token and loads the user's profile. When the
// public profile hides the email, the primary verified address is used.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*domain.ExternalProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("github token exchange: %w", err)
	}
	client := p.cfg.Client(ctx, token)

	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("github profile has no id")
	}

	email := user.Email
	if email == "" {
		var emails []githubEmail
		if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
			return nil, err
		}
		email = primaryEmail(emails)
	}

	return &domain.ExternalProfile{
		ID:          strconv.FormatInt(user.ID, 10),
		Username:    user.Login,
		DisplayName: user.Name,
		Email:       email,
		ProfileURL:  user.HTMLURL,
		AvatarURL:   user.AvatarURL,
	}, nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("github request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("github request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github decode %s: %w", path, err)
	}
	return nil
}

func primaryEmail(emails []githubEmail) string {
	var fallback string
	for _, e := range emails {
		if !e.Verified {
			continue
		}
		if e.Primary {
			return e.Email
		}
		if fallback == "" {
			fallback = e.Email
		}
	}
	return fallback
}
