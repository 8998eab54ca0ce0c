package gitrepo

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

const (
	EnvGitUser  = "GIT_USERNAME"
	EnvGitToken = "GIT_TOKEN"
	defaultUser = "git"
)

type Credentials struct {
	Username string
	Token    string
}

// CredentialsFromEnv reads the token and username from the named variables,
// falling back to GIT_TOKEN and GIT_USERNAME.
func CredentialsFromEnv(tokenEnv, userEnv string) Credentials {
	if strings.TrimSpace(tokenEnv) == "" {
		tokenEnv = EnvGitToken
	}
	if strings.TrimSpace(userEnv) == "" {
		userEnv = EnvGitUser
	}
	return Credentials{
		Username: strings.TrimSpace(os.Getenv(userEnv)),
		Token:    strings.TrimSpace(os.Getenv(tokenEnv)),
	}
}

type CredentialProvider struct {
	creds Credentials
}

func NewCredentialProvider(creds Credentials) *CredentialProvider {
	return &CredentialProvider{creds: Credentials{
		Username: strings.TrimSpace(creds.Username),
		Token:    strings.TrimSpace(creds.Token),
	}}
}

// Resolve builds the auth method for one remote URL. A token is mandatory
// for every transport; only http(s) remotes carry it as basic auth.
func (p *CredentialProvider) Resolve(rawURL, userHint string) (transport.AuthMethod, error) {
	if p == nil || p.creds.Token == "" {
		return nil, domain.ErrNoCredentials
	}

	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("remote URL is empty: %w", domain.ErrRemoteNotFound)
	}

	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote URL: %w", err)
	}

	switch ep.Protocol {
	case "http", "https":
		user := firstNonEmpty(p.creds.Username, userHint, defaultUser)
		return &http.BasicAuth{
			Username: user,
			Password: p.creds.Token,
		}, nil
	default:
		return nil, nil
	}
}

func (p *CredentialProvider) authForURL(rawURL string) (transport.AuthMethod, error) {
	userHint := ""
	if ep, err := transport.NewEndpoint(strings.TrimSpace(rawURL)); err == nil {
		userHint = ep.User
	}
	return p.Resolve(rawURL, userHint)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
