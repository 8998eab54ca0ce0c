package gitrepo

import (
	"errors"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/osvaldoandrade/wikisync/internal/domain"
)

func TestCredentialProviderResolve(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		url      string
		hint     string
		wantUser string
		wantNil  bool
		wantErr  error
	}{
		{name: "no token", creds: Credentials{}, url: "https://example.com/wiki.git", wantErr: domain.ErrNoCredentials},
		{name: "blank token", creds: Credentials{Token: "   "}, url: "https://example.com/wiki.git", wantErr: domain.ErrNoCredentials},
		{name: "explicit user", creds: Credentials{Username: "alice", Token: "t"}, url: "https://example.com/wiki.git", hint: "bob", wantUser: "alice"},
		{name: "url user", creds: Credentials{Token: "t"}, url: "https://example.com/wiki.git", hint: "bob", wantUser: "bob"},
		{name: "default user", creds: Credentials{Token: "t"}, url: "https://example.com/wiki.git", wantUser: "git"},
		{name: "file remote", creds: Credentials{Token: "t"}, url: "/srv/wiki.git", wantNil: true},
		{name: "ssh remote", creds: Credentials{Token: "t"}, url: "git@example.com:wiki.git", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, err := NewCredentialProvider(tt.creds).Resolve(tt.url, tt.hint)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if tt.wantNil {
				if auth != nil {
					t.Fatalf("expected no auth method, got %T", auth)
				}
				return
			}
			basic, ok := auth.(*http.BasicAuth)
			if !ok {
				t.Fatalf("expected basic auth, got %T", auth)
			}
			if basic.Username != tt.wantUser {
				t.Fatalf("expected user %q, got %q", tt.wantUser, basic.Username)
			}
			if basic.Password != "t" {
				t.Fatalf("expected token as password")
			}
		})
	}
}

func TestAuthForURLUsesURLUser(t *testing.T) {
	auth, err := NewCredentialProvider(Credentials{Token: "t"}).authForURL("https://carol@example.com/wiki.git")
	if err != nil {
		t.Fatalf("auth: %v", err)
	}
	if got := auth.(*http.BasicAuth).Username; got != "carol" {
		t.Fatalf("expected carol, got %q", got)
	}
}

func TestCredentialsFromEnv(t *testing.T) {
	t.Setenv("WIKI_TOKEN", " secret ")
	t.Setenv(EnvGitUser, "dave")
	creds := CredentialsFromEnv("WIKI_TOKEN", "")
	if creds.Token != "secret" || creds.Username != "dave" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}
