// Package authflow runs the OAuth2 authorization-code flow for both
// providers and persists the resulting tokens in the state directory.
// Token refresh goes through a persisting token source so rotated refresh
// tokens survive across invocations.
package authflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// Credentials is one provider's OAuth2 application registration.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// providerScopes and endpoints for the two supported providers.
var providerAuth = map[string]struct {
	endpoint oauth2.Endpoint
	scopes   []string
}{
	"google": {
		endpoint: google.Endpoint,
		scopes:   []string{"https://www.googleapis.com/auth/tasks"},
	},
	"microsoft": {
		endpoint: microsoft.AzureADEndpoint("common"),
		scopes:   []string{"Tasks.ReadWrite", "offline_access"},
	},
}

// oauthConfig builds the provider's oauth2.Config for the given redirect.
func oauthConfig(provider string, creds Credentials, redirectURL string) (*oauth2.Config, error) {
	auth, ok := providerAuth[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     auth.endpoint,
		Scopes:       auth.scopes,
		RedirectURL:  redirectURL,
	}, nil
}

// Authorize runs the interactive flow: it listens on a random localhost
// port, prints the consent URL, waits for the redirect, exchanges the
// code, and stores the token in the state directory. The printed URL is
// returned through onURL so callers control presentation.
func Authorize(ctx context.Context, stateDir, provider string, creds Credentials, onURL func(url string)) error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("starting redirect listener: %w", err)
	}
	defer func() { _ = listener.Close() }()

	redirectURL := fmt.Sprintf("http://%s/callback", listener.Addr().String())
	cfg, err := oauthConfig(provider, creds, redirectURL)
	if err != nil {
		return err
	}

	stateToken, err := randomState()
	if err != nil {
		return err
	}

	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != stateToken {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("oauth state mismatch")}
			return
		}
		if errMsg := q.Get("error"); errMsg != "" {
			http.Error(w, "authorization denied", http.StatusBadRequest)
			results <- result{err: fmt.Errorf("authorization denied: %s", errMsg)}
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this tab and return to the terminal.")
		results <- result{code: q.Get("code")}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = srv.Serve(listener) }()
	defer func() { _ = srv.Close() }()

	authURL := cfg.AuthCodeURL(stateToken, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if onURL != nil {
		onURL(authURL)
	}

	var res result
	select {
	case res = <-results:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.err != nil {
		return res.err
	}

	token, err := cfg.Exchange(ctx, res.code)
	if err != nil {
		return fmt.Errorf("exchanging authorization code: %w", err)
	}
	if err := saveToken(stateDir, provider, token); err != nil {
		return err
	}
	log.WithField("provider", provider).Info("authorization complete")
	return nil
}

// TokenSource returns an auto-refreshing token source for the provider,
// persisting rotated tokens back to the state directory. It fails when
// the provider was never authorized.
func TokenSource(ctx context.Context, stateDir, provider string, creds Credentials) (oauth2.TokenSource, error) {
	cfg, err := oauthConfig(provider, creds, "")
	if err != nil {
		return nil, err
	}
	token, err := loadToken(stateDir, provider)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("provider %q not authorized; run the auth command first", provider)
	}
	return &persistingSource{
		stateDir: stateDir,
		provider: provider,
		src:      cfg.TokenSource(ctx, token),
		last:     token,
	}, nil
}

// Authorized reports whether a stored token exists for the provider.
func Authorized(stateDir, provider string) (bool, error) {
	token, err := loadToken(stateDir, provider)
	if err != nil {
		return false, err
	}
	return token != nil, nil
}

// persistingSource wraps an oauth2.TokenSource and writes every rotated
// token back to tokens.json.
type persistingSource struct {
	stateDir string
	provider string
	src      oauth2.TokenSource
	last     *oauth2.Token
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if p.last == nil || token.AccessToken != p.last.AccessToken || token.RefreshToken != p.last.RefreshToken {
		if err := saveToken(p.stateDir, p.provider, token); err != nil {
			// A failed persist is not fatal for this call; the refresh
			// just repeats next invocation.
			log.WithError(err).WithField("provider", p.provider).Warn("persisting refreshed token failed")
		}
		p.last = token
	}
	return token, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
