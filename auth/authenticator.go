package auth

import (
	"fmt"
	"time"
	"wa-gateway/errors"
)

const ScopeAPI = "api"

// Authenticator exchanges the shared API key for a short lived token.
type Authenticator struct {
	keyHash string
	issuer  *TokenIssuer
}

func NewAuthenticator(keyHash string, issuer *TokenIssuer) *Authenticator {
	return &Authenticator{keyHash: keyHash, issuer: issuer}
}

type Grant struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *Authenticator) Exchange(apiKey, client string) (Grant, error) {
	if a.keyHash == "" || !a.issuer.Enabled() {
		return Grant{}, fmt.Errorf("%w: token exchange is disabled", errors.ErrUnauthorized)
	}
	match, err := CompareKey(apiKey, a.keyHash)
	if err != nil {
		return Grant{}, fmt.Errorf("checking api key: %w", err)
	}
	if !match {
		return Grant{}, fmt.Errorf("%w: invalid api key", errors.ErrUnauthorized)
	}
	if client == "" {
		client = "anonymous"
	}
	token, err := a.issuer.Issue(client, ScopeAPI)
	if err != nil {
		return Grant{}, fmt.Errorf("signing token: %w", err)
	}
	return Grant{Token: token, ExpiresAt: a.issuer.now().Add(a.issuer.Duration())}, nil
}
