package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"wa-gateway/errors"

	"github.com/stretchr/testify/require"
)

const testKey = "k3y-for-the-gateway-0123456789"

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)

	hash, err := HashKey(testKey)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := CompareKey(testKey, hash)
	req.NoError(err)
	req.True(match)

	match, err = CompareKey("another-key-0123456789abcdef", hash)
	req.NoError(err)
	req.False(match)

	_, err = CompareKey(testKey, "$bcrypt$nope")
	req.Error(err)
}

func TestKeyValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"Valid key", testKey, false},
		{"Too short", "abc123", true},
		{"Letters only", strings.Repeat("a", 30), true},
		{"Digits only", strings.Repeat("1", 30), true},
		{"Contains space", "abc def 0123456789 abcdefgh", true},
		{"Too long", strings.Repeat("a1", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			err := ValidateKey(KeyRequest{APIKey: tt.key})
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrWeakAPIKey)
				req.ErrorIs(err, errors.ErrValidation)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestTokenIssuer(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Issue("wactl", ScopeAPI)
	req.NoError(err)

	claims, err := issuer.Validate(token)
	req.NoError(err)
	req.Equal("wactl", claims.Subject)
	req.Equal(ScopeAPI, claims.Scope)

	_, err = NewTokenIssuer("other", time.Hour).Validate(token)
	req.Error(err)
}

func TestTokenIssuer_Expired(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := issuer.Issue("wactl", ScopeAPI)
	req.NoError(err)

	issuer.now = time.Now
	_, err = issuer.Validate(token)
	req.Error(err)
}

func TestAuthenticator_Exchange(t *testing.T) {
	req := require.New(t)
	hash, err := HashKey(testKey)
	req.NoError(err)
	issuer := NewTokenIssuer("secret", time.Hour)
	authenticator := NewAuthenticator(hash, issuer)

	grant, err := authenticator.Exchange(testKey, "")
	req.NoError(err)
	claims, err := issuer.Validate(grant.Token)
	req.NoError(err)
	req.Equal("anonymous", claims.Subject)
	req.WithinDuration(time.Now().Add(time.Hour), grant.ExpiresAt, time.Minute)

	_, err = authenticator.Exchange("wrong-key-0123456789abcdef", "cli")
	req.ErrorIs(err, errors.ErrUnauthorized)

	_, err = NewAuthenticator("", issuer).Exchange(testKey, "cli")
	req.ErrorIs(err, errors.ErrUnauthorized)
}

func TestMiddleware(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	valid, err := issuer.Issue("wactl", ScopeAPI)
	require.NoError(t, err)

	var subject any
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = r.Context().Value(SubjectKey)
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		issuer *TokenIssuer
		header string
		want   int
	}{
		{"disabled lets everything through", NewTokenIssuer("", time.Hour), "", http.StatusNoContent},
		{"missing token", issuer, "", http.StatusUnauthorized},
		{"wrong scheme", issuer, "Basic abc", http.StatusUnauthorized},
		{"invalid token", issuer, "Bearer invalid-token-string", http.StatusUnauthorized},
		{"valid token", issuer, "Bearer " + valid, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			r := httptest.NewRequest(http.MethodGet, "/status", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			Middleware(tt.issuer)(next).ServeHTTP(w, r)

			req.Equal(tt.want, w.Code)
			if tt.want == http.StatusUnauthorized {
				req.Contains(w.Body.String(), `"status":false`)
			}
		})
	}
	require.Equal(t, "wactl", subject)
}
