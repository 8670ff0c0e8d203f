// Package oauth runs the browser half of a provider sign-in: it opens the
// authorization URL, waits for the provider to redirect back, and turns the
// redirect into something the backend can exchange for a session.
package oauth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// ResultType discriminates how an auth session ended.
type ResultType string

const (
	Success ResultType = "success"
	Cancel  ResultType = "cancel"
	Dismiss ResultType = "dismiss"
)

// Result is the outcome of an auth session. URL is set on Success.
type Result struct {
	Type ResultType
	URL  *url.URL
}

// Browser opens authURL and reports the redirect to redirectURL.
type Browser interface {
	OpenAuthSession(ctx context.Context, authURL, redirectURL string) (Result, error)
}

// PKCE holds a code verifier and its S256 challenge.
type PKCE struct {
	Verifier  string
	Challenge string
}

// NewPKCE returns a fresh verifier and challenge.
func NewPKCE() (PKCE, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return PKCE{}, fmt.Errorf("oauth.NewPKCE: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(b)
	return PKCE{Verifier: verifier, Challenge: Challenge(verifier)}, nil
}

// Challenge derives the S256 challenge for verifier.
func Challenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Grant is what a redirect carried: an authorization code to exchange, or
// a token pair to adopt directly.
type Grant struct {
	Code   string
	Tokens domain.TokenPair
}

// HasCode reports whether the grant is an authorization code.
func (g Grant) HasCode() bool { return g.Code != "" }

// ErrNoGrant is returned when a redirect carries neither a code nor tokens.
var ErrNoGrant = errors.New("redirect carried no authorization code or tokens")

// ProviderError is an error reported by the provider in the redirect.
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return e.Code + ": " + e.Description
	}
	return e.Code
}

// ExtractGrant reads the grant from a redirect URL, looking at both the query
// string and the fragment.
func ExtractGrant(u *url.URL) (Grant, error) {
	if u == nil {
		return Grant{}, ErrNoGrant
	}
	params := redirectParams(u)
	if code := params.Get("error"); code != "" {
		return Grant{}, &ProviderError{Code: code, Description: params.Get("error_description")}
	}
	if code := params.Get("code"); code != "" {
		return Grant{Code: code}, nil
	}
	access, refresh := params.Get("access_token"), params.Get("refresh_token")
	if access != "" && refresh != "" {
		return Grant{Tokens: domain.TokenPair{AccessToken: access, RefreshToken: refresh}}, nil
	}
	return Grant{}, ErrNoGrant
}

// redirectParams merges fragment parameters over query parameters.
func redirectParams(u *url.URL) url.Values {
	params := url.Values{}
	for k, vs := range u.Query() {
		params[k] = vs
	}
	if u.Fragment != "" {
		if frag, err := url.ParseQuery(u.Fragment); err == nil {
			for k, vs := range frag {
				params[k] = vs
			}
		}
	}
	return params
}
