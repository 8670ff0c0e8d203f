package oauth

import (
	"errors"
	"net/url"
	"testing"
)

func TestChallengeKnownVector(t *testing.T) {
	// Appendix B of RFC 7636.
	got := Challenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk")
	if want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"; got != want {
		t.Errorf("Challenge() = %q, want %q", got, want)
	}
}

func TestNewPKCE(t *testing.T) {
	a, err := NewPKCE()
	if err != nil {
		t.Fatalf("NewPKCE() error: %v", err)
	}
	b, _ := NewPKCE() //nolint:errcheck
	if len(a.Verifier) != 43 {
		t.Errorf("len(Verifier) = %d, want 43", len(a.Verifier))
	}
	if a.Verifier == b.Verifier {
		t.Error("two verifiers should differ")
	}
	if a.Challenge != Challenge(a.Verifier) {
		t.Error("Challenge does not match Verifier")
	}
}

func TestExtractGrant(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCode  string
		wantToken string
		wantErr   bool
	}{
		{"code in query", "http://127.0.0.1:54321/auth/callback?code=abc", "abc", "", false},
		{"tokens in fragment", "http://127.0.0.1:54321/auth/callback#access_token=at&refresh_token=rt&expires_in=3600", "", "at", false},
		{"tokens in query", "kibanda://auth/callback?access_token=at&refresh_token=rt", "", "at", false},
		{"access without refresh", "http://127.0.0.1:54321/auth/callback?access_token=at", "", "", true},
		{"provider error", "http://127.0.0.1:54321/auth/callback?error=server_error&error_description=boom", "", "", true},
		{"nothing", "http://127.0.0.1:54321/auth/callback", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			if err != nil {
				t.Fatal(err)
			}
			g, err := ExtractGrant(u)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractGrant() error = %v, wantErr %v", err, tt.wantErr)
			}
			if g.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", g.Code, tt.wantCode)
			}
			if g.Tokens.AccessToken != tt.wantToken {
				t.Errorf("AccessToken = %q, want %q", g.Tokens.AccessToken, tt.wantToken)
			}
		})
	}
}

func TestExtractGrantProviderError(t *testing.T) {
	u, _ := url.Parse("http://x/cb?error=server_error&error_description=Unable+to+exchange") //nolint:errcheck
	_, err := ExtractGrant(u)
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *ProviderError", err)
	}
	if pe.Description != "Unable to exchange" {
		t.Errorf("Description = %q", pe.Description)
	}
	if _, err := ExtractGrant(nil); !errors.Is(err, ErrNoGrant) {
		t.Errorf("ExtractGrant(nil) = %v, want ErrNoGrant", err)
	}
}
