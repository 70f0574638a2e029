package realtime

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/pkg/token"
)

type staticResolver struct {
	users map[string]*models.User
}

func (r *staticResolver) GetUserByEmail(email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, errors.New("record not found")
	}
	return user, nil
}

func newAuthFixture(t *testing.T, ttl time.Duration) (*Authenticator, *token.Service, *models.User) {
	t.Helper()
	tokens := token.NewService("test-secret", ttl)
	user := &models.User{ID: 42, Username: "alice", Email: "alice@example.com"}
	resolver := &staticResolver{users: map[string]*models.User{user.Email: user}}
	return NewAuthenticator(tokens, resolver), tokens, user
}

func TestAuthenticateAcceptsBearerHeader(t *testing.T) {
	auth, tokens, user := newAuthFixture(t, time.Hour)
	credential, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	req := httptest.NewRequest("GET", "/ws/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+credential)

	identity, err := auth.Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if identity.UserID != user.ID || identity.Username != "alice" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestAuthenticateFallsBackToQueryParameter(t *testing.T) {
	auth, tokens, user := newAuthFixture(t, time.Hour)
	credential, _ := tokens.Issue(user)

	// Browser WebSocket clients cannot set headers; they pass ?token=.
	req := httptest.NewRequest("GET", "/ws/notifications?token="+credential, nil)

	identity, err := auth.Authenticate(req)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if identity.UserID != user.ID {
		t.Errorf("identity = %+v", identity)
	}
}

func TestAuthenticateQueryFallbackOnMalformedHeader(t *testing.T) {
	auth, tokens, user := newAuthFixture(t, time.Hour)
	credential, _ := tokens.Issue(user)

	req := httptest.NewRequest("GET", "/ws/notifications?token="+credential, nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

	if _, err := auth.Authenticate(req); err != nil {
		t.Fatalf("Authenticate with non-bearer header and valid query token: %v", err)
	}
}

func TestAuthenticateRefusalCases(t *testing.T) {
	auth, tokens, user := newAuthFixture(t, time.Hour)

	expiredService := token.NewService("test-secret", -time.Minute)
	expired, _ := expiredService.Issue(user)

	wrongKey := token.NewService("other-secret", time.Hour)
	forged, _ := wrongKey.Issue(user)

	stranger, _ := tokens.Issue(&models.User{ID: 99, Email: "ghost@example.com"})

	cases := []struct {
		name   string
		target string
		header string
	}{
		{name: "no credential", target: "/ws/notifications"},
		{name: "expired token", target: "/ws/notifications?token=" + expired},
		{name: "bad signature", target: "/ws/notifications?token=" + forged},
		{name: "garbage token", target: "/ws/notifications?token=not-a-jwt"},
		{name: "unknown subject", target: "/ws/notifications?token=" + stranger},
		{name: "header without scheme", target: "/ws/notifications", header: "just-a-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if _, err := auth.Authenticate(req); !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("err = %v, want ErrUnauthenticated", err)
			}
		})
	}
}
