package realtime

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/teamsn/socialnetwork/internal/models"
	"github.com/teamsn/socialnetwork/pkg/token"
)

// ErrUnauthenticated rejects a channel handshake. It deliberately carries no
// detail about which validation step failed.
var ErrUnauthenticated = errors.New("realtime: handshake not authenticated")

// Identity is the verified principal a channel binding is created for.
type Identity struct {
	UserID   uint
	Username string
	Email    string
}

// UserResolver resolves a token subject to a stored user.
type UserResolver interface {
	GetUserByEmail(email string) (*models.User, error)
}

// Authenticator validates the bearer credential presented during channel
// establishment. It runs exactly once per connection attempt, before the
// connection is admitted to the hub.
type Authenticator struct {
	tokens *token.Service
	users  UserResolver
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator(tokens *token.Service, users UserResolver) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate extracts the credential from the upgrade request and derives
// an identity from it. Extraction order: Authorization: Bearer header first,
// then a `token` query parameter. Any failure, missing credential included,
// resolves to ErrUnauthenticated.
func (a *Authenticator) Authenticate(r *http.Request) (*Identity, error) {
	tokenString := extractToken(r)
	if tokenString == "" {
		log.Debug().Str("path", r.URL.Path).Msg("handshake without credential refused")
		return nil, ErrUnauthenticated
	}

	claims, err := a.tokens.Parse(tokenString)
	if err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("handshake with invalid credential refused")
		return nil, ErrUnauthenticated
	}

	user, err := a.users.GetUserByEmail(claims.Email)
	if err != nil {
		log.Debug().Str("path", r.URL.Path).Msg("handshake subject not resolvable, refused")
		return nil, ErrUnauthenticated
	}

	return &Identity{UserID: user.ID, Username: user.Username, Email: user.Email}, nil
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return parts[1]
	}
	return r.URL.Query().Get("token")
}
