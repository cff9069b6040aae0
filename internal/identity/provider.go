package identity

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"quantum/internal/models"
)

// Provider supplies an externally authenticated user for session bootstrap.
type Provider interface {
	CurrentUser() (models.User, error)
}

type providerClaims struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	PhotoURL  string `json:"photo_url"`
	jwt.RegisteredClaims
}

// TokenProvider validates an HS256-signed launch token and maps its claims
// onto a directory user. The creator handle gets the elevated role and the
// verified badge.
type TokenProvider struct {
	token         string
	secret        []byte
	creatorHandle string
}

func NewTokenProvider(token, secret, creatorHandle string) *TokenProvider {
	return &TokenProvider{token: token, secret: []byte(secret), creatorHandle: creatorHandle}
}

func (p *TokenProvider) CurrentUser() (models.User, error) {
	claims := &providerClaims{}
	parsed, err := jwt.ParseWithClaims(p.token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return models.User{}, fmt.Errorf("parsing provider token: %w", err)
	}
	if !parsed.Valid {
		return models.User{}, fmt.Errorf("invalid provider token")
	}
	if claims.Username == "" {
		return models.User{}, fmt.Errorf("provider token missing username")
	}

	handle := strings.ToLower(claims.Username)
	displayName := strings.TrimSpace(claims.FirstName + " " + claims.LastName)
	if displayName == "" {
		displayName = claims.Username
	}

	user := models.User{
		Username:    "@" + handle,
		DisplayName: displayName,
		Avatar:      claims.PhotoURL,
		Role:        models.RoleUser,
	}
	if handle == strings.ToLower(p.creatorHandle) {
		user.Role = models.RoleCreator
		user.IsVerified = true
	}
	return user, nil
}
