// Package auth is the boundary with the external identity provider: it
// only validates the session token the provider already issued and
// extracts the identity the pipeline needs. No provisioning here.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session identifies the authenticated compose session.
type Session struct {
	UID       string
	AvatarURL string
}

type sessionClaims struct {
	PhotoURL string `json:"photoURL,omitempty"`
	jwt.RegisteredClaims
}

type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret []byte) *TokenParser {
	return &TokenParser{secret: secret}
}

// Parse validates signature and expiry and returns the session identity.
func (p *TokenParser) Parse(tokenString string) (Session, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return Session{}, err
	}
	if !token.Valid || claims.Subject == "" {
		return Session{}, fmt.Errorf("invalid session token")
	}
	return Session{UID: claims.Subject, AvatarURL: claims.PhotoURL}, nil
}

// Issue builds a session token; used by tests and local runs where no
// real identity provider sits in front.
func (p *TokenParser) Issue(uid, avatarURL string, ttl time.Duration) (string, error) {
	claims := sessionClaims{
		PhotoURL: avatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
