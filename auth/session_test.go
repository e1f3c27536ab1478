package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParse_RoundTripsIssuedToken(t *testing.T) {
	req := require.New(t)
	parser := NewTokenParser([]byte("test-secret"))

	token, err := parser.Issue("uid-123", "https://cdn/avatar.png", time.Hour)
	req.NoError(err)

	session, err := parser.Parse(token)
	req.NoError(err)
	req.Equal("uid-123", session.UID)
	req.Equal("https://cdn/avatar.png", session.AvatarURL)
}

func TestParse_RejectsWrongSecret(t *testing.T) {
	req := require.New(t)
	issuer := NewTokenParser([]byte("the-real-secret"))
	parser := NewTokenParser([]byte("another-secret"))

	token, err := issuer.Issue("uid-123", "", time.Hour)
	req.NoError(err)

	_, err = parser.Parse(token)
	req.Error(err)
}

func TestParse_RejectsExpiredToken(t *testing.T) {
	req := require.New(t)
	parser := NewTokenParser([]byte("test-secret"))

	token, err := parser.Issue("uid-123", "", -time.Minute)
	req.NoError(err)

	_, err = parser.Parse(token)
	req.Error(err)
}

func TestParse_RejectsMissingSubject(t *testing.T) {
	req := require.New(t)
	parser := NewTokenParser([]byte("test-secret"))

	token, err := parser.Issue("", "", time.Hour)
	req.NoError(err)

	_, err = parser.Parse(token)
	req.Error(err)
}

func TestParse_RejectsGarbage(t *testing.T) {
	req := require.New(t)
	parser := NewTokenParser([]byte("test-secret"))

	_, err := parser.Parse("not.a.token")
	req.Error(err)
}
