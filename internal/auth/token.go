package auth

import (
	"errors"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Role mirrors the staff roles the parent ticketing platform embeds in its
// service tokens.
type Role string

const (
	RoleAgent    Role = "AGENT"
	RoleTeamLead Role = "TEAM_LEAD"
	RoleAdmin    Role = "ADMIN"
)

// TokenValidator validates JWTs issued by the parent platform. This service
// never issues tokens and stores no credentials.
type TokenValidator struct {
	secret []byte
}

// NewTokenValidator builds a validator over the shared HS256 secret.
func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// Claims describes the JWT payload this service consumes.
type Claims struct {
	SubjectID string `json:"sub"`
	Role      Role   `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates and returns claims.
func (tv *TokenValidator) ParseToken(tokenStr string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tv.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
