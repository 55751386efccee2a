package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"food-delivery-backend/config"
	"food-delivery-backend/models"
)

// AccessClaims are the claims embedded in an access token.
type AccessClaims struct {
	Email      string   `json:"email"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Roles      []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenIssuer produces signed access tokens and opaque refresh tokens.
type TokenIssuer struct {
	cfg *config.JWTConfig
	now func() time.Time
}

func NewTokenIssuer(cfg *config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// AccessToken signs a short-lived JWT carrying the user's identity and
// one roles entry per assigned role.
func (ti *TokenIssuer) AccessToken(user *models.User) (string, error) {
	now := ti.now()
	claims := AccessClaims{
		Email:      user.Email,
		GivenName:  user.FirstName,
		FamilyName: user.LastName,
		Roles:      user.RoleNames(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    ti.cfg.Issuer,
			Audience:  jwt.ClaimStrings{ti.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ti.cfg.AccessMinutes) * time.Minute)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(ti.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// RefreshToken mints a new opaque refresh token bound to the caller's IP.
// An entropy-source failure is not recoverable.
func (ti *TokenIssuer) RefreshToken(ip string) (models.RefreshToken, error) {
	buf := make([]byte, 64)
	if _, err := rand.Read(buf); err != nil {
		return models.RefreshToken{}, fmt.Errorf("read random bytes: %w", err)
	}
	now := ti.now()
	return models.RefreshToken{
		Token:       base64.StdEncoding.EncodeToString(buf),
		Created:     now,
		CreatedByIP: ip,
		Expires:     now.Add(time.Duration(ti.cfg.RefreshDays) * 24 * time.Hour),
	}, nil
}
