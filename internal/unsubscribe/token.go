// Package unsubscribe issues per-lead opt-out tokens, processes opt-outs
// with their enrollment cascade, and supports re-subscription.
package unsubscribe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"nurture_backend/platform/apperr"
)

const tokenPurpose = "unsubscribe"

// TokenCodec issues and verifies the opaque opt-out tokens embedded in
// email footers. Tokens are HMAC-signed JWTs binding the lead id to the
// email address they were issued for; decode rejects any token whose
// signature does not verify.
type TokenCodec struct {
	secret  []byte
	baseURL string
}

func NewTokenCodec(secret, baseURL string) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), baseURL: strings.TrimRight(baseURL, "/")}
}

// Issue creates a token for the lead. Tokens do not expire; an opt-out
// link in an old email must keep working.
func (c *TokenCodec) Issue(leadID uuid.UUID, email string) (string, error) {
	claims := jwt.MapClaims{
		"sub":     leadID.String(),
		"email":   email,
		"purpose": tokenPurpose,
		"iat":     time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// URL builds the public opt-out link for the lead.
func (c *TokenCodec) URL(leadID uuid.UUID, email string) (string, error) {
	token, err := c.Issue(leadID, email)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/unsubscribe/%s", c.baseURL, token), nil
}

// Decode verifies a token and returns the embedded lead id.
func (c *TokenCodec) Decode(raw string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, apperr.Decode("invalid unsubscribe token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperr.Decode("invalid unsubscribe token")
	}
	if purpose, _ := claims["purpose"].(string); purpose != tokenPurpose {
		return uuid.Nil, apperr.Decode("invalid unsubscribe token")
	}

	sub, _ := claims["sub"].(string)
	leadID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, apperr.Decode("invalid unsubscribe token")
	}
	return leadID, nil
}
