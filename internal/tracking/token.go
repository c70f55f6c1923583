// Package tracking issues and decodes the opaque tokens embedded in
// pixel and click URLs, decorates outbound HTML, and records open and
// click events against email logs.
package tracking

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"nurture_backend/platform/apperr"
)

// Kind discriminates what a tracking token records.
type Kind string

const (
	KindOpen  Kind = "open"
	KindClick Kind = "click"
)

// Token is the self-describing payload carried in tracking URLs.
// It is never persisted; decoding needs no database round-trip.
type Token struct {
	LogID uuid.UUID `json:"logId"`
	Kind  Kind      `json:"kind"`
	URL   string    `json:"url,omitempty"`
}

// Codec encodes tokens as base64url(payload).base64url(tag), where the
// tag is an HMAC-SHA256 over the payload. Decode rejects any token
// whose tag does not verify, so open and click events cannot be forged.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Encode serializes and signs a token.
func (c *Codec) Encode(t Token) string {
	payload, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(c.sign(payload))
}

// Decode parses and verifies a token. Any malformed or tampered input
// yields a decode error; callers on public endpoints must treat that as
// a no-op rather than surfacing it.
func (c *Codec) Decode(raw string) (Token, error) {
	payloadPart, tagPart, ok := strings.Cut(raw, ".")
	if !ok {
		return Token{}, apperr.Decode("malformed tracking token")
	}
	payload, err := base64.RawURLEncoding.DecodeString(payloadPart)
	if err != nil {
		return Token{}, apperr.Decode("malformed tracking token")
	}
	tag, err := base64.RawURLEncoding.DecodeString(tagPart)
	if err != nil {
		return Token{}, apperr.Decode("malformed tracking token")
	}
	if !hmac.Equal(tag, c.sign(payload)) {
		return Token{}, apperr.Decode("tracking token signature mismatch")
	}

	var t Token
	if err := json.Unmarshal(payload, &t); err != nil {
		return Token{}, apperr.Decode("malformed tracking token")
	}
	if t.LogID == uuid.Nil || (t.Kind != KindOpen && t.Kind != KindClick) {
		return Token{}, apperr.Decode("incomplete tracking token")
	}
	return t, nil
}

// URLBuilder renders pixel and click URLs under the application base URL.
type URLBuilder struct {
	baseURL string
	codec   *Codec
}

func NewURLBuilder(baseURL string, codec *Codec) *URLBuilder {
	return &URLBuilder{baseURL: strings.TrimRight(baseURL, "/"), codec: codec}
}

// PixelURL builds the 1x1 image URL recording an open for the log.
func (b *URLBuilder) PixelURL(logID uuid.UUID) string {
	return fmt.Sprintf("%s/t/open/%s", b.baseURL, b.codec.Encode(Token{LogID: logID, Kind: KindOpen}))
}

// ClickURL builds the redirecting URL recording a click for the log.
func (b *URLBuilder) ClickURL(logID uuid.UUID, originalURL string) string {
	return fmt.Sprintf("%s/t/click/%s", b.baseURL, b.codec.Encode(Token{LogID: logID, Kind: KindClick, URL: originalURL}))
}

// IsTracked reports whether a URL already points at this builder's
// tracking endpoints.
func (b *URLBuilder) IsTracked(href string) bool {
	return strings.HasPrefix(href, b.baseURL+"/t/")
}

// SafeRedirect validates a decoded click target. Only absolute http(s)
// URLs pass; anything else falls back to the application base URL.
func (b *URLBuilder) SafeRedirect(target string) string {
	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return b.baseURL
	}
	return target
}
