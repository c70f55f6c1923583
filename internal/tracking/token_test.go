package tracking

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"nurture_backend/platform/apperr"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")
	logID := uuid.New()

	raw := codec.Encode(Token{LogID: logID, Kind: KindClick, URL: "https://example.com/page?a=1&b=2"})
	decoded, err := codec.Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.LogID != logID {
		t.Fatalf("log id = %v, want %v", decoded.LogID, logID)
	}
	if decoded.Kind != KindClick {
		t.Fatalf("kind = %q, want click", decoded.Kind)
	}
	if decoded.URL != "https://example.com/page?a=1&b=2" {
		t.Fatalf("url = %q", decoded.URL)
	}
}

func TestDecodeRejectsTampering(t *testing.T) {
	codec := NewCodec("test-secret")
	raw := codec.Encode(Token{LogID: uuid.New(), Kind: KindOpen})

	cases := map[string]string{
		"garbage":          "not-a-token",
		"missing tag":      strings.Split(raw, ".")[0],
		"flipped payload":  "x" + raw,
		"truncated tag":    raw[:len(raw)-4],
		"empty":            "",
		"wrong secret tag": NewCodec("other-secret").Encode(Token{LogID: uuid.New(), Kind: KindOpen}),
	}
	for name, input := range cases {
		if name == "wrong secret tag" {
			if _, err := codec.Decode(input); !apperr.Is(err, apperr.KindDecode) {
				t.Fatalf("%s: Decode() error = %v, want decode failure", name, err)
			}
			continue
		}
		if _, err := codec.Decode(input); !apperr.Is(err, apperr.KindDecode) {
			t.Fatalf("%s: Decode() error = %v, want decode failure", name, err)
		}
	}
}

func TestDecodeRejectsIncompleteToken(t *testing.T) {
	codec := NewCodec("test-secret")

	if _, err := codec.Decode(codec.Encode(Token{Kind: KindOpen})); !apperr.Is(err, apperr.KindDecode) {
		t.Fatalf("nil log id: error = %v, want decode failure", err)
	}
	if _, err := codec.Decode(codec.Encode(Token{LogID: uuid.New(), Kind: "bogus"})); !apperr.Is(err, apperr.KindDecode) {
		t.Fatalf("unknown kind: error = %v, want decode failure", err)
	}
}

func TestURLBuilder(t *testing.T) {
	codec := NewCodec("test-secret")
	urls := NewURLBuilder("https://app.example.com/", codec)
	logID := uuid.New()

	pixel := urls.PixelURL(logID)
	if !strings.HasPrefix(pixel, "https://app.example.com/t/open/") {
		t.Fatalf("pixel url = %q", pixel)
	}
	token, err := codec.Decode(strings.TrimPrefix(pixel, "https://app.example.com/t/open/"))
	if err != nil || token.Kind != KindOpen || token.LogID != logID {
		t.Fatalf("pixel token = %+v, err = %v", token, err)
	}

	click := urls.ClickURL(logID, "https://example.com/offer")
	if !strings.HasPrefix(click, "https://app.example.com/t/click/") {
		t.Fatalf("click url = %q", click)
	}
	if !urls.IsTracked(click) {
		t.Fatalf("IsTracked(%q) = false, want true", click)
	}
	if urls.IsTracked("https://example.com/offer") {
		t.Fatalf("IsTracked() = true for untracked url")
	}
}

func TestSafeRedirect(t *testing.T) {
	urls := NewURLBuilder("https://app.example.com", NewCodec("s"))

	if got := urls.SafeRedirect("https://example.com/page"); got != "https://example.com/page" {
		t.Fatalf("SafeRedirect(valid) = %q", got)
	}
	for _, bad := range []string{"", "javascript:alert(1)", "ftp://x", "/relative", "not a url"} {
		if got := urls.SafeRedirect(bad); got != "https://app.example.com" {
			t.Fatalf("SafeRedirect(%q) = %q, want base url", bad, got)
		}
	}
}
