package tracking

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func newTestBuilder() *URLBuilder {
	return NewURLBuilder("https://app.example.com", NewCodec("test-secret"))
}

func TestDecorateRewritesLinks(t *testing.T) {
	urls := newTestBuilder()
	logID := uuid.New()

	body := `<html><body><a href="https://example.com/offer">Offer</a></body></html>`
	out, err := urls.Decorate(body, logID, "https://app.example.com/unsubscribe/tok")
	if err != nil {
		t.Fatalf("Decorate() error = %v", err)
	}
	if strings.Contains(out, `href="https://example.com/offer"`) {
		t.Fatalf("original link survived: %q", out)
	}
	if !strings.Contains(out, "https://app.example.com/t/click/") {
		t.Fatalf("no tracking link: %q", out)
	}
}

func TestDecorateSkipsSpecialLinks(t *testing.T) {
	urls := newTestBuilder()
	logID := uuid.New()
	tracked := urls.ClickURL(logID, "https://example.com/x")

	body := `<html><body>` +
		`<a href="mailto:info@example.com">mail</a>` +
		`<a href="tel:+15145550100">call</a>` +
		`<a href="#section">anchor</a>` +
		`<a href="` + tracked + `">already</a>` +
		`</body></html>`

	out, err := urls.Decorate(body, logID, "https://app.example.com/u")
	if err != nil {
		t.Fatalf("Decorate() error = %v", err)
	}
	for _, keep := range []string{`href="mailto:info@example.com"`, `href="tel:+15145550100"`, `href="#section"`} {
		if !strings.Contains(out, keep) {
			t.Fatalf("special link was rewritten, missing %q in %q", keep, out)
		}
	}
	if !strings.Contains(out, `href="`+tracked+`"`) {
		t.Fatalf("already-tracked link was rewrapped: %q", out)
	}
	if strings.Count(out, "/t/click/") != 1 {
		t.Fatalf("want exactly one tracked link, got %d: %q", strings.Count(out, "/t/click/"), out)
	}
}

func TestDecorateAppendsPixel(t *testing.T) {
	urls := newTestBuilder()
	logID := uuid.New()

	out, err := urls.Decorate(`<html><body><p>hi</p></body></html>`, logID, "https://app.example.com/u")
	if err != nil {
		t.Fatalf("Decorate() error = %v", err)
	}
	if !strings.Contains(out, `<img src="https://app.example.com/t/open/`) {
		t.Fatalf("pixel missing: %q", out)
	}
	if !strings.Contains(out, `width="1"`) || !strings.Contains(out, `height="1"`) {
		t.Fatalf("pixel dimensions missing: %q", out)
	}
}

func TestDecorateSubstitutesUnsubscribeURL(t *testing.T) {
	urls := newTestBuilder()

	body := `<html><body><a href="{{unsubscribeUrl}}">Unsubscribe</a></body></html>`
	out, err := urls.Decorate(body, uuid.New(), "https://app.example.com/unsubscribe/abc")
	if err != nil {
		t.Fatalf("Decorate() error = %v", err)
	}
	if !strings.Contains(out, `href="https://app.example.com/unsubscribe/abc"`) {
		t.Fatalf("unsubscribe link not substituted: %q", out)
	}
	if strings.Contains(out, "{{unsubscribeUrl}}") {
		t.Fatalf("template token survived: %q", out)
	}
	// The unsubscribe link itself must not be click-tracked.
	if strings.Contains(out, "/t/click/") {
		t.Fatalf("unsubscribe link was wrapped for click tracking: %q", out)
	}
}
