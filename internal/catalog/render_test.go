package catalog

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesTokens(t *testing.T) {
	r := Recipient{FirstName: "Marie", LastName: "Tremblay", Company: "Acme", Email: "marie@acme.example"}
	out := Render("Hi {{firstName}} {{lastName}} from {{company}} ({{email}})", r)
	want := "Hi Marie Tremblay from Acme (marie@acme.example)"
	if out != want {
		t.Fatalf("Render() = %q, want %q", out, want)
	}
}

func TestRenderFirstNameFallback(t *testing.T) {
	out := Render("Hi {{firstName}},", Recipient{Email: "x@example.com"})
	if out != "Hi there," {
		t.Fatalf("Render() = %q, want %q", out, "Hi there,")
	}
}

func TestRenderEmptyOptionalFields(t *testing.T) {
	out := Render("{{lastName}}|{{company}}", Recipient{FirstName: "Ann"})
	if out != "|" {
		t.Fatalf("Render() = %q, want empty substitutions", out)
	}
}

func TestRenderURLs(t *testing.T) {
	out := Render(`<a href="{{ecosystemUrl}}">a</a> <a href="{{bookingUrl}}">b</a>`, Recipient{})
	if !strings.Contains(out, "https://www.rusingacademy.ca/ecosystem") {
		t.Fatalf("missing ecosystem url: %q", out)
	}
	if !strings.Contains(out, "https://www.rusingacademy.ca/contact") {
		t.Fatalf("missing booking url: %q", out)
	}
}

func TestWrapBodyKeepsUnsubscribeToken(t *testing.T) {
	out := WrapBody("<p>hello</p>")
	if !strings.Contains(out, "<p>hello</p>") {
		t.Fatalf("wrapped body lost content: %q", out)
	}
	if !strings.Contains(out, "{{unsubscribeUrl}}") {
		t.Fatalf("wrapped body must keep the unsubscribe token for later substitution")
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") {
		t.Fatalf("wrapped body missing doctype")
	}
}

func TestPickLocalized(t *testing.T) {
	if got := PickLocalized("fr", "en text", "fr text"); got != "fr text" {
		t.Fatalf("PickLocalized(fr) = %q", got)
	}
	if got := PickLocalized("en", "en text", "fr text"); got != "en text" {
		t.Fatalf("PickLocalized(en) = %q", got)
	}
	if got := PickLocalized("", "en text", "fr text"); got != "en text" {
		t.Fatalf("PickLocalized(empty) = %q, want english default", got)
	}
}

func TestBlueprintsShape(t *testing.T) {
	wantSteps := map[string]int{"welcome": 3, "nurture": 2, "reengage": 2}
	for key, n := range wantSteps {
		bp, ok := Get(key)
		if !ok {
			t.Fatalf("missing blueprint %q", key)
		}
		if len(bp.Steps) != n {
			t.Fatalf("blueprint %q has %d steps, want %d", key, len(bp.Steps), n)
		}
		for i, step := range bp.Steps {
			if step.SubjectEN == "" || step.SubjectFR == "" || step.BodyEN == "" || step.BodyFR == "" {
				t.Fatalf("blueprint %q step %d has empty content", key, i)
			}
			if step.DelayDays < 0 || step.DelayHours < 0 {
				t.Fatalf("blueprint %q step %d has negative delay", key, i)
			}
		}
	}

	welcome, _ := Get("welcome")
	if welcome.Steps[0].DelayDays != 0 || welcome.Steps[0].DelayHours != 1 {
		t.Fatalf("welcome step 1 delay = %dd%dh, want 0d1h", welcome.Steps[0].DelayDays, welcome.Steps[0].DelayHours)
	}
}
