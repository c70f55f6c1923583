package catalog

import "strings"

const (
	ecosystemURL = "https://www.rusingacademy.ca/ecosystem"
	bookingURL   = "https://www.rusingacademy.ca/contact"
)

// Recipient carries the lead fields available for template substitution.
type Recipient struct {
	FirstName string
	LastName  string
	Company   string
	Email     string
}

// Render substitutes the personalization tokens in a subject or body.
// An empty first name falls back to "there" so greetings stay readable.
func Render(template string, r Recipient) string {
	firstName := r.FirstName
	if firstName == "" {
		firstName = "there"
	}
	return strings.NewReplacer(
		"{{firstName}}", firstName,
		"{{lastName}}", r.LastName,
		"{{company}}", r.Company,
		"{{email}}", r.Email,
		"{{ecosystemUrl}}", ecosystemURL,
		"{{bookingUrl}}", bookingURL,
	).Replace(template)
}

// WrapBody embeds a rendered body fragment in the shared HTML shell.
// The footer keeps the {{unsubscribeUrl}} token for the tracking layer
// to replace with a per-enrollment link.
func WrapBody(content string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; color: #1e293b;">
  `)
	b.WriteString(content)
	b.WriteString(`
  <hr style="border: none; border-top: 1px solid #e2e8f0; margin: 30px 0;">
  <p style="font-size: 12px; color: #64748b; text-align: center;">
    © 2026 Rusinga International Consulting Ltd.<br>
    <a href="{{unsubscribeUrl}}" style="color: #64748b;">Unsubscribe</a>
  </p>
</body>
</html>`)
	return b.String()
}

// PickLocalized returns the French variant when the preferred language
// is "fr" and the English variant otherwise.
func PickLocalized(language, en, fr string) string {
	if language == "fr" {
		return fr
	}
	return en
}
