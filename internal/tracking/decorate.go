package tracking

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"
)

const unsubscribeToken = "{{unsubscribeUrl}}"

// Decorate rewrites every hyperlink in the rendered body to a tracking
// click URL, substitutes the unsubscribe link, and appends the open
// pixel. Links using mailto:, tel:, bare fragments, unresolved template
// tokens, or already-tracked targets are left alone.
func (b *URLBuilder) Decorate(body string, logID uuid.UUID, unsubscribeURL string) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for i, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if b.shouldRewrite(attr.Val) {
					n.Attr[i].Val = b.ClickURL(logID, attr.Val)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if bodyNode := findElement(doc, "body"); bodyNode != nil {
		bodyNode.AppendChild(pixelNode(b.PixelURL(logID)))
	}

	var out strings.Builder
	if err := html.Render(&out, doc); err != nil {
		return "", err
	}

	return strings.ReplaceAll(out.String(), unsubscribeToken, unsubscribeURL), nil
}

func (b *URLBuilder) shouldRewrite(href string) bool {
	switch {
	case href == "":
		return false
	case strings.HasPrefix(href, "mailto:"):
		return false
	case strings.HasPrefix(href, "tel:"):
		return false
	case strings.HasPrefix(href, "#"):
		return false
	case strings.Contains(href, "{{"):
		return false
	case b.IsTracked(href):
		return false
	}
	return true
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, name); found != nil {
			return found
		}
	}
	return nil
}

func pixelNode(src string) *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: "img",
		Attr: []html.Attribute{
			{Key: "src", Val: src},
			{Key: "alt", Val: ""},
			{Key: "width", Val: "1"},
			{Key: "height", Val: "1"},
			{Key: "style", Val: "display:none"},
		},
	}
}
