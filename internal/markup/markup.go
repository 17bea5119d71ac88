// Package markup detects HTML in item text and turns fragments into a
// standalone page suitable for screenshotting.
package markup

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrParse is returned when a fragment cannot be parsed as HTML.
var ErrParse = errors.New("parsing markup fragment")

//go:embed templates/page.html
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

// DefaultLang is the document language used when none is given.
const DefaultLang = "ja"

// dropped lists elements removed before rendering: pages are rendered
// offline and must not run code or pull remote content.
var dropped = map[atom.Atom]bool{
	atom.Script: true,
	atom.Iframe: true,
	atom.Object: true,
	atom.Embed:  true,
	atom.Link:   true,
}

// HasMarkup reports whether s contains a tag-opening character.
func HasMarkup(s string) bool {
	return strings.Contains(s, "<")
}

// Page builds a complete HTML document with each part in its own block.
// Parts are parsed as body fragments, so unbalanced tags are closed and
// stray text is escaped.
func Page(lang string, parts ...string) (string, error) {
	if lang == "" {
		lang = DefaultLang
	}

	rendered := make([]template.HTML, 0, len(parts))
	for i, part := range parts {
		frag, err := Normalize(part)
		if err != nil {
			return "", fmt.Errorf("part %d: %w", i, err)
		}
		// #nosec G203 -- fragment was re-serialized by the HTML parser
		rendered = append(rendered, template.HTML(frag))
	}

	var buf bytes.Buffer
	data := struct {
		Lang  string
		Parts []template.HTML
	}{Lang: lang, Parts: rendered}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing page template: %w", err)
	}
	return buf.String(), nil
}

// Normalize parses s as the content of a <body> element and serializes it
// back, dropping active content.
func Normalize(s string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParse, err)
	}

	var buf bytes.Buffer
	for _, n := range nodes {
		if isDropped(n) {
			continue
		}
		prune(n)
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("%w: %v", ErrParse, err)
		}
	}
	return buf.String(), nil
}

// prune removes dropped descendants of n in place.
func prune(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if isDropped(c) {
			n.RemoveChild(c)
		} else {
			prune(c)
		}
		c = next
	}
}

func isDropped(n *html.Node) bool {
	return n.Type == html.ElementNode && dropped[n.DataAtom]
}
