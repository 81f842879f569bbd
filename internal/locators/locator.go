// Package locators centralizes the element locator tables used by the page
// objects and normalizes heterogeneous locator descriptions into concrete
// chromedp selectors.
package locators

import (
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
)

// Kind classifies how a locator value addresses an element.
type Kind string

const (
	KindCSS         Kind = "css"
	KindXPath       Kind = "xpath"
	KindID          Kind = "id"
	KindName        Kind = "name"
	KindText        Kind = "text"
	KindLabel       Kind = "label"
	KindPlaceholder Kind = "placeholder"
)

// Locator is one named entry in a page's locator table.
type Locator struct {
	Name  string `yaml:"name"`
	Kind  Kind   `yaml:"kind"`
	Value string `yaml:"value"`
}

// Normalized is a locator resolved into the form chromedp queries take.
type Normalized struct {
	Selector string
	Option   chromedp.QueryOption
}

// Normalize resolves the locator into a chromedp selector and query option.
// Kinds that address attributes or visible text are rewritten into CSS or
// XPath; an unknown kind is an error, never a silent CSS fallback.
func (l Locator) Normalize() (Normalized, error) {
	if l.Value == "" {
		return Normalized{}, fmt.Errorf("locator %q has an empty value", l.Name)
	}

	switch l.Kind {
	case KindCSS:
		return Normalized{Selector: l.Value, Option: chromedp.ByQuery}, nil
	case KindXPath:
		return Normalized{Selector: l.Value, Option: chromedp.BySearch}, nil
	case KindID:
		return Normalized{Selector: "#" + cssEscape(l.Value), Option: chromedp.ByQuery}, nil
	case KindName:
		return Normalized{Selector: fmt.Sprintf(`[name=%q]`, l.Value), Option: chromedp.ByQuery}, nil
	case KindText:
		return Normalized{
			Selector: fmt.Sprintf(`//*[normalize-space(text())=%s]`, xpathLiteral(l.Value)),
			Option:   chromedp.BySearch,
		}, nil
	case KindLabel:
		// Lightning inputs are addressed through their <label> text.
		return Normalized{
			Selector: fmt.Sprintf(`//label[normalize-space(.)=%s]//following::input[1]`, xpathLiteral(l.Value)),
			Option:   chromedp.BySearch,
		}, nil
	case KindPlaceholder:
		return Normalized{Selector: fmt.Sprintf(`[placeholder=%q]`, l.Value), Option: chromedp.ByQuery}, nil
	default:
		return Normalized{}, fmt.Errorf("locator %q has unknown kind %q", l.Name, l.Kind)
	}
}

// MustNormalize is Normalize for statically declared table entries, where a
// failure is a programming error.
func (l Locator) MustNormalize() Normalized {
	n, err := l.Normalize()
	if err != nil {
		panic(err)
	}
	return n
}

// cssEscape escapes the characters Salesforce likes to put in element IDs
// (colons in particular) so the ID works inside a CSS selector.
func cssEscape(id string) string {
	var b strings.Builder
	for _, r := range id {
		switch r {
		case ':', '.', '[', ']', '#', '(', ')':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// xpathLiteral quotes a string for use inside an XPath expression. Values
// containing both quote characters need a concat() form.
func xpathLiteral(s string) string {
	if !strings.Contains(s, `'`) {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, `'`)
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `, "'", `) + ")"
}
