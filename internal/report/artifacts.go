package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// FailureCapture is the page state collected when a flow step fails.
type FailureCapture struct {
	Screenshot []byte
	HTML       string
	URL        string
}

// SaveFailureArtifacts writes the capture into the results directory:
// screenshot, raw HTML, a readable markdown rendition of the page, and the
// extracted Lightning error text when present. Returns the written paths.
func SaveFailureArtifacts(dir, name string, capture FailureCapture) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifacts directory %s: %w", dir, err)
	}

	var paths []string

	if len(capture.Screenshot) > 0 {
		path := filepath.Join(dir, name+".png")
		if err := os.WriteFile(path, capture.Screenshot, 0644); err != nil {
			return paths, fmt.Errorf("failed to save screenshot: %w", err)
		}
		paths = append(paths, path)
	}

	if capture.HTML != "" {
		htmlPath := filepath.Join(dir, name+".html")
		if err := os.WriteFile(htmlPath, []byte(capture.HTML), 0644); err != nil {
			return paths, fmt.Errorf("failed to save page HTML: %w", err)
		}
		paths = append(paths, htmlPath)

		markdown, err := pageMarkdown(capture)
		if err == nil && markdown != "" {
			mdPath := filepath.Join(dir, name+".md")
			if err := os.WriteFile(mdPath, []byte(markdown), 0644); err != nil {
				return paths, fmt.Errorf("failed to save page markdown: %w", err)
			}
			paths = append(paths, mdPath)
		}
	}

	return paths, nil
}

// pageMarkdown converts the captured page to readable markdown, prefixed with
// any Lightning error text found in it.
func pageMarkdown(capture FailureCapture) (string, error) {
	var b strings.Builder

	if errText := ExtractErrorText(capture.HTML); errText != "" {
		fmt.Fprintf(&b, "## Page errors\n\n%s\n\n---\n\n", errText)
	}

	converter := md.NewConverter(capture.URL, true, nil)
	markdown, err := converter.ConvertString(capture.HTML)
	if err != nil {
		return b.String(), fmt.Errorf("failed to convert page HTML: %w", err)
	}
	b.WriteString(markdown)

	return b.String(), nil
}

// ExtractErrorText pulls Lightning toast and form error messages out of the
// captured page HTML. Empty when the page shows no error surface.
func ExtractErrorText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var messages []string
	seen := make(map[string]bool)
	collect := func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text != "" && !seen[text] {
			seen[text] = true
			messages = append(messages, text)
		}
	}

	doc.Find(".toastMessage").Each(collect)
	doc.Find(".slds-theme_error .slds-notify__content").Each(collect)
	doc.Find(".errorsList li").Each(collect)
	doc.Find("#error").Each(collect)

	return strings.Join(messages, "\n")
}
