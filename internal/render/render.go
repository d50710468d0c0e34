// Package render turns model output into HTML that is safe to store and
// display.
package render

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// fallback is shown when the model output sanitizes away completely.
const fallback = "<p>No analysis available.</p>"

var policy = buildPolicy()

// buildPolicy allows only the small set of formatting tags the prompts
// ask the model to use.
func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "ul", "ol", "li", "strong", "em", "h4", "br")

	return p
}

// AssistantHTML sanitizes a model answer for storage. Answers without
// any markup are escaped and wrapped into paragraphs with line breaks
// preserved.
func AssistantHTML(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return fallback
	}

	if !strings.Contains(text, "<") {
		return Paragraphs(text)
	}

	sanitized := strings.TrimSpace(policy.Sanitize(text))
	if sanitized == "" {
		return fallback
	}

	return sanitized
}

// Paragraphs escapes plain text and converts blank lines to paragraph
// breaks and single newlines to <br>.
func Paragraphs(text string) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\r\n", "\n")
	if text == "" {
		return fallback
	}

	blocks := strings.Split(text, "\n\n")
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}

		escaped := html.EscapeString(block)
		parts = append(parts, "<p>"+strings.ReplaceAll(escaped, "\n", "<br>")+"</p>")
	}

	if len(parts) == 0 {
		return fallback
	}

	return strings.Join(parts, "\n")
}
