// Package htmlsanitize cleans the operator-supplied site footer HTML with
// bluemonday before it is rendered unescaped.
package htmlsanitize

import (
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// footerPolicy allows inline text formatting and links; nothing structural.
func footerPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("p", "br", "span", "small", "strong", "em", "b", "i", "u")
		p.AllowAttrs("class").OnElements("span", "p", "small")

		p.AllowStandardURLs()
		p.AllowURLSchemes("http", "https", "mailto")
		p.AllowAttrs("href").OnElements("a")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)

		policy = p
	})
	return policy
}

// Sanitize strips everything the footer policy does not allow.
func Sanitize(html string) string {
	if html == "" {
		return ""
	}
	return footerPolicy().Sanitize(html)
}

// SanitizeToHTML sanitizes html and marks the result safe for templates.
func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}

// IsPlainText reports whether content has no tags.
func IsPlainText(content string) bool {
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}

// PlainTextToHTML escapes text and turns newlines into <br>.
func PlainTextToHTML(text string) string {
	if text == "" {
		return ""
	}
	return strings.ReplaceAll(template.HTMLEscapeString(text), "\n", "<br>")
}

// PrepareForDisplay accepts plain text or HTML and returns safe markup.
func PrepareForDisplay(content string) template.HTML {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if IsPlainText(content) {
		return template.HTML(PlainTextToHTML(content))
	}
	return SanitizeToHTML(content)
}
