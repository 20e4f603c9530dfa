package htmlsanitize

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "plain text",
			input:    "© Acme Inc.",
			contains: []string{"© Acme Inc."},
		},
		{
			name:     "inline formatting kept",
			input:    "<strong>Acme</strong> <em>since 1999</em>",
			contains: []string{"<strong>Acme</strong>", "<em>since 1999</em>"},
		},
		{
			name:     "script removed",
			input:    "Acme<script>alert('xss')</script>",
			contains: []string{"Acme"},
			excludes: []string{"<script", "alert"},
		},
		{
			name:     "javascript link removed",
			input:    `<a href="javascript:alert(1)">Terms</a>`,
			contains: []string{"Terms"},
			excludes: []string{"javascript:"},
		},
		{
			name:     "external link gets nofollow",
			input:    `<a href="https://example.com/terms">Terms</a>`,
			contains: []string{`href="https://example.com/terms"`, "nofollow", `target="_blank"`},
		},
		{
			name:     "structural elements dropped",
			input:    `<div><table><tr><td>x</td></tr></table></div>`,
			contains: []string{"x"},
			excludes: []string{"<div", "<table", "<td"},
		},
		{
			name:     "event handlers dropped",
			input:    `<span onclick="steal()" class="muted">hi</span>`,
			contains: []string{`class="muted"`, "hi"},
			excludes: []string{"onclick"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Sanitize() = %q, should contain %q", got, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Sanitize() = %q, should not contain %q", got, s)
				}
			}
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	in := `<strong>Acme</strong> <a href="https://example.com">site</a>`
	once := Sanitize(in)
	if twice := Sanitize(once); twice != once {
		t.Errorf("Sanitize() not idempotent: %q then %q", once, twice)
	}
}

func TestPrepareForDisplay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "   ", ""},
		{"plain text escaped", "a < b", "a &lt; b"},
		{"newlines", "line1\nline2", "line1<br>line2"},
		{"html sanitized", "<b>ok</b><script>x</script>", "<b>ok</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(PrepareForDisplay(tt.input)); got != tt.want {
				t.Errorf("PrepareForDisplay(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
