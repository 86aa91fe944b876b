package redact

import (
	"os"
	"regexp"
	"strings"
)

const placeholder = "[REDACTED]"

// secretPatterns are regex heuristics for common credential shapes.
var secretPatterns = []*regexp.Regexp{
	// GitHub tokens
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	// Fine-grained personal access tokens
	regexp.MustCompile(`github_pat_[A-Za-z0-9_]{22,}`),
	// Bearer / token authorization headers
	regexp.MustCompile(`(?i)(Bearer|token)\s+[A-Za-z0-9._-]{20,}`),
	// Basic auth credentials embedded in URLs
	regexp.MustCompile(`://[^/\s:@]+:[^/\s@]+@`),
	// Generic secrets/tokens/passwords in assignments
	regexp.MustCompile(`(?i)(secret|token|password|passwd|credential)\s*[:=]\s*["']([^"']{8,})["']`),
	// JWTs (three base64 segments separated by dots)
	regexp.MustCompile(`eyJ[A-Za-z0-9_-]{10,}\.eyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}`),
}

// Secrets replaces detected credentials in text with [REDACTED].
// The value of GITHUB_TOKEN is always replaced, whatever its shape.
func Secrets(text string) string {
	result := text
	if tok := os.Getenv("GITHUB_TOKEN"); len(tok) >= 8 {
		result = strings.ReplaceAll(result, tok, placeholder)
	}
	for _, pat := range secretPatterns {
		result = pat.ReplaceAllString(result, placeholder)
	}
	return result
}
