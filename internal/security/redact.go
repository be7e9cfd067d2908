// Package security masks credentials before they reach logs or the terminal.
package security

import (
	"io"
	"net/url"
	"regexp"
	"strings"
)

// secretPatterns match credentials that may be echoed by upstream errors.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AIza[0-9A-Za-z_\-]{30,}`),  // Google API keys
	regexp.MustCompile(`sk-[A-Za-z0-9_\-]{20,}`),    // OpenAI-style keys
	regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-\.]{16,}`),
	regexp.MustCompile(`(?i)(api[_-]?key|key|token)=([A-Za-z0-9_\-\.]{12,})`),
}

// MaskCredential keeps the first and last four characters of long values.
func MaskCredential(value string) string {
	if len(value) == 0 {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	if len(value) <= 8 {
		return value[:2] + strings.Repeat("*", len(value)-2)
	}
	return value[:4] + strings.Repeat("*", len(value)-8) + value[len(value)-4:]
}

// MaskSecrets masks every credential-looking substring of input.
func MaskSecrets(input string) string {
	result := input
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			if name, val, ok := strings.Cut(match, "="); ok {
				return name + "=" + MaskCredential(val)
			}
			if fields := strings.Fields(match); len(fields) == 2 {
				return fields[0] + " " + MaskCredential(fields[1])
			}
			return MaskCredential(match)
		})
	}
	return result
}

// ContainsSecret reports whether input carries a credential-looking value.
func ContainsSecret(input string) bool {
	for _, pattern := range secretPatterns {
		if pattern.MatchString(input) {
			return true
		}
	}
	return false
}

// MaskURL hides the user info, query values and path of a URL, leaving the
// scheme and host readable. Webhook URLs usually carry their token there.
func MaskURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return MaskCredential(raw)
	}
	masked := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		masked += "/***"
	}
	if u.RawQuery != "" {
		masked += "?***"
	}
	return masked
}

// RedactingWriter masks secrets in every write before passing it on.
type RedactingWriter struct {
	out io.Writer
}

// NewRedactingWriter wraps out.
func NewRedactingWriter(out io.Writer) *RedactingWriter {
	return &RedactingWriter{out: out}
}

// Write implements io.Writer. It reports len(p) on success so callers never
// see a short write when masking changes the length.
func (w *RedactingWriter) Write(p []byte) (int, error) {
	s := string(p)
	if !ContainsSecret(s) {
		return w.out.Write(p)
	}
	if _, err := io.WriteString(w.out, MaskSecrets(s)); err != nil {
		return 0, err
	}
	return len(p), nil
}
