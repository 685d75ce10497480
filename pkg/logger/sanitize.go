package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@*******.com")
func SanitizedEmail(email string) string {
	username, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "[invalid-email]"
	}

	if len(username) > 1 {
		username = username[:1] + strings.Repeat("*", len(username)-1)
	}

	// Keep the TLD, mask the rest
	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// RedactedAttr returns "[REDACTED]" for key in production and the real
// value elsewhere, so development logs keep verification codes readable
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

var sensitiveParams = []string{
	"password", "token", "secret", "api_key", "apikey", "email", "code", "otp", "auth",
}

// SanitizeQueryString reports whether the query string names a sensitive
// parameter and should be redacted as a whole
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return true
	}

	for name := range values {
		name = strings.ToLower(name)
		for _, param := range sensitiveParams {
			if strings.Contains(name, param) {
				return true
			}
		}
	}
	return false
}
