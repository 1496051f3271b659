// Package redact provides utilities for scrubbing sensitive information
// from strings before they are logged. Provider errors can echo back API
// keys, bearer tokens, or connection strings, and log output must never
// carry those values.
package redact

import "regexp"

// Placeholders substituted for redacted content.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedTokenPlaceholder      = "[REDACTED_TOKEN]"
)

var (
	// Database connection strings with embedded credentials.
	dbConnRegex = regexp.MustCompile(`(?i)(postgres|postgresql|mysql)://[^@\s]+@`)

	// API keys and secrets in key=value or header form. Covers the
	// x-goog-api-key header echoed by provider error payloads.
	apiKeyRegex = regexp.MustCompile(
		`(?i)(api[_-]?key|x-goog-api-key|secret|authorization|bearer)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`,
	)

	// Standard three-part base64url JWT tokens.
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)

	// Google API keys are 39 characters starting with AIza.
	googleKeyRegex = regexp.MustCompile(`AIza[0-9A-Za-z_-]{35}`)
)

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := jwtTokenRegex.ReplaceAllString(input, RedactedTokenPlaceholder)
	result = googleKeyRegex.ReplaceAllString(result, RedactedKeyPlaceholder)
	result = dbConnRegex.ReplaceAllString(result, RedactedCredentialPlaceholder)
	result = apiKeyRegex.ReplaceAllString(result, "$1$2"+RedactedKeyPlaceholder)

	return result
}

// Error redacts sensitive information from an error's Error() output.
// Returns the empty string for a nil error.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
