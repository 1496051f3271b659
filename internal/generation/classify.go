package generation

import (
	"errors"
	"strings"
)

// classifyRule pairs a taxonomy kind with the raw-message patterns that
// select it. Rules are evaluated in order; the first match wins.
type classifyRule struct {
	kind     Kind
	patterns []string
}

// classifyRules is the priority-ordered pattern table. Patterns are
// matched case-insensitively against the raw failure message. The order
// matters: an invalid-credential signal must win over a generic 4xx, and
// anything unmatched falls through to KindUnknown rather than being
// guessed into a wrong kind.
var classifyRules = []classifyRule{
	{KindAuthentication, []string{
		"api key not valid",
		"api_key_invalid",
		"invalid api key",
		"unauthenticated",
		"401",
	}},
	{KindRateLimited, []string{
		"429",
		"resource_exhausted",
		"resource exhausted",
		"quota",
		"rate limit",
	}},
	{KindContentBlocked, []string{
		"safety",
		"prohibited_content",
		"blocked",
	}},
	{KindDataFormat, []string{
		"unexpected end of json",
		"invalid character",
		"cannot unmarshal",
	}},
	{KindCredentialScope, []string{
		"requested entity was not found",
		"permission_denied",
		"permission denied",
	}},
}

// Classify maps a raw failure to a ClassifiedError. It is a pure,
// deterministic function of the error: identical input always yields the
// identical kind, and the original message is preserved unmodified.
//
// An error that is already classified passes through unchanged, so
// classification applied at multiple layers never rewrites a kind.
func Classify(err error) *ClassifiedError {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, ErrMalformedResponse) {
		return &ClassifiedError{Kind: KindDataFormat, Message: err.Error(), cause: err}
	}
	if errors.Is(err, ErrMissingPayload) {
		return &ClassifiedError{Kind: KindDataFormat, Message: err.Error(), cause: err}
	}

	message := err.Error()
	lower := strings.ToLower(message)

	for _, rule := range classifyRules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lower, pattern) {
				return &ClassifiedError{Kind: rule.kind, Message: message, cause: err}
			}
		}
	}

	return &ClassifiedError{Kind: KindUnknown, Message: message, cause: err}
}
