package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/snapmatch/client-engine/internal/core/domain"
)

const maxErrorBody = 4 << 10

// errorEnvelope is the backend's canonical error payload:
// {"error": "<message>", "code": "<machine-readable kind>"}.
// Older backend versions omit code, leaving only the message text.
type errorEnvelope struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// codeAuthRequired is the structured error kind for an invalid or expired
// credential. It is authoritative whenever present.
const codeAuthRequired = "AUTH_REQUIRED"

// authRequiredPatterns is the legacy fallback: backends that predate the
// structured code signal credential expiry only through the message text.
var authRequiredPatterns = []string{"authentication required", "sign in"}

// badCredentialsPatterns marks a 401 as a rejected login attempt rather than
// an expired session: the caller never held a valid credential to lose.
var badCredentialsPatterns = []string{"invalid credentials", "invalid email or password"}

func matchesAny(msg string, patterns []string) bool {
	msg = strings.ToLower(msg)
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// decodeError maps an error response onto the domain error taxonomy. The
// structured code takes precedence, then the HTTP status, then the message
// heuristic; a 401 whose message marks a rejected login maps to
// ErrInvalidCredentials rather than ErrAuthExpired. Anything unclassified,
// 5xx included, comes back as a plain wrapped error, which callers treat as
// transient.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	msg := env.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized && env.Code != codeAuthRequired &&
		matchesAny(msg, badCredentialsPatterns):
		return fmt.Errorf("%s: %w", msg, domain.ErrInvalidCredentials)
	case env.Code == codeAuthRequired,
		resp.StatusCode == http.StatusUnauthorized,
		matchesAny(msg, authRequiredPatterns):
		return fmt.Errorf("%s: %w", msg, domain.ErrAuthExpired)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s: %w", msg, domain.ErrForbidden)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%s: %w", msg, domain.ErrValidation)
	default:
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, msg)
	}
}
