package classify

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/thezakman/tapik/internal/domain"
)

// Classification is pure and total: any (status code, body) pair maps to one
// of the domain statuses, never an error. Service-reported error tokens in
// the body are authoritative over the bare HTTP status, since several Google
// APIs report key failures inside a 200 response.

const maxSnippet = 160

// googleError covers both response shapes seen in the catalog: the standard
// error envelope ({"error":{...}}) and the Maps-style top-level status
// ({"status":"REQUEST_DENIED","error_message":"..."}).
type googleError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
}

var tokenStatus = map[string]domain.Status{
	"UNAUTHENTICATED":               domain.StatusUnauthenticated,
	"PERMISSION_DENIED":             domain.StatusPermissionDenied,
	"INVALID_ARGUMENT":              domain.StatusInvalidArgument,
	"REQUEST_DENIED":                domain.StatusRequestDenied,
	"RESOURCE_EXHAUSTED":            domain.StatusRateLimited,
	"OVER_QUERY_LIMIT":              domain.StatusRateLimited,
	"rateLimitExceeded":             domain.StatusRateLimited,
	"userRateLimitExceeded":         domain.StatusRateLimited,
	"dailyLimitExceeded":            domain.StatusRateLimited,
	"API_KEY_HTTP_REFERRER_BLOCKED": domain.StatusBlocked,
	"API_KEY_IP_ADDRESS_BLOCKED":    domain.StatusBlocked,
	"API_KEY_ANDROID_APP_BLOCKED":   domain.StatusBlocked,
	"API_KEY_SERVICE_BLOCKED":       domain.StatusBlocked,
}

// scanOrder keeps the raw-body fallback deterministic when a body happens to
// contain more than one known token.
var scanOrder = []string{
	"API_KEY_HTTP_REFERRER_BLOCKED",
	"API_KEY_IP_ADDRESS_BLOCKED",
	"API_KEY_ANDROID_APP_BLOCKED",
	"API_KEY_SERVICE_BLOCKED",
	"RESOURCE_EXHAUSTED",
	"OVER_QUERY_LIMIT",
	"rateLimitExceeded",
	"userRateLimitExceeded",
	"dailyLimitExceeded",
	"UNAUTHENTICATED",
	"PERMISSION_DENIED",
	"INVALID_ARGUMENT",
	"REQUEST_DENIED",
}

// Classify maps a raw HTTP outcome to a semantic status plus a diagnostic
// message (the service's own error message when one was found, or a body
// snippet for UNKNOWN results).
func Classify(httpStatus int, body []byte) (domain.Status, string) {
	if st, msg, ok := fromBody(body); ok {
		return st, msg
	}

	switch {
	case httpStatus == 429:
		return domain.StatusRateLimited, snippet(body)
	case httpStatus == 401:
		return domain.StatusUnauthenticated, snippet(body)
	case httpStatus == 403:
		return domain.StatusBlocked, snippet(body)
	case httpStatus >= 200 && httpStatus < 300:
		return domain.StatusWorked, ""
	case httpStatus >= 400 && httpStatus < 500:
		return domain.StatusBadRequest, snippet(body)
	default:
		return domain.StatusUnknown, snippet(body)
	}
}

func fromBody(body []byte) (domain.Status, string, bool) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", "", false
	}

	var ge googleError
	if err := json.Unmarshal(body, &ge); err == nil {
		if st, ok := tokenStatus[ge.Error.Status]; ok {
			return st, ge.Error.Message, true
		}
		for _, e := range ge.Error.Errors {
			if st, ok := tokenStatus[e.Reason]; ok {
				return st, ge.Error.Message, true
			}
		}
		if st, ok := tokenStatus[ge.Status]; ok {
			return st, ge.ErrorMessage, true
		}
		return "", "", false
	}

	// Not JSON: fall back to a raw token scan, the way the services embed
	// these markers in HTML and plain-text error pages.
	for _, tok := range scanOrder {
		if bytes.Contains(body, []byte(tok)) {
			return tokenStatus[tok], snippet(body), true
		}
	}
	return "", "", false
}

func snippet(body []byte) string {
	s := strings.ToValidUTF8(strings.Join(strings.Fields(string(body)), " "), "")
	if len(s) > maxSnippet {
		// Cut on a rune boundary so the snippet stays valid UTF-8.
		cut := maxSnippet
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
