package relayr

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	json "github.com/goccy/go-json"
)

// ErrUnsupported marks operations the relayr backend does not expose.
// Calling such an operation fails immediately instead of silently doing
// nothing; check with errors.Is.
var ErrUnsupported = errors.New("operation not exposed by the relayr API")

// APIError is returned for every response with a status code outside
// [200,300). It keeps enough context to reproduce the call by hand:
// the method, the full URL and a curl command equivalent to the
// original request.
type APIError struct {
	// StatusCode is the HTTP status the server answered with.
	StatusCode int

	// Message is the server-supplied error message, taken from the
	// "message" field of the JSON error body. When the error body is
	// not JSON or lacks that field, Message falls back to the status
	// text and the raw body so the original failure is never masked.
	Message string

	// Method and URL identify the attempted call.
	Method string
	URL    string

	// Body is the raw error body as received.
	Body []byte

	// Replay is a curl command replicating the failed request.
	Replay string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s - %s %s - %s", e.Message, e.Method, e.URL, e.Replay)
}

// newAPIError normalizes a non-2xx response into an *APIError.
func newAPIError(status int, method, url string, body []byte, replay string) *APIError {
	msg := errorMessage(status, body)
	return &APIError{
		StatusCode: status,
		Message:    msg,
		Method:     method,
		URL:        url,
		Body:       body,
		Replay:     replay,
	}
}

// errorMessage extracts the server message from a JSON error body.
// A malformed error body is a secondary failure and must not crash the
// error path, so the status text and raw body stand in instead.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	text := http.StatusText(status)
	if text == "" {
		text = fmt.Sprintf("status %d", status)
	}
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return text
	}
	return fmt.Sprintf("%s: %s", text, raw)
}

// CurlCommand builds a curl command replicating an HTTP request, for
// replaying failed calls from a terminal. Headers are emitted in sorted
// order so the output is deterministic.
func CurlCommand(method, url string, body []byte, header http.Header) string {
	var b strings.Builder
	fmt.Fprintf(&b, "curl -X %s %s", strings.ToUpper(method), url)

	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " -H \"%s: %s\"", k, header.Get(k))
	}

	if len(body) > 0 {
		fmt.Fprintf(&b, " --data '%s'", string(body))
	}
	return b.String()
}
