package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx answer from the provider. The nested status and
// message follow the API's standard error envelope when present.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("provider http %d (%s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("provider http %d", e.StatusCode)
}

// IsQuota reports whether err is a rate-limit/quota rejection. These are
// never worth retrying against the same model.
func IsQuota(err error) bool {
	var ae *APIError
	if !errors.As(err, &ae) {
		return false
	}
	return ae.StatusCode == http.StatusTooManyRequests || ae.Status == "RESOURCE_EXHAUSTED"
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func apiError(statusCode int, body []byte) error {
	ae := &APIError{StatusCode: statusCode}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		ae.Status = env.Error.Status
		ae.Message = strings.TrimSpace(env.Error.Message)
	}
	return ae
}
