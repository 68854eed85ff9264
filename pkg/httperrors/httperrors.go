// Package httperrors parses structured error responses from LinkLens HTTP
// APIs into Go errors that preserve the server-provided message.
package httperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// minErrorStatusCode is the lowest HTTP status code treated as an error.
const minErrorStatusCode = 400

// HTTPError represents an HTTP API error response.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error (%d %s): %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP error: %d %s", e.StatusCode, e.Status)
}

// Parse inspects an HTTP response and returns an *HTTPError for status
// codes >= 400, extracting the "error" or "message" JSON field when present.
// It returns nil for success responses.
func Parse(resp *http.Response) error {
	if resp.StatusCode < minErrorStatusCode {
		return nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    fmt.Sprintf("failed to read error response body: %v", err),
		}
	}

	bodyStr := string(bodyBytes)

	var jsonErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}

	if json.Unmarshal(bodyBytes, &jsonErr) == nil {
		msg := jsonErr.Error
		if msg == "" {
			msg = jsonErr.Message
		}
		if msg != "" {
			return &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       bodyStr,
				Message:    msg,
			}
		}
	}

	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       bodyStr,
		Message:    bodyStr,
	}
}

// StatusCode extracts the HTTP status code from an error if it wraps an
// *HTTPError.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
