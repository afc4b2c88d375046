package retryx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxBodySnippet = 500

// StatusError is returned when a request completes with a non-success status
// that the policy does not retry, or once retries are exhausted. It carries
// enough of the response for callers to distinguish "not found" from "rate
// limited forever" without re-reading the body.
type StatusError struct {
	Endpoint   string
	StatusCode int

	// Code and Message come from the marketplace error envelope when the
	// body parses as one; otherwise Body holds a raw snippet.
	Code    string
	Message string
	Body    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("retryx: %s returned %d", e.Endpoint, e.StatusCode)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsStatus reports whether err is a StatusError with the given status code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}

// newStatusError drains the response body and extracts error details from the
// marketplace's JSON error envelope, falling back to a raw text snippet.
func newStatusError(endpoint string, resp *http.Response) *StatusError {
	se := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
	if err != nil || len(body) == 0 {
		return se
	}

	var envelope struct {
		Errors []struct {
			Code        string `json:"code"`
			Error       string `json:"error"`
			Message     string `json:"message"`
			UserMessage string `json:"userMessage"`
			Details     string `json:"details"`
			Path        string `json:"path"`
		} `json:"errors"`
		Code        string `json:"code"`
		Error       string `json:"error"`
		Message     string `json:"message"`
		Description string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		if snippet := strings.TrimSpace(string(body)); snippet != "" {
			if len(snippet) > maxBodySnippet {
				snippet = snippet[:maxBodySnippet]
			}
			se.Body = snippet
		}
		return se
	}

	for _, entry := range envelope.Errors {
		if se.Code == "" {
			se.Code = firstNonEmpty(entry.Code, entry.Error)
		}
		if se.Message == "" {
			se.Message = firstNonEmpty(entry.Message, entry.UserMessage)
		}
		if se.Code != "" && se.Message != "" {
			break
		}
	}
	if se.Code == "" {
		se.Code = firstNonEmpty(envelope.Code, envelope.Error)
	}
	if se.Message == "" {
		se.Message = firstNonEmpty(envelope.Message, envelope.Description)
	}
	return se
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
