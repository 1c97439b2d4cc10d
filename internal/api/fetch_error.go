package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// FetchError is returned for any non-2xx response. Transport failures come
// back as FETCH-coded structured errors instead.
type FetchError struct {
	StatusCode int
	Status     string // status text, e.g. "Not Found"
	Detail     string // server-provided detail, may be empty
}

func newFetchError(resp *http.Response, body []byte) *FetchError {
	return &FetchError{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Detail:     detail(body),
	}
}

// Error renders "Error <code>: <status> - <detail>", dropping the detail
// part when the server sent none.
func (e *FetchError) Error() string {
	msg := fmt.Sprintf("Error %d: %s", e.StatusCode, e.Status)
	if e.Detail != "" {
		msg += " - " + e.Detail
	}
	return msg
}

func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	// resp.Status looks like "418 I'm a teapot".
	if _, after, ok := strings.Cut(resp.Status, " "); ok {
		return after
	}
	return "Unknown status"
}

// detail pulls a human message out of the body: a JSON object's "message"
// (or "error"), a JSON string, or short plain text.
func detail(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}

	var s string
	if json.Unmarshal(body, &s) == nil {
		return s
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "<") || len(trimmed) > 200 {
		return ""
	}
	return trimmed
}
