// ABOUTME: Error kinds returned by the request executor
// ABOUTME: Timeout, API status, contract and malformed-body failures

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TimeoutMessage is how every deadline failure is shown.
const TimeoutMessage = "Request timed out"

// ErrCanceled is returned when the caller's context is canceled mid-call.
var ErrCanceled = errors.New("request canceled")

// TimeoutError reports that the per-call deadline elapsed before the
// response body was fully read.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string { return TimeoutMessage }

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// APIError is a non-success HTTP status.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string { return e.Message }

// ContractError is a successful response missing a field the caller needs.
type ContractError struct {
	Endpoint string
	Field    string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("no %s returned by %s", e.Field, e.Endpoint)
}

// MalformedResponseError is a non-empty body that is not valid JSON.
type MalformedResponseError struct {
	Status int
	Body   []byte
	Err    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response (HTTP %d): %v", e.Status, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Message renders err as the text shown next to the failed operation.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return TimeoutMessage
	}
	return err.Error()
}

// newAPIError picks the message from detail, message, raw body, then the
// status text; the first non-empty one wins.
func newAPIError(resp *http.Response, body []byte) *APIError {
	msg := ""
	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) == nil {
		msg = fieldText(fields["detail"])
		if msg == "" {
			msg = fieldText(fields["message"])
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = statusLine(resp)
	}
	return &APIError{Status: resp.StatusCode, Message: msg, Body: body}
}

// fieldText returns a string field verbatim and any other non-empty value
// (validation error lists, objects, numbers) as compact JSON.
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	switch string(raw) {
	case "null", "false", "0":
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// statusLine is the reason phrase ("Not Found"), or the full status line
// for codes without a standard phrase.
func statusLine(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	if resp.Status != "" {
		return resp.Status
	}
	return strconv.Itoa(resp.StatusCode)
}
