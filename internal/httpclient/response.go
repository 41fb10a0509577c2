package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"strings"

	"github.com/pesio-ai/erp-client/internal/errors"
)

const maxErrorText = 200

// envelope is the backend's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Response is a successful backend response. JSON responses fill Data and
// Message; anything else fills Text.
type Response struct {
	Status  int
	Data    json.RawMessage
	Message string
	Text    string

	plain bool
}

// parseResponse normalizes a raw response. A JSON body whose envelope lacks a
// truthy success flag is an error, whatever the HTTP status.
func parseResponse(status int, contentType string, body []byte) (*Response, error) {
	ok := status >= 200 && status < 300

	if isJSON(contentType) {
		var env envelope
		if err := json.Unmarshal(body, &env); err != nil {
			if !ok {
				return nil, errors.FromStatus(status, "")
			}
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to parse response body")
		}
		if !ok || !env.Success {
			return nil, errors.FromStatus(status, env.Message)
		}
		return &Response{Status: status, Data: env.Data, Message: env.Message}, nil
	}

	if !ok {
		return nil, errors.FromStatus(status, abbreviate(strings.TrimSpace(string(body)), maxErrorText))
	}
	return &Response{Status: status, Text: string(body), plain: true}, nil
}

// decode writes the response payload into out. Only a *string accepts a
// non-JSON body; for any other out it has no envelope and is an error.
func (r *Response) decode(out any) error {
	if r.plain {
		if s, ok := out.(*string); ok {
			*s = r.Text
			return nil
		}
		return r.unexpectedText()
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], r.Data...)
		return nil
	}
	if len(r.Data) == 0 || bytes.Equal(r.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to decode response data")
	}
	return nil
}

func (r *Response) unexpectedText() *errors.Error {
	text := abbreviate(strings.TrimSpace(r.Text), maxErrorText)
	msg := fmt.Sprintf("Unexpected non-JSON response with status %d", r.Status)
	if text != "" {
		msg += ": " + text
	}
	return &errors.Error{Code: errors.ErrCodeRequestFailed, Message: msg, Status: r.Status}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func abbreviate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
