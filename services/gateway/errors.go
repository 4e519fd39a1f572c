package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// RemoteError is the single failure shape for HTTP-layer errors from either
// remote service. The message is lifted from the response body when the
// service provides one, with a generic fallback. Callers own retry policy;
// this layer never retries.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// AsRemoteError unwraps err into a *RemoteError if there is one.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// remoteErrorFromResponse builds a RemoteError out of a non-2xx response.
// Both collaborators put their human-readable message under a different
// key, so try each before falling back to the status line.
func remoteErrorFromResponse(resp *http.Response) *RemoteError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var payload struct {
		Error         string `json:"error"`
		Message       string `json:"message"`
		StatusMessage string `json:"status_message"`
	}
	message := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case strings.TrimSpace(payload.Error) != "":
			message = payload.Error
		case strings.TrimSpace(payload.Message) != "":
			message = payload.Message
		case strings.TrimSpace(payload.StatusMessage) != "":
			message = payload.StatusMessage
		}
	}
	if message == "" {
		message = fmt.Sprintf("request failed: %s", resp.Status)
	}
	return &RemoteError{StatusCode: resp.StatusCode, Message: message}
}
