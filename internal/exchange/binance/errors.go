package binance

import (
	"bytes"
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the venue. Body keeps the raw response
// payload so the CLI can print the venue's own error verbatim.
type APIError struct {
	Status int
	Code   int
	Msg    string
	Body   []byte
}

func (e APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("binance api error %d: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("binance http error %d: %s", e.Status, bytes.TrimSpace(e.Body))
}

func AsAPIError(err error) (APIError, bool) {
	if err == nil {
		return APIError{}, false
	}
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		return APIError{}, false
	}
	return apiErr, true
}
