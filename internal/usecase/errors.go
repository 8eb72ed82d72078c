package usecase

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput      = crerr.New("invalid input")
	ErrMalformedResponse = crerr.New("malformed response")
	ErrUnknownPlayer     = crerr.New("unknown player")
)

// HTTPError is returned for every non-2xx response from the draft API.
type HTTPError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GET %s: status=%d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status=%d: %s", e.URL, e.StatusCode, e.Message)
}
