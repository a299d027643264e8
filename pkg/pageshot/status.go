package pageshot

import (
	"errors"
	"fmt"
)

// LoadStatus is the terminal outcome of a navigation.
type LoadStatus string

const (
	StatusSuccess LoadStatus = "success"
	StatusFail    LoadStatus = "fail"
)

// Exit codes returned by Runner.Run.
const (
	ExitSuccess      = 0
	ExitLoadFailed   = 1
	ExitRenderFailed = 3 // only with StrictRender
)

// LoadFailedMessage is printed to stdout when the page does not load.
const LoadFailedMessage = "page load failed"

var (
	ErrAlreadyRun      = errors.New("runner has already performed its page load")
	ErrUnknownEngine   = errors.New("unknown engine")
	ErrInvalidViewport = errors.New("invalid viewport")
	ErrEmptyImage      = errors.New("rendered image is empty")
)

// LoadError describes why a navigation ended with StatusFail.
type LoadError struct {
	URL        string
	StatusCode int // HTTP status of the main document, 0 if no response arrived
	Err        error
}

func (e *LoadError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("load %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("load %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("load %s: status %d", e.URL, e.StatusCode)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }

// checkStatusCode turns an HTTP error status into a LoadError.
func checkStatusCode(url string, code int, failOnHTTPError bool) (LoadStatus, error) {
	if failOnHTTPError && code >= 400 {
		return StatusFail, &LoadError{URL: url, StatusCode: code}
	}
	return StatusSuccess, nil
}
