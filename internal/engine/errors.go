package engine

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned at startup when no provider credential is configured.
var ErrMissingAPIKey = errors.New("PEXELS_API_KEY is not set")

// FetchError is the single failure kind of the catalog client. It covers
// transport failures, non-2xx statuses and payloads without the expected list.
// Msg is safe to show to the user.
type FetchError struct {
	Op     string // "search" or "video"
	Status int    // HTTP status, 0 when the request never got a response
	Msg    string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return e.Op + ": " + e.Msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// UserMessage returns the text to surface inline for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return "Something went wrong"
}
