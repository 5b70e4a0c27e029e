package eventstore

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/quhixcal/quhixcal/pkg/event"
)

// StatusError is returned when the event service answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	// Body holds the beginning of the response body, if any.
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("event service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("event service returned status %d: %s", e.StatusCode, e.Body)
}

// FetchError means the event list could not be loaded. The previously confirmed list is kept.
type FetchError struct {
	Err error
	// AfterCreate is set when the listing that follows a successful create failed.
	// The new event is stored by the service but is not in the local list yet.
	AfterCreate bool
}

func (e *FetchError) Error() string {
	if e.AfterCreate {
		return fmt.Sprintf("event created but reloading events failed: %v", e.Err)
	}
	return fmt.Sprintf("failed to load events: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CreateError means the service did not accept the event. Nothing was changed locally.
type CreateError struct {
	Err error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create event: %v", e.Err)
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// UserMessage renders an error from this package or from event validation as text fit for a user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *event.ValidationError
	if errors.As(err, &validationErr) {
		return "Please check the event: " + validationErr.Message + "."
	}

	cause := causeMessage(err)

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.AfterCreate {
			return "The event was saved, but the calendar could not be refreshed (" + cause + "). Try reloading."
		}
		return "Could not load events (" + cause + "). Your calendar shows the last known state."
	}

	var createErr *CreateError
	if errors.As(err, &createErr) {
		return "Could not save the event (" + cause + "). Your input was kept, please try again."
	}

	return err.Error()
}

func causeMessage(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("the server answered with status %d", statusErr.StatusCode)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the server did not answer in time"
	}
	if errors.Is(err, context.Canceled) {
		return "the request was cancelled"
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return "the server is unreachable"
	}
	return "unexpected response from the server"
}
