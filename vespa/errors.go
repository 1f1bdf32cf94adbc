// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Xyne Contributors

package vespa

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes attached to oops errors raised by the transport.
const (
	CodeSearchFailed = "SEARCH_FAILED"
	CodeInsertFailed = "INSERT_FAILED"
	CodeNotFound     = "DOC_NOT_FOUND"
	CodeThrottled    = "THROTTLED"
	CodeTransport    = "VESPA_UNAVAILABLE"
)

// ErrNotFound is returned when a required document does not exist.
// Callers that expect absence should use GetDocumentOrNil instead.
var ErrNotFound = errors.New("document not found")

// StatusError is a non-2xx response from Vespa.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vespa %s: status %d: %s", e.Op, e.Status, e.Body)
}

// IsThrottled reports whether the error is a feed-throttle rejection,
// the only transport error the insert path retries.
func IsThrottled(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusTooManyRequests
}

// IsNotFound reports whether the error is a missing-document result.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}
