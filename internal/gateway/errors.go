package gateway

import "errors"

// Kind classifies a gateway failure so callers can decide what to surface.
type Kind int

const (
	// KindTransport covers network and decoding failures plus any status the
	// other kinds do not claim. Retryable from the human's point of view.
	KindTransport Kind = iota
	// KindValidation is malformed input rejected by the server (400).
	KindValidation
	// KindAuth is a missing session or wrong passcode (401).
	KindAuth
	// KindForbidden is a non-owner touching someone else's event (403).
	KindForbidden
	// KindNotFound means the target event no longer exists (404).
	KindNotFound
)

// Error is a classified gateway failure. Message is the server's detail text
// when one was provided and is safe to show to the human verbatim.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// KindOf extracts the failure kind, defaulting to transport for anything
// that is not a gateway error.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindTransport
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == kind
}

func kindForStatus(status int) Kind {
	switch status {
	case 400:
		return KindValidation
	case 401:
		return KindAuth
	case 403:
		return KindForbidden
	case 404:
		return KindNotFound
	default:
		return KindTransport
	}
}
