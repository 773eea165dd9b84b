package content

import "errors"

var (
	// ErrInvalidURL indicates the source address could not be used for a request.
	ErrInvalidURL = errors.New("invalid url")

	// ErrUnreachable indicates a transport failure while fetching the source.
	ErrUnreachable = errors.New("source unreachable")

	// ErrUnexpectedStatus indicates the source answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrUnsupportedType indicates the source is neither HTML nor plain text.
	ErrUnsupportedType = errors.New("unsupported content type")

	// ErrAddressNotAllowed indicates the source resolved to a loopback,
	// private, link-local or otherwise internal address.
	ErrAddressNotAllowed = errors.New("address not allowed")

	// ErrNoText indicates no readable text could be extracted.
	ErrNoText = errors.New("no readable text")
)
