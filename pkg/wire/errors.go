package wire

import "errors"

var (
	// ErrMalformedFrame is returned when a frame fails structural JSON parsing.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrMissingType is returned when a frame parses but carries no type discriminator.
	ErrMissingType = errors.New("frame has no type discriminator")

	// ErrEncodeFrame is returned when an outbound frame cannot be serialized.
	ErrEncodeFrame = errors.New("failed to encode frame")
)
