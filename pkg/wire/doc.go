// Package wire defines the frame vocabulary of the realtime notification
// protocol and the codec between raw JSON frames and typed envelopes.
//
// Every frame on the wire is a single JSON object carrying a "type"
// discriminator. Inbound frames decode into an Envelope; outbound control
// frames are built with the Ping, JoinRoom and LeaveRoom constructors and
// serialized with Encode.
//
// Decoding is synchronous and idempotent per frame. A malformed frame yields
// an error the caller is expected to log and drop; it never tears down the
// connection.
//
// Basic usage:
//
//	env, err := wire.Decode(data)
//	if err != nil {
//		// log and drop the frame
//	}
//
//	data, err := wire.Encode(wire.JoinRoom("project-7"))
package wire
