// Package stream implements the incremental body codec shared by the message
// and streaming paths.
//
// An [Encoder] turns plaintext chunks into wire bytes (cipher, mask, base64)
// while accumulating the container digest; once the source ends, [Encoder.Flush]
// emits the last partial base64 quantum and [Encoder.Close] emits header,
// digest and trailer. A [Decoder] runs the same stages in reverse over the wire
// bytes of a body segment.
//
// Both are explicit state machines: each call to Advance consumes one chunk and
// returns whatever output is ready, so callers can drive them from any source
// without blocking inside the codec.
package stream
