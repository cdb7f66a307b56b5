package container

import "errors"

var (
	// ErrFormat is returned when a container is malformed: bad tag, offsets
	// out of range, undecodable segments or unexpected header fields.
	ErrFormat = errors.New("malformed container")

	// ErrIntegrity is returned when the stored digest does not match the
	// digest recomputed over the body and header segments.
	ErrIntegrity = errors.New("container digest mismatch")
)
