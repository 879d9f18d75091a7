package bridge

import "errors"

var (
	// ErrStopped is returned by Submit once the coordinator has been stopped.
	ErrStopped = errors.New("bridge: coordinator stopped")

	// ErrAlreadyServed is returned when Serve is called a second time. The
	// bridge accepts exactly one connection per process.
	ErrAlreadyServed = errors.New("bridge: acceptor already served its connection")

	// ErrShutdownTimeout indicates the network goroutine did not return in time.
	ErrShutdownTimeout = errors.New("bridge: shutdown timed out")

	// ErrFieldCount indicates a state line without exactly 13 fields.
	ErrFieldCount = errors.New("bridge: state line must have 13 fields")
)
