package realtime

import (
	"errors"
	"fmt"
)

// ErrChannelClosed is returned by Send on a session that has gone away.
var ErrChannelClosed = errors.New("channel closed")

// ErrChannelFull is returned by Send when a session's outbound buffer is full.
var ErrChannelFull = errors.New("channel send buffer full")

type errPanicked struct{ value any }

func (e errPanicked) Error() string { return fmt.Sprintf("channel send panicked: %v", e.value) }
