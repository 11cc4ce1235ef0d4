package pipeline

import "errors"

// ErrClosed is returned by Sender.Send when the downstream edge has
// already been torn down — the QueueSendError case from the design: the
// stage logs it and exits without forwarding further messages.
var ErrClosed = errors.New("pipeline: downstream queue closed")
