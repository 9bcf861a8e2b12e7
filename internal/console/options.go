package console

import "pkt.systems/pslog"

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger used for lifecycle and host hand-off logging.
func WithLogger(logger pslog.Logger) Option {
	return func(c *Console) {
		c.logger = logger
	}
}

// WithStatus attaches the hosting environment's busy and progress surface.
func WithStatus(status Status) Option {
	return func(c *Console) {
		c.status = status
	}
}

// WithHistoryLimit bounds the command log. Zero or negative means
// unbounded.
func WithHistoryLimit(limit int) Option {
	return func(c *Console) {
		c.historyLimit = limit
	}
}

// WithMinWidth raises the minimum computed console width. Values below
// the default floor of 80 are ignored.
func WithMinWidth(w int) Option {
	return func(c *Console) {
		if w > c.minWidth {
			c.minWidth = w
		}
	}
}

// WithQueueSize sets the dispatcher queue depth.
func WithQueueSize(n int) Option {
	return func(c *Console) {
		c.queueSize = n
	}
}
