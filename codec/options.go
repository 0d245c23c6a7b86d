package codec

import "log/slog"

// DefaultMaxDepth bounds recursion when no MaxDepth option is given.
const DefaultMaxDepth = 512

// Option configures a Codec.
type Option func(*Codec)

// MaxDepth sets the maximum nesting depth accepted by Serialize and
// Deserialize. Deeper graphs fail with ErrMaxDepth.
func MaxDepth(n int) Option {
	return func(c *Codec) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithLogger sets the logger for diagnostics such as skipped fields.
func WithLogger(l *slog.Logger) Option {
	return func(c *Codec) { c.log = l }
}
