package usecase

import "time"

const (
	// DefaultListLimit and MaxListLimit bound paginated listings.
	DefaultListLimit = 20
	MaxListLimit     = 100

	// SummaryCacheTTL is how long closed-day summaries are cached.
	// Past days never change (the log is append-only), so the TTL is
	// generous.
	SummaryCacheTTL = 7 * 24 * time.Hour
)
