package distribution

import (
	"context"
	"time"
)

type Service interface {
	// Distribute fans the summary out to every eligible subscriber of its
	// originating source. A summary is distributed at most once; a second
	// call fails with AlreadyDelivered.
	Distribute(ctx context.Context, summaryID string) (*Result, error)
}

type Config struct {
	// SendDelay is the minimum pause between successive recipient sends,
	// respecting the messaging channel's rate limit.
	SendDelay time.Duration `json:"send_delay"`
}

// Transport is the messaging channel the rendered summary is sent over. The
// classification predicates are transport-specific: only the transport knows
// which of its errors mean "this recipient is gone for good" versus "the
// whole channel is throttled".
type Transport interface {
	SendMessage(ctx context.Context, chatID, text string) (receiptID string, err error)
	IsUnreachable(err error) bool
	IsRateLimited(err error) bool
}

// Result summarizes one distribution run.
type Result struct {
	Status             string `json:"status"`
	MessagesSent       int    `json:"messages_sent"`
	EligibleRecipients int    `json:"eligible_recipients"`
}

const StatusDelivered = "delivered"
