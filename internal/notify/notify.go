package notify

import (
	"context"

	"github.com/mprates/dailylesson/internal/logger"
)

// Notifier displays a short user-facing message under a stable identifier.
// Delivery is injected by the host; the core only depends on this contract.
type Notifier interface {
	Notify(ctx context.Context, id, message string)
}

// LogNotifier writes notifications to the log. It is the default sink when
// no host notification channel is wired.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, id, message string) {
	logger.FromContext(ctx).WithPrefix("notify").Info("[%s] %s", id, message)
}
