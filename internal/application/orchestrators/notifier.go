package orchestrators

import (
	"context"

	emailAdapter "cadetportal/internal/adapters/email"
)

// ChangeNotifier is told which live views a write invalidated.
type ChangeNotifier interface {
	SessionsChanged(ctx context.Context)
	MarksChanged(ctx context.Context, sessionID string)
	RosterChanged(ctx context.Context)
}

// Mailer sends one transactional email.
type Mailer interface {
	Send(ctx context.Context, req emailAdapter.SendRequest) (emailAdapter.SendResult, error)
}

// NopNotifier discards change notifications.
type NopNotifier struct{}

func (NopNotifier) SessionsChanged(context.Context)      {}
func (NopNotifier) MarksChanged(context.Context, string) {}
func (NopNotifier) RosterChanged(context.Context)        {}

func notifierOrNop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return NopNotifier{}
	}
	return n
}
