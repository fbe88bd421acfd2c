package monitor

import (
	"context"

	"github.com/pagescope/pagescope/pkg/browserapi"
	"github.com/pagescope/pagescope/pkg/capability"
)

// Notifications wraps the notification entry point. Every construction
// attempt is reported as shown before delegation: constructing a
// notification expresses display intent even when the environment ends up
// suppressing it. Permission state queries and requests pass through with no
// observation at all.
type Notifications struct {
	real browserapi.Notifications
	mon  *Monitor
}

var _ browserapi.Notifications = (*Notifications)(nil)

// New reports the construction attempt, then delegates.
func (n *Notifications) New(title string, opts browserapi.NotificationOptions) (browserapi.Notification, error) {
	n.mon.observe(context.Background(), capability.Notifications, capability.ActionShown,
		capability.NotificationContext{
			HasTitle: title != "",
			HasIcon:  opts.Icon != "",
			HasBody:  opts.Body != "",
		})

	return n.real.New(title, opts)
}

// Permission passes through unmodified.
func (n *Notifications) Permission() string {
	return n.real.Permission()
}

// RequestPermission passes through unmodified; a permission request is a
// prompt, not usage.
func (n *Notifications) RequestPermission(ctx context.Context) (string, error) {
	return n.real.RequestPermission(ctx)
}
