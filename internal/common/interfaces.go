package common

import "context"

type Observer interface {
	Update(event NotificationEvent) error
	Name() string
}

type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	Notify(event NotificationEvent)
	NotifyAsync(event NotificationEvent)
}

// PushSender delivers a push notification to a set of device tokens. The real
// transport (FCM, APNs) lives behind this seam; the default implementation
// only logs.
type PushSender interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) error
}
