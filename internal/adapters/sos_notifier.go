package adapters

import (
	"context"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	sossvc "github.com/y0shih/AlertMe-Nest/internal/sos/service"
)

// AlertDispatcher is implemented by *dispatch.Dispatcher.
type AlertDispatcher interface {
	Notify(ctx context.Context, alert dispatch.Alert) (dispatch.Result, error)
}

// SosNotifierAdapter implements sos/service.Notifier by handing the alert to
// the notification dispatcher.
type SosNotifierAdapter struct {
	dispatcher AlertDispatcher
}

func NewSosNotifier(dispatcher AlertDispatcher) *SosNotifierAdapter {
	return &SosNotifierAdapter{dispatcher: dispatcher}
}

func (a *SosNotifierAdapter) NotifySOS(ctx context.Context, alert sossvc.Alert) error {
	_, err := a.dispatcher.Notify(ctx, dispatch.Alert{
		Kind:      dispatch.KindSOS,
		SourceID:  alert.SosID,
		UserID:    alert.UserID,
		Lat:       alert.Lat,
		Lng:       alert.Lng,
		CreatedAt: alert.CreatedAt,
	})
	return err
}
