package channels

import (
	"context"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	"github.com/y0shih/AlertMe-Nest/internal/notification/outbox"

	"github.com/google/uuid"
)

// outboxWriter is the part of the outbox repository the sink uses.
type outboxWriter interface {
	Insert(ctx context.Context, p outbox.InsertParams) (uuid.UUID, error)
}

// Deferred stands in for an external channel: instead of sending, it
// records the notification in the outbox for the scheduler to deliver.
type Deferred struct {
	channel string
	outbox  outboxWriter
}

// NewDeferred defers the named external channel. The scheduler later hands
// the row to the real sink registered under the same name.
func NewDeferred(channel string, writer outboxWriter) *Deferred {
	return &Deferred{channel: channel, outbox: writer}
}

func (d *Deferred) Name() string { return d.channel }

func (d *Deferred) Send(ctx context.Context, to dispatch.Recipient, p dispatch.Payload) error {
	if !hasAddress(d.channel, to) {
		return ErrNoAddress
	}
	_, err := d.outbox.Insert(ctx, outbox.InsertParams{
		Channel:     d.channel,
		RecipientID: to.ID,
		Recipient:   to,
		Payload:     p,
	})
	return err
}

func hasAddress(channel string, to dispatch.Recipient) bool {
	switch channel {
	case NameEmail:
		return to.Email != ""
	case NameSMS:
		return to.Phone != ""
	case NamePush:
		return to.DeviceToken != ""
	default:
		return true
	}
}
