package channels

import (
	"context"
	"errors"
	"fmt"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	"github.com/y0shih/AlertMe-Nest/internal/notification/inapp"
	"github.com/y0shih/AlertMe-Nest/platform/logger"
)

// LogSink writes every notification to the structured log.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Name() string { return NameLog }

func (s *LogSink) Send(_ context.Context, to dispatch.Recipient, p dispatch.Payload) error {
	s.log.Info("notification",
		"recipientId", to.ID,
		"role", to.Role,
		"kind", p.Kind,
		"sourceId", p.SourceID,
		"userId", p.UserID,
		"lat", p.Lat,
		"lng", p.Lng,
		"priority", p.Priority,
	)
	return nil
}

// InAppSink stores the notification for the recipient and pushes it live.
type InAppSink struct {
	svc *inapp.Service
}

func NewInAppSink(svc *inapp.Service) *InAppSink {
	return &InAppSink{svc: svc}
}

func (s *InAppSink) Name() string { return NameInApp }

func (s *InAppSink) Send(ctx context.Context, to dispatch.Recipient, p dispatch.Payload) error {
	msg := render(p)
	sourceID := p.SourceID
	_, err := s.svc.Send(ctx, inapp.SendParams{
		UserID:       to.ID,
		Title:        msg.Title,
		Content:      msg.Body,
		ResourceID:   &sourceID,
		ResourceType: p.Kind,
		Category:     inapp.CategoryAlert,
		Priority:     p.Priority,
	})
	return err
}

// Multi sends through every channel in order. A failure on one channel does
// not skip the rest; failures are joined into the returned error.
type Multi struct {
	channels []Channel
	log      *logger.Logger
}

func NewMulti(log *logger.Logger, channels ...Channel) *Multi {
	if log == nil {
		log = logger.Nop()
	}
	return &Multi{channels: channels, log: log}
}

func (m *Multi) Name() string { return "multi" }

// Channels returns the composed channels in send order.
func (m *Multi) Channels() []Channel {
	return m.channels
}

func (m *Multi) Send(ctx context.Context, to dispatch.Recipient, p dispatch.Payload) error {
	var errs []error
	for _, ch := range m.channels {
		err := ch.Send(ctx, to, p)
		switch {
		case err == nil:
			m.log.NotificationDelivered(ch.Name(), to.ID.String(), p.Kind, p.Priority)
		case errors.Is(err, ErrNoAddress):
			m.log.Debug("notification channel skipped", "channel", ch.Name(), "recipientId", to.ID)
		default:
			m.log.NotificationFailed(ch.Name(), to.ID.String(), p.Kind, err)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
		}
	}
	return errors.Join(errs...)
}
