package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	"github.com/y0shih/AlertMe-Nest/platform/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// messageSender is the part of the FCM client the sink uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushSink delivers notifications to the recipient's device through
// Firebase Cloud Messaging.
type PushSink struct {
	client messageSender
}

func NewPushSink(ctx context.Context, cfg config.PushConfig) (*PushSink, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.GetFirebaseCredentialsFile()))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase messaging client: %w", err)
	}
	return &PushSink{client: client}, nil
}

func (s *PushSink) Name() string { return NamePush }

func (s *PushSink) Send(ctx context.Context, to dispatch.Recipient, p dispatch.Payload) error {
	if strings.TrimSpace(to.DeviceToken) == "" {
		return ErrNoAddress
	}
	if _, err := s.client.Send(ctx, buildPushMessage(to, p)); err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}

func buildPushMessage(to dispatch.Recipient, p dispatch.Payload) *messaging.Message {
	content := render(p)

	androidPriority := "normal"
	apnsPriority := "5"
	if p.Priority == dispatch.PriorityHigh {
		androidPriority = "high"
		apnsPriority = "10"
	}

	return &messaging.Message{
		Token: to.DeviceToken,
		Notification: &messaging.Notification{
			Title: content.Title,
			Body:  content.Body,
		},
		Data: map[string]string{
			"kind":     p.Kind,
			"sourceId": p.SourceID.String(),
			"userId":   p.UserID.String(),
			"lat":      fmt.Sprintf("%f", p.Lat),
			"lng":      fmt.Sprintf("%f", p.Lng),
			"priority": p.Priority,
		},
		Android: &messaging.AndroidConfig{Priority: androidPriority},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": apnsPriority},
		},
	}
}
