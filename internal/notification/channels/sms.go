package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	"github.com/y0shih/AlertMe-Nest/platform/config"
	"github.com/y0shih/AlertMe-Nest/platform/phone"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the part of the Twilio client the sink uses.
type messageCreator interface {
	CreateMessage(params *api.CreateMessageParams) (*api.ApiV2010Message, error)
}

// SMSSink delivers notifications as text messages through Twilio.
type SMSSink struct {
	api        messageCreator
	fromNumber string
	region     string
}

func NewSMSSink(cfg config.SMSConfig, region string) *SMSSink {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.GetTwilioAccountSID(),
		Password: cfg.GetTwilioAuthToken(),
	})
	return &SMSSink{api: client.Api, fromNumber: cfg.GetTwilioFromNumber(), region: region}
}

func (s *SMSSink) Name() string { return NameSMS }

func (s *SMSSink) Send(ctx context.Context, to dispatch.Recipient, p dispatch.Payload) error {
	if strings.TrimSpace(to.Phone) == "" {
		return ErrNoAddress
	}
	number, err := phone.NormalizeE164(to.Phone, s.region)
	if err != nil {
		return fmt.Errorf("sms recipient: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	content := render(p)
	params := &api.CreateMessageParams{}
	params.SetTo(number)
	params.SetFrom(s.fromNumber)
	params.SetBody(content.Title + ": " + content.Body)

	if _, err := s.api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	return nil
}
