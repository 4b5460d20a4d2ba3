// Package channels holds the notification sinks: log, in-app, email, SMS,
// push, plus composition helpers for fan-out across several of them and for
// deferring external channels through the outbox.
package channels

import (
	"errors"
	"fmt"
	"strings"

	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
)

const (
	NameLog   = "log"
	NameInApp = "inapp"
	NameEmail = "email"
	NameSMS   = "sms"
	NamePush  = "push"
)

// ErrNoAddress is returned when a recipient has no address on a channel.
// Multi treats it as a skip, not a failure.
var ErrNoAddress = errors.New("recipient has no address on this channel")

// Channel is a named sink.
type Channel interface {
	dispatch.Sink
	Name() string
}

// IsExternal reports whether the channel leaves the process and can be
// deferred through the outbox.
func IsExternal(name string) bool {
	switch name {
	case NameEmail, NameSMS, NamePush:
		return true
	default:
		return false
	}
}

type message struct {
	Title string
	Body  string
}

func render(p dispatch.Payload) message {
	switch p.Kind {
	case dispatch.KindSOS:
		title := "SOS alert"
		if p.Priority == dispatch.PriorityHigh {
			title = "URGENT: SOS alert"
		}
		return message{
			Title: title,
			Body: fmt.Sprintf("An emergency was reported at %.5f, %.5f. Alert id %s.",
				p.Lat, p.Lng, p.SourceID),
		}
	default:
		return message{
			Title: "Notification",
			Body:  fmt.Sprintf("%s %s", strings.ReplaceAll(p.Kind, "_", " "), p.SourceID),
		}
	}
}
