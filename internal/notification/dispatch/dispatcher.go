// Package dispatch fans an alert out to every admin and staff member through
// a pluggable Sink. Admins are always notified before staff.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	identitydomain "github.com/y0shih/AlertMe-Nest/internal/identity/domain"
	"github.com/y0shih/AlertMe-Nest/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	KindSOS = "sos"

	PriorityHigh   = "high"
	PriorityNormal = "normal"
)

// Recipient is a resolved identity with whatever contact channels it has.
type Recipient struct {
	ID          uuid.UUID `json:"id"`
	Role        string    `json:"role"`
	Email       string    `json:"email"`
	Username    string    `json:"username,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	DeviceToken string    `json:"deviceToken,omitempty"`
}

// Payload is what a sink delivers to one recipient.
type Payload struct {
	Kind      string    `json:"kind"`
	SourceID  uuid.UUID `json:"sourceId"`
	UserID    uuid.UUID `json:"userId"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Priority  string    `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
}

// Alert is the event being fanned out.
type Alert struct {
	Kind      string
	SourceID  uuid.UUID
	UserID    uuid.UUID
	Lat       float64
	Lng       float64
	CreatedAt time.Time
}

func (a Alert) payload(priority string) Payload {
	return Payload{
		Kind:      a.Kind,
		SourceID:  a.SourceID,
		UserID:    a.UserID,
		Lat:       a.Lat,
		Lng:       a.Lng,
		Priority:  priority,
		CreatedAt: a.CreatedAt,
	}
}

// Sink delivers one payload to one recipient.
type Sink interface {
	Send(ctx context.Context, to Recipient, payload Payload) error
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(ctx context.Context, to Recipient, payload Payload) error

func (f SinkFunc) Send(ctx context.Context, to Recipient, payload Payload) error {
	return f(ctx, to, payload)
}

// RecipientDirectory lists identities holding a role, oldest first.
type RecipientDirectory interface {
	ListByRole(ctx context.Context, role string) ([]Recipient, error)
}

// Result counts delivery outcomes for one alert.
type Result struct {
	Attempted int
	Delivered int
	Failed    int
}

type tier struct {
	role     string
	priority string
}

var tiers = []tier{
	{role: identitydomain.RoleAdmin, priority: PriorityHigh},
	{role: identitydomain.RoleStaff, priority: PriorityNormal},
}

type Dispatcher struct {
	directory   RecipientDirectory
	sink        Sink
	concurrency int
	log         *logger.Logger
}

// New builds a dispatcher. concurrency bounds parallel sends within one tier;
// values below 1 mean sequential delivery.
func New(directory RecipientDirectory, sink Sink, concurrency int, log *logger.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{directory: directory, sink: sink, concurrency: concurrency, log: log}
}

// Notify delivers the alert to every admin, then to every staff member.
// Delivery failures are counted and logged but never stop the fan-out. The
// returned error only reports recipient lookups that failed; the other tier
// is still attempted.
func (d *Dispatcher) Notify(ctx context.Context, alert Alert) (Result, error) {
	var (
		result Result
		errs   []error
	)

	for _, t := range tiers {
		recipients, err := d.directory.ListByRole(ctx, t.role)
		if err != nil {
			d.log.Error("recipient lookup failed", "role", t.role, "kind", alert.Kind, "error", err)
			errs = append(errs, fmt.Errorf("list %s recipients: %w", t.role, err))
			continue
		}

		delivered, failed := d.deliverTier(ctx, recipients, alert.payload(t.priority))
		result.Attempted += len(recipients)
		result.Delivered += delivered
		result.Failed += failed
	}

	d.log.Info("alert dispatched",
		"kind", alert.Kind,
		"sourceId", alert.SourceID,
		"attempted", result.Attempted,
		"delivered", result.Delivered,
		"failed", result.Failed,
	)
	return result, errors.Join(errs...)
}

// deliverTier returns only after every send in the tier has finished, which
// is what keeps admins strictly ahead of staff.
func (d *Dispatcher) deliverTier(ctx context.Context, recipients []Recipient, payload Payload) (int, int) {
	var delivered, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, r := range recipients {
		g.Go(func() error {
			if err := d.sink.Send(ctx, r, payload); err != nil {
				failed.Add(1)
				d.log.NotificationFailed("dispatch", r.ID.String(), payload.Kind, err)
				return nil
			}
			delivered.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return int(delivered.Load()), int(failed.Load())
}
