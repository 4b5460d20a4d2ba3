// Package notification wires the alert dispatcher, the notification sinks,
// the in-app feed and the delivery outbox, and reacts to report events.
package notification

import (
	"context"
	"fmt"

	"github.com/y0shih/AlertMe-Nest/internal/events"
	apphttp "github.com/y0shih/AlertMe-Nest/internal/http"
	"github.com/y0shih/AlertMe-Nest/internal/notification/channels"
	"github.com/y0shih/AlertMe-Nest/internal/notification/dispatch"
	notifhandler "github.com/y0shih/AlertMe-Nest/internal/notification/handler"
	"github.com/y0shih/AlertMe-Nest/internal/notification/inapp"
	"github.com/y0shih/AlertMe-Nest/internal/notification/outbox"
	"github.com/y0shih/AlertMe-Nest/internal/notification/sse"
	"github.com/y0shih/AlertMe-Nest/platform/config"
	"github.com/y0shih/AlertMe-Nest/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	resourceTypeReport = "report"
	resourceTypeTask   = "task"
)

// Config combines the settings the notification module reads.
type Config interface {
	config.NotificationConfig
	config.SMTPConfig
	config.SMSConfig
	config.PushConfig
	config.PhoneConfig
	GetOutboxMaxAttempts() int
}

// Module handles notification fan-out, the in-app feed and outbox delivery.
type Module struct {
	log        *logger.Logger
	inApp      *inapp.Service
	sse        *sse.Service
	handler    *notifhandler.HTTPHandler
	outbox     *outbox.Repository
	deliverer  *outbox.Deliverer
	sink       *channels.Multi
	dispatcher *dispatch.Dispatcher
}

// New builds the module. External channels named in the config are
// constructed eagerly so misconfiguration fails at startup.
func New(ctx context.Context, pool *pgxpool.Pool, cfg Config, recipients dispatch.RecipientDirectory, log *logger.Logger) (*Module, error) {
	if log == nil {
		log = logger.Nop()
	}

	sseSvc := sse.New(log)
	inAppSvc := inapp.NewService(inapp.NewRepository(pool), log)
	inAppSvc.SetSSE(sseSvc)
	outboxRepo := outbox.New(pool)

	external, err := buildExternal(ctx, cfg)
	if err != nil {
		return nil, err
	}
	chain := composeChannels(cfg, log, inAppSvc, external, outboxRepo)

	externalSinks := make(map[string]dispatch.Sink, len(external))
	for name, ch := range external {
		externalSinks[name] = ch
	}

	sink := channels.NewMulti(log, chain...)
	m := &Module{
		log:        log,
		inApp:      inAppSvc,
		sse:        sseSvc,
		handler:    notifhandler.NewHTTPHandler(inAppSvc, sseSvc),
		outbox:     outboxRepo,
		deliverer:  outbox.NewDeliverer(outboxRepo, externalSinks, cfg.GetOutboxMaxAttempts(), log),
		sink:       sink,
		dispatcher: dispatch.New(recipients, sink, cfg.GetNotifyBatchConcurrency(), log),
	}

	names := make([]string, 0, len(chain))
	for _, ch := range chain {
		names = append(names, ch.Name())
	}
	log.Info("notification channels configured", "channels", names, "deliveryMode", cfg.GetNotifyDeliveryMode())
	return m, nil
}

func buildExternal(ctx context.Context, cfg Config) (map[string]channels.Channel, error) {
	external := make(map[string]channels.Channel)
	for _, name := range cfg.GetNotifyChannels() {
		switch name {
		case channels.NameEmail:
			external[name] = channels.NewEmailSink(cfg)
		case channels.NameSMS:
			external[name] = channels.NewSMSSink(cfg, cfg.GetPhoneDefaultRegion())
		case channels.NamePush:
			push, err := channels.NewPushSink(ctx, cfg)
			if err != nil {
				return nil, fmt.Errorf("push channel: %w", err)
			}
			external[name] = push
		}
	}
	return external, nil
}

// composeChannels orders the sinks as configured. In outbox mode external
// channels are replaced by deferred writers; log and in-app stay inline.
func composeChannels(cfg config.NotificationConfig, log *logger.Logger, inAppSvc *inapp.Service, external map[string]channels.Channel, writer *outbox.Repository) []channels.Channel {
	deferExternal := cfg.GetNotifyDeliveryMode() == config.DeliveryModeOutbox

	chain := make([]channels.Channel, 0, len(cfg.GetNotifyChannels()))
	for _, name := range cfg.GetNotifyChannels() {
		switch {
		case name == channels.NameLog:
			chain = append(chain, channels.NewLogSink(log))
		case name == channels.NameInApp:
			chain = append(chain, channels.NewInAppSink(inAppSvc))
		case channels.IsExternal(name):
			ch, ok := external[name]
			if !ok {
				continue
			}
			if deferExternal {
				chain = append(chain, channels.NewDeferred(name, writer))
				continue
			}
			chain = append(chain, ch)
		default:
			log.Warn("unknown notification channel ignored", "channel", name)
		}
	}
	return chain
}

func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers the in-app feed for every authenticated user.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/notifications"))
}

// Dispatcher fans alerts out to admins and staff.
func (m *Module) Dispatcher() *dispatch.Dispatcher { return m.dispatcher }

// InAppService exposes the per-user feed.
func (m *Module) InAppService() *inapp.Service { return m.inApp }

// Outbox exposes the outbox repository to the scheduler.
func (m *Module) Outbox() *outbox.Repository { return m.outbox }

// Close ends every open SSE stream.
func (m *Module) Close() {
	if m.sse != nil {
		m.sse.Close()
	}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.StaffAssigned{}.EventName(), m)
	bus.Subscribe(events.ReportResolved{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.StaffAssigned:
		return m.handleStaffAssigned(ctx, e)
	case events.ReportResolved:
		return m.handleReportResolved(ctx, e)
	case events.NotificationOutboxDue:
		return m.handleNotificationOutboxDue(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleStaffAssigned(ctx context.Context, e events.StaffAssigned) error {
	taskID := e.TaskID
	_, err := m.inApp.Send(ctx, inapp.SendParams{
		UserID:       e.AssigneeID,
		Title:        "New task assigned",
		Content:      fmt.Sprintf("You have been assigned to report %q.", e.ReportTitle),
		ResourceID:   &taskID,
		ResourceType: resourceTypeTask,
		Category:     inapp.CategoryInfo,
	})
	if err != nil {
		return fmt.Errorf("notify assignee %s: %w", e.AssigneeID, err)
	}
	return nil
}

func (m *Module) handleReportResolved(ctx context.Context, e events.ReportResolved) error {
	if e.OwnerID == uuid.Nil {
		return nil
	}
	reportID := e.ReportID
	_, err := m.inApp.Send(ctx, inapp.SendParams{
		UserID:       e.OwnerID,
		Title:        "Report resolved",
		Content:      fmt.Sprintf("Your report %q has been resolved.", e.ReportTitle),
		ResourceID:   &reportID,
		ResourceType: resourceTypeReport,
		Category:     inapp.CategorySuccess,
	})
	if err != nil {
		return fmt.Errorf("notify owner %s: %w", e.OwnerID, err)
	}
	return nil
}

func (m *Module) handleNotificationOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	if m.deliverer == nil {
		m.log.Debug("outbox deliverer not configured; skipping outbox due event", "outboxId", e.OutboxID)
		return nil
	}
	m.log.Info("processing outbox due event", "outboxId", e.OutboxID)
	return m.deliverer.Deliver(ctx, e.OutboxID)
}
