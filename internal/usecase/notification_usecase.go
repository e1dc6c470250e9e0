package usecase

import (
	"context"
	"time"

	"github.com/andriel300/tec-shop-sub006/internal/domain/entity"
	"github.com/andriel300/tec-shop-sub006/internal/domain/service"
	"github.com/andriel300/tec-shop-sub006/internal/event"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/eventbus"
	"github.com/andriel300/tec-shop-sub006/internal/infrastructure/metrics"
	"github.com/andriel300/tec-shop-sub006/pkg/errors"
	"github.com/andriel300/tec-shop-sub006/pkg/logger"
)

// NotificationUseCase renders templated notifications and publishes them
// to the bus per target audience. Delivery is at-most-once and
// fire-and-forget: bus unavailability is logged and dropped, never
// surfaced to callers. Template failures are programmer errors and are
// surfaced.
type NotificationUseCase struct {
	templates      *service.TemplateEngine
	bus            eventbus.Client
	publishTimeout time.Duration
	now            func() time.Time
}

func NewNotificationUseCase(templates *service.TemplateEngine, bus eventbus.Client, publishTimeout time.Duration) *NotificationUseCase {
	return &NotificationUseCase{
		templates:      templates,
		bus:            bus,
		publishTimeout: publishTimeout,
		now:            time.Now,
	}
}

// SetClock replaces the dispatcher's time source. Test hook.
func (uc *NotificationUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

func (uc *NotificationUseCase) NotifyCustomer(ctx context.Context, userID, templateID string, variables map[string]string, metadata map[string]interface{}) error {
	return uc.notify(ctx, entity.TargetCustomer, userID, templateID, variables, metadata)
}

func (uc *NotificationUseCase) NotifySeller(ctx context.Context, sellerAuthID, templateID string, variables map[string]string, metadata map[string]interface{}) error {
	return uc.notify(ctx, entity.TargetSeller, sellerAuthID, templateID, variables, metadata)
}

// NotifyAdmin broadcasts to the admin audience; there is no specific
// target account.
func (uc *NotificationUseCase) NotifyAdmin(ctx context.Context, templateID string, variables map[string]string, metadata map[string]interface{}) error {
	return uc.notify(ctx, entity.TargetAdmin, entity.AdminBroadcastID, templateID, variables, metadata)
}

func (uc *NotificationUseCase) notify(ctx context.Context, targetType entity.NotificationTarget, targetID, templateID string, variables map[string]string, metadata map[string]interface{}) error {
	rendered, err := uc.templates.Render(templateID, variables)
	if err != nil {
		return err
	}

	notification := entity.NotificationEvent{
		TargetType: targetType,
		TargetID:   targetID,
		TemplateID: templateID,
		Title:      rendered.Title,
		Message:    rendered.Message,
		Type:       rendered.Type,
		Metadata:   metadata,
		Timestamp:  uc.now(),
	}

	env, err := event.Encode(event.TypeNotification, event.MaxVersion(event.TypeNotification), notification)
	if err != nil {
		return err
	}
	raw, err := env.Bytes()
	if err != nil {
		return err
	}

	key := notification.PartitionKey()

	if !uc.bus.IsConnected() {
		logger.LogPublishError(event.TopicNotifications, key, errors.BusUnavailable(event.TopicNotifications, nil))
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return nil
	}

	publishCtx := ctx
	if uc.publishTimeout > 0 {
		var cancel context.CancelFunc
		publishCtx, cancel = context.WithTimeout(ctx, uc.publishTimeout)
		defer cancel()
	}

	if err := uc.bus.Publish(publishCtx, event.TopicNotifications, key, raw); err != nil {
		logger.LogPublishError(event.TopicNotifications, key, err)
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return nil
	}

	metrics.NotificationsTotal.WithLabelValues("published").Inc()
	return nil
}
