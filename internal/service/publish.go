package service

import (
	"context"
	"time"

	"github.com/Filipe-Ambrozio/stockwatch/internal/events"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
)

// publish never fails the caller; a lost event is logged and dropped.
func publish(ctx context.Context, pub events.Publisher, key, typ, actor string, payload any) {
	if pub == nil {
		return
	}
	ev := events.Event{Type: typ, Actor: actor, At: time.Now().UTC(), Payload: payload}
	if err := pub.PublishEvent(ctx, key, ev); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_failed", "event", typ, "error", err)
	}
}
