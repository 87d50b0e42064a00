package webhook

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/fanout"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/sirupsen/logrus"
)

// Relay - подписчик fan-out, пересылающий изменения полевым командам через очередь вебхуков
type Relay struct {
	broker    *fanout.Broker
	publisher WebhookPublisher
	logger    *logrus.Logger
}

func NewRelay(broker *fanout.Broker, publisher WebhookPublisher, logger *logrus.Logger) *Relay {
	return &Relay{
		broker:    broker,
		publisher: publisher,
		logger:    logger,
	}
}

// Run пересылает изменения до отмены ctx. После переполнения очереди
// переподписывается и отправляет получателям событие resync.
func (r *Relay) Run(ctx context.Context) {
	log := r.logger.WithFields(logrus.Fields{
		"component": "webhook",
		"method":    "Relay.Run",
	})
	sub := r.broker.Subscribe()
	lastSeq := sub.StartSeq()
	for {
		for msg := range sub.Messages(ctx) {
			switch msg.Kind {
			case fanout.MessageChange:
				lastSeq = msg.Change.Seq
				r.publish(ctx, WebhookEvent{Type: EventIncidentChanged, Change: msg.Change})
			case fanout.MessageBroadcast:
				lastSeq = msg.Seq
				r.publish(ctx, WebhookEvent{Type: EventBroadcast, Broadcast: msg.Broadcast})
			case fanout.MessageReconnect:
				lastSeq = msg.Seq
				r.publish(ctx, WebhookEvent{Type: EventResync})
			}
		}
		r.broker.Unsubscribe(sub)

		if ctx.Err() != nil {
			return
		}
		if errors.Is(sub.Err(), models.ErrSubscriberOverflow) {
			log.WithField("last_seq", lastSeq).Warn("Relay fell behind, resubscribing")
			sub = r.broker.Resume(lastSeq)
			continue
		}
		// Брокер закрыт
		return
	}
}

func (r *Relay) publish(ctx context.Context, event WebhookEvent) {
	event.ID = uuid.New()
	event.Timestamp = time.Now()
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.WithFields(logrus.Fields{
			"component":  "webhook",
			"event_type": event.Type,
		}).WithError(err).Error("Failed to enqueue webhook event")
	}
}
