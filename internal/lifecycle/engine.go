package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/metrics"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/shenikar/crowd_safety_engine/internal/store"
	"github.com/sirupsen/logrus"
)

// ActorSLA записывается в историю при истечении SLA
const ActorSLA = "system:sla"

// Publisher получает изменения инцидентов. Вызывается под блокировкой id и не должен блокироваться.
type Publisher interface {
	Publish(change models.ChangeRecord)
}

// Engine - единственная точка изменения инцидентов
type Engine struct {
	store     *store.Store
	publisher Publisher
	ackSLA    time.Duration
	now       func() time.Time
	logger    *logrus.Logger
}

type Option func(*Engine)

// WithClock подменяет часы движка
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(st *store.Store, publisher Publisher, ackSLA time.Duration, logger *logrus.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:     st,
		publisher: publisher,
		ackSLA:    ackSLA,
		now:       time.Now,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now возвращает время по часам движка
func (e *Engine) Now() time.Time {
	return e.now()
}

// Create заводит инцидент в состоянии triggered по событию адаптера
func (e *Engine) Create(ctx context.Context, signal models.Signal) (*models.Incident, error) {
	now := e.now()
	incident := &models.Incident{
		ID:          uuid.New(),
		Kind:        signal.Kind,
		Status:      models.StatusTriggered,
		Origin:      signal.Origin,
		Severity:    signal.Severity,
		Details:     signal.Details,
		Attachments: append([]string{}, signal.Attachments...),
		CreatedAt:   now,
		UpdatedAt:   now,
		History: []models.HistoryEntry{{
			At:     now,
			Status: models.StatusTriggered,
			Actor:  signal.Origin.Reference,
		}},
	}
	if signal.Location != nil {
		incident.Location = *signal.Location
	} else {
		incident.Location = models.Location{Unknown: true}
	}

	log := e.logger.WithFields(logrus.Fields{
		"component":   "lifecycle",
		"method":      "Create",
		"incident_id": incident.ID,
		"kind":        incident.Kind,
		"origin":      incident.Origin.Reference,
	})

	err := e.store.Insert(incident, func(committed *models.Incident) {
		e.publish(models.ChangeRecord{
			Type:       models.ChangeCreated,
			IncidentID: committed.ID,
			To:         committed.Status,
			Actor:      signal.Origin.Reference,
			At:         now,
			Incident:   committed,
		})
	})
	if err != nil {
		log.WithError(err).Error("Failed to insert incident")
		return nil, fmt.Errorf("lifecycle: could not create incident: %w", err)
	}

	metrics.IncidentsCreated.WithLabelValues(string(incident.Kind)).Inc()
	log.Info("Incident created")
	return incident.Clone(), nil
}

// Acknowledge фиксирует принятие инцидента полевой командой
func (e *Engine) Acknowledge(ctx context.Context, id uuid.UUID, actor string) (*models.Incident, error) {
	return e.transition(ctx, id, EventAcknowledge, actor, func(*models.Incident) {})
}

// Escalate переводит инцидент в active после подтверждения детектором.
// Переданная тяжесть применяется, только если она выше текущей.
func (e *Engine) Escalate(ctx context.Context, id uuid.UUID, actor string, severity float64) (*models.Incident, error) {
	return e.transition(ctx, id, EventEscalate, actor, func(inc *models.Incident) {
		if severity > inc.Severity {
			inc.Severity = severity
		}
	})
}

// Resolve закрывает инцидент с результатом отработки
func (e *Engine) Resolve(ctx context.Context, id uuid.UUID, actor, outcome string) (*models.Incident, error) {
	return e.transition(ctx, id, EventResolve, actor, func(inc *models.Incident) {
		resolvedAt := inc.UpdatedAt
		inc.ResolvedAt = &resolvedAt
		inc.Outcome = outcome
		inc.History[len(inc.History)-1].Note = outcome
	})
}

// ExpireOverdue переводит в expired инциденты, которые не меняли статус дольше SLA.
// Вызывается планировщиком, а не клиентами.
func (e *Engine) ExpireOverdue(ctx context.Context) (int, error) {
	now := e.now()
	expired := 0
	for _, inc := range e.store.Open() {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		if now.Sub(inc.LastTransitionAt()) < e.ackSLA {
			continue
		}
		_, err := e.transitionIf(ctx, inc.ID, EventExpire, ActorSLA, func(current *models.Incident) bool {
			// Статус мог смениться между выборкой и блокировкой
			return now.Sub(current.LastTransitionAt()) >= e.ackSLA
		}, func(*models.Incident) {})
		switch {
		case err == nil:
			expired++
		case isSkipped(err):
		default:
			e.logger.WithFields(logrus.Fields{
				"component":   "lifecycle",
				"method":      "ExpireOverdue",
				"incident_id": inc.ID,
			}).WithError(err).Debug("Incident not expired")
		}
	}
	if expired > 0 {
		e.logger.WithFields(logrus.Fields{
			"component": "lifecycle",
			"method":    "ExpireOverdue",
			"expired":   expired,
		}).Info("Overdue incidents expired")
	}
	return expired, nil
}

// ReviseSeverity повышает тяжесть открытого инцидента. Понижение игнорируется.
func (e *Engine) ReviseSeverity(ctx context.Context, id uuid.UUID, severity float64, actor string) (*models.Incident, error) {
	changed := false
	return e.mutate(ctx, id, "ReviseSeverity", func(inc *models.Incident) error {
		if inc.Status.Terminal() {
			return fmt.Errorf("incident %s is %s: %w", id, inc.Status, models.ErrIllegalTransition)
		}
		if severity <= inc.Severity {
			return nil
		}
		inc.Severity = severity
		changed = true
		return nil
	}, func(inc *models.Incident) *models.ChangeRecord {
		if !changed {
			return nil
		}
		return &models.ChangeRecord{Type: models.ChangeSeverityRevised, To: inc.Status, Actor: actor}
	})
}

// RefineLocation уточняет местоположение. Допускается один раз и только до принятия инцидента.
func (e *Engine) RefineLocation(ctx context.Context, id uuid.UUID, location models.Location, actor string) (*models.Incident, error) {
	return e.mutate(ctx, id, "RefineLocation", func(inc *models.Incident) error {
		if inc.Status != models.StatusTriggered {
			return fmt.Errorf("location of %s incident is fixed: %w", inc.Status, models.ErrIllegalTransition)
		}
		if inc.LocationRefined {
			return fmt.Errorf("location already refined: %w", models.ErrIllegalTransition)
		}
		inc.Location = location
		inc.LocationRefined = true
		return nil
	}, func(inc *models.Incident) *models.ChangeRecord {
		return &models.ChangeRecord{Type: models.ChangeLocationRefined, To: inc.Status, Actor: actor}
	})
}

// Attach добавляет ссылку на вложение к открытому инциденту
func (e *Engine) Attach(ctx context.Context, id uuid.UUID, ref, actor string) (*models.Incident, error) {
	if ref == "" {
		return nil, fmt.Errorf("lifecycle: empty attachment reference: %w", models.ErrInvalidSignal)
	}
	added := false
	return e.mutate(ctx, id, "Attach", func(inc *models.Incident) error {
		if inc.Status.Terminal() {
			return fmt.Errorf("incident %s is %s: %w", id, inc.Status, models.ErrIllegalTransition)
		}
		for _, existing := range inc.Attachments {
			if existing == ref {
				return nil
			}
		}
		inc.Attachments = append(inc.Attachments, ref)
		added = true
		return nil
	}, func(inc *models.Incident) *models.ChangeRecord {
		if !added {
			return nil
		}
		return &models.ChangeRecord{Type: models.ChangeAttachmentAdded, To: inc.Status, Actor: actor}
	})
}

func (e *Engine) transition(ctx context.Context, id uuid.UUID, event Event, actor string, apply func(*models.Incident)) (*models.Incident, error) {
	return e.transitionIf(ctx, id, event, actor, nil, apply)
}

// errSkipped - условие перехода перестало выполняться под блокировкой
var errSkipped = errors.New("transition skipped")

func isSkipped(err error) bool {
	return errors.Is(err, errSkipped)
}

func (e *Engine) transitionIf(
	ctx context.Context,
	id uuid.UUID,
	event Event,
	actor string,
	guard func(*models.Incident) bool,
	apply func(*models.Incident),
) (*models.Incident, error) {
	log := e.logger.WithFields(logrus.Fields{
		"component":   "lifecycle",
		"method":      string(event),
		"incident_id": id,
		"actor":       actor,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var from models.Status
	inc, err := e.store.Mutate(id, func(inc *models.Incident) error {
		from = inc.Status
		to, ok := Next(inc.Status, event)
		if !ok {
			return fmt.Errorf("cannot %s incident in status %s: %w", event, inc.Status, models.ErrIllegalTransition)
		}
		if guard != nil && !guard(inc) {
			return errSkipped
		}
		now := e.now()
		inc.Status = to
		inc.UpdatedAt = now
		inc.History = append(inc.History, models.HistoryEntry{At: now, Status: to, Actor: actor})
		apply(inc)
		return nil
	}, func(committed *models.Incident) {
		e.publish(models.ChangeRecord{
			Type:       models.ChangeTransition,
			IncidentID: committed.ID,
			From:       from,
			To:         committed.Status,
			Actor:      actor,
			At:         committed.UpdatedAt,
			Incident:   committed,
		})
	})
	if err != nil {
		if isSkipped(err) {
			return nil, err
		}
		e.reject(log, err)
		return nil, fmt.Errorf("lifecycle: could not %s incident: %w", event, err)
	}

	metrics.Transitions.WithLabelValues(string(inc.Status)).Inc()
	log.WithFields(logrus.Fields{"from": from, "to": inc.Status}).Info("Transition accepted")
	return inc, nil
}

// mutate применяет изменение без смены статуса: история не растет, updated_at сдвигается.
// change возвращает nil, если публиковать нечего.
func (e *Engine) mutate(
	ctx context.Context,
	id uuid.UUID,
	method string,
	fn func(*models.Incident) error,
	change func(*models.Incident) *models.ChangeRecord,
) (*models.Incident, error) {
	log := e.logger.WithFields(logrus.Fields{
		"component":   "lifecycle",
		"method":      method,
		"incident_id": id,
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inc, err := e.store.Mutate(id, func(inc *models.Incident) error {
		if err := fn(inc); err != nil {
			return err
		}
		if rec := change(inc); rec != nil {
			inc.UpdatedAt = e.now()
		}
		return nil
	}, func(committed *models.Incident) {
		rec := change(committed)
		if rec == nil {
			return
		}
		rec.IncidentID = committed.ID
		rec.At = committed.UpdatedAt
		rec.Incident = committed
		e.publish(*rec)
	})
	if err != nil {
		e.reject(log, err)
		return nil, fmt.Errorf("lifecycle: could not %s: %w", method, err)
	}
	return inc, nil
}

func (e *Engine) reject(log *logrus.Entry, err error) {
	reason := "error"
	switch {
	case errors.Is(err, models.ErrNotFound):
		reason = "not_found"
	case errors.Is(err, models.ErrIllegalTransition):
		reason = "illegal"
	}
	metrics.TransitionsRejected.WithLabelValues(reason).Inc()
	log.WithError(err).Warn("Mutation rejected")
}

func (e *Engine) publish(change models.ChangeRecord) {
	if e.publisher == nil {
		return
	}
	e.publisher.Publish(change)
}
