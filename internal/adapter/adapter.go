package adapter

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/lifecycle"
	"github.com/shenikar/crowd_safety_engine/internal/metrics"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/shenikar/crowd_safety_engine/internal/store"
	"github.com/sirupsen/logrus"
)

// Result - итог приема сигнала: новый инцидент или дубликат существующего
type Result struct {
	IncidentID uuid.UUID
	Duplicate  bool
	Incident   *models.Incident
}

// Adapter принимает сигналы и превращает их в события движка.
// Напрямую хранилище не меняет: только индекс источников.
type Adapter struct {
	engine *lifecycle.Engine
	store  *store.Store
	locks  *store.KeyedMutex
	logger *logrus.Logger
}

func New(engine *lifecycle.Engine, st *store.Store, logger *logrus.Logger) *Adapter {
	return &Adapter{
		engine: engine,
		store:  st,
		locks:  store.NewKeyedMutex(),
		logger: logger,
	}
}

// Submit принимает сигнал. Повторный сигнал от того же источника с тем же типом,
// пока инцидент открыт и окно не истекло, возвращается как дубликат.
// Окно отсчитывается от последнего сигнала.
func (a *Adapter) Submit(ctx context.Context, signal models.Signal) (Result, error) {
	log := a.logger.WithFields(logrus.Fields{
		"component": "adapter",
		"method":    "Submit",
		"kind":      signal.Kind,
		"origin":    signal.Origin.Reference,
	})

	if err := Validate(signal); err != nil {
		metrics.SignalsReceived.WithLabelValues("invalid").Inc()
		log.WithError(err).Warn("Signal rejected")
		return Result{}, err
	}

	key := signal.Origin.DedupKey(signal.Kind)
	unlock := a.locks.Lock(key)
	defer unlock()

	if id, ok := a.store.LookupOrigin(key); ok {
		inc, err := a.merge(ctx, id, signal)
		switch {
		case err == nil:
			a.store.IndexOrigin(key, id)
			metrics.SignalsReceived.WithLabelValues("duplicate").Inc()
			log.WithField("incident_id", id).Info("Signal merged into open incident")
			return Result{IncidentID: id, Duplicate: true, Incident: inc}, nil
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrIllegalTransition):
			// Инцидент закрыт или вытеснен: сигнал открывает новый
		default:
			log.WithError(err).Error("Failed to merge duplicate signal")
			return Result{}, fmt.Errorf("adapter: could not merge signal: %w", err)
		}
	}

	inc, err := a.engine.Create(ctx, signal)
	if err != nil {
		log.WithError(err).Error("Failed to create incident")
		return Result{}, fmt.Errorf("adapter: could not create incident: %w", err)
	}
	a.store.IndexOrigin(key, inc.ID)
	metrics.SignalsReceived.WithLabelValues("created").Inc()
	return Result{IncidentID: inc.ID, Incident: inc}, nil
}

// merge поднимает тяжесть и добавляет новые вложения к открытому инциденту
func (a *Adapter) merge(ctx context.Context, id uuid.UUID, signal models.Signal) (*models.Incident, error) {
	inc, err := a.engine.ReviseSeverity(ctx, id, signal.Severity, signal.Origin.Reference)
	if err != nil {
		return nil, err
	}
	for _, ref := range signal.Attachments {
		inc, err = a.engine.Attach(ctx, id, ref, signal.Origin.Reference)
		if err != nil {
			return nil, err
		}
	}
	return inc, nil
}

// Validate проверяет сигнал на границе приема
func Validate(signal models.Signal) error {
	if !signal.Kind.Valid() {
		return fmt.Errorf("unknown kind %q: %w", signal.Kind, models.ErrInvalidSignal)
	}
	switch signal.Origin.Type {
	case models.OriginUserReport, models.OriginSensorDetection:
	default:
		return fmt.Errorf("unknown origin type %q: %w", signal.Origin.Type, models.ErrInvalidSignal)
	}
	if signal.Origin.Reference == "" {
		return fmt.Errorf("origin reference is required: %w", models.ErrInvalidSignal)
	}
	if signal.Location == nil {
		return fmt.Errorf("location or unknown marker is required: %w", models.ErrInvalidSignal)
	}
	if !signal.Location.Unknown {
		if err := ValidateCoordinates(signal.Location.Latitude, signal.Location.Longitude); err != nil {
			return err
		}
	}
	if math.IsNaN(signal.Severity) || math.IsInf(signal.Severity, 0) || signal.Severity < 0 {
		return fmt.Errorf("severity must be a non-negative number: %w", models.ErrInvalidSignal)
	}
	for _, ref := range signal.Attachments {
		if ref == "" {
			return fmt.Errorf("empty attachment reference: %w", models.ErrInvalidSignal)
		}
	}
	return nil
}

// ValidateCoordinates проверяет диапазоны широты и долготы
func ValidateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return fmt.Errorf("latitude %v out of range: %w", lat, models.ErrInvalidSignal)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return fmt.Errorf("longitude %v out of range: %w", lon, models.ErrInvalidSignal)
	}
	return nil
}
