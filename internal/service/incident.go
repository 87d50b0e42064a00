package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/adapter"
	"github.com/shenikar/crowd_safety_engine/internal/attachment"
	"github.com/shenikar/crowd_safety_engine/internal/detector"
	"github.com/shenikar/crowd_safety_engine/internal/fanout"
	"github.com/shenikar/crowd_safety_engine/internal/health"
	"github.com/shenikar/crowd_safety_engine/internal/lifecycle"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/shenikar/crowd_safety_engine/internal/store"
	"github.com/sirupsen/logrus"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

var (
	// ErrAttachmentsDisabled - хранилище вложений не подключено
	ErrAttachmentsDisabled = errors.New("attachment storage is not configured")
	// ErrAuditDisabled - журнал действий ведется только при подключенной бд
	ErrAuditDisabled = errors.New("audit log is not configured")
	ErrEmptyBroadcast = errors.New("broadcast message is empty")
)

// IncidentRepository определяет контракт для чтения истории инцидентов из бд
type IncidentRepository interface {
	Load(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	Query(ctx context.Context, filter models.Filter) ([]*models.Incident, error)
}

// AttachmentStorage - внешнее хранилище бинарных вложений
type AttachmentStorage interface {
	Put(ctx context.Context, contentType string, data []byte) (string, error)
	Get(ctx context.Context, ref string) (*attachment.Attachment, error)
}

// AuditTrail - журнал административных действий
type AuditTrail interface {
	Record(ctx context.Context, entry models.AuditEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// IncidentService определяет контракт для координации инцидентов
type IncidentService interface {
	SubmitSignal(ctx context.Context, signal models.Signal) (adapter.Result, error)
	TriggerSOS(ctx context.Context, sos adapter.SOS) (adapter.Result, error)
	DetectCrowd(ctx context.Context, frame detector.Frame) (detector.Outcome[detector.CrowdResult], error)
	DetectAnomaly(ctx context.Context, series detector.Series) (detector.Outcome[detector.AnomalyResult], error)
	DetectFaces(ctx context.Context, frame detector.Frame) (detector.Outcome[detector.FaceResult], error)

	Acknowledge(ctx context.Context, id uuid.UUID, actor string) (*models.Incident, error)
	Escalate(ctx context.Context, id uuid.UUID, actor string, severity float64) (*models.Incident, error)
	Resolve(ctx context.Context, id uuid.UUID, actor, outcome string) (*models.Incident, error)
	RefineLocation(ctx context.Context, id uuid.UUID, location models.Location, actor string) (*models.Incident, error)
	AttachToIncident(ctx context.Context, id uuid.UUID, ref, actor string) (*models.Incident, error)

	UploadAttachment(ctx context.Context, contentType string, data []byte) (string, error)
	GetAttachment(ctx context.Context, ref string) (*attachment.Attachment, error)

	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, filter models.Filter, includeClosed bool) ([]*models.Incident, error)

	Health(ctx context.Context, cached bool) models.HealthSnapshot
	Maintain(ctx context.Context, intent health.Intent, actor string) (health.MaintenanceReport, error)
	Broadcast(ctx context.Context, message, actor string) (models.Broadcast, error)
	AuditLog(ctx context.Context, limit int) ([]models.AuditEntry, error)

	Subscribe() *fanout.Subscription
	Resume(lastSeq uint64) *fanout.Subscription
	Unsubscribe(sub *fanout.Subscription)
}

// Deps - компоненты ядра, с которыми работает сервис
type Deps struct {
	Store       *store.Store
	Engine      *lifecycle.Engine
	Adapter     *adapter.Adapter
	Broker      *fanout.Broker
	Health      *health.Aggregator
	Detectors   *detector.Runner
	Repo        IncidentRepository
	Attachments AttachmentStorage
	Audit       AuditTrail
}

type incidentService struct {
	deps   Deps
	logger *logrus.Logger
}

func NewIncidentService(deps Deps, logger *logrus.Logger) IncidentService {
	return &incidentService{
		deps:   deps,
		logger: logger,
	}
}

// SubmitSignal передает сигнал адаптеру
func (s *incidentService) SubmitSignal(ctx context.Context, signal models.Signal) (adapter.Result, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "SubmitSignal",
		"kind":    signal.Kind,
		"origin":  signal.Origin.Reference,
	})
	if signal.ReceivedAt.IsZero() {
		signal.ReceivedAt = s.deps.Engine.Now()
	}

	res, err := s.deps.Adapter.Submit(ctx, signal)
	if err != nil {
		log.WithError(err).Warn("Signal was not accepted")
		return adapter.Result{}, fmt.Errorf("service: could not submit signal: %w", err)
	}
	log.WithFields(logrus.Fields{
		"incident_id": res.IncidentID,
		"duplicate":   res.Duplicate,
	}).Info("Signal accepted")
	return res, nil
}

// TriggerSOS поднимает тревогу посетителя
func (s *incidentService) TriggerSOS(ctx context.Context, sos adapter.SOS) (adapter.Result, error) {
	signal, err := adapter.SOSSignal(sos, s.deps.Engine.Now())
	if err != nil {
		return adapter.Result{}, fmt.Errorf("service: could not trigger sos: %w", err)
	}
	return s.SubmitSignal(ctx, signal)
}

// DetectCrowd вызывает детектор толпы и передает результат адаптеру
func (s *incidentService) DetectCrowd(ctx context.Context, frame detector.Frame) (detector.Outcome[detector.CrowdResult], error) {
	out, err := s.deps.Detectors.Crowd(ctx, frame)
	if err != nil {
		s.logDetectorError("DetectCrowd", err)
		return out, fmt.Errorf("service: could not run crowd detection: %w", err)
	}
	return out, nil
}

// DetectAnomaly оценивает временной ряд датчика
func (s *incidentService) DetectAnomaly(ctx context.Context, series detector.Series) (detector.Outcome[detector.AnomalyResult], error) {
	out, err := s.deps.Detectors.Anomaly(ctx, series)
	if err != nil {
		s.logDetectorError("DetectAnomaly", err)
		return out, fmt.Errorf("service: could not run anomaly detection: %w", err)
	}
	return out, nil
}

// DetectFaces ищет пропавших в кадре
func (s *incidentService) DetectFaces(ctx context.Context, frame detector.Frame) (detector.Outcome[detector.FaceResult], error) {
	out, err := s.deps.Detectors.Face(ctx, frame)
	if err != nil {
		s.logDetectorError("DetectFaces", err)
		return out, fmt.Errorf("service: could not run face matching: %w", err)
	}
	return out, nil
}

func (s *incidentService) logDetectorError(method string, err error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  method,
	}).WithError(err)
	if errors.Is(err, models.ErrInvalidSignal) {
		log.Warn("Detection input rejected")
		return
	}
	log.Error("Detection failed")
}

func (s *incidentService) Acknowledge(ctx context.Context, id uuid.UUID, actor string) (*models.Incident, error) {
	inc, err := s.deps.Engine.Acknowledge(ctx, id, actor)
	if err != nil {
		return nil, fmt.Errorf("service: could not acknowledge incident: %w", err)
	}
	return inc, nil
}

func (s *incidentService) Escalate(ctx context.Context, id uuid.UUID, actor string, severity float64) (*models.Incident, error) {
	inc, err := s.deps.Engine.Escalate(ctx, id, actor, severity)
	if err != nil {
		return nil, fmt.Errorf("service: could not escalate incident: %w", err)
	}
	return inc, nil
}

func (s *incidentService) Resolve(ctx context.Context, id uuid.UUID, actor, outcome string) (*models.Incident, error) {
	inc, err := s.deps.Engine.Resolve(ctx, id, actor, outcome)
	if err != nil {
		return nil, fmt.Errorf("service: could not resolve incident: %w", err)
	}
	return inc, nil
}

func (s *incidentService) RefineLocation(ctx context.Context, id uuid.UUID, location models.Location, actor string) (*models.Incident, error) {
	if err := adapter.ValidateCoordinates(location.Latitude, location.Longitude); err != nil {
		return nil, fmt.Errorf("service: could not refine location: %w", err)
	}
	inc, err := s.deps.Engine.RefineLocation(ctx, id, location, actor)
	if err != nil {
		return nil, fmt.Errorf("service: could not refine location: %w", err)
	}
	return inc, nil
}

func (s *incidentService) AttachToIncident(ctx context.Context, id uuid.UUID, ref, actor string) (*models.Incident, error) {
	inc, err := s.deps.Engine.Attach(ctx, id, ref, actor)
	if err != nil {
		return nil, fmt.Errorf("service: could not attach to incident: %w", err)
	}
	return inc, nil
}

// UploadAttachment сохраняет вложение и возвращает ссылку для сигналов и инцидентов
func (s *incidentService) UploadAttachment(ctx context.Context, contentType string, data []byte) (string, error) {
	if s.deps.Attachments == nil {
		return "", ErrAttachmentsDisabled
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":      "incident",
		"method":       "UploadAttachment",
		"content_type": contentType,
		"size":         len(data),
	})

	ref, err := s.deps.Attachments.Put(ctx, contentType, data)
	if err != nil {
		log.WithError(err).Error("Failed to store attachment")
		return "", fmt.Errorf("service: could not upload attachment: %w", err)
	}
	log.WithField("ref", ref).Info("Attachment stored")
	return ref, nil
}

func (s *incidentService) GetAttachment(ctx context.Context, ref string) (*attachment.Attachment, error) {
	if s.deps.Attachments == nil {
		return nil, ErrAttachmentsDisabled
	}
	a, err := s.deps.Attachments.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("service: could not get attachment: %w", err)
	}
	return a, nil
}

// GetIncident ищет инцидент в памяти, затем в истории бд
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})

	inc, err := s.deps.Store.Get(id)
	if err == nil {
		return inc, nil
	}
	if !errors.Is(err, models.ErrNotFound) || s.deps.Repo == nil {
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	log.Debug("Incident is not in memory, loading from repository")
	inc, err = s.deps.Repo.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.WithError(err).Error("Failed to load incident from repository")
		}
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	return inc, nil
}

// ListIncidents возвращает инциденты из памяти. includeClosed добавляет
// вытесненные закрытые инциденты из бд.
func (s *incidentService) ListIncidents(ctx context.Context, filter models.Filter, includeClosed bool) ([]*models.Incident, error) {
	if filter.Limit < 1 || filter.Limit > maxListLimit {
		filter.Limit = defaultListLimit
	}
	log := s.logger.WithFields(logrus.Fields{
		"service":        "incident",
		"method":         "ListIncidents",
		"kind":           filter.Kind,
		"include_closed": includeClosed,
	})

	incidents := s.deps.Store.List(filter)
	if !includeClosed || s.deps.Repo == nil {
		return incidents, nil
	}

	persisted, err := s.deps.Repo.Query(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to query incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	// Состояние в памяти новее записанного
	seen := make(map[uuid.UUID]struct{}, len(incidents))
	for _, inc := range incidents {
		seen[inc.ID] = struct{}{}
	}
	for _, inc := range persisted {
		if _, ok := seen[inc.ID]; !ok {
			incidents = append(incidents, inc)
		}
	}
	sort.SliceStable(incidents, func(i, j int) bool {
		return incidents[i].CreatedAt.After(incidents[j].CreatedAt)
	})
	if len(incidents) > filter.Limit {
		incidents = incidents[:filter.Limit]
	}
	log.WithField("count", len(incidents)).Debug("Incidents listed")
	return incidents, nil
}

// Health возвращает срез состояния: закешированный или свежий
func (s *incidentService) Health(ctx context.Context, cached bool) models.HealthSnapshot {
	if cached {
		if snapshot, ok := s.deps.Health.Last(); ok {
			return snapshot
		}
	}
	return s.deps.Health.Refresh(ctx)
}

// Maintain выполняет действие обслуживания и записывает его в журнал
func (s *incidentService) Maintain(ctx context.Context, intent health.Intent, actor string) (health.MaintenanceReport, error) {
	report, err := s.deps.Health.Maintain(ctx, intent)
	if err != nil {
		return report, fmt.Errorf("service: could not run maintenance: %w", err)
	}
	s.audit(ctx, models.AuditMaintenance, actor, string(intent))
	return report, nil
}

// Broadcast рассылает сообщение оператора всем подписчикам, включая вебхуки полевых команд
func (s *incidentService) Broadcast(ctx context.Context, message, actor string) (models.Broadcast, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Broadcast{}, ErrEmptyBroadcast
	}
	sent := s.deps.Broker.Broadcast(models.Broadcast{
		Message: message,
		Actor:   actor,
		At:      s.deps.Engine.Now(),
	})
	s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "Broadcast",
		"actor":   actor,
		"seq":     sent.Seq,
	}).Info("Broadcast sent")
	s.audit(ctx, models.AuditBroadcast, actor, message)
	return sent, nil
}

// AuditLog возвращает последние административные действия
func (s *incidentService) AuditLog(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if s.deps.Audit == nil {
		return nil, ErrAuditDisabled
	}
	if limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}
	entries, err := s.deps.Audit.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("service: could not read audit log: %w", err)
	}
	return entries, nil
}

// audit пишет действие в журнал. Ошибка журнала не отменяет выполненное действие.
func (s *incidentService) audit(ctx context.Context, action models.AuditAction, actor, message string) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "audit",
		"action":  action,
		"actor":   actor,
	})
	if s.deps.Audit == nil {
		log.Info("Admin action")
		return
	}
	err := s.deps.Audit.Record(ctx, models.AuditEntry{
		ID:        uuid.New(),
		Action:    action,
		Actor:     actor,
		Message:   message,
		CreatedAt: s.deps.Engine.Now(),
	})
	if err != nil {
		log.WithError(err).Error("Failed to record audit entry")
	}
}

func (s *incidentService) Subscribe() *fanout.Subscription {
	return s.deps.Broker.Subscribe()
}

func (s *incidentService) Resume(lastSeq uint64) *fanout.Subscription {
	return s.deps.Broker.Resume(lastSeq)
}

func (s *incidentService) Unsubscribe(sub *fanout.Subscription) {
	s.deps.Broker.Unsubscribe(sub)
}
