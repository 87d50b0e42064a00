package v1

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/models"
)

// LocationRequest DTO координат. unknown=true - явный маркер "местоположение неизвестно"
// @Description DTO координат
type LocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Place     string  `json:"place,omitempty" validate:"max=255"`
	Unknown   bool    `json:"unknown,omitempty"`
}

// SignalRequest DTO входящего сигнала
// @Description DTO входящего сигнала
type SignalRequest struct {
	Kind            string           `json:"kind" validate:"required,oneof=medical security lost-person crowd-anomaly other"`
	OriginType      string           `json:"origin_type" validate:"required,oneof=user-report sensor-detection"`
	OriginReference string           `json:"origin_reference" validate:"required,max=255"`
	Location        *LocationRequest `json:"location" validate:"required"`
	Severity        float64          `json:"severity" validate:"gte=0"`
	Details         string           `json:"details,omitempty" validate:"max=2000"`
	Attachments     []string         `json:"attachments,omitempty" validate:"dive,required"`
}

// SOSRequest DTO тревоги посетителя
// @Description DTO тревоги посетителя
type SOSRequest struct {
	UserID     string  `json:"user_id,omitempty" validate:"max=255"`
	Type       string  `json:"type" validate:"required,oneof=medical security lost other"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
	Details    string  `json:"details,omitempty" validate:"max=2000"`
	Attachment string  `json:"attachment,omitempty"`
}

// AnomalyRequest DTO временного ряда датчика
// @Description DTO временного ряда датчика
type AnomalyRequest struct {
	SensorID string          `json:"sensor_id" validate:"required"`
	Location LocationRequest `json:"location"`
	Values   []float64       `json:"values" validate:"required,min=5"`
}

// FrameForm - поля multipart-формы кадра камеры. Сам кадр передается полем file.
type FrameForm struct {
	CameraID  string  `form:"camera_id" validate:"required"`
	Latitude  float64 `form:"latitude" validate:"latitude"`
	Longitude float64 `form:"longitude" validate:"longitude"`
	Place     string  `form:"place"`
}

// ActorRequest DTO перехода, требующего только исполнителя
// @Description DTO подтверждения инцидента
type ActorRequest struct {
	Actor string `json:"actor" validate:"required,max=255"`
}

// EscalateRequest DTO эскалации
// @Description DTO эскалации
type EscalateRequest struct {
	Actor    string  `json:"actor" validate:"required,max=255"`
	Severity float64 `json:"severity,omitempty" validate:"gte=0"`
}

// ResolveRequest DTO закрытия инцидента
// @Description DTO закрытия инцидента
type ResolveRequest struct {
	Actor   string `json:"actor" validate:"required,max=255"`
	Outcome string `json:"outcome" validate:"required,max=2000"`
}

// RefineLocationRequest DTO уточнения местоположения
// @Description DTO уточнения местоположения
type RefineLocationRequest struct {
	Actor     string  `json:"actor" validate:"required,max=255"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Place     string  `json:"place,omitempty" validate:"max=255"`
}

// AttachRequest DTO прикрепления вложения к инциденту
// @Description DTO прикрепления вложения
type AttachRequest struct {
	Actor     string `json:"actor" validate:"required,max=255"`
	Reference string `json:"reference" validate:"required"`
}

// HistoryEntryResponse DTO записи аудита
type HistoryEntryResponse struct {
	At     time.Time `json:"at"`
	Status string    `json:"status"`
	Actor  string    `json:"actor"`
	Note   string    `json:"note,omitempty"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID              uuid.UUID              `json:"id"`
	Kind            string                 `json:"kind"`
	Status          string                 `json:"status"`
	OriginType      string                 `json:"origin_type"`
	OriginReference string                 `json:"origin_reference"`
	Latitude        float64                `json:"latitude"`
	Longitude       float64                `json:"longitude"`
	Place           string                 `json:"place,omitempty"`
	LocationUnknown bool                   `json:"location_unknown"`
	LocationRefined bool                   `json:"location_refined"`
	Severity        float64                `json:"severity"`
	Details         string                 `json:"details,omitempty"`
	Attachments     []string               `json:"attachments"`
	Outcome         string                 `json:"outcome,omitempty"`
	History         []HistoryEntryResponse `json:"history"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	ResolvedAt      *time.Time             `json:"resolved_at,omitempty"`
}

// SubmitResponse DTO результата приема сигнала
// @Description DTO результата приема сигнала
type SubmitResponse struct {
	IncidentID uuid.UUID         `json:"incident_id"`
	Duplicate  bool              `json:"duplicate"`
	Incident   *IncidentResponse `json:"incident"`
}

// DetectionResponse DTO результата детектора и поднятых по нему инцидентов
// @Description DTO результата детектора
type DetectionResponse struct {
	Detection any              `json:"detection"`
	Incidents []SubmitResponse `json:"incidents"`
}

// AttachmentResponse DTO ссылки на сохраненное вложение
type AttachmentResponse struct {
	Reference string `json:"reference"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Open     int            `json:"open"`
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByKind   map[string]int `json:"by_kind"`
}

// SubsystemResponse DTO состояния подсистемы
type SubsystemResponse struct {
	Name          string    `json:"name"`
	Reachable     bool      `json:"reachable"`
	LatencyMs     int64     `json:"latency_ms"`
	LastCheckedAt time.Time `json:"last_checked_at"`
	Error         string    `json:"error,omitempty"`
}

// HealthResponse DTO среза состояния системы
// @Description DTO среза состояния системы
type HealthResponse struct {
	Degraded   bool                `json:"degraded"`
	Incidents  StatsResponse       `json:"incidents"`
	Subsystems []SubsystemResponse `json:"subsystems"`
	TakenAt    time.Time           `json:"taken_at"`
}

// ChangeEvent - данные SSE-события об изменении инцидента
type ChangeEvent struct {
	Seq        uint64            `json:"seq"`
	Type       string            `json:"type"`
	IncidentID uuid.UUID         `json:"incident_id"`
	From       models.Status     `json:"from,omitempty"`
	To         models.Status     `json:"to"`
	Actor      string            `json:"actor,omitempty"`
	At         time.Time         `json:"at"`
	Incident   *IncidentResponse `json:"incident"`
}

// ReconnectEvent - данные SSE-события reconnect: клиент должен перечитать состояние
type ReconnectEvent struct {
	Seq    uint64 `json:"seq"`
	Reason string `json:"reason"`
}

// BroadcastEvent - данные SSE-события с сообщением оператора
type BroadcastEvent struct {
	Seq     uint64    `json:"seq"`
	Message string    `json:"message"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}

// ReadyEvent - первое событие потока. Его id клиент передает в Last-Event-ID,
// даже если не успел получить ни одного изменения.
type ReadyEvent struct {
	Seq            uint64    `json:"seq"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
}

// BroadcastRequest DTO для сообщения оператора
// @Description DTO для сообщения оператора всем панелям и приложениям
type BroadcastRequest struct {
	Message string `json:"message" validate:"required,max=1000"`
	Actor   string `json:"actor" validate:"required"`
}

// AuditEntryResponse DTO записи журнала административных действий
type AuditEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
