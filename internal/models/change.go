package models

import (
	"time"

	"github.com/google/uuid"
)

// ChangeType - вид изменения, рассылаемого подписчикам
type ChangeType string

const (
	ChangeCreated         ChangeType = "created"
	ChangeTransition      ChangeType = "transition"
	ChangeSeverityRevised ChangeType = "severity_revised"
	ChangeLocationRefined ChangeType = "location_refined"
	ChangeAttachmentAdded ChangeType = "attachment_added"
)

// ChangeRecord - уведомление об изменении инцидента. Seq проставляет fan-out.
type ChangeRecord struct {
	Seq        uint64     `json:"seq"`
	Type       ChangeType `json:"type"`
	IncidentID uuid.UUID  `json:"incident_id"`
	From       Status     `json:"from,omitempty"`
	To         Status     `json:"to"`
	Actor      string     `json:"actor,omitempty"`
	At         time.Time  `json:"at"`
	Incident   *Incident  `json:"incident"`
}

// Broadcast - сообщение оператора всем подключенным панелям и приложениям
type Broadcast struct {
	Seq     uint64    `json:"seq"`
	Message string    `json:"message"`
	Actor   string    `json:"actor"`
	At      time.Time `json:"at"`
}
