package models

import (
	"time"

	"github.com/google/uuid"
)

// Kind - тип инцидента
type Kind string

const (
	KindMedical      Kind = "medical"
	KindSecurity     Kind = "security"
	KindLostPerson   Kind = "lost-person"
	KindCrowdAnomaly Kind = "crowd-anomaly"
	KindOther        Kind = "other"
)

// Kinds перечисляет все допустимые типы инцидентов
var Kinds = []Kind{KindMedical, KindSecurity, KindLostPerson, KindCrowdAnomaly, KindOther}

func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Status - состояние инцидента в жизненном цикле
type Status string

const (
	StatusTriggered    Status = "triggered"
	StatusAcknowledged Status = "acknowledged"
	StatusActive       Status = "active"
	StatusResolved     Status = "resolved"
	StatusExpired      Status = "expired"
)

// Statuses перечисляет все состояния в порядке жизненного цикла
var Statuses = []Status{StatusTriggered, StatusAcknowledged, StatusActive, StatusResolved, StatusExpired}

// Terminal сообщает, что из состояния нет переходов
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusExpired
}

// Open - инцидент еще не закрыт
func (s Status) Open() bool {
	return !s.Terminal()
}

// OriginType - кто поднял инцидент
type OriginType string

const (
	OriginUserReport      OriginType = "user-report"
	OriginSensorDetection OriginType = "sensor-detection"
)

// Origin описывает источник инцидента. Reference - id заявителя или "детектор:сигнал".
type Origin struct {
	Type      OriginType `json:"type"`
	Reference string     `json:"reference"`
}

// DedupKey возвращает ключ дедупликации для пары (kind, origin reference)
func (o Origin) DedupKey(kind Kind) string {
	return string(kind) + "|" + o.Reference
}

// Location - координаты инцидента. Unknown выставляется явным маркером "местоположение неизвестно".
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Place     string  `json:"place,omitempty"`
	Unknown   bool    `json:"unknown,omitempty"`
}

// HistoryEntry - запись аудита о принятом переходе
type HistoryEntry struct {
	At     time.Time `json:"at"`
	Status Status    `json:"status"`
	Actor  string    `json:"actor"`
	Note   string    `json:"note,omitempty"`
}

type Incident struct {
	ID              uuid.UUID      `json:"id"`
	Kind            Kind           `json:"kind"`
	Status          Status         `json:"status"`
	Origin          Origin         `json:"origin"`
	Location        Location       `json:"location"`
	LocationRefined bool           `json:"location_refined"`
	Severity        float64        `json:"severity"`
	Details         string         `json:"details,omitempty"`
	Attachments     []string       `json:"attachments"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ResolvedAt      *time.Time     `json:"resolved_at,omitempty"`
	Outcome         string         `json:"outcome,omitempty"`
	History         []HistoryEntry `json:"history"`
}

// Clone возвращает глубокую копию инцидента
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}
	c := *i
	c.Attachments = append([]string(nil), i.Attachments...)
	c.History = append([]HistoryEntry(nil), i.History...)
	if i.ResolvedAt != nil {
		t := *i.ResolvedAt
		c.ResolvedAt = &t
	}
	return &c
}

// ClosedAt возвращает момент перехода в терминальное состояние
func (i *Incident) ClosedAt() (time.Time, bool) {
	if !i.Status.Terminal() {
		return time.Time{}, false
	}
	if i.ResolvedAt != nil {
		return *i.ResolvedAt, true
	}
	return i.History[len(i.History)-1].At, true
}

// LastTransitionAt - время последнего принятого перехода
func (i *Incident) LastTransitionAt() time.Time {
	return i.History[len(i.History)-1].At
}

// Filter - параметры выборки инцидентов
type Filter struct {
	Statuses []Status
	Kind     Kind
	OpenOnly bool
	Limit    int
}

// Match проверяет инцидент на соответствие фильтру
func (f Filter) Match(inc *Incident) bool {
	if f.OpenOnly && inc.Status.Terminal() {
		return false
	}
	if f.Kind != "" && inc.Kind != f.Kind {
		return false
	}
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if inc.Status == s {
			return true
		}
	}
	return false
}
