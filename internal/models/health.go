package models

import "time"

// HealthSample - результат одной проверки внешней подсистемы
type HealthSample struct {
	Name          string        `json:"name"`
	Reachable     bool          `json:"reachable"`
	Latency       time.Duration `json:"latency"`
	LastCheckedAt time.Time     `json:"last_checked_at"`
	Error         string        `json:"error,omitempty"`
}

// IncidentCounts - количество инцидентов по статусам и типам
type IncidentCounts struct {
	ByStatus map[Status]int `json:"by_status"`
	ByKind   map[Kind]int   `json:"by_kind"`
	Open     int            `json:"open"`
	Total    int            `json:"total"`
}

// HealthSnapshot - согласованный срез состояния системы
type HealthSnapshot struct {
	Incidents  IncidentCounts `json:"incidents"`
	Subsystems []HealthSample `json:"subsystems"`
	Degraded   bool           `json:"degraded"`
	TakenAt    time.Time      `json:"taken_at"`
}
