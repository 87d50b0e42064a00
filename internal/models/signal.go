package models

import "time"

// Signal - входящий сигнал (SOS, вывод детектора, всплеск численности толпы)
type Signal struct {
	Kind        Kind      `json:"kind"`
	Origin      Origin    `json:"origin"`
	Location    *Location `json:"location,omitempty"`
	Severity    float64   `json:"severity"`
	Details     string    `json:"details,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
	ReceivedAt  time.Time `json:"received_at"`
}
