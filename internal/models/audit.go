package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction - вид административного действия
type AuditAction string

const (
	AuditBroadcast   AuditAction = "broadcast"
	AuditMaintenance AuditAction = "maintenance"
)

// AuditEntry - запись журнала административных действий
type AuditEntry struct {
	ID        uuid.UUID   `json:"id"`
	Action    AuditAction `json:"action"`
	Actor     string      `json:"actor"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"created_at"`
}
