package health

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Intent - административное действие обслуживания
type Intent string

const (
	// IntentForceSync записывает все инциденты во внешнее хранилище и обновляет срез
	IntentForceSync Intent = "force-sync"
	// IntentClearCache сбрасывает закешированный срез и устаревшие ключи дедупликации
	IntentClearCache Intent = "clear-cache"
)

var ErrUnknownIntent = errors.New("unknown maintenance intent")

// MaintenanceReport - итог выполнения действия
type MaintenanceReport struct {
	Intent        Intent    `json:"intent"`
	Persisted     int       `json:"persisted"`
	OriginsPurged int       `json:"origins_purged"`
	Degraded      bool      `json:"degraded"`
	CompletedAt   time.Time `json:"completed_at"`
}

// Maintain выполняет действие обслуживания. Повторный вызов безопасен.
func (a *Aggregator) Maintain(ctx context.Context, intent Intent) (MaintenanceReport, error) {
	log := a.logger.WithFields(logrus.Fields{
		"component": "health",
		"method":    "Maintain",
		"intent":    intent,
	})
	report := MaintenanceReport{Intent: intent}

	switch intent {
	case IntentForceSync:
		persisted, err := a.source.Flush(ctx)
		if err != nil {
			log.WithError(err).Error("Force sync failed")
			return report, fmt.Errorf("health: could not force sync: %w", err)
		}
		report.Persisted = persisted
		report.Degraded = a.Refresh(ctx).Degraded
	case IntentClearCache:
		a.last.Store(nil)
		report.OriginsPurged = a.source.PurgeOrigins()
	default:
		return report, fmt.Errorf("%w: %q", ErrUnknownIntent, intent)
	}

	report.CompletedAt = a.now()
	log.WithFields(logrus.Fields{
		"persisted":      report.Persisted,
		"origins_purged": report.OriginsPurged,
	}).Info("Maintenance intent completed")
	return report, nil
}
