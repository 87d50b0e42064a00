package lifecycle

import "github.com/shenikar/crowd_safety_engine/internal/models"

// Event - событие, запрашивающее смену статуса
type Event string

const (
	EventAcknowledge Event = "acknowledge"
	EventEscalate    Event = "escalate"
	EventResolve     Event = "resolve"
	EventExpire      Event = "expire"
)

type transition struct {
	from []models.Status
	to   models.Status
}

// Таблица переходов. Resolve из triggered - единственный разрешенный пропуск состояний.
var table = map[Event]transition{
	EventAcknowledge: {
		from: []models.Status{models.StatusTriggered},
		to:   models.StatusAcknowledged,
	},
	EventEscalate: {
		from: []models.Status{models.StatusTriggered, models.StatusAcknowledged},
		to:   models.StatusActive,
	},
	EventResolve: {
		from: []models.Status{models.StatusTriggered, models.StatusAcknowledged, models.StatusActive},
		to:   models.StatusResolved,
	},
	EventExpire: {
		from: []models.Status{models.StatusTriggered, models.StatusAcknowledged, models.StatusActive},
		to:   models.StatusExpired,
	},
}

// Next возвращает статус после события или false, если переход запрещен
func Next(from models.Status, event Event) (models.Status, bool) {
	t, ok := table[event]
	if !ok {
		return "", false
	}
	for _, s := range t.from {
		if s == from {
			return t.to, true
		}
	}
	return "", false
}
