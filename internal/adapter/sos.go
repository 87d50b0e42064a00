package adapter

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/models"
)

// SOS - тревога от посетителя (мобильное приложение, киоск)
type SOS struct {
	UserID     string
	Type       string
	Latitude   float64
	Longitude  float64
	Details    string
	Attachment string
}

var sosKinds = map[string]models.Kind{
	"medical":  models.KindMedical,
	"security": models.KindSecurity,
	"lost":     models.KindLostPerson,
	"other":    models.KindOther,
}

// Начальная тяжесть по типу тревоги
var sosSeverity = map[models.Kind]float64{
	models.KindMedical:    3,
	models.KindSecurity:   3,
	models.KindLostPerson: 2,
	models.KindOther:      1,
}

// SOSSignal превращает тревогу в сигнал. Анонимная тревога получает
// одноразовую ссылку и не склеивается с другими.
func SOSSignal(sos SOS, receivedAt time.Time) (models.Signal, error) {
	kind, ok := sosKinds[sos.Type]
	if !ok {
		return models.Signal{}, fmt.Errorf("unknown sos type %q: %w", sos.Type, models.ErrInvalidSignal)
	}
	ref := sos.UserID
	if ref == "" {
		ref = "anonymous:" + uuid.NewString()
	}
	signal := models.Signal{
		Kind:       kind,
		Origin:     models.Origin{Type: models.OriginUserReport, Reference: ref},
		Location:   &models.Location{Latitude: sos.Latitude, Longitude: sos.Longitude},
		Severity:   sosSeverity[kind],
		Details:    sos.Details,
		ReceivedAt: receivedAt,
	}
	if sos.Attachment != "" {
		signal.Attachments = []string{sos.Attachment}
	}
	return signal, nil
}
