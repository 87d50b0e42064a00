package adapter

import (
	"bytes"
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shenikar/crowd_safety_engine/internal/lifecycle"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/shenikar/crowd_safety_engine/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, window time.Duration) (*Adapter, *lifecycle.Engine, *store.Store) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	st := store.New(logger, window, nil)
	engine := lifecycle.NewEngine(st, nil, time.Hour, logger)
	return New(engine, st, logger), engine, st
}

func sensorSignal(ref string, severity float64) models.Signal {
	return models.Signal{
		Kind:     models.KindCrowdAnomaly,
		Origin:   models.Origin{Type: models.OriginSensorDetection, Reference: ref},
		Location: &models.Location{Latitude: 23.18, Longitude: 75.78, Place: "Ram Ghat"},
		Severity: severity,
	}
}

// Сценарий: второй сигнал того же датчика поднимает тяжесть, а не создает инцидент
func TestSubmit_DuplicateRaisesSeverity(t *testing.T) {
	a, _, st := setup(t, time.Minute)
	ctx := context.Background()

	first, err := a.Submit(ctx, sensorSignal("sensor-7", 3))
	require.NoError(t, err)
	assert.False(t, first.Duplicate)
	assert.Equal(t, models.StatusTriggered, first.Incident.Status)

	second, err := a.Submit(ctx, sensorSignal("sensor-7", 5))
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.IncidentID, second.IncidentID)
	assert.Equal(t, float64(5), second.Incident.Severity)

	third, err := a.Submit(ctx, sensorSignal("sensor-7", 1))
	require.NoError(t, err)
	assert.True(t, third.Duplicate)
	assert.Equal(t, float64(5), third.Incident.Severity)

	assert.Equal(t, 1, st.Counts().Total)
}

func TestSubmit_WindowRelativeToLastEvent(t *testing.T) {
	a, _, st := setup(t, 150*time.Millisecond)
	ctx := context.Background()

	first, err := a.Submit(ctx, sensorSignal("sensor-1", 1))
	require.NoError(t, err)

	// Каждый сигнал продлевает окно, поэтому в сумме проходит больше одного окна
	for i := 0; i < 3; i++ {
		time.Sleep(80 * time.Millisecond)
		res, err := a.Submit(ctx, sensorSignal("sensor-1", 1))
		require.NoError(t, err)
		assert.True(t, res.Duplicate)
		assert.Equal(t, first.IncidentID, res.IncidentID)
	}

	time.Sleep(300 * time.Millisecond)
	res, err := a.Submit(ctx, sensorSignal("sensor-1", 1))
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 2, st.Counts().Total)
}

func TestSubmit_ClosedIncidentStartsNewOne(t *testing.T) {
	a, engine, _ := setup(t, time.Minute)
	ctx := context.Background()

	first, err := a.Submit(ctx, sensorSignal("sensor-2", 1))
	require.NoError(t, err)
	_, err = engine.Resolve(ctx, first.IncidentID, "field-1", "cleared")
	require.NoError(t, err)

	second, err := a.Submit(ctx, sensorSignal("sensor-2", 1))
	require.NoError(t, err)
	assert.False(t, second.Duplicate)
	assert.NotEqual(t, first.IncidentID, second.IncidentID)
}

func TestSubmit_DifferentKindIsNotDuplicate(t *testing.T) {
	a, _, _ := setup(t, time.Minute)
	ctx := context.Background()
	security := sensorSignal("sensor-3", 1)
	security.Kind = models.KindSecurity

	first, err := a.Submit(ctx, sensorSignal("sensor-3", 1))
	require.NoError(t, err)
	second, err := a.Submit(ctx, security)
	require.NoError(t, err)

	assert.False(t, second.Duplicate)
	assert.NotEqual(t, first.IncidentID, second.IncidentID)
}

func TestSubmit_ConcurrentDuplicatesCreateOneIncident(t *testing.T) {
	a, _, st := setup(t, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(severity float64) {
			defer wg.Done()
			_, err := a.Submit(ctx, sensorSignal("sensor-9", severity))
			assert.NoError(t, err)
		}(float64(i))
	}
	wg.Wait()

	list := st.List(models.Filter{})
	require.Len(t, list, 1)
	assert.Equal(t, float64(31), list[0].Severity)
}

func TestSubmit_MergesAttachments(t *testing.T) {
	a, _, _ := setup(t, time.Minute)
	ctx := context.Background()
	withPhoto := sensorSignal("sensor-4", 1)
	withPhoto.Attachments = []string{"photo-1"}

	_, err := a.Submit(ctx, sensorSignal("sensor-4", 1))
	require.NoError(t, err)
	res, err := a.Submit(ctx, withPhoto)
	require.NoError(t, err)

	assert.Equal(t, []string{"photo-1"}, res.Incident.Attachments)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*models.Signal)
		valid  bool
	}{
		{"valid", func(*models.Signal) {}, true},
		{"unknown location marker", func(s *models.Signal) { s.Location = &models.Location{Unknown: true} }, true},
		{"bad kind", func(s *models.Signal) { s.Kind = "fire" }, false},
		{"bad origin type", func(s *models.Signal) { s.Origin.Type = "rumor" }, false},
		{"empty reference", func(s *models.Signal) { s.Origin.Reference = "" }, false},
		{"no location", func(s *models.Signal) { s.Location = nil }, false},
		{"latitude out of range", func(s *models.Signal) { s.Location.Latitude = 91 }, false},
		{"longitude out of range", func(s *models.Signal) { s.Location.Longitude = -181 }, false},
		{"negative severity", func(s *models.Signal) { s.Severity = -1 }, false},
		{"nan severity", func(s *models.Signal) { s.Severity = math.NaN() }, false},
		{"empty attachment", func(s *models.Signal) { s.Attachments = []string{""} }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			signal := sensorSignal("sensor-1", 1)
			tc.modify(&signal)

			err := Validate(signal)

			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, models.ErrInvalidSignal)
			}
		})
	}
}

func TestSubmit_InvalidSignalIsNeverStored(t *testing.T) {
	a, _, st := setup(t, time.Minute)
	signal := sensorSignal("sensor-1", 1)
	signal.Location = nil

	_, err := a.Submit(context.Background(), signal)

	assert.ErrorIs(t, err, models.ErrInvalidSignal)
	assert.Equal(t, 0, st.Counts().Total)
}

func TestSOSSignal(t *testing.T) {
	now := time.Now()

	signal, err := SOSSignal(SOS{UserID: "user-42", Type: "lost", Latitude: 23.1, Longitude: 75.7, Attachment: "photo-9"}, now)
	require.NoError(t, err)
	assert.Equal(t, models.KindLostPerson, signal.Kind)
	assert.Equal(t, "user-42", signal.Origin.Reference)
	assert.Equal(t, models.OriginUserReport, signal.Origin.Type)
	assert.Equal(t, []string{"photo-9"}, signal.Attachments)
	assert.NoError(t, Validate(signal))

	anon1, err := SOSSignal(SOS{Type: "medical"}, now)
	require.NoError(t, err)
	anon2, err := SOSSignal(SOS{Type: "medical"}, now)
	require.NoError(t, err)
	assert.NotEqual(t, anon1.Origin.Reference, anon2.Origin.Reference)

	_, err = SOSSignal(SOS{UserID: "user-1", Type: "fire"}, now)
	assert.ErrorIs(t, err, models.ErrInvalidSignal)
}
