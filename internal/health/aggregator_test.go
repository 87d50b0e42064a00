package health

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	open     int
	flushed  atomic.Int32
	flushErr error
	purged   int
}

func (f *fakeSource) Counts() models.IncidentCounts {
	return models.IncidentCounts{
		ByStatus: map[models.Status]int{models.StatusTriggered: f.open},
		ByKind:   map[models.Kind]int{models.KindMedical: f.open},
		Open:     f.open,
		Total:    f.open,
	}
}

func (f *fakeSource) Flush(context.Context) (int, error) {
	if f.flushErr != nil {
		return 0, f.flushErr
	}
	f.flushed.Add(1)
	return f.open, nil
}

func (f *fakeSource) PurgeOrigins() int {
	return f.purged
}

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

func okProbe(name string) Probe {
	return NewPingProbe(name, func(context.Context) error { return nil })
}

func TestSnapshot_AllReachable(t *testing.T) {
	a := NewAggregator(&fakeSource{open: 3}, time.Second, 50, newTestLogger(),
		okProbe(SubsystemCrowdDetector), okProbe(SubsystemStorageProvider))

	snapshot := a.Snapshot(context.Background())

	assert.False(t, snapshot.Degraded)
	assert.Equal(t, 3, snapshot.Incidents.Open)
	require.Len(t, snapshot.Subsystems, 2)
	for _, s := range snapshot.Subsystems {
		assert.True(t, s.Reachable)
		assert.Empty(t, s.Error)
	}
}

func TestSnapshot_UnreachableProbeDegrades(t *testing.T) {
	failing := NewPingProbe(SubsystemFaceMatcher, func(context.Context) error {
		return errors.New("connection refused")
	})
	a := NewAggregator(&fakeSource{}, time.Second, 50, newTestLogger(), okProbe(SubsystemCrowdDetector), failing)

	snapshot := a.Snapshot(context.Background())

	assert.True(t, snapshot.Degraded)
	assert.False(t, snapshot.Subsystems[1].Reachable)
	assert.Equal(t, "connection refused", snapshot.Subsystems[1].Error)
}

func TestSnapshot_SlowProbeBoundedByTimeout(t *testing.T) {
	slow := NewPingProbe(SubsystemAnomalyDetector, func(context.Context) error {
		time.Sleep(2 * time.Second)
		return nil
	})
	a := NewAggregator(&fakeSource{}, 50*time.Millisecond, 50, newTestLogger(), slow, okProbe(SubsystemCrowdDetector))

	start := time.Now()
	snapshot := a.Snapshot(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, snapshot.Degraded)
	assert.False(t, snapshot.Subsystems[0].Reachable)
	assert.Equal(t, models.ErrProbeTimeout.Error(), snapshot.Subsystems[0].Error)
	assert.True(t, snapshot.Subsystems[1].Reachable)
}

func TestSnapshot_OpenIncidentAlarm(t *testing.T) {
	source := &fakeSource{open: 50}
	a := NewAggregator(source, time.Second, 50, newTestLogger(), okProbe(SubsystemCrowdDetector))

	assert.False(t, a.Snapshot(context.Background()).Degraded)

	source.open = 51
	assert.True(t, a.Snapshot(context.Background()).Degraded)
}

func TestHTTPProbe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	assert.NoError(t, NewHTTPProbe("ok", healthy.URL, nil).Check(context.Background()))
	assert.Error(t, NewHTTPProbe("broken", broken.URL, nil).Check(context.Background()))
}

func TestRefreshAndLast(t *testing.T) {
	a := NewAggregator(&fakeSource{open: 1}, time.Second, 50, newTestLogger(), okProbe(SubsystemCrowdDetector))

	_, ok := a.Last()
	assert.False(t, ok)

	a.Refresh(context.Background())
	last, ok := a.Last()
	require.True(t, ok)
	assert.Equal(t, 1, last.Incidents.Open)
}

func TestSetProbes_KeepsBuiltIn(t *testing.T) {
	a := NewAggregator(&fakeSource{}, time.Second, 50, newTestLogger(), okProbe(SubsystemStorageProvider))

	a.SetProbes([]Probe{okProbe(SubsystemCrowdDetector), okProbe(SubsystemFaceMatcher)})
	assert.Len(t, a.Snapshot(context.Background()).Subsystems, 3)

	a.SetProbes(nil)
	assert.Len(t, a.Snapshot(context.Background()).Subsystems, 1)
}

func TestMaintain(t *testing.T) {
	source := &fakeSource{open: 2, purged: 4}
	a := NewAggregator(source, time.Second, 50, newTestLogger(), okProbe(SubsystemCrowdDetector))
	ctx := context.Background()

	report, err := a.Maintain(ctx, IntentForceSync)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Persisted)
	_, ok := a.Last()
	assert.True(t, ok)

	// Повторный вызов безопасен
	_, err = a.Maintain(ctx, IntentForceSync)
	require.NoError(t, err)
	assert.Equal(t, int32(2), source.flushed.Load())

	report, err = a.Maintain(ctx, IntentClearCache)
	require.NoError(t, err)
	assert.Equal(t, 4, report.OriginsPurged)
	_, ok = a.Last()
	assert.False(t, ok)

	_, err = a.Maintain(ctx, "reboot")
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestMaintain_FlushError(t *testing.T) {
	a := NewAggregator(&fakeSource{flushErr: errors.New("db down")}, time.Second, 50, newTestLogger())

	_, err := a.Maintain(context.Background(), IntentForceSync)

	assert.ErrorContains(t, err, "could not force sync")
}
