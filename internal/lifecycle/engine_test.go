package lifecycle

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/shenikar/crowd_safety_engine/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	changes []models.ChangeRecord
}

func (r *recorder) Publish(change models.ChangeRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, change)
}

func (r *recorder) all() []models.ChangeRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ChangeRecord(nil), r.changes...)
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setup(t *testing.T) (*Engine, *store.Store, *recorder, *clock) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	st := store.New(logger, time.Minute, nil)
	rec := &recorder{}
	clk := &clock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewEngine(st, rec, 15*time.Minute, logger, WithClock(clk.Now)), st, rec, clk
}

func medicalSignal(ref string) models.Signal {
	return models.Signal{
		Kind:     models.KindMedical,
		Origin:   models.Origin{Type: models.OriginUserReport, Reference: ref},
		Location: &models.Location{Latitude: 55.75, Longitude: 37.61},
		Severity: 2,
	}
}

func TestNext_TransitionTable(t *testing.T) {
	testCases := []struct {
		from  models.Status
		event Event
		to    models.Status
		ok    bool
	}{
		{models.StatusTriggered, EventAcknowledge, models.StatusAcknowledged, true},
		{models.StatusTriggered, EventEscalate, models.StatusActive, true},
		{models.StatusAcknowledged, EventEscalate, models.StatusActive, true},
		{models.StatusAcknowledged, EventResolve, models.StatusResolved, true},
		{models.StatusActive, EventResolve, models.StatusResolved, true},
		{models.StatusTriggered, EventResolve, models.StatusResolved, true},
		{models.StatusActive, EventExpire, models.StatusExpired, true},
		{models.StatusAcknowledged, EventAcknowledge, "", false},
		{models.StatusActive, EventEscalate, "", false},
		{models.StatusActive, EventAcknowledge, "", false},
		{models.StatusResolved, EventResolve, "", false},
		{models.StatusResolved, EventExpire, "", false},
		{models.StatusExpired, EventAcknowledge, "", false},
		{models.StatusExpired, EventResolve, "", false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.from)+"/"+string(tc.event), func(t *testing.T) {
			to, ok := Next(tc.from, tc.event)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.to, to)
		})
	}
}

func TestCreate_SeedsHistoryAndPublishes(t *testing.T) {
	engine, st, rec, clk := setup(t)

	inc, err := engine.Create(context.Background(), medicalSignal("user-42"))

	require.NoError(t, err)
	assert.Equal(t, models.StatusTriggered, inc.Status)
	require.Len(t, inc.History, 1)
	assert.Equal(t, "user-42", inc.History[0].Actor)
	assert.Equal(t, clk.Now(), inc.CreatedAt)

	stored, err := st.Get(inc.ID)
	require.NoError(t, err)
	assert.Equal(t, inc.ID, stored.ID)

	changes := rec.all()
	require.Len(t, changes, 1)
	assert.Equal(t, models.ChangeCreated, changes[0].Type)
	assert.Equal(t, inc.ID, changes[0].IncidentID)
}

func TestCreate_UnknownLocation(t *testing.T) {
	engine, _, _, _ := setup(t)
	signal := medicalSignal("user-1")
	signal.Location = nil

	inc, err := engine.Create(context.Background(), signal)

	require.NoError(t, err)
	assert.True(t, inc.Location.Unknown)
}

// Сценарий: triggered -> acknowledged -> resolved, повторный Resolve отклоняется
func TestScenario_AcknowledgeThenResolve(t *testing.T) {
	engine, _, rec, clk := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-42"))
	require.NoError(t, err)

	clk.Advance(time.Minute)
	acked, err := engine.Acknowledge(ctx, inc.ID, "field-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAcknowledged, acked.Status)

	clk.Advance(time.Minute)
	resolved, err := engine.Resolve(ctx, inc.ID, "field-1", "treated on site")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, clk.Now(), *resolved.ResolvedAt)
	assert.Equal(t, "treated on site", resolved.Outcome)
	assert.Len(t, resolved.History, 3)

	_, err = engine.Resolve(ctx, inc.ID, "field-1", "again")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)

	changes := rec.all()
	require.Len(t, changes, 3)
	assert.Equal(t, models.StatusTriggered, changes[1].From)
	assert.Equal(t, models.StatusAcknowledged, changes[1].To)
	assert.Equal(t, models.StatusResolved, changes[2].To)
}

func TestResolve_FastPathFromTriggered(t *testing.T) {
	engine, _, _, _ := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-1"))
	require.NoError(t, err)

	resolved, err := engine.Resolve(ctx, inc.ID, "field-2", "false alarm")

	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, resolved.Status)
	assert.Len(t, resolved.History, 2)
}

func TestTransitions_HistoryGrowsByOne(t *testing.T) {
	engine, st, _, clk := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-7"))
	require.NoError(t, err)

	steps := []func() (*models.Incident, error){
		func() (*models.Incident, error) { return engine.Acknowledge(ctx, inc.ID, "field-1") },
		func() (*models.Incident, error) { return engine.Escalate(ctx, inc.ID, "crowd-detector", 4) },
		func() (*models.Incident, error) { return engine.Resolve(ctx, inc.ID, "field-1", "done") },
	}
	for n, step := range steps {
		clk.Advance(time.Second)
		got, err := step()
		require.NoError(t, err)
		assert.Len(t, got.History, n+2)
		assert.Equal(t, clk.Now(), got.UpdatedAt)
	}

	final, err := st.Get(inc.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(4), final.Severity)
}

func TestTransitions_RejectedLeavesStateUntouched(t *testing.T) {
	engine, st, rec, _ := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-1"))
	require.NoError(t, err)
	_, err = engine.Resolve(ctx, inc.ID, "field-1", "done")
	require.NoError(t, err)
	published := len(rec.all())

	_, err = engine.Acknowledge(ctx, inc.ID, "field-1")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
	_, err = engine.Escalate(ctx, inc.ID, "field-1", 9)
	assert.ErrorIs(t, err, models.ErrIllegalTransition)

	got, err := st.Get(inc.ID)
	require.NoError(t, err)
	assert.Len(t, got.History, 2)
	assert.Equal(t, float64(2), got.Severity)
	assert.Len(t, rec.all(), published)
}

func TestTransitions_NotFound(t *testing.T) {
	engine, _, rec, _ := setup(t)

	_, err := engine.Acknowledge(context.Background(), uuid.New(), "field-1")

	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Empty(t, rec.all())
}

func TestExpireOverdue_UsesEngineClock(t *testing.T) {
	engine, st, rec, clk := setup(t)
	ctx := context.Background()
	stale, err := engine.Create(ctx, medicalSignal("user-1"))
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)
	fresh, err := engine.Create(ctx, medicalSignal("user-2"))
	require.NoError(t, err)
	done, err := engine.Create(ctx, medicalSignal("user-3"))
	require.NoError(t, err)
	_, err = engine.Resolve(ctx, done.ID, "field-1", "ok")
	require.NoError(t, err)

	clk.Advance(6 * time.Minute)
	expired, err := engine.ExpireOverdue(ctx)

	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	got, _ := st.Get(stale.ID)
	assert.Equal(t, models.StatusExpired, got.Status)
	assert.Equal(t, ActorSLA, got.History[len(got.History)-1].Actor)
	got, _ = st.Get(fresh.ID)
	assert.Equal(t, models.StatusTriggered, got.Status)

	last := rec.all()[len(rec.all())-1]
	assert.Equal(t, models.StatusExpired, last.To)

	_, err = engine.Resolve(ctx, stale.ID, "field-1", "late")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
}

func TestExpireOverdue_CountsFromLastTransition(t *testing.T) {
	engine, st, _, clk := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-1"))
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)
	_, err = engine.Acknowledge(ctx, inc.ID, "field-1")
	require.NoError(t, err)

	// С момента создания SLA истек, с момента подтверждения - нет
	clk.Advance(10 * time.Minute)
	expired, err := engine.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, expired)
	got, _ := st.Get(inc.ID)
	assert.Equal(t, models.StatusAcknowledged, got.Status)

	// Подтвержденный инцидент без движения дольше SLA тоже истекает
	clk.Advance(5 * time.Minute)
	expired, err = engine.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	got, _ = st.Get(inc.ID)
	assert.Equal(t, models.StatusExpired, got.Status)
	require.Len(t, got.History, 3)
	assert.Equal(t, models.StatusAcknowledged, got.History[1].Status)
}

func TestReviseSeverity_UpwardOnly(t *testing.T) {
	engine, _, rec, _ := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("sensor-7"))
	require.NoError(t, err)

	raised, err := engine.ReviseSeverity(ctx, inc.ID, 5, "sensor-7")
	require.NoError(t, err)
	assert.Equal(t, float64(5), raised.Severity)
	assert.Len(t, raised.History, 1)

	same, err := engine.ReviseSeverity(ctx, inc.ID, 3, "sensor-7")
	require.NoError(t, err)
	assert.Equal(t, float64(5), same.Severity)

	changes := rec.all()
	require.Len(t, changes, 2)
	assert.Equal(t, models.ChangeSeverityRevised, changes[1].Type)
}

func TestRefineLocation_OnceBeforeAcknowledge(t *testing.T) {
	engine, _, _, _ := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-1"))
	require.NoError(t, err)
	refined := models.Location{Latitude: 55.76, Longitude: 37.62, Place: "Gate B"}

	got, err := engine.RefineLocation(ctx, inc.ID, refined, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Gate B", got.Location.Place)
	assert.True(t, got.LocationRefined)

	_, err = engine.RefineLocation(ctx, inc.ID, refined, "user-1")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)

	other, err := engine.Create(ctx, medicalSignal("user-2"))
	require.NoError(t, err)
	_, err = engine.Acknowledge(ctx, other.ID, "field-1")
	require.NoError(t, err)
	_, err = engine.RefineLocation(ctx, other.ID, refined, "user-2")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
}

func TestAttach(t *testing.T) {
	engine, _, _, _ := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-1"))
	require.NoError(t, err)

	got, err := engine.Attach(ctx, inc.ID, "photo-1", "user-1")
	require.NoError(t, err)
	got, err = engine.Attach(ctx, inc.ID, "photo-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"photo-1"}, got.Attachments)

	_, err = engine.Attach(ctx, inc.ID, "", "user-1")
	assert.ErrorIs(t, err, models.ErrInvalidSignal)

	_, err = engine.Resolve(ctx, inc.ID, "field-1", "ok")
	require.NoError(t, err)
	_, err = engine.Attach(ctx, inc.ID, "photo-2", "user-1")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
}

func TestConcurrentTransitions_SingleWinner(t *testing.T) {
	engine, st, _, _ := setup(t)
	ctx := context.Background()
	inc, err := engine.Create(ctx, medicalSignal("user-1"))
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := engine.Acknowledge(ctx, inc.ID, "field-1"); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	got, _ := st.Get(inc.ID)
	assert.Len(t, got.History, 2)
}
