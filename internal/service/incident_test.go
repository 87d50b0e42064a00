package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/adapter"
	"github.com/shenikar/crowd_safety_engine/internal/attachment"
	"github.com/shenikar/crowd_safety_engine/internal/detector"
	"github.com/shenikar/crowd_safety_engine/internal/fanout"
	"github.com/shenikar/crowd_safety_engine/internal/health"
	"github.com/shenikar/crowd_safety_engine/internal/lifecycle"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/shenikar/crowd_safety_engine/internal/service/mocks"
	"github.com/shenikar/crowd_safety_engine/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type testEnv struct {
	service     *incidentService
	store       *store.Store
	broker      *fanout.Broker
	repo        *mocks.MockIncidentRepository
	attachments *mocks.MockAttachmentStorage
	audit       *mocks.MockAuditTrail
}

// newTestIncidentService - вспомогательная функция для создания сервиса на реальном ядре с моками бд и вложений.
func newTestIncidentService(t *testing.T) *testEnv {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	attachmentsMock := mocks.NewMockAttachmentStorage(ctrl)
	auditMock := mocks.NewMockAuditTrail(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	st := store.New(logger, time.Minute, nil)
	broker := fanout.NewBroker(16, logger)
	t.Cleanup(broker.Close)
	engine := lifecycle.NewEngine(st, broker, 15*time.Minute, logger)
	adp := adapter.New(engine, st, logger)
	disabled := detector.NewClient(health.SubsystemCrowdDetector, "", time.Second)

	svc := NewIncidentService(Deps{
		Store:       st,
		Engine:      engine,
		Adapter:     adp,
		Broker:      broker,
		Health:      health.NewAggregator(st, time.Second, 50, logger),
		Detectors:   detector.NewRunner(disabled, disabled, disabled, adp, 500, logger),
		Repo:        repoMock,
		Attachments: attachmentsMock,
		Audit:       auditMock,
	}, logger)

	return &testEnv{
		service:     svc.(*incidentService),
		store:       st,
		broker:      broker,
		repo:        repoMock,
		attachments: attachmentsMock,
		audit:       auditMock,
	}
}

func sosSignal(user string) models.Signal {
	return models.Signal{
		Kind:     models.KindMedical,
		Origin:   models.Origin{Type: models.OriginUserReport, Reference: user},
		Location: &models.Location{Latitude: 23.18, Longitude: 75.77},
		Severity: 3,
	}
}

func TestSubmitSignal_CreatesAndPublishes(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()
	sub := env.service.Subscribe()

	// Действие
	res, err := env.service.SubmitSignal(ctx, sosSignal("user-1"))

	// Проверки
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.False(t, res.Incident.CreatedAt.IsZero())

	msg := <-sub.C()
	assert.Equal(t, fanout.MessageChange, msg.Kind)
	assert.Equal(t, res.IncidentID, msg.Change.IncidentID)
	assert.Equal(t, models.ChangeCreated, msg.Change.Type)
}

func TestSubmitSignal_Invalid(t *testing.T) {
	env := newTestIncidentService(t)
	signal := sosSignal("user-1")
	signal.Kind = "fire"

	_, err := env.service.SubmitSignal(context.Background(), signal)

	assert.ErrorIs(t, err, models.ErrInvalidSignal)
	assert.ErrorContains(t, err, "service: could not submit signal")
}

func TestTriggerSOS(t *testing.T) {
	env := newTestIncidentService(t)

	res, err := env.service.TriggerSOS(context.Background(), adapter.SOS{
		UserID:    "pilgrim-7",
		Type:      "security",
		Latitude:  23.17,
		Longitude: 75.76,
	})

	require.NoError(t, err)
	assert.Equal(t, models.KindSecurity, res.Incident.Kind)
	assert.Equal(t, "pilgrim-7", res.Incident.Origin.Reference)
}

func TestTriggerSOS_UnknownType(t *testing.T) {
	env := newTestIncidentService(t)

	_, err := env.service.TriggerSOS(context.Background(), adapter.SOS{UserID: "u", Type: "fire"})

	assert.ErrorIs(t, err, models.ErrInvalidSignal)
}

func TestLifecycleThroughService(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()
	res, err := env.service.SubmitSignal(ctx, sosSignal("user-2"))
	require.NoError(t, err)
	id := res.IncidentID

	// Действие и проверки
	inc, err := env.service.Acknowledge(ctx, id, "responder-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAcknowledged, inc.Status)

	inc, err = env.service.Escalate(ctx, id, "responder-1", 4)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, inc.Status)
	assert.Equal(t, float64(4), inc.Severity)

	inc, err = env.service.Resolve(ctx, id, "responder-1", "treated on site")
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, inc.Status)
	assert.Equal(t, "treated on site", inc.Outcome)

	_, err = env.service.Acknowledge(ctx, id, "responder-2")
	assert.ErrorIs(t, err, models.ErrIllegalTransition)
}

func TestRefineLocation_RejectsBadCoordinates(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()
	res, err := env.service.SubmitSignal(ctx, sosSignal("user-3"))
	require.NoError(t, err)

	_, err = env.service.RefineLocation(ctx, res.IncidentID, models.Location{Latitude: 95}, "nav")
	assert.ErrorIs(t, err, models.ErrInvalidSignal)

	inc, err := env.service.RefineLocation(ctx, res.IncidentID, models.Location{Latitude: 23.2, Longitude: 75.8, Place: "Ghat 4"}, "nav")
	require.NoError(t, err)
	assert.True(t, inc.LocationRefined)
	assert.Equal(t, "Ghat 4", inc.Location.Place)
}

func TestAttachToIncident(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()
	res, err := env.service.SubmitSignal(ctx, sosSignal("user-4"))
	require.NoError(t, err)

	inc, err := env.service.AttachToIncident(ctx, res.IncidentID, "photo-1", "user-4")

	require.NoError(t, err)
	assert.Equal(t, []string{"photo-1"}, inc.Attachments)
}

func TestGetIncident_FromMemory(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()
	res, err := env.service.SubmitSignal(ctx, sosSignal("user-5"))
	require.NoError(t, err)

	// Ожидания
	env.repo.EXPECT().Load(gomock.Any(), gomock.Any()).Times(0)

	// Действие
	inc, err := env.service.GetIncident(ctx, res.IncidentID)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, res.IncidentID, inc.ID)
}

func TestGetIncident_FallsBackToRepository(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()
	id := uuid.New()
	evicted := &models.Incident{ID: id, Status: models.StatusResolved}

	// Ожидания
	env.repo.EXPECT().Load(ctx, id).Return(evicted, nil).Times(1)

	// Действие
	inc, err := env.service.GetIncident(ctx, id)

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, evicted, inc)
}

func TestGetIncident_NotFound(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()
	id := uuid.New()

	env.repo.EXPECT().Load(ctx, id).Return(nil, models.ErrNotFound).Times(1)

	_, err := env.service.GetIncident(ctx, id)

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListIncidents_MemoryOnly(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()
	_, err := env.service.SubmitSignal(ctx, sosSignal("user-6"))
	require.NoError(t, err)

	env.repo.EXPECT().Query(gomock.Any(), gomock.Any()).Times(0)

	list, err := env.service.ListIncidents(ctx, models.Filter{}, false)

	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListIncidents_IncludeClosedMergesRepository(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()
	res, err := env.service.SubmitSignal(ctx, sosSignal("user-7"))
	require.NoError(t, err)
	live, err := env.service.GetIncident(ctx, res.IncidentID)
	require.NoError(t, err)

	stale := live.Clone()
	stale.Severity = 1
	archived := &models.Incident{
		ID:        uuid.New(),
		Status:    models.StatusResolved,
		CreatedAt: live.CreatedAt.Add(-time.Hour),
	}

	// Ожидания
	env.repo.EXPECT().
		Query(ctx, models.Filter{Limit: 100}).
		Return([]*models.Incident{stale, archived}, nil).
		Times(1)

	// Действие
	list, err := env.service.ListIncidents(ctx, models.Filter{}, true)

	// Проверки
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, live.ID, list[0].ID)
	assert.Equal(t, float64(3), list[0].Severity)
	assert.Equal(t, archived.ID, list[1].ID)
}

func TestListIncidents_RepositoryError(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()

	env.repo.EXPECT().Query(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down")).Times(1)

	_, err := env.service.ListIncidents(ctx, models.Filter{}, true)

	assert.ErrorContains(t, err, "service: could not list incidents")
}

func TestUploadAttachment(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()
	data := []byte("jpeg")

	env.attachments.EXPECT().Put(ctx, "image/jpeg", data).Return("ref-1", nil).Times(1)

	ref, err := env.service.UploadAttachment(ctx, "image/jpeg", data)

	require.NoError(t, err)
	assert.Equal(t, "ref-1", ref)
}

func TestUploadAttachment_TooLarge(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()

	env.attachments.EXPECT().Put(gomock.Any(), gomock.Any(), gomock.Any()).Return("", attachment.ErrTooLarge).Times(1)

	_, err := env.service.UploadAttachment(ctx, "image/jpeg", []byte("big"))

	assert.ErrorIs(t, err, attachment.ErrTooLarge)
}

func TestAttachments_Disabled(t *testing.T) {
	env := newTestIncidentService(t)
	env.service.deps.Attachments = nil

	_, err := env.service.UploadAttachment(context.Background(), "image/jpeg", []byte("x"))
	assert.ErrorIs(t, err, ErrAttachmentsDisabled)

	_, err = env.service.GetAttachment(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrAttachmentsDisabled)
}

func TestGetAttachment(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()
	want := &attachment.Attachment{Ref: "ref-2", ContentType: "image/png", Data: []byte("png")}

	env.attachments.EXPECT().Get(ctx, "ref-2").Return(want, nil).Times(1)

	got, err := env.service.GetAttachment(ctx, "ref-2")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDetectCrowd_Disabled(t *testing.T) {
	env := newTestIncidentService(t)

	_, err := env.service.DetectCrowd(context.Background(), detector.Frame{CameraID: "cam-1", Image: []byte("x")})

	assert.ErrorIs(t, err, detector.ErrDisabled)
}

func TestHealth_CachedFallsBackToRefresh(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()
	_, err := env.service.SubmitSignal(ctx, sosSignal("user-8"))
	require.NoError(t, err)

	snapshot := env.service.Health(ctx, true)

	assert.Equal(t, 1, snapshot.Incidents.Open)
	assert.False(t, snapshot.Degraded)

	cached := env.service.Health(ctx, true)
	assert.Equal(t, snapshot.TakenAt, cached.TakenAt)
}

func TestMaintain_UnknownIntent(t *testing.T) {
	env := newTestIncidentService(t)

	_, err := env.service.Maintain(context.Background(), health.Intent("reboot"), "ops-1")

	assert.ErrorIs(t, err, health.ErrUnknownIntent)
}

func TestSubscribeUnsubscribe(t *testing.T) {
	env := newTestIncidentService(t)

	sub := env.service.Subscribe()
	assert.Equal(t, 1, env.broker.Len())

	env.service.Unsubscribe(sub)
	assert.Equal(t, 0, env.broker.Len())
}

func TestMaintain_RecordsAudit(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()

	// Ожидания
	env.audit.EXPECT().Record(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, entry models.AuditEntry) error {
		assert.Equal(t, models.AuditMaintenance, entry.Action)
		assert.Equal(t, "ops-1", entry.Actor)
		assert.Equal(t, string(health.IntentClearCache), entry.Message)
		assert.NotEqual(t, uuid.Nil, entry.ID)
		return nil
	}).Times(1)

	// Действие
	report, err := env.service.Maintain(ctx, health.IntentClearCache, "ops-1")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, health.IntentClearCache, report.Intent)
}

func TestResume_StartsWithReconnect(t *testing.T) {
	env := newTestIncidentService(t)

	sub := env.service.Resume(0)
	defer env.service.Unsubscribe(sub)

	msg := <-sub.C()
	assert.Equal(t, fanout.MessageReconnect, msg.Kind)
}

func TestBroadcast_DeliversAndAudits(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()
	sub := env.service.Subscribe()

	// Ожидания
	env.audit.EXPECT().Record(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, entry models.AuditEntry) error {
		assert.Equal(t, models.AuditBroadcast, entry.Action)
		assert.Equal(t, "Gate 4 is closed", entry.Message)
		return nil
	}).Times(1)

	// Действие
	sent, err := env.service.Broadcast(ctx, "  Gate 4 is closed ", "ops-1")

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sent.Seq)
	msg := <-sub.C()
	assert.Equal(t, fanout.MessageBroadcast, msg.Kind)
	assert.Equal(t, "Gate 4 is closed", msg.Broadcast.Message)
	assert.Equal(t, "ops-1", msg.Broadcast.Actor)
}

func TestBroadcast_AuditFailureDoesNotFail(t *testing.T) {
	env := newTestIncidentService(t)
	ctx := context.Background()

	env.audit.EXPECT().Record(ctx, gomock.Any()).Return(errors.New("db down")).Times(1)

	_, err := env.service.Broadcast(ctx, "Gate 4 is closed", "ops-1")

	assert.NoError(t, err)
}

func TestBroadcast_EmptyMessage(t *testing.T) {
	env := newTestIncidentService(t)

	_, err := env.service.Broadcast(context.Background(), "   ", "ops-1")

	assert.ErrorIs(t, err, ErrEmptyBroadcast)
}

func TestAuditLog(t *testing.T) {
	// Подготовка
	env := newTestIncidentService(t)
	ctx := context.Background()
	entries := []models.AuditEntry{{ID: uuid.New(), Action: models.AuditBroadcast, Actor: "ops-1", Message: "hi"}}

	// Ожидания: лимит вне диапазона заменяется значением по умолчанию
	env.audit.EXPECT().Recent(ctx, 100).Return(entries, nil).Times(1)
	env.audit.EXPECT().Recent(ctx, 20).Return(nil, errors.New("db down")).Times(1)

	// Действие и проверки
	got, err := env.service.AuditLog(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	_, err = env.service.AuditLog(ctx, 20)
	assert.ErrorContains(t, err, "could not read audit log")
}

func TestAuditLog_Disabled(t *testing.T) {
	env := newTestIncidentService(t)
	env.service.deps.Audit = nil

	_, err := env.service.AuditLog(context.Background(), 10)

	assert.ErrorIs(t, err, ErrAuditDisabled)
}
