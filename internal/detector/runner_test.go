package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/adapter"
	"github.com/shenikar/crowd_safety_engine/internal/detector/mocks"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// jsonServer отвечает фиксированным JSON и проверяет путь запроса
func jsonServer(t *testing.T, path string, response any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, path, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func frame() Frame {
	return Frame{
		CameraID: "cam-3",
		Location: models.Location{Latitude: 23.18, Longitude: 75.77, Place: "Mahakal gate"},
		Image:    []byte("jpeg-bytes"),
		Filename: "frame.jpg",
	}
}

func TestRunner_CrowdOverThreshold(t *testing.T) {
	// Подготовка
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "jpeg-bytes", string(data))
		assert.Equal(t, "frame.jpg", header.Filename)
		_ = json.NewEncoder(w).Encode(CrowdResult{Count: 750})
	}))
	defer srv.Close()

	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)
	crowd := NewClient("crowd-detector", srv.URL, time.Second)
	runner := NewRunner(crowd, nil, nil, submitter, 500, newTestLogger())
	id := uuid.New()

	// Ожидания
	submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, signal models.Signal) (adapter.Result, error) {
			assert.Equal(t, models.KindCrowdAnomaly, signal.Kind)
			assert.Equal(t, "crowd-detector:cam-3", signal.Origin.Reference)
			assert.Equal(t, models.OriginSensorDetection, signal.Origin.Type)
			assert.InDelta(t, 1.5, signal.Severity, 1e-9)
			assert.Equal(t, "Mahakal gate", signal.Location.Place)
			return adapter.Result{IncidentID: id}, nil
		}).Times(1)

	// Действие
	out, err := runner.Crowd(context.Background(), frame())

	// Проверки
	require.NoError(t, err)
	assert.Equal(t, 750, out.Detection.Count)
	require.Len(t, out.Results, 1)
	assert.Equal(t, id, out.Results[0].IncidentID)
}

func TestRunner_CrowdBelowThreshold(t *testing.T) {
	srv := jsonServer(t, "/detect", CrowdResult{Count: 120})
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)
	runner := NewRunner(NewClient("crowd-detector", srv.URL, time.Second), nil, nil, submitter, 500, newTestLogger())

	submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)

	out, err := runner.Crowd(context.Background(), frame())

	require.NoError(t, err)
	assert.Equal(t, 120, out.Detection.Count)
	assert.Empty(t, out.Results)
}

func TestRunner_AnomalyLatestFlagged(t *testing.T) {
	srv := jsonServer(t, "/detect", AnomalyResult{IsLatestAnomaly: true, AnomalyIndices: []int{5}, LatestValue: 400})
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)
	runner := NewRunner(nil, nil, NewClient("anomaly-detector", srv.URL, time.Second), submitter, 500, newTestLogger())

	submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, signal models.Signal) (adapter.Result, error) {
			assert.Equal(t, "anomaly-detector:counter-1", signal.Origin.Reference)
			assert.InDelta(t, 2.2, signal.Severity, 1e-9)
			return adapter.Result{IncidentID: uuid.New(), Duplicate: true}, nil
		}).Times(1)

	out, err := runner.Anomaly(context.Background(), Series{
		SensorID: "counter-1",
		Location: models.Location{Latitude: 23.1, Longitude: 75.7},
		Values:   []float64{120, 130, 125, 120, 130, 400},
	})

	require.NoError(t, err)
	assert.True(t, out.Detection.IsLatestAnomaly)
	require.Len(t, out.Results, 1)
	assert.True(t, out.Results[0].Duplicate)
}

func TestRunner_AnomalyNeedsFiveValues(t *testing.T) {
	runner := NewRunner(nil, nil, NewClient("anomaly-detector", "http://unused", time.Second), nil, 500, newTestLogger())

	_, err := runner.Anomaly(context.Background(), Series{SensorID: "counter-1", Values: []float64{1, 2, 3, 4}})

	assert.ErrorIs(t, err, models.ErrInvalidSignal)
}

func TestRunner_FaceMatchesBecomeLostPerson(t *testing.T) {
	srv := jsonServer(t, "/recognize", FaceResult{
		NumFaces: 3,
		Flagged:  []FaceMatch{{FaceID: 1, Name: "ram_kumar"}, {FaceID: 3, Name: "sita_devi"}},
	})
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)
	runner := NewRunner(nil, NewClient("face-matcher", srv.URL, time.Second), nil, submitter, 500, newTestLogger())
	var refs []string

	submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, signal models.Signal) (adapter.Result, error) {
			assert.Equal(t, models.KindLostPerson, signal.Kind)
			refs = append(refs, signal.Origin.Reference)
			return adapter.Result{IncidentID: uuid.New()}, nil
		}).Times(2)

	out, err := runner.Face(context.Background(), frame())

	require.NoError(t, err)
	assert.Equal(t, 3, out.Detection.NumFaces)
	assert.Len(t, out.Results, 2)
	assert.Equal(t, []string{"face-matcher:ram_kumar", "face-matcher:sita_devi"}, refs)
}

func TestRunner_SubmitError(t *testing.T) {
	srv := jsonServer(t, "/detect", CrowdResult{Count: 900})
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)
	runner := NewRunner(NewClient("crowd-detector", srv.URL, time.Second), nil, nil, submitter, 500, newTestLogger())

	submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(adapter.Result{}, errors.New("boom")).Times(1)

	_, err := runner.Crowd(context.Background(), frame())

	assert.ErrorContains(t, err, "could not submit signal")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	client := NewClient("crowd-detector", srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := client.CountPeople(context.Background(), []byte("img"), "a.jpg")

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := NewClient("face-matcher", srv.URL, time.Second).Recognize(context.Background(), []byte("img"), "a.jpg")

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorContains(t, err, "model not loaded")
}

func TestClient_Disabled(t *testing.T) {
	_, err := NewClient("crowd-detector", "", time.Second).CountPeople(context.Background(), []byte("img"), "a.jpg")

	assert.ErrorIs(t, err, ErrDisabled)
}
