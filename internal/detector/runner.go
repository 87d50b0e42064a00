package detector

import (
	"context"
	"fmt"
	"math"

	"github.com/shenikar/crowd_safety_engine/internal/adapter"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/sirupsen/logrus"
)

// Submitter - адаптер, принимающий сигналы
type Submitter interface {
	Submit(ctx context.Context, signal models.Signal) (adapter.Result, error)
}

// Frame - кадр камеры с привязкой к месту
type Frame struct {
	CameraID string
	Location models.Location
	Image    []byte
	Filename string
}

// Series - временной ряд датчика
type Series struct {
	SensorID string
	Location models.Location
	Values   []float64
}

// Outcome - результат обработки: ответ детектора и, если сигнал возник, итог его приема
type Outcome[T any] struct {
	Detection T
	Results   []adapter.Result
}

// Runner сначала вызывает детектор, затем передает результат адаптеру.
// Вызовы детекторов никогда не выполняются под блокировкой хранилища.
type Runner struct {
	crowd     *Client
	face      *Client
	anomaly   *Client
	submitter Submitter
	threshold int
	logger    *logrus.Logger
}

func NewRunner(crowd, face, anomaly *Client, submitter Submitter, crowdThreshold int, logger *logrus.Logger) *Runner {
	return &Runner{
		crowd:     crowd,
		face:      face,
		anomaly:   anomaly,
		submitter: submitter,
		threshold: crowdThreshold,
		logger:    logger,
	}
}

// Crowd считает людей в кадре. Превышение порога поднимает crowd-anomaly.
func (r *Runner) Crowd(ctx context.Context, frame Frame) (Outcome[CrowdResult], error) {
	var out Outcome[CrowdResult]
	if frame.CameraID == "" {
		return out, fmt.Errorf("camera id is required: %w", models.ErrInvalidSignal)
	}
	result, err := r.crowd.CountPeople(ctx, frame.Image, frame.Filename)
	if err != nil {
		return out, fmt.Errorf("detector: could not count people: %w", err)
	}
	out.Detection = result
	if r.threshold <= 0 || result.Count < r.threshold {
		return out, nil
	}

	signal := models.Signal{
		Kind:     models.KindCrowdAnomaly,
		Origin:   models.Origin{Type: models.OriginSensorDetection, Reference: r.crowd.Name() + ":" + frame.CameraID},
		Location: locationPtr(frame.Location),
		Severity: float64(result.Count) / float64(r.threshold),
		Details:  fmt.Sprintf("people count %d over threshold %d", result.Count, r.threshold),
	}
	return submit(ctx, r, out, signal)
}

// Anomaly оценивает ряд датчика. Аномальное последнее значение поднимает crowd-anomaly.
func (r *Runner) Anomaly(ctx context.Context, series Series) (Outcome[AnomalyResult], error) {
	var out Outcome[AnomalyResult]
	if series.SensorID == "" {
		return out, fmt.Errorf("sensor id is required: %w", models.ErrInvalidSignal)
	}
	result, err := r.anomaly.ScoreAnomaly(ctx, series.Values)
	if err != nil {
		return out, fmt.Errorf("detector: could not score anomaly: %w", err)
	}
	out.Detection = result
	if !result.IsLatestAnomaly {
		return out, nil
	}

	signal := models.Signal{
		Kind:     models.KindCrowdAnomaly,
		Origin:   models.Origin{Type: models.OriginSensorDetection, Reference: r.anomaly.Name() + ":" + series.SensorID},
		Location: locationPtr(series.Location),
		Severity: deviation(series.Values),
		Details:  fmt.Sprintf("abnormal surge or drop, latest value %v", result.LatestValue),
	}
	return submit(ctx, r, out, signal)
}

// Face ищет пропавших в кадре. Каждое совпадение - отдельный lost-person сигнал.
func (r *Runner) Face(ctx context.Context, frame Frame) (Outcome[FaceResult], error) {
	var out Outcome[FaceResult]
	if frame.CameraID == "" {
		return out, fmt.Errorf("camera id is required: %w", models.ErrInvalidSignal)
	}
	result, err := r.face.Recognize(ctx, frame.Image, frame.Filename)
	if err != nil {
		return out, fmt.Errorf("detector: could not recognize faces: %w", err)
	}
	out.Detection = result

	for _, match := range result.Flagged {
		signal := models.Signal{
			Kind:     models.KindLostPerson,
			Origin:   models.Origin{Type: models.OriginSensorDetection, Reference: r.face.Name() + ":" + match.Name},
			Location: locationPtr(frame.Location),
			Severity: 2,
			Details:  fmt.Sprintf("missing person %s seen by camera %s", match.Name, frame.CameraID),
		}
		if out, err = submit(ctx, r, out, signal); err != nil {
			return out, err
		}
	}
	return out, nil
}

func submit[T any](ctx context.Context, r *Runner, out Outcome[T], signal models.Signal) (Outcome[T], error) {
	res, err := r.submitter.Submit(ctx, signal)
	if err != nil {
		r.logger.WithFields(logrus.Fields{
			"component": "detector",
			"origin":    signal.Origin.Reference,
		}).WithError(err).Error("Failed to submit detection signal")
		return out, fmt.Errorf("detector: could not submit signal: %w", err)
	}
	out.Results = append(out.Results, res)
	return out, nil
}

func locationPtr(l models.Location) *models.Location {
	return &l
}

// deviation - относительное отклонение последнего значения от среднего предыдущих
func deviation(values []float64) float64 {
	if len(values) < 2 {
		return 1
	}
	sum := 0.0
	for _, v := range values[:len(values)-1] {
		sum += v
	}
	mean := sum / float64(len(values)-1)
	if mean == 0 {
		return 1
	}
	return math.Abs(values[len(values)-1]-mean) / math.Abs(mean)
}
