package health

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shenikar/crowd_safety_engine/internal/metrics"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// IncidentSource - хранилище инцидентов с точки зрения агрегатора
type IncidentSource interface {
	Counts() models.IncidentCounts
	Flush(ctx context.Context) (int, error)
	PurgeOrigins() int
}

// Aggregator собирает срез состояния: счетчики инцидентов и доступность подсистем.
// Медленная проверка ограничена своим таймаутом и не блокирует срез целиком.
type Aggregator struct {
	source  IncidentSource
	timeout time.Duration
	alarm   int
	now     func() time.Time
	logger  *logrus.Logger

	mu     sync.RWMutex
	probes []Probe
	fixed  []Probe

	last atomic.Pointer[models.HealthSnapshot]
}

func NewAggregator(source IncidentSource, timeout time.Duration, alarm int, logger *logrus.Logger, probes ...Probe) *Aggregator {
	return &Aggregator{
		source:  source,
		timeout: timeout,
		alarm:   alarm,
		now:     time.Now,
		logger:  logger,
		fixed:   probes,
	}
}

// SetProbes заменяет проверки, загруженные из файла. Встроенные проверки сохраняются.
func (a *Aggregator) SetProbes(probes []Probe) {
	a.mu.Lock()
	a.probes = probes
	a.mu.Unlock()

	a.logger.WithFields(logrus.Fields{
		"component": "health",
		"method":    "SetProbes",
		"probes":    len(probes),
	}).Info("Probe set replaced")
}

func (a *Aggregator) currentProbes() []Probe {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]Probe, 0, len(a.fixed)+len(a.probes))
	result = append(result, a.fixed...)
	return append(result, a.probes...)
}

// Snapshot строит срез состояния, опрашивая подсистемы параллельно
func (a *Aggregator) Snapshot(ctx context.Context) models.HealthSnapshot {
	counts := a.source.Counts()
	probes := a.currentProbes()
	samples := make([]models.HealthSample, len(probes))

	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			samples[i] = a.check(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	snapshot := models.HealthSnapshot{
		Incidents:  counts,
		Subsystems: samples,
		TakenAt:    a.now(),
	}
	for _, s := range samples {
		if !s.Reachable {
			snapshot.Degraded = true
		}
	}
	if a.alarm > 0 && counts.Open > a.alarm {
		snapshot.Degraded = true
	}
	metrics.OpenIncidents.Set(float64(counts.Open))
	return snapshot
}

// check выполняет одну проверку. Результат, пришедший после таймаута, отбрасывается.
func (a *Aggregator) check(ctx context.Context, p Probe) models.HealthSample {
	pctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- p.Check(pctx)
	}()

	var err error
	select {
	case err = <-done:
	case <-pctx.Done():
		err = models.ErrProbeTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		err = models.ErrProbeTimeout
	}
	latency := time.Since(start)

	sample := models.HealthSample{
		Name:          p.Name(),
		Reachable:     err == nil,
		Latency:       latency,
		LastCheckedAt: a.now(),
	}
	if err != nil {
		sample.Error = err.Error()
		a.logger.WithFields(logrus.Fields{
			"component": "health",
			"subsystem": p.Name(),
		}).WithError(err).Warn("Subsystem probe failed")
	}
	metrics.ProbeDuration.WithLabelValues(p.Name(), strconv.FormatBool(sample.Reachable)).
		Observe(float64(latency.Milliseconds()))
	return sample
}

// Refresh обновляет закешированный срез. Вызывается по расписанию.
func (a *Aggregator) Refresh(ctx context.Context) models.HealthSnapshot {
	snapshot := a.Snapshot(ctx)
	a.last.Store(&snapshot)
	return snapshot
}

// Last возвращает последний закешированный срез
func (a *Aggregator) Last() (models.HealthSnapshot, bool) {
	snapshot := a.last.Load()
	if snapshot == nil {
		return models.HealthSnapshot{}, false
	}
	return *snapshot, true
}
