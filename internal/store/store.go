package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Songmu/retry"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/shenikar/crowd_safety_engine/internal/metrics"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	persistAttempts = 3
	persistInterval = 200 * time.Millisecond
)

// Persister - внешнее хранилище, в которое состояние пишется в фоне (write-behind)
type Persister interface {
	Save(ctx context.Context, incident *models.Incident) error
	LoadOpen(ctx context.Context) ([]*models.Incident, error)
}

// entry хранит неизменяемый снимок инцидента. Запись подменяет указатель целиком,
// поэтому читатели не берут блокировок на инцидент.
type entry struct {
	snap atomic.Pointer[models.Incident]
}

// Store - единственный владелец инцидентов в памяти
type Store struct {
	mu        sync.RWMutex
	incidents map[uuid.UUID]*entry

	locks   *KeyedMutex
	origins *ttlcache.Cache[string, uuid.UUID]

	persister Persister
	dirtyMu   sync.Mutex
	dirty     map[uuid.UUID]struct{}
	inflight  map[uuid.UUID]int
	wake      chan struct{}
	wg        sync.WaitGroup
	started   atomic.Bool

	logger *logrus.Logger
}

// New создает хранилище. dedupWindow - время жизни записи в индексе источников,
// persister может быть nil (только память, без восстановления после сбоя).
func New(logger *logrus.Logger, dedupWindow time.Duration, persister Persister) *Store {
	return &Store{
		incidents: make(map[uuid.UUID]*entry),
		locks:     NewKeyedMutex(),
		origins: ttlcache.New(
			ttlcache.WithTTL[string, uuid.UUID](dedupWindow),
			ttlcache.WithDisableTouchOnHit[string, uuid.UUID](),
		),
		persister: persister,
		dirty:     make(map[uuid.UUID]struct{}),
		inflight:  make(map[uuid.UUID]int),
		wake:      make(chan struct{}, 1),
		logger:    logger,
	}
}

// Start запускает очистку индекса источников и фоновую запись во внешнее хранилище
func (s *Store) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.origins.Start()
	if s.persister == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				// Финальная запись накопленных изменений
				s.persistDirty(context.Background())
				return
			case <-s.wake:
				s.persistDirty(ctx)
			}
		}
	}()
}

// Wait дожидается завершения фоновой записи после отмены контекста Start
func (s *Store) Wait() {
	if !s.started.Load() {
		return
	}
	s.wg.Wait()
	s.origins.Stop()
}

// Insert добавляет новый инцидент. Повтор id недопустим.
// onCommit вызывается под блокировкой id, как и в Mutate.
func (s *Store) Insert(incident *models.Incident, onCommit func(*models.Incident)) error {
	unlock := s.locks.Lock(incident.ID.String())
	defer unlock()

	s.mu.Lock()
	if _, exists := s.incidents[incident.ID]; exists {
		s.mu.Unlock()
		return fmt.Errorf("incident with id %s already exists", incident.ID)
	}
	e := &entry{}
	e.snap.Store(incident.Clone())
	s.incidents[incident.ID] = e
	s.mu.Unlock()

	s.markDirty(incident.ID)
	if onCommit != nil {
		onCommit(incident.Clone())
	}
	return nil
}

// Get возвращает копию текущего состояния инцидента
func (s *Store) Get(id uuid.UUID) (*models.Incident, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
	}
	return e.snap.Load().Clone(), nil
}

// Mutate применяет fn к копии инцидента под блокировкой этого id.
// При ошибке fn состояние не меняется. onCommit вызывается с принятым снимком
// до снятия блокировки, что сохраняет порядок уведомлений для одного инцидента.
func (s *Store) Mutate(id uuid.UUID, fn func(*models.Incident) error, onCommit func(*models.Incident)) (*models.Incident, error) {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	e := s.lookup(id)
	if e == nil {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
	}

	next := e.snap.Load().Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	e.snap.Store(next)
	s.markDirty(id)

	if onCommit != nil {
		onCommit(next.Clone())
	}
	return next.Clone(), nil
}

// List возвращает инциденты по фильтру, новые первыми
func (s *Store) List(filter models.Filter) []*models.Incident {
	s.mu.RLock()
	result := make([]*models.Incident, 0, len(s.incidents))
	for _, e := range s.incidents {
		inc := e.snap.Load()
		if filter.Match(inc) {
			result = append(result, inc)
		}
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	for i, inc := range result {
		result[i] = inc.Clone()
	}
	return result
}

// Open возвращает все незакрытые инциденты
func (s *Store) Open() []*models.Incident {
	return s.List(models.Filter{OpenOnly: true})
}

// Counts считает инциденты по статусам и типам на момент вызова
func (s *Store) Counts() models.IncidentCounts {
	counts := models.IncidentCounts{
		ByStatus: make(map[models.Status]int, len(models.Statuses)),
		ByKind:   make(map[models.Kind]int, len(models.Kinds)),
	}
	for _, st := range models.Statuses {
		counts.ByStatus[st] = 0
	}
	for _, k := range models.Kinds {
		counts.ByKind[k] = 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.incidents {
		inc := e.snap.Load()
		counts.ByStatus[inc.Status]++
		counts.ByKind[inc.Kind]++
		if inc.Status.Open() {
			counts.Open++
		}
		counts.Total++
	}
	return counts
}

// LookupOrigin ищет инцидент по ключу дедупликации. Поиск не продлевает окно.
func (s *Store) LookupOrigin(key string) (uuid.UUID, bool) {
	item := s.origins.Get(key)
	if item == nil {
		return uuid.Nil, false
	}
	return item.Value(), true
}

// IndexOrigin связывает ключ с инцидентом и заново отсчитывает окно дедупликации
func (s *Store) IndexOrigin(key string, id uuid.UUID) {
	s.origins.Set(key, id, ttlcache.DefaultTTL)
}

// PurgeOrigins удаляет из индекса ключи закрытых и вытесненных инцидентов
func (s *Store) PurgeOrigins() int {
	purged := 0
	for key, item := range s.origins.Items() {
		e := s.lookup(item.Value())
		if e == nil || e.snap.Load().Status.Terminal() {
			s.origins.Delete(key)
			purged++
		}
	}
	return purged
}

// Evict удаляет закрытые инциденты, у которых истек горизонт хранения
func (s *Store) Evict(now time.Time, horizon time.Duration) int {
	s.dirtyMu.Lock()
	pending := make(map[uuid.UUID]struct{}, len(s.dirty)+len(s.inflight))
	for id := range s.dirty {
		pending[id] = struct{}{}
	}
	for id := range s.inflight {
		pending[id] = struct{}{}
	}
	s.dirtyMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, e := range s.incidents {
		closedAt, closed := e.snap.Load().ClosedAt()
		if !closed || now.Sub(closedAt) < horizon {
			continue
		}
		// Незаписанное состояние не вытесняем
		if _, ok := pending[id]; ok {
			continue
		}
		delete(s.incidents, id)
		evicted++
	}
	return evicted
}

// Recover восстанавливает открытые инциденты из внешнего хранилища
func (s *Store) Recover(ctx context.Context) (int, error) {
	if s.persister == nil {
		return 0, nil
	}
	incidents, err := s.persister.LoadOpen(ctx)
	if err != nil {
		return 0, fmt.Errorf("store: could not load open incidents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	restored := 0
	for _, inc := range incidents {
		if _, exists := s.incidents[inc.ID]; exists {
			continue
		}
		e := &entry{}
		e.snap.Store(inc.Clone())
		s.incidents[inc.ID] = e
		s.origins.Set(inc.Origin.DedupKey(inc.Kind), inc.ID, ttlcache.DefaultTTL)
		restored++
	}
	return restored, nil
}

// Flush синхронно записывает все инциденты во внешнее хранилище
func (s *Store) Flush(ctx context.Context) (int, error) {
	if s.persister == nil {
		return 0, nil
	}
	// Набор забирается до чтения снимков: изменение, пришедшее во время записи,
	// попадет в новый набор и будет записано следующим проходом
	batch := s.takeDirty()

	s.mu.RLock()
	snapshots := make([]*models.Incident, 0, len(s.incidents))
	for _, e := range s.incidents {
		snapshots = append(snapshots, e.snap.Load())
	}
	s.mu.RUnlock()

	for i, inc := range snapshots {
		if err := s.persister.Save(ctx, inc); err != nil {
			metrics.PersistFailures.Inc()
			s.releaseDirty(batch, batch)
			return i, fmt.Errorf("store: could not flush incident %s: %w", inc.ID, err)
		}
	}
	s.releaseDirty(batch, nil)
	return len(snapshots), nil
}

func (s *Store) lookup(id uuid.UUID) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.incidents[id]
}

func (s *Store) markDirty(id uuid.UUID) {
	if s.persister == nil {
		return
	}
	s.dirtyMu.Lock()
	s.dirty[id] = struct{}{}
	s.dirtyMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// persistDirty пишет последний снимок каждого измененного инцидента.
// Промежуточные состояния схлопываются: история в снимке все равно полная.
func (s *Store) persistDirty(ctx context.Context) {
	batch := s.takeDirty()
	failed := make(map[uuid.UUID]struct{})
	defer func() { s.releaseDirty(batch, failed) }()

	for id := range batch {
		e := s.lookup(id)
		if e == nil {
			continue
		}
		inc := e.snap.Load()
		err := retry.Retry(persistAttempts, persistInterval, func() error {
			return s.persister.Save(ctx, inc)
		})
		if err != nil {
			metrics.PersistFailures.Inc()
			s.logger.WithFields(logrus.Fields{
				"component":   "store",
				"method":      "persistDirty",
				"incident_id": id,
			}).WithError(err).Error("Failed to persist incident snapshot")
			// Повторим при следующем изменении или принудительной синхронизации
			failed[id] = struct{}{}
		}
	}
}

// takeDirty забирает набор измененных инцидентов. До releaseDirty они
// считаются записываемыми, и Evict их не трогает.
func (s *Store) takeDirty() map[uuid.UUID]struct{} {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	batch := s.dirty
	s.dirty = make(map[uuid.UUID]struct{})
	for id := range batch {
		s.inflight[id]++
	}
	return batch
}

// releaseDirty завершает запись набора. failed возвращаются в набор измененных.
func (s *Store) releaseDirty(batch, failed map[uuid.UUID]struct{}) {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	for id := range batch {
		if s.inflight[id]--; s.inflight[id] <= 0 {
			delete(s.inflight, id)
		}
	}
	for id := range failed {
		s.dirty[id] = struct{}{}
	}
}
