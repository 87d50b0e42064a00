package fanout

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/shenikar/crowd_safety_engine/internal/metrics"
	"github.com/shenikar/crowd_safety_engine/internal/models"
	"github.com/sirupsen/logrus"
)

// MessageKind - тип сообщения в потоке подписчика
type MessageKind string

const (
	MessageChange MessageKind = "change"
	// MessageReconnect просит подписчика перечитать текущее состояние из хранилища
	MessageReconnect MessageKind = "reconnect"
	// MessageBroadcast - сообщение оператора, не связанное с конкретным инцидентом
	MessageBroadcast MessageKind = "broadcast"
)

// Message - элемент потока подписчика
type Message struct {
	Kind   MessageKind          `json:"kind"`
	Change    *models.ChangeRecord `json:"change,omitempty"`
	Broadcast *models.Broadcast    `json:"broadcast,omitempty"`
	// Seq - последний опубликованный номер на момент отправки reconnect
	Seq    uint64 `json:"seq,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// Subscription - дескриптор подписки. Канал закрывается при отписке или переполнении.
type Subscription struct {
	ID uuid.UUID

	startSeq uint64

	ch     chan Message
	once   sync.Once
	mu     sync.Mutex
	err    error
	closed bool
}

// StartSeq - номер последнего опубликованного сообщения на момент подписки.
// Клиент, переподключаясь, передает его или более поздний номер в Resume.
func (s *Subscription) StartSeq() uint64 {
	return s.startSeq
}

// C возвращает канал сообщений подписки
func (s *Subscription) C() <-chan Message {
	return s.ch
}

// Err возвращает причину закрытия: ErrSubscriberOverflow при переполнении, nil при отписке
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Messages возвращает ленивую последовательность сообщений до закрытия подписки или отмены ctx
func (s *Subscription) Messages(ctx context.Context) iter.Seq[Message] {
	return func(yield func(Message) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-s.ch:
				if !ok || !yield(msg) {
					return
				}
			}
		}
	}
}

// offer кладет сообщение в очередь без блокировки. false - очередь переполнена.
func (s *Subscription) offer(msg Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- msg:
		return true
	default:
		return false
	}
}

func (s *Subscription) close(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}

// Broker рассылает изменения инцидентов подписчикам. Publish никогда не блокируется:
// подписчик, чья очередь превысила предел, отключается и должен переподписаться.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]*Subscription
	queueSize   int
	seq         atomic.Uint64
	logger      *logrus.Logger
}

func NewBroker(queueSize int, logger *logrus.Logger) *Broker {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Broker{
		subscribers: make(map[uuid.UUID]*Subscription),
		queueSize:   queueSize,
		logger:      logger,
	}
}

// Subscribe регистрирует нового подписчика
func (b *Broker) Subscribe() *Subscription {
	return b.subscribe(false, 0)
}

// Resume регистрирует переподключившегося подписчика. lastSeq - последний увиденный
// номер, 0 допустим. Первым сообщением подписчик получает reconnect и должен
// перечитать состояние.
func (b *Broker) Resume(lastSeq uint64) *Subscription {
	return b.subscribe(true, lastSeq)
}

func (b *Broker) subscribe(resume bool, lastSeq uint64) *Subscription {
	sub := &Subscription{
		ID: uuid.New(),
		ch: make(chan Message, b.queueSize),
	}

	b.mu.Lock()
	sub.startSeq = b.seq.Load()
	if resume {
		// Под блокировкой регистрации: ни одно изменение не попадет в очередь раньше reconnect
		sub.ch <- Message{Kind: MessageReconnect, Seq: sub.startSeq, Reason: "resubscribed"}
	}
	b.subscribers[sub.ID] = sub
	count := len(b.subscribers)
	b.mu.Unlock()

	metrics.Subscribers.Set(float64(count))
	b.logger.WithFields(logrus.Fields{
		"component":       "fanout",
		"subscription_id": sub.ID,
		"resume":          resume,
		"last_seq":        lastSeq,
	}).Info("Subscriber registered")
	return sub
}

// Unsubscribe освобождает ресурсы подписчика. Повторный вызов безопасен.
func (b *Broker) Unsubscribe(sub *Subscription) {
	b.remove(sub, nil)
}

// Publish присваивает изменению номер и кладет его в очереди всех подписчиков
func (b *Broker) Publish(change models.ChangeRecord) {
	b.deliver(func(seq uint64) Message {
		change.Seq = seq
		return Message{Kind: MessageChange, Change: &change}
	})
	metrics.ChangesPublished.Inc()
}

// Broadcast рассылает сообщение оператора. Номер общий с изменениями инцидентов.
func (b *Broker) Broadcast(broadcast models.Broadcast) models.Broadcast {
	b.deliver(func(seq uint64) Message {
		broadcast.Seq = seq
		return Message{Kind: MessageBroadcast, Broadcast: &broadcast, Seq: seq}
	})
	return broadcast
}

func (b *Broker) deliver(build func(seq uint64) Message) {
	var overflowed []*Subscription

	b.mu.RLock()
	seq := b.seq.Add(1)
	msg := build(seq)
	for _, sub := range b.subscribers {
		if !sub.offer(msg) {
			overflowed = append(overflowed, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range overflowed {
		metrics.SubscribersDropped.Inc()
		b.logger.WithFields(logrus.Fields{
			"component":       "fanout",
			"subscription_id": sub.ID,
			"seq":             seq,
		}).Warn("Subscriber queue overflow, dropping subscriber")
		b.remove(sub, models.ErrSubscriberOverflow)
	}
}

// Seq возвращает номер последнего опубликованного сообщения
func (b *Broker) Seq() uint64 {
	return b.seq.Load()
}

// Len возвращает количество активных подписчиков
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close отключает всех подписчиков
func (b *Broker) Close() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = make(map[uuid.UUID]*Subscription)
	b.mu.Unlock()
	for _, sub := range subs {
		sub.close(nil)
	}
	metrics.Subscribers.Set(0)
}

func (b *Broker) remove(sub *Subscription, reason error) {
	b.mu.Lock()
	delete(b.subscribers, sub.ID)
	count := len(b.subscribers)
	b.mu.Unlock()

	sub.close(reason)
	metrics.Subscribers.Set(float64(count))
}
