package models

import "errors"

var (
	// ErrInvalidSignal - некорректный входящий сигнал, отклоняется на границе
	ErrInvalidSignal = errors.New("invalid signal")
	// ErrIllegalTransition - переход запрещен таблицей состояний
	ErrIllegalTransition = errors.New("illegal transition")
	ErrNotFound          = errors.New("incident not found")
	// ErrProbeTimeout - проверка подсистемы не уложилась в таймаут
	ErrProbeTimeout = errors.New("probe timeout")
	// ErrSubscriberOverflow - очередь подписчика переполнена, подписчик отключен
	ErrSubscriberOverflow = errors.New("subscriber overflow")
)
