package attachment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Проверки до обращения к Redis: клиент не нужен
func TestPut_Rejected(t *testing.T) {
	s := NewStore(nil, time.Hour, 4)

	_, err := s.Put(context.Background(), "image/jpeg", nil)
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = s.Put(context.Background(), "image/jpeg", []byte("12345"))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestGet_MalformedReference(t *testing.T) {
	s := NewStore(nil, time.Hour, 4)

	_, err := s.Get(context.Background(), "../etc/passwd")

	assert.ErrorIs(t, err, ErrNotFound)
}
