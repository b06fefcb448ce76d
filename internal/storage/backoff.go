package storage

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

// LinearBackOff espera attempt × Step antes da próxima tentativa.
type LinearBackOff struct {
	Step    time.Duration
	attempt int
}

var _ backoff.BackOff = (*LinearBackOff)(nil)

func (b *LinearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return time.Duration(b.attempt) * b.Step
}

func (b *LinearBackOff) Reset() {
	b.attempt = 0
}
