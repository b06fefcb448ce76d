package util

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewID gera um UUID v4 para registros locais.
func NewID() string {
	return uuid.NewString()
}

// NewApplicationID monta identificador legível com prefixo e milissegundos do instante.
func NewApplicationID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, now.UnixMilli())
}
