package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Reason classifica falhas de upload.
type Reason string

const (
	ReasonNotFound          Reason = "not-found"
	ReasonRevisionConflict  Reason = "revision-conflict"
	ReasonConflictExhausted Reason = "conflict-exhausted"
	ReasonStoreRejected     Reason = "store-rejected"
	ReasonTransport         Reason = "transport"
)

var (
	ErrRevisionConflict  = errors.New("storage: revisão desatualizada")
	ErrConflictExhausted = errors.New("storage: tentativas esgotadas por conflito de revisão")
	ErrStoreRejected     = errors.New("storage: requisição rejeitada pelo armazenamento")
	ErrTransport         = errors.New("storage: falha de transporte")
)

// UploadError carrega contexto suficiente para diagnóstico sem retentar às cegas.
type UploadError struct {
	Reason   Reason
	Path     string
	Status   int
	Attempts int
	Message  string
	Err      error
}

func (e *UploadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "storage: upload de %q falhou (%s", e.Path, e.Reason)
	if e.Status != 0 {
		fmt.Fprintf(&b, ", status %d", e.Status)
	}
	fmt.Fprintf(&b, ", tentativa %d)", e.Attempts)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	} else if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap expõe o sentinela da razão e a causa original.
func (e *UploadError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel := e.sentinel(); sentinel != nil {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func (e *UploadError) sentinel() error {
	switch e.Reason {
	case ReasonRevisionConflict:
		return ErrRevisionConflict
	case ReasonConflictExhausted:
		return ErrConflictExhausted
	case ReasonStoreRejected:
		return ErrStoreRejected
	case ReasonTransport:
		return ErrTransport
	}
	return nil
}
