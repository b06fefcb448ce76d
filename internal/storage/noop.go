package storage

import (
	"context"
	"errors"
)

// ErrUploaderDisabled indica ausência de provedor de anexos configurado.
var ErrUploaderDisabled = errors.New("storage: upload de anexos desabilitado")

// NoopUploader é utilizado quando nenhum provedor está configurado.
type NoopUploader struct{}

// Upload sempre retorna erro para indicar indisponibilidade.
func (NoopUploader) Upload(context.Context, UploadInput) (*UploadResult, error) {
	return nil, ErrUploaderDisabled
}
