package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrInvalidTarget indica namespace ou nome de arquivo inutilizável como caminho.
var ErrInvalidTarget = errors.New("storage: destino inválido")

// UploadInput representa um anexo a ser gravado em {base}/{namespace}/{filename}.
// Content já vem codificado em base64, formato exigido pela API de conteúdo.
type UploadInput struct {
	Namespace   string
	Filename    string
	Content     string
	ContentType string
}

// UploadTarget identifica um objeto no armazenamento endereçado por caminho.
type UploadTarget struct {
	Path          string
	Content       string
	CommitMessage string
}

// UploadResult descreve os dois localizadores do objeto persistido.
type UploadResult struct {
	HTMLURL     string `json:"html_url"`
	DownloadURL string `json:"download_url"`
}

// Uploader define comportamento básico para armazenar anexos.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// ObjectPath monta o caminho determinístico do objeto.
func ObjectPath(basePath, namespace, filename string) string {
	parts := make([]string, 0, 3)
	if base := strings.Trim(basePath, "/"); base != "" {
		parts = append(parts, base)
	}
	parts = append(parts, namespace, filename)
	return strings.Join(parts, "/")
}

func validateInput(input UploadInput) error {
	for _, segment := range []string{input.Namespace, input.Filename} {
		s := strings.TrimSpace(segment)
		if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) || path.Clean(s) != s {
			return ErrInvalidTarget
		}
	}
	if strings.TrimSpace(input.Content) == "" {
		return errors.New("storage: corpo vazio")
	}
	return nil
}
