package conference

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	errNotDataURI    = errors.New("deve ser um data URI")
	errNotBase64     = errors.New("somente data URIs em base64 são aceitos")
	errEmptyPayload  = errors.New("arquivo vazio")
	errInvalidBase64 = errors.New("conteúdo base64 inválido")
)

const defaultMediaType = "text/plain;charset=US-ASCII"

// DataURI é um anexo no formato data:[<mediatype>][;base64],<payload>.
type DataURI struct {
	MediaType string
	// Payload permanece em base64, formato exigido pela API de conteúdo.
	Payload string
}

// ParseDataURI valida o prefixo, exige base64 e confirma que o conteúdo decodifica.
func ParseDataURI(raw string) (*DataURI, error) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "data:") {
		return nil, errNotDataURI
	}
	header, payload, ok := strings.Cut(raw[len("data:"):], ",")
	if !ok {
		return nil, errNotDataURI
	}

	params := strings.Split(header, ";")
	if len(params) < 2 || !strings.EqualFold(params[len(params)-1], "base64") {
		return nil, errNotBase64
	}
	mediaType := strings.Join(params[:len(params)-1], ";")
	if mediaType == "" {
		mediaType = defaultMediaType
	}

	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, errEmptyPayload
	}
	if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
		return nil, errInvalidBase64
	}

	return &DataURI{MediaType: mediaType, Payload: payload}, nil
}

// ContentType devolve apenas o tipo MIME, sem parâmetros.
func (d *DataURI) ContentType() string {
	mt, _, _ := strings.Cut(d.MediaType, ";")
	return mt
}
