package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/pacuit/conferencia/internal/metrics"
)

const providerGCS = "gcs"

// GCSConfig descreve o bucket do Google Cloud Storage.
type GCSConfig struct {
	Bucket          string
	CredentialsJSON string
	PublicDomain    string
	BasePath        string
	// Endpoint aponta para um emulador; desativa autenticação.
	Endpoint string
	Metrics  metrics.Recorder
}

// GCSUploader grava anexos em um bucket GCS.
type GCSUploader struct {
	cfg     GCSConfig
	client  *gcs.Client
	metrics metrics.Recorder
}

// NewGCSUploader abre o cliente do Cloud Storage.
func NewGCSUploader(ctx context.Context, cfg GCSConfig) (*GCSUploader, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("storage: bucket do GCS ausente")
	}

	var opts []option.ClientOption
	switch {
	case cfg.Endpoint != "":
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: cliente gcs: %w", err)
	}

	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &GCSUploader{cfg: cfg, client: client, metrics: recorder}, nil
}

// Upload grava o objeto; o link de download é o MediaLink devolvido pelo GCS.
func (u *GCSUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	body, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return nil, fmt.Errorf("storage: conteúdo base64 inválido: %w", err)
	}

	key := ObjectPath(u.cfg.BasePath, input.Namespace, input.Filename)
	start := time.Now()
	u.metrics.RecordUploadAttempt(providerGCS)

	w := u.client.Bucket(u.cfg.Bucket).Object(key).NewWriter(ctx)
	w.ContentType = input.ContentType
	if w.ContentType == "" {
		w.ContentType = defaultContentType
	}
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return nil, u.fail(key, err, start)
	}
	if err := w.Close(); err != nil {
		return nil, u.fail(key, err, start)
	}

	escaped := (&url.URL{Path: key}).EscapedPath()
	result := &UploadResult{
		HTMLURL:     fmt.Sprintf("https://storage.cloud.google.com/%s/%s", u.cfg.Bucket, escaped),
		DownloadURL: fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.cfg.Bucket, escaped),
	}
	if attrs := w.Attrs(); attrs != nil && attrs.MediaLink != "" {
		result.DownloadURL = attrs.MediaLink
	}
	if domain := strings.TrimSpace(u.cfg.PublicDomain); domain != "" {
		result.HTMLURL = strings.TrimRight(domain, "/") + "/" + escaped
		result.DownloadURL = result.HTMLURL
	}

	u.metrics.RecordUpload(providerGCS, "success", 1, time.Since(start))
	return result, nil
}

// Close libera o cliente subjacente.
func (u *GCSUploader) Close() error {
	return u.client.Close()
}

func (u *GCSUploader) fail(key string, err error, start time.Time) error {
	uploadErr := &UploadError{Reason: ReasonTransport, Path: key, Attempts: 1, Err: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		uploadErr.Reason = ReasonStoreRejected
		uploadErr.Status = apiErr.Code
		uploadErr.Message = apiErr.Message
	}
	u.metrics.RecordUpload(providerGCS, string(uploadErr.Reason), 1, time.Since(start))
	return uploadErr
}
