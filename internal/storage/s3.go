package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/pacuit/conferencia/internal/metrics"
)

const (
	providerS3         = "s3"
	defaultPresignTTL  = 7 * 24 * time.Hour
	defaultContentType = "application/octet-stream"
)

// S3Config descreve parâmetros de um bucket S3 ou compatível (R2, MinIO).
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	PublicDomain string
	BasePath     string
	HTTPClient   *http.Client
	Metrics      metrics.Recorder
}

// S3Uploader grava o conteúdo decodificado via AWS SDK.
type S3Uploader struct {
	cfg     S3Config
	client  *s3.S3
	metrics metrics.Recorder
}

// NewS3Uploader cria um uploader; endpoint customizado implica path-style.
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	awsCfg := aws.NewConfig().WithRegion(cfg.Region)
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint).WithS3ForcePathStyle(true)
	}
	if cfg.AccessKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""))
	}
	if cfg.HTTPClient != nil {
		awsCfg = awsCfg.WithHTTPClient(cfg.HTTPClient)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: sessão aws: %w", err)
	}

	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &S3Uploader{cfg: cfg, client: s3.New(sess), metrics: recorder}, nil
}

// Upload envia o arquivo e devolve URL pública e link de download assinado.
func (u *S3Uploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	body, err := base64.StdEncoding.DecodeString(input.Content)
	if err != nil {
		return nil, fmt.Errorf("storage: conteúdo base64 inválido: %w", err)
	}

	contentType := strings.TrimSpace(input.ContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	key := ObjectPath(u.cfg.BasePath, input.Namespace, input.Filename)
	start := time.Now()
	u.metrics.RecordUploadAttempt(providerS3)

	_, err = u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		uploadErr := &UploadError{Reason: ReasonTransport, Path: key, Attempts: 1, Err: err}
		var reqErr awserr.RequestFailure
		if errors.As(err, &reqErr) {
			uploadErr.Reason = ReasonStoreRejected
			uploadErr.Status = reqErr.StatusCode()
			uploadErr.Message = reqErr.Message()
		}
		u.metrics.RecordUpload(providerS3, string(uploadErr.Reason), 1, time.Since(start))
		return nil, uploadErr
	}

	download, err := u.downloadURL(key)
	if err != nil {
		return nil, err
	}
	u.metrics.RecordUpload(providerS3, "success", 1, time.Since(start))
	return &UploadResult{HTMLURL: u.objectURL(key), DownloadURL: download}, nil
}

func (u *S3Uploader) objectURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if domain := strings.TrimSpace(u.cfg.PublicDomain); domain != "" {
		return strings.TrimRight(domain, "/") + "/" + escaped
	}
	if u.cfg.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(u.cfg.Endpoint, "/"), u.cfg.Bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.cfg.Bucket, u.cfg.Region, escaped)
}

// downloadURL usa o domínio público quando existe; caso contrário assina um GET.
func (u *S3Uploader) downloadURL(key string) (string, error) {
	if strings.TrimSpace(u.cfg.PublicDomain) != "" {
		return u.objectURL(key), nil
	}
	req, _ := u.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(u.cfg.Bucket),
		Key:    aws.String(key),
	})
	signed, err := req.Presign(defaultPresignTTL)
	if err != nil {
		return "", fmt.Errorf("storage: assinatura do link: %w", err)
	}
	return signed, nil
}

func (cfg S3Config) validate() error {
	if strings.TrimSpace(cfg.Region) == "" {
		return errors.New("storage: região do S3 ausente")
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return errors.New("storage: bucket do S3 ausente")
	}
	if (cfg.AccessKey == "") != (cfg.SecretKey == "") {
		return errors.New("storage: access key e secret key devem vir juntas")
	}
	if cfg.Endpoint != "" && !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return errors.New("storage: endpoint deve incluir protocolo http/https")
	}
	return nil
}
