// Package bootstrap monta backends e provedores a partir da configuração.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/pacuit/conferencia/internal/auth"
	"github.com/pacuit/conferencia/internal/config"
	"github.com/pacuit/conferencia/internal/db"
	"github.com/pacuit/conferencia/internal/firestore"
	"github.com/pacuit/conferencia/internal/github"
	"github.com/pacuit/conferencia/internal/mail"
	"github.com/pacuit/conferencia/internal/metrics"
	"github.com/pacuit/conferencia/internal/records"
	"github.com/pacuit/conferencia/internal/storage"
)

// Records agrupa o store escolhido e os recursos que precisam ser fechados.
type Records struct {
	Store   records.Store
	Backend string
	Checks  map[string]func(ctx context.Context) error
	closers []func()
}

// Close libera pool e cliente redis, na ordem inversa de abertura.
func (r *Records) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// OpenRecords cria o backend de registros configurado em RECORD_BACKEND.
func OpenRecords(ctx context.Context, cfg *config.Config) (*Records, error) {
	out := &Records{Backend: cfg.RecordBackend, Checks: map[string]func(ctx context.Context) error{}}

	switch cfg.RecordBackend {
	case "memory":
		out.Store = records.NewMemoryStore()
	case "github":
		client, err := newGitHubClient(cfg)
		if err != nil {
			return nil, err
		}
		out.Store = github.NewIssueStore(client)
	case "firestore":
		tokens, err := auth.NewServiceAccountTokenSource(auth.ServiceAccount{
			ClientEmail: cfg.Firestore.ClientEmail,
			PrivateKey:  cfg.Firestore.PrivateKey,
			TokenURI:    cfg.Firestore.TokenURI,
			Scope:       auth.DatastoreScope,
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("firestore: %w", err)
		}
		client, err := firestore.New(firestore.Config{
			ProjectID: cfg.Firestore.ProjectID,
			APIBase:   cfg.Firestore.APIBase,
			Tokens:    tokens,
		})
		if err != nil {
			return nil, err
		}
		out.Store = firestore.NewDocumentStore(client)
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("db: %w", err)
		}
		out.closers = append(out.closers, pool.Close)
		if err := db.EnsureSchema(ctx, pool); err != nil {
			out.Close()
			return nil, fmt.Errorf("db schema: %w", err)
		}
		out.Store = records.NewPostgresStore(pool)
		out.Checks["db"] = pool.Ping
	default:
		return nil, fmt.Errorf("backend de registros %q não suportado", cfg.RecordBackend)
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("redis parse: %w", err)
		}
		redisClient := redis.NewClient(redisOpts)
		out.closers = append(out.closers, func() { _ = redisClient.Close() })
		out.Store = records.NewCachedStore(out.Store, records.NewRedisCache(redisClient), cfg.CacheTTL)
		out.Checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	return out, nil
}

// NewUploader escolhe o provedor de anexos; o segundo retorno fecha recursos do provedor.
func NewUploader(ctx context.Context, cfg *config.Config, recorder metrics.Recorder) (storage.Uploader, func(), error) {
	noClose := func() {}

	switch cfg.Storage.Provider {
	case "github":
		client, err := newGitHubClient(cfg)
		if err != nil {
			return nil, nil, err
		}
		uploader, err := storage.NewGitHubUploader(client, storage.GitHubConfig{
			BasePath:    cfg.GitHub.UploadPath,
			MaxAttempts: cfg.Upload.MaxAttempts,
			BackoffStep: cfg.Upload.BackoffStep,
			Metrics:     recorder,
		})
		if err != nil {
			return nil, nil, err
		}
		return uploader, noClose, nil
	case "s3":
		uploader, err := storage.NewS3Uploader(storage.S3Config{
			Endpoint:     cfg.Storage.S3Endpoint,
			Region:       cfg.Storage.S3Region,
			Bucket:       cfg.Storage.S3Bucket,
			AccessKey:    cfg.Storage.S3AccessKey,
			SecretKey:    cfg.Storage.S3SecretKey,
			PublicDomain: cfg.Storage.S3PublicURL,
			BasePath:     cfg.GitHub.UploadPath,
			Metrics:      recorder,
		})
		if err != nil {
			return nil, nil, err
		}
		return uploader, noClose, nil
	case "gcs":
		uploader, err := storage.NewGCSUploader(ctx, storage.GCSConfig{
			Bucket:          cfg.Storage.GCSBucket,
			CredentialsJSON: cfg.Storage.GCSCredsJSON,
			PublicDomain:    cfg.Storage.GCSPublicURL,
			BasePath:        cfg.GitHub.UploadPath,
			Endpoint:        cfg.Storage.GCSEndpoint,
			Metrics:         recorder,
		})
		if err != nil {
			return nil, nil, err
		}
		return uploader, func() { _ = uploader.Close() }, nil
	case "", "noop":
		log.Warn().Msg("upload de anexos desabilitado (ATTACHMENT_PROVIDER=noop)")
		return storage.NoopUploader{}, noClose, nil
	default:
		return nil, nil, fmt.Errorf("provedor de anexos %q não suportado", cfg.Storage.Provider)
	}
}

// NewMailer devolve o SMTP configurado ou Noop quando o envio está desligado.
func NewMailer(cfg *config.Config) (mail.Mailer, error) {
	if !cfg.Mail.Enabled {
		return mail.Noop{}, nil
	}
	mailer, err := mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if err != nil {
		return nil, err
	}
	return mailer, nil
}

func newGitHubClient(cfg *config.Config) (*github.Client, error) {
	return github.New(github.Config{
		Token:      cfg.GitHub.Token,
		Owner:      cfg.GitHub.Owner,
		Repo:       cfg.GitHub.Repo,
		Branch:     cfg.GitHub.Branch,
		APIBase:    cfg.GitHub.APIBase,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	})
}
