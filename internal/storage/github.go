package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pacuit/conferencia/internal/github"
	"github.com/pacuit/conferencia/internal/metrics"
)

const (
	providerGitHub     = "github"
	defaultMaxAttempts = 4
	defaultBackoffStep = 250 * time.Millisecond
)

// ContentAPI é o subconjunto da API de conteúdo usado pelo uploader.
type ContentAPI interface {
	ContentSHA(ctx context.Context, path string) (string, error)
	PutContent(ctx context.Context, in github.PutContentInput) (*github.ContentLocation, error)
}

// GitHubConfig controla caminho base e política de retentativa.
type GitHubConfig struct {
	BasePath    string
	MaxAttempts int
	BackoffStep time.Duration
	Metrics     metrics.Recorder
}

// GitHubUploader grava anexos na API de conteúdo com concorrência otimista.
type GitHubUploader struct {
	api         ContentAPI
	basePath    string
	maxAttempts int
	step        time.Duration
	metrics     metrics.Recorder
	logger      zerolog.Logger
}

// NewGitHubUploader cria o uploader; valores zerados recebem os defaults.
func NewGitHubUploader(api ContentAPI, cfg GitHubConfig) (*GitHubUploader, error) {
	if api == nil {
		return nil, errors.New("storage: api de conteúdo obrigatória")
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = defaultMaxAttempts
	}
	if maxAttempts < 1 {
		return nil, fmt.Errorf("storage: máximo de tentativas inválido: %d", maxAttempts)
	}
	step := cfg.BackoffStep
	if step < 0 {
		return nil, errors.New("storage: passo de back-off negativo")
	}
	if step == 0 {
		step = defaultBackoffStep
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.Noop{}
	}

	return &GitHubUploader{
		api:         api,
		basePath:    cfg.BasePath,
		maxAttempts: maxAttempts,
		step:        step,
		metrics:     recorder,
		logger:      log.With().Str("component", "uploader").Str("provider", providerGitHub).Logger(),
	}, nil
}

// Upload grava o conteúdo em {base}/{namespace}/{filename}, sobrescrevendo se existir.
func (u *GitHubUploader) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return u.Put(ctx, UploadTarget{
		Path:          ObjectPath(u.basePath, input.Namespace, input.Filename),
		Content:       input.Content,
		CommitMessage: fmt.Sprintf("Upload %s for %s", input.Filename, input.Namespace),
	})
}

// Put executa o ciclo consulta+escrita, repetindo apenas em conflito de revisão.
func (u *GitHubUploader) Put(ctx context.Context, target UploadTarget) (*UploadResult, error) {
	start := time.Now()
	attempts := 0
	var result *UploadResult

	operation := func() error {
		attempts++
		u.metrics.RecordUploadAttempt(providerGitHub)

		sha, err := u.api.ContentSHA(ctx, target.Path)
		if err != nil && !errors.Is(err, github.ErrContentNotFound) {
			return backoff.Permanent(classify(err, target.Path, attempts))
		}

		loc, err := u.api.PutContent(ctx, github.PutContentInput{
			Path:    target.Path,
			Message: target.CommitMessage,
			Content: target.Content,
			SHA:     sha,
		})
		if err != nil {
			if github.IsRevisionConflict(err) {
				u.metrics.RecordUploadConflict(providerGitHub)
				conflict := classify(err, target.Path, attempts)
				conflict.Reason = ReasonRevisionConflict
				return conflict
			}
			return backoff.Permanent(classify(err, target.Path, attempts))
		}

		result = &UploadResult{HTMLURL: loc.HTMLURL, DownloadURL: loc.DownloadURL}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&LinearBackOff{Step: u.step}, uint64(u.maxAttempts-1)),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		u.logger.Warn().Err(err).Str("path", target.Path).Int("attempt", attempts).Dur("wait", wait).Msg("conflito de revisão, repetindo upload")
	}

	err := backoff.RetryNotify(operation, policy, notify)
	if err != nil {
		err = u.finalError(err, target.Path, attempts)
		u.metrics.RecordUpload(providerGitHub, outcome(err), attempts, time.Since(start))
		u.logger.Error().Err(err).Str("path", target.Path).Int("attempts", attempts).Msg("upload falhou")
		return nil, err
	}

	u.metrics.RecordUpload(providerGitHub, "success", attempts, time.Since(start))
	u.logger.Info().Str("path", target.Path).Int("attempts", attempts).Dur("duration", time.Since(start)).Msg("upload concluído")
	return result, nil
}

func (u *GitHubUploader) finalError(err error, path string, attempts int) error {
	var uploadErr *UploadError
	if errors.As(err, &uploadErr) && uploadErr.Reason == ReasonRevisionConflict {
		return &UploadError{
			Reason:   ReasonConflictExhausted,
			Path:     path,
			Status:   uploadErr.Status,
			Attempts: attempts,
			Message:  uploadErr.Message,
			Err:      uploadErr.Err,
		}
	}
	if uploadErr != nil {
		return err
	}
	// contexto encerrado durante a espera entre tentativas
	return fmt.Errorf("storage: upload de %q interrompido após %d tentativas: %w", path, attempts, err)
}

func classify(err error, path string, attempts int) *UploadError {
	uploadErr := &UploadError{Path: path, Attempts: attempts, Err: err}

	var apiErr *github.APIError
	switch {
	case errors.As(err, &apiErr):
		uploadErr.Reason = ReasonStoreRejected
		uploadErr.Status = apiErr.StatusCode
		uploadErr.Message = apiErr.Message
	case errors.Is(err, github.ErrMalformedResponse):
		uploadErr.Reason = ReasonStoreRejected
		uploadErr.Message = err.Error()
	default:
		uploadErr.Reason = ReasonTransport
	}
	return uploadErr
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrConflictExhausted):
		return string(ReasonConflictExhausted)
	case errors.Is(err, ErrStoreRejected):
		return string(ReasonStoreRejected)
	case errors.Is(err, ErrTransport):
		return string(ReasonTransport)
	}
	return "canceled"
}
