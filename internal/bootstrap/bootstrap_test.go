package bootstrap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pacuit/conferencia/internal/config"
	"github.com/pacuit/conferencia/internal/github"
	"github.com/pacuit/conferencia/internal/mail"
	"github.com/pacuit/conferencia/internal/records"
	"github.com/pacuit/conferencia/internal/storage"
)

func TestOpenRecordsMemory(t *testing.T) {
	out, err := OpenRecords(context.Background(), &config.Config{RecordBackend: "memory"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer out.Close()

	if _, ok := out.Store.(*records.MemoryStore); !ok {
		t.Fatalf("expected memory store got %T", out.Store)
	}
	if len(out.Checks) != 0 {
		t.Fatalf("memory backend should have no checks, got %d", len(out.Checks))
	}
}

func TestOpenRecordsGitHub(t *testing.T) {
	cfg := &config.Config{
		RecordBackend: "github",
		GitHub:        config.GitHubConfig{Token: "t", Owner: "pacuit", Repo: "registros"},
	}
	out, err := OpenRecords(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := out.Store.(*github.IssueStore); !ok {
		t.Fatalf("expected issue store got %T", out.Store)
	}
}

func TestOpenRecordsWrapsWithCache(t *testing.T) {
	cfg := &config.Config{RecordBackend: "memory", RedisURL: "redis://127.0.0.1:6390/0", CacheTTL: time.Second}
	out, err := OpenRecords(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer out.Close()

	if _, ok := out.Store.(*records.CachedStore); !ok {
		t.Fatalf("expected cached store got %T", out.Store)
	}
	if _, ok := out.Checks["redis"]; !ok {
		t.Fatal("expected redis readiness check")
	}
}

func TestOpenRecordsRejectsUnknownBackend(t *testing.T) {
	if _, err := OpenRecords(context.Background(), &config.Config{RecordBackend: "sqlite"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewUploaderSelection(t *testing.T) {
	base := config.Config{
		GitHub: config.GitHubConfig{Token: "t", Owner: "pacuit", Repo: "anexos", UploadPath: "uploads"},
		Upload: config.UploadConfig{MaxAttempts: 3, BackoffStep: time.Millisecond},
	}

	cases := []struct {
		provider string
		check    func(storage.Uploader) bool
	}{
		{"github", func(u storage.Uploader) bool { _, ok := u.(*storage.GitHubUploader); return ok }},
		{"noop", func(u storage.Uploader) bool { _, ok := u.(storage.NoopUploader); return ok }},
		{"", func(u storage.Uploader) bool { _, ok := u.(storage.NoopUploader); return ok }},
	}
	for _, tc := range cases {
		cfg := base
		cfg.Storage.Provider = tc.provider
		uploader, closeFn, err := NewUploader(context.Background(), &cfg, nil)
		if err != nil {
			t.Fatalf("%q: %v", tc.provider, err)
		}
		closeFn()
		if !tc.check(uploader) {
			t.Fatalf("%q: unexpected uploader %T", tc.provider, uploader)
		}
	}

	cfg := base
	cfg.Storage.Provider = "ftp"
	if _, _, err := NewUploader(context.Background(), &cfg, nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNoopUploaderRejects(t *testing.T) {
	cfg := &config.Config{}
	uploader, _, err := NewUploader(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = uploader.Upload(context.Background(), storage.UploadInput{Namespace: "x", Filename: "a.pdf", Content: "aGVsbG8="})
	if !errors.Is(err, storage.ErrUploaderDisabled) {
		t.Fatalf("expected disabled error got %v", err)
	}
}

func TestNewMailerDisabled(t *testing.T) {
	mailer, err := NewMailer(&config.Config{})
	if err != nil {
		t.Fatalf("mailer: %v", err)
	}
	if _, ok := mailer.(mail.Noop); !ok {
		t.Fatalf("expected noop mailer got %T", mailer)
	}
}
