package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type fakeBucket struct {
	mu          sync.Mutex
	status      int
	path        string
	body        []byte
	contentType string
}

func (f *fakeBucket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.path = r.URL.Path
	f.body, _ = io.ReadAll(r.Body)
	f.contentType = r.Header.Get("Content-Type")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`<?xml version="1.0"?><Error><Code>AccessDenied</Code><Message>Access Denied</Message></Error>`))
		return
	}
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func newTestS3(t *testing.T, fake *fakeBucket, publicDomain string) (*S3Uploader, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	uploader, err := NewS3Uploader(S3Config{
		Endpoint:     srv.URL,
		Region:       "us-east-1",
		Bucket:       "pacuit-anexos",
		AccessKey:    "AKIATEST",
		SecretKey:    "secret",
		PublicDomain: publicDomain,
		BasePath:     "uploads",
	})
	if err != nil {
		t.Fatalf("s3 uploader: %v", err)
	}
	return uploader, srv
}

func TestS3UploaderPutsDecodedContent(t *testing.T) {
	fake := &fakeBucket{}
	uploader, srv := newTestS3(t, fake, "")

	res, err := uploader.Upload(context.Background(), UploadInput{
		Namespace:   "PACUIT-INST-1",
		Filename:    "letter.pdf",
		Content:     "aGVsbG8=",
		ContentType: "application/pdf",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if fake.path != "/pacuit-anexos/uploads/PACUIT-INST-1/letter.pdf" {
		t.Fatalf("unexpected object path %q", fake.path)
	}
	if string(fake.body) != "hello" {
		t.Fatalf("expected decoded body got %q", fake.body)
	}
	if fake.contentType != "application/pdf" {
		t.Fatalf("unexpected content type %q", fake.contentType)
	}
	if res.HTMLURL != srv.URL+"/pacuit-anexos/uploads/PACUIT-INST-1/letter.pdf" {
		t.Fatalf("unexpected html url %q", res.HTMLURL)
	}
	if !strings.Contains(res.DownloadURL, "X-Amz-Signature=") {
		t.Fatalf("expected presigned download url got %q", res.DownloadURL)
	}
}

func TestS3UploaderPublicDomain(t *testing.T) {
	uploader, _ := newTestS3(t, &fakeBucket{}, "https://anexos.pacuit.org/")

	res, err := uploader.Upload(context.Background(), UploadInput{Namespace: "REG-1", Filename: "proof of payment.png", Content: "aGVsbG8="})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	want := "https://anexos.pacuit.org/uploads/REG-1/proof%20of%20payment.png"
	if res.HTMLURL != want || res.DownloadURL != want {
		t.Fatalf("unexpected locators %+v", res)
	}
}

func TestS3UploaderMapsRejection(t *testing.T) {
	uploader, _ := newTestS3(t, &fakeBucket{status: http.StatusForbidden}, "")

	_, err := uploader.Upload(context.Background(), UploadInput{Namespace: "REG-1", Filename: "a.pdf", Content: "aGVsbG8="})
	if !errors.Is(err, ErrStoreRejected) {
		t.Fatalf("expected store rejected got %v", err)
	}
	var uploadErr *UploadError
	if !errors.As(err, &uploadErr) || uploadErr.Status != http.StatusForbidden {
		t.Fatalf("unexpected error %+v", err)
	}
}

func TestS3UploaderRejectsInvalidBase64(t *testing.T) {
	uploader, _ := newTestS3(t, &fakeBucket{}, "")
	if _, err := uploader.Upload(context.Background(), UploadInput{Namespace: "REG-1", Filename: "a.pdf", Content: "%%%"}); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNoopUploader(t *testing.T) {
	if _, err := (NoopUploader{}).Upload(context.Background(), UploadInput{}); !errors.Is(err, ErrUploaderDisabled) {
		t.Fatalf("expected disabled error got %v", err)
	}
}
