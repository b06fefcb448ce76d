package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSlackNotifierPostsFormattedText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, srv.Client())
	if err := n.Notify(context.Background(), NewApplication("individual", "PACUIT-INDIV-1", "Maria", "maria@pacuit.org")); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.HasPrefix(got["text"], ":information_source: *Nova inscrição: individual*") {
		t.Fatalf("unexpected text %q", got["text"])
	}
	if !strings.Contains(got["text"], "PACUIT-INDIV-1") {
		t.Fatalf("missing application id in %q", got["text"])
	}
}

func TestSlackNotifierReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if err := NewSlackNotifier(srv.URL, srv.Client()).Notify(context.Background(), Message{Text: "x"}); err == nil {
		t.Fatal("expected error for 403")
	}
}

func TestNewSlackNotifierWithoutWebhook(t *testing.T) {
	if _, ok := NewSlackNotifier("", nil).(Noop); !ok {
		t.Fatal("expected noop notifier without webhook")
	}
}
