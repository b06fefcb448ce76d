package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, srv *httptest.Server, branch string) *Client {
	t.Helper()
	client, err := New(Config{Token: "tkn", Owner: "pacuit", Repo: "arquivos", Branch: branch, APIBase: srv.URL})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestContentSHANotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/pacuit/arquivos/contents/uploads/REG-1/abstract final.pdf" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "token tkn" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv, "")
	_, err := client.ContentSHA(context.Background(), "uploads/REG-1/abstract final.pdf")
	if !errors.Is(err, ErrContentNotFound) {
		t.Fatalf("expected ErrContentNotFound got %v", err)
	}
}

func TestContentSHAUsesBranch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("ref") != "main" {
			t.Errorf("expected ref=main got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"sha":"abc123"}`))
	}))
	defer srv.Close()

	sha, err := newTestClient(t, srv, "main").ContentSHA(context.Background(), "uploads/a.pdf")
	if err != nil {
		t.Fatalf("sha: %v", err)
	}
	if sha != "abc123" {
		t.Fatalf("unexpected sha %s", sha)
	}
}

func TestPutContentOmitsEmptySHA(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT got %s", r.Method)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["sha"]; ok {
			t.Errorf("sha should be omitted: %v", body)
		}
		if body["content"] != "dGVzdA==" || body["message"] != "Upload a.pdf for REG-1" {
			t.Errorf("unexpected body %v", body)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"content":{"sha":"new","html_url":"https://github.com/h","download_url":"https://raw/d"}}`))
	}))
	defer srv.Close()

	loc, err := newTestClient(t, srv, "").PutContent(context.Background(), PutContentInput{
		Path: "uploads/REG-1/a.pdf", Message: "Upload a.pdf for REG-1", Content: "dGVzdA==",
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if loc.HTMLURL != "https://github.com/h" || loc.DownloadURL != "https://raw/d" {
		t.Fatalf("unexpected location %+v", loc)
	}
}

func TestPutContentRejectsIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"commit":{}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv, "").PutContent(context.Background(), PutContentInput{Path: "a", Content: "YQ=="})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse got %v", err)
	}
}

func TestIsRevisionConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"conflict", &APIError{StatusCode: 409, Message: "is at abc but expected def"}, true},
		{"missing sha", &APIError{StatusCode: 422, Message: "Invalid request.\n\n\"sha\" wasn't supplied."}, true},
		{"other validation", &APIError{StatusCode: 422, Message: "content is not valid Base64"}, false},
		{"unauthorized", &APIError{StatusCode: 401, Message: "Bad credentials"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRevisionConflict(tc.err); got != tc.want {
				t.Fatalf("expected %v got %v", tc.want, got)
			}
		})
	}
}
