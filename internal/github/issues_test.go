package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/pacuit/conferencia/internal/records"
)

// fakeIssues simula o subconjunto da API de issues usado pelo IssueStore.
type fakeIssues struct {
	mu     sync.Mutex
	issues map[int]*issue
	next   int
}

func newFakeIssues() *fakeIssues {
	return &fakeIssues{issues: map[int]*issue{}, next: 1}
}

func (f *fakeIssues) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/repos/pacuit/registros/issues")
	switch {
	case path == "" && r.Method == http.MethodPost:
		var in struct {
			Title  string   `json:"title"`
			Body   string   `json:"body"`
			Labels []string `json:"labels"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		it := &issue{Number: f.next, Title: in.Title, Body: &in.Body, State: "open"}
		for _, l := range in.Labels {
			it.Labels = append(it.Labels, issueLabel{Name: l})
		}
		f.issues[f.next] = it
		f.next++
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(it)
	case path == "" && r.Method == http.MethodGet:
		label := r.URL.Query().Get("labels")
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		var matched []*issue
		for n := 1; n < f.next; n++ {
			it, ok := f.issues[n]
			if ok && it.State == "open" && it.hasLabel(label) {
				matched = append(matched, it)
			}
		}
		start := (page - 1) * perPage
		if start > len(matched) {
			start = len(matched)
		}
		end := start + perPage
		if end > len(matched) {
			end = len(matched)
		}
		_ = json.NewEncoder(w).Encode(matched[start:end])
	default:
		n, err := strconv.Atoi(strings.TrimPrefix(path, "/"))
		it, ok := f.issues[n]
		if err != nil || !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		if r.Method == http.MethodPatch {
			var in map[string]string
			_ = json.NewDecoder(r.Body).Decode(&in)
			if v, ok := in["title"]; ok {
				it.Title = v
			}
			if v, ok := in["body"]; ok {
				body := v
				it.Body = &body
			}
			if v, ok := in["state"]; ok {
				it.State = v
			}
		}
		_ = json.NewEncoder(w).Encode(it)
	}
}

func newIssueStore(t *testing.T) (*IssueStore, *fakeIssues) {
	t.Helper()
	fake := newFakeIssues()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := New(Config{Token: "tkn", Owner: "pacuit", Repo: "registros", APIBase: srv.URL})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return NewIssueStore(client), fake
}

func TestIssueStoreCRUD(t *testing.T) {
	store, fake := newIssueStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, records.CollectionTasks, records.Record{"name": "Revisar artigos", "slug": "revisar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID() != "1" {
		t.Fatalf("expected id 1 got %q", created.ID())
	}
	if fake.issues[1].Title != "Revisar artigos" {
		t.Fatalf("unexpected title %q", fake.issues[1].Title)
	}

	got, err := store.Get(ctx, records.CollectionTasks, "1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got["slug"] != "revisar" {
		t.Fatalf("unexpected record %v", got)
	}

	updated, err := store.Update(ctx, records.CollectionTasks, "1", records.Record{"completed": true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated["completed"] != true || updated["name"] != "Revisar artigos" {
		t.Fatalf("merge failed: %v", updated)
	}

	if err := store.Delete(ctx, records.CollectionTasks, "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if fake.issues[1].State != "closed" {
		t.Fatal("issue should be closed")
	}
	if _, err := store.Get(ctx, records.CollectionTasks, "1"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete got %v", err)
	}
}

func TestIssueStoreCollectionIsolation(t *testing.T) {
	store, _ := newIssueStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, records.CollectionUsers, records.Record{"username": "ana", "email": "ana@example.com"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Get(ctx, records.CollectionTasks, "1"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("user issue must not be readable as task, got %v", err)
	}
	if _, err := store.Get(ctx, records.CollectionUsers, "abc"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("invalid id should be not found, got %v", err)
	}
}

func TestIssueStoreListPaginates(t *testing.T) {
	store, _ := newIssueStore(t)
	ctx := context.Background()

	for i := 0; i < issuesPerPage+5; i++ {
		if _, err := store.Create(ctx, records.CollectionTasks, records.Record{"name": fmt.Sprintf("t%d", i), "slug": "s"}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if _, err := store.Create(ctx, records.CollectionUsers, records.Record{"username": "u"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := store.List(ctx, records.CollectionTasks)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != issuesPerPage+5 {
		t.Fatalf("expected %d tasks got %d", issuesPerPage+5, len(list))
	}
}
