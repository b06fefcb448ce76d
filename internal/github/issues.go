package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pacuit/conferencia/internal/records"
)

const issuesPerPage = 100

var defaultTitleFields = map[string]string{
	records.CollectionTasks:                    "name",
	records.CollectionUsers:                    "username",
	records.CollectionSubmissions:              "registration_id",
	records.CollectionIndividualMemberships:    "applicationId",
	records.CollectionInstitutionalMemberships: "applicationId",
}

// IssueStore guarda registros como issues rotuladas com o nome da coleção.
// O corpo da issue é o JSON do registro e o número da issue é o id.
type IssueStore struct {
	client      *Client
	titleFields map[string]string
}

var _ records.Store = (*IssueStore)(nil)

// NewIssueStore cria o armazenamento sobre o repositório do cliente.
func NewIssueStore(client *Client) *IssueStore {
	return &IssueStore{client: client, titleFields: defaultTitleFields}
}

type issue struct {
	Number      int          `json:"number"`
	Title       string       `json:"title"`
	Body        *string      `json:"body"`
	State       string       `json:"state"`
	Labels      []issueLabel `json:"labels"`
	PullRequest *struct{}    `json:"pull_request,omitempty"`
}

type issueLabel struct {
	Name string `json:"name"`
}

func (i issue) hasLabel(name string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

func (s *IssueStore) Create(ctx context.Context, collection string, data records.Record) (records.Record, error) {
	fields := data.WithoutID()
	body, err := encodeBody(fields)
	if err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodPost, s.client.repoURL("/issues"), map[string]any{
		"title":  s.title(collection, fields),
		"body":   body,
		"labels": []string{collection},
	})
	if err != nil {
		return nil, err
	}

	var created issue
	if err := s.client.do(req, &created); err != nil {
		return nil, fmt.Errorf("github: criar issue: %w", err)
	}
	return toRecord(created), nil
}

func (s *IssueStore) Get(ctx context.Context, collection, id string) (records.Record, error) {
	found, err := s.get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	return toRecord(*found), nil
}

func (s *IssueStore) List(ctx context.Context, collection string) ([]records.Record, error) {
	out := make([]records.Record, 0)
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("labels", collection)
		q.Set("state", "open")
		q.Set("per_page", strconv.Itoa(issuesPerPage))
		q.Set("page", strconv.Itoa(page))

		req, err := s.client.newRequest(ctx, http.MethodGet, s.client.repoURL("/issues?"+q.Encode()), nil)
		if err != nil {
			return nil, err
		}

		var batch []issue
		if err := s.client.do(req, &batch); err != nil {
			return nil, fmt.Errorf("github: listar issues: %w", err)
		}
		for _, it := range batch {
			if it.PullRequest != nil {
				continue
			}
			out = append(out, toRecord(it))
		}
		if len(batch) < issuesPerPage {
			return out, nil
		}
	}
}

func (s *IssueStore) Update(ctx context.Context, collection, id string, patch records.Record) (records.Record, error) {
	current, err := s.get(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	merged := toRecord(*current).Merge(patch).WithoutID()
	body, err := encodeBody(merged)
	if err != nil {
		return nil, err
	}

	req, err := s.client.newRequest(ctx, http.MethodPatch, s.client.repoURL("/issues/"+id), map[string]any{
		"title": s.title(collection, merged),
		"body":  body,
	})
	if err != nil {
		return nil, err
	}

	var updated issue
	if err := s.client.do(req, &updated); err != nil {
		return nil, fmt.Errorf("github: atualizar issue: %w", err)
	}
	return toRecord(updated), nil
}

// Delete fecha a issue; issues fechadas deixam de ser visíveis na coleção.
func (s *IssueStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.get(ctx, collection, id); err != nil {
		return err
	}

	req, err := s.client.newRequest(ctx, http.MethodPatch, s.client.repoURL("/issues/"+id), map[string]any{
		"state": "closed",
	})
	if err != nil {
		return err
	}
	if err := s.client.do(req, nil); err != nil {
		return fmt.Errorf("github: fechar issue: %w", err)
	}
	return nil
}

func (s *IssueStore) get(ctx context.Context, collection, id string) (*issue, error) {
	if n, err := strconv.Atoi(id); err != nil || n <= 0 {
		return nil, records.ErrNotFound
	}

	req, err := s.client.newRequest(ctx, http.MethodGet, s.client.repoURL("/issues/"+id), nil)
	if err != nil {
		return nil, err
	}

	var found issue
	if err := s.client.do(req, &found); err != nil {
		if IsStatus(err, http.StatusNotFound) || IsStatus(err, http.StatusGone) {
			return nil, records.ErrNotFound
		}
		return nil, fmt.Errorf("github: obter issue: %w", err)
	}
	if found.PullRequest != nil || found.State != "open" || !found.hasLabel(collection) {
		return nil, records.ErrNotFound
	}
	return &found, nil
}

func (s *IssueStore) title(collection string, data records.Record) string {
	if field, ok := s.titleFields[collection]; ok {
		if v, ok := data[field].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return collection
}

func encodeBody(data records.Record) (string, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("github: serializar registro: %w", err)
	}
	return string(raw), nil
}

func toRecord(it issue) records.Record {
	rec := records.Record{}
	if it.Body != nil && strings.TrimSpace(*it.Body) != "" {
		var fields map[string]any
		if err := json.Unmarshal([]byte(*it.Body), &fields); err == nil {
			for k, v := range fields {
				rec[k] = v
			}
		}
	}
	rec["id"] = strconv.Itoa(it.Number)
	return rec
}
