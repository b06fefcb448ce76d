package firestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIBase  = "https://firestore.googleapis.com/v1"
	defaultDatabase = "(default)"
)

// TokenSource fornece o bearer token de cada chamada.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type invalidator interface {
	Invalidate()
}

// Client encapsula a API REST de documentos do Firestore.
type Client struct {
	httpClient *http.Client
	baseURL    string
	projectID  string
	database   string
	tokens     TokenSource
}

// Config define projeto, banco e credenciais.
type Config struct {
	ProjectID  string
	Database   string
	APIBase    string
	Tokens     TokenSource
	HTTPClient *http.Client
}

// New cria um cliente REST autenticado.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firestore: project id obrigatório")
	}
	if cfg.Tokens == nil {
		return nil, errors.New("firestore: fonte de tokens obrigatória")
	}

	apiBase := strings.TrimSpace(cfg.APIBase)
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	database := strings.TrimSpace(cfg.Database)
	if database == "" {
		database = defaultDatabase
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(apiBase, "/"),
		projectID:  cfg.ProjectID,
		database:   database,
		tokens:     cfg.Tokens,
	}, nil
}

// APIError representa uma resposta de erro do Firestore.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("firestore api: status %d %s: %s", e.StatusCode, e.Status, e.Message)
}

// IsStatus informa se err é um APIError com o status indicado.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// documentsPath devolve o nome relativo de uma coleção ou documento.
func (c *Client) documentsPath(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return fmt.Sprintf("projects/%s/databases/%s/documents/%s", c.projectID, c.database, strings.Join(escaped, "/"))
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("firestore: obter token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req, nil
}

func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := c.tokens.(invalidator); ok {
				inv.Invalidate()
			}
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload struct {
			Error struct {
				Message string `json:"message"`
				Status  string `json:"status"`
			} `json:"error"`
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if json.Unmarshal(raw, &payload) == nil && payload.Error.Message != "" {
			apiErr.Message = payload.Error.Message
			apiErr.Status = payload.Error.Status
		}
		return apiErr
	}

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("firestore: decodificar resposta: %w", err)
	}
	return nil
}
