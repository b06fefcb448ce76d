package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIBase   = "https://api.github.com"
	defaultUserAgent = "pacuit-conferencia"
)

// ErrMalformedResponse indica resposta 2xx sem os campos esperados.
var ErrMalformedResponse = errors.New("github: resposta incompleta")

// Client encapsula chamadas à API REST do GitHub para um repositório.
type Client struct {
	httpClient *http.Client
	token      string
	owner      string
	repo       string
	branch     string
	baseURL    string
}

// Config descreve credenciais e repositório alvo.
type Config struct {
	Token      string
	Owner      string
	Repo       string
	Branch     string
	APIBase    string
	HTTPClient *http.Client
}

// New cria um novo cliente autenticado por token.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("github: token obrigatório")
	}
	if strings.TrimSpace(cfg.Owner) == "" || strings.TrimSpace(cfg.Repo) == "" {
		return nil, errors.New("github: owner e repo obrigatórios")
	}

	apiBase := strings.TrimSpace(cfg.APIBase)
	if apiBase == "" {
		apiBase = defaultAPIBase
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		httpClient: httpClient,
		token:      cfg.Token,
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		branch:     strings.TrimSpace(cfg.Branch),
		baseURL:    strings.TrimRight(apiBase, "/"),
	}, nil
}

// APIError carrega status e mensagem devolvidos pelo GitHub.
type APIError struct {
	StatusCode int
	Method     string
	Message    string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("github api: %s status %d: %s", e.Method, e.StatusCode, msg)
}

// IsStatus informa se err é um APIError com o status indicado.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func (c *Client) repoURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s%s", c.baseURL, c.owner, c.repo, path)
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

	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", defaultUserAgent)
	return req, nil
}

// do executa a requisição; falhas de rede voltam sem embrulho e status >= 400 viram *APIError.
func (c *Client) do(req *http.Request, v any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload struct {
			Message string `json:"message"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &payload) == nil && payload.Message != "" {
			msg = payload.Message
		}
		return &APIError{StatusCode: resp.StatusCode, Method: req.Method, Message: msg}
	}

	if v == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
