package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// ErrContentNotFound indica que não há objeto no caminho consultado.
var ErrContentNotFound = errors.New("github: conteúdo inexistente")

var missingSHAMarkers = []string{
	"wasn't supplied",
	"does not match",
}

// PutContentInput descreve uma escrita condicional na API de conteúdo.
type PutContentInput struct {
	Path    string
	Message string
	Content string // base64
	SHA     string
}

// ContentLocation são os localizadores devolvidos após a escrita.
type ContentLocation struct {
	SHA         string
	HTMLURL     string
	DownloadURL string
}

// ContentSHA consulta a revisão atual do arquivo em path.
func (c *Client) ContentSHA(ctx context.Context, path string) (string, error) {
	endpoint := c.contentsURL(path)
	if c.branch != "" {
		endpoint += "?ref=" + url.QueryEscape(c.branch)
	}

	req, err := c.newRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		SHA string `json:"sha"`
	}
	if err := c.do(req, &resp); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return "", ErrContentNotFound
		}
		return "", err
	}
	if resp.SHA == "" {
		return "", ErrMalformedResponse
	}
	return resp.SHA, nil
}

// PutContent cria ou substitui o arquivo; SHA vazio significa criação.
func (c *Client) PutContent(ctx context.Context, in PutContentInput) (*ContentLocation, error) {
	body := map[string]any{
		"message": in.Message,
		"content": in.Content,
	}
	if in.SHA != "" {
		body["sha"] = in.SHA
	}
	if c.branch != "" {
		body["branch"] = c.branch
	}

	req, err := c.newRequest(ctx, http.MethodPut, c.contentsURL(in.Path), body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Content *struct {
			SHA         string `json:"sha"`
			HTMLURL     string `json:"html_url"`
			DownloadURL string `json:"download_url"`
		} `json:"content"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Content == nil || resp.Content.HTMLURL == "" || resp.Content.DownloadURL == "" {
		return nil, ErrMalformedResponse
	}

	return &ContentLocation{
		SHA:         resp.Content.SHA,
		HTMLURL:     resp.Content.HTMLURL,
		DownloadURL: resp.Content.DownloadURL,
	}, nil
}

// IsRevisionConflict reconhece escrita rejeitada por SHA desatualizado ou ausente.
func IsRevisionConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusConflict:
		return true
	case http.StatusUnprocessableEntity:
		msg := strings.ToLower(apiErr.Message)
		if !strings.Contains(msg, "sha") {
			return false
		}
		for _, marker := range missingSHAMarkers {
			if strings.Contains(msg, marker) {
				return true
			}
		}
	}
	return false
}

func (c *Client) contentsURL(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return c.repoURL("/contents/" + strings.Join(segments, "/"))
}
