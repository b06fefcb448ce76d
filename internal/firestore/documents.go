package firestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const listPageSize = 300

// ErrDocumentNotFound indica documento inexistente.
var ErrDocumentNotFound = errors.New("firestore: documento inexistente")

// Document é a representação REST de um documento.
type Document struct {
	Name       string           `json:"name,omitempty"`
	Fields     map[string]Value `json:"fields,omitempty"`
	CreateTime string           `json:"createTime,omitempty"`
	UpdateTime string           `json:"updateTime,omitempty"`
}

// ID devolve o último segmento do nome do documento.
func (d Document) ID() string {
	if i := strings.LastIndex(d.Name, "/"); i >= 0 {
		return d.Name[i+1:]
	}
	return d.Name
}

// CreateDocument cria um documento; docID vazio deixa o Firestore gerar o identificador.
func (c *Client) CreateDocument(ctx context.Context, collection, docID string, fields map[string]Value) (*Document, error) {
	q := url.Values{}
	if docID != "" {
		q.Set("documentId", docID)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint(c.documentsPath(collection), q), Document{Fields: fields})
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := c.do(req, &doc); err != nil {
		return nil, fmt.Errorf("firestore: criar documento: %w", err)
	}
	return &doc, nil
}

// GetDocument busca um documento pelo identificador.
func (c *Client) GetDocument(ctx context.Context, collection, docID string) (*Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(c.documentsPath(collection, docID), nil), nil)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := c.do(req, &doc); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("firestore: obter documento: %w", err)
	}
	return &doc, nil
}

// ListDocuments devolve uma página da coleção e o token da próxima.
func (c *Client) ListDocuments(ctx context.Context, collection, pageToken string) ([]Document, string, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(listPageSize))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(c.documentsPath(collection), q), nil)
	if err != nil {
		return nil, "", err
	}

	var resp struct {
		Documents     []Document `json:"documents"`
		NextPageToken string     `json:"nextPageToken"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, "", fmt.Errorf("firestore: listar documentos: %w", err)
	}
	return resp.Documents, resp.NextPageToken, nil
}

// PatchDocument atualiza apenas os campos em mask; o documento precisa existir.
func (c *Client) PatchDocument(ctx context.Context, collection, docID string, fields map[string]Value, mask []string) (*Document, error) {
	q := url.Values{}
	q.Set("currentDocument.exists", "true")
	for _, field := range mask {
		q.Add("updateMask.fieldPaths", quoteFieldPath(field))
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.endpoint(c.documentsPath(collection, docID), q), Document{Fields: fields})
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := c.do(req, &doc); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("firestore: atualizar documento: %w", err)
	}
	return &doc, nil
}

// DeleteDocument remove o documento; ausência vira ErrDocumentNotFound.
func (c *Client) DeleteDocument(ctx context.Context, collection, docID string) error {
	q := url.Values{}
	q.Set("currentDocument.exists", "true")

	req, err := c.newRequest(ctx, http.MethodDelete, c.endpoint(c.documentsPath(collection, docID), q), nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		if IsStatus(err, http.StatusNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("firestore: remover documento: %w", err)
	}
	return nil
}

var simpleFieldPath = regexp.MustCompile(`^[A-Za-z_][A-Za-z_0-9]*$`)

func quoteFieldPath(field string) string {
	if simpleFieldPath.MatchString(field) {
		return field
	}
	escaped := strings.NewReplacer(`\`, `\\`, "`", "\\`").Replace(field)
	return "`" + escaped + "`"
}
