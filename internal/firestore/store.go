package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/pacuit/conferencia/internal/records"
)

// DocumentStore implementa records.Store sobre a API de documentos.
type DocumentStore struct {
	client *Client
}

var _ records.Store = (*DocumentStore)(nil)

// NewDocumentStore cria o backend de registros do Firestore.
func NewDocumentStore(client *Client) *DocumentStore {
	return &DocumentStore{client: client}
}

func (s *DocumentStore) Create(ctx context.Context, collection string, data records.Record) (records.Record, error) {
	fields, err := EncodeFields(data.WithoutID())
	if err != nil {
		return nil, err
	}
	doc, err := s.client.CreateDocument(ctx, collection, "", fields)
	if err != nil {
		return nil, err
	}
	return toRecord(*doc)
}

func (s *DocumentStore) Get(ctx context.Context, collection, id string) (records.Record, error) {
	if !validDocID(id) {
		return nil, records.ErrNotFound
	}
	doc, err := s.client.GetDocument(ctx, collection, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toRecord(*doc)
}

func (s *DocumentStore) List(ctx context.Context, collection string) ([]records.Record, error) {
	out := make([]records.Record, 0)
	pageToken := ""
	for {
		docs, next, err := s.client.ListDocuments(ctx, collection, pageToken)
		if err != nil {
			return nil, err
		}
		for _, doc := range docs {
			rec, err := toRecord(doc)
			if err != nil {
				return nil, err
			}
			out = append(out, rec)
		}
		if next == "" {
			return out, nil
		}
		pageToken = next
	}
}

func (s *DocumentStore) Update(ctx context.Context, collection, id string, patch records.Record) (records.Record, error) {
	if !validDocID(id) {
		return nil, records.ErrNotFound
	}
	changes := patch.WithoutID()
	if len(changes) == 0 {
		return s.Get(ctx, collection, id)
	}

	fields, err := EncodeFields(changes)
	if err != nil {
		return nil, err
	}
	mask := make([]string, 0, len(changes))
	for k := range changes {
		mask = append(mask, k)
	}
	sort.Strings(mask)

	doc, err := s.client.PatchDocument(ctx, collection, id, fields, mask)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toRecord(*doc)
}

func (s *DocumentStore) Delete(ctx context.Context, collection, id string) error {
	if !validDocID(id) {
		return records.ErrNotFound
	}
	return mapNotFound(s.client.DeleteDocument(ctx, collection, id))
}

func toRecord(doc Document) (records.Record, error) {
	fields, err := DecodeFields(doc.Fields)
	if err != nil {
		return nil, err
	}
	rec := records.Record(fields)
	rec["id"] = doc.ID()
	return rec, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, ErrDocumentNotFound) {
		return records.ErrNotFound
	}
	return err
}

func validDocID(id string) bool {
	return id != "" && id != "." && id != ".." && !strings.Contains(id, "/")
}
