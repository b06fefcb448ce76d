package records

import (
	"context"
	"errors"
	"time"

	"github.com/pacuit/conferencia/internal/metrics"
)

// Service aplica validação de esquema e métricas sobre um Store.
type Service struct {
	store   Store
	backend string
	metrics metrics.Recorder
	schemas map[string]schema
}

// NewService cria o serviço para o backend informado.
func NewService(store Store, backend string, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Service{
		store:   store,
		backend: backend,
		metrics: recorder,
		schemas: map[string]schema{
			CollectionTasks: taskSchema,
			CollectionUsers: userSchema,
		},
	}
}

// Create valida (quando há esquema) e persiste o registro.
func (s *Service) Create(ctx context.Context, collection string, data Record) (Record, error) {
	if sch, ok := s.schemas[collection]; ok {
		normalized, err := sch.normalize(data, false)
		if err != nil {
			return nil, err
		}
		data = normalized
	}

	start := time.Now()
	rec, err := s.store.Create(ctx, collection, data)
	s.observe(collection, "create", err, start)
	return rec, err
}

func (s *Service) Get(ctx context.Context, collection, id string) (Record, error) {
	start := time.Now()
	rec, err := s.store.Get(ctx, collection, id)
	s.observe(collection, "get", err, start)
	return rec, err
}

func (s *Service) List(ctx context.Context, collection string) ([]Record, error) {
	start := time.Now()
	list, err := s.store.List(ctx, collection)
	s.observe(collection, "list", err, start)
	return list, err
}

// Update aplica atualização parcial; campos informados são validados.
func (s *Service) Update(ctx context.Context, collection, id string, patch Record) (Record, error) {
	if sch, ok := s.schemas[collection]; ok {
		normalized, err := sch.normalize(patch, true)
		if err != nil {
			return nil, err
		}
		patch = normalized
	}

	start := time.Now()
	rec, err := s.store.Update(ctx, collection, id, patch)
	s.observe(collection, "update", err, start)
	return rec, err
}

func (s *Service) Delete(ctx context.Context, collection, id string) error {
	start := time.Now()
	err := s.store.Delete(ctx, collection, id)
	s.observe(collection, "delete", err, start)
	return err
}

// ausência de registro não conta como falha do backend
func (s *Service) observe(collection, op string, err error, start time.Time) {
	success := err == nil || errors.Is(err, ErrNotFound)
	s.metrics.RecordRecordOperation(s.backend, collection, op, success, time.Since(start))
}
