package records

import (
	"context"
	"errors"
)

var (
	// ErrNotFound é retornado quando o registro não existe na coleção.
	ErrNotFound = errors.New("registro não encontrado")
)

const (
	CollectionTasks                    = "tasks"
	CollectionUsers                    = "users"
	CollectionSubmissions              = "submissions"
	CollectionIndividualMemberships    = "individualMemberships"
	CollectionInstitutionalMemberships = "institutionalMemberships"
)

// Record é um documento livre; o identificador fica na chave "id".
type Record map[string]any

// ID devolve o identificador do registro, se houver.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone copia o primeiro nível do registro.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// WithoutID devolve cópia sem a chave "id", usada antes de persistir.
func (r Record) WithoutID() Record {
	out := r.Clone()
	delete(out, "id")
	return out
}

// Merge aplica patch sobre o registro e devolve o resultado sem alterar os originais.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// Store é a abstração única de persistência de registros por coleção.
type Store interface {
	Create(ctx context.Context, collection string, data Record) (Record, error)
	Get(ctx context.Context, collection, id string) (Record, error)
	List(ctx context.Context, collection string) ([]Record, error)
	Update(ctx context.Context, collection, id string, patch Record) (Record, error)
	Delete(ctx context.Context, collection, id string) error
}
