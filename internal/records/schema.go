package records

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pacuit/conferencia/internal/util"
)

// ErrValidation agrupa erros de payload inválido.
var ErrValidation = errors.New("payload inválido")

// ValidationError aponta o campo rejeitado.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindTimestamp
	kindEmail
)

type field struct {
	name     string
	kind     fieldKind
	required bool
}

// schema normaliza um payload; campos desconhecidos são descartados.
type schema struct {
	fields   []field
	defaults Record
}

var (
	taskSchema = schema{
		fields: []field{
			{name: "name", kind: kindString, required: true},
			{name: "slug", kind: kindString, required: true},
			{name: "description", kind: kindString},
			{name: "completed", kind: kindBool},
			{name: "due_date", kind: kindTimestamp},
		},
		defaults: Record{"completed": false},
	}
	userSchema = schema{
		fields: []field{
			{name: "username", kind: kindString, required: true},
			{name: "email", kind: kindEmail, required: true},
		},
	}
)

// normalize valida data; partial aceita subconjuntos dos campos.
func (s schema) normalize(data Record, partial bool) (Record, error) {
	out := Record{}
	if !partial {
		for k, v := range s.defaults {
			out[k] = v
		}
	}

	for _, f := range s.fields {
		raw, present := data[f.name]
		if !present || raw == nil {
			if f.required && !partial {
				return nil, &ValidationError{Field: f.name, Message: "obrigatório"}
			}
			continue
		}

		value, err := f.coerce(raw)
		if err != nil {
			return nil, err
		}
		out[f.name] = value
	}

	if partial && len(out) == 0 {
		return nil, &ValidationError{Field: "body", Message: "nenhum campo conhecido informado"}
	}
	return out, nil
}

func (f field) coerce(raw any) (any, error) {
	switch f.kind {
	case kindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, &ValidationError{Field: f.name, Message: "deve ser booleano"}
		}
		return b, nil
	}

	s, ok := raw.(string)
	if !ok {
		return nil, &ValidationError{Field: f.name, Message: "deve ser texto"}
	}
	s = strings.TrimSpace(s)

	switch f.kind {
	case kindString:
		if f.required && s == "" {
			return nil, &ValidationError{Field: f.name, Message: "não pode ser vazio"}
		}
	case kindEmail:
		if err := util.ValidateEmail(s); err != nil {
			return nil, &ValidationError{Field: f.name, Message: err.Error()}
		}
	case kindTimestamp:
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, &ValidationError{Field: f.name, Message: "deve estar em RFC 3339"}
		}
		s = ts.UTC().Format(time.RFC3339)
	}
	return s, nil
}
