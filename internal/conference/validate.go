package conference

import (
	"strings"

	"github.com/pacuit/conferencia/internal/util"
)

// validator acumula apenas o primeiro erro encontrado.
type validator struct {
	err *ValidationError
}

func (v *validator) fail(field, msg string) {
	if v.err == nil {
		v.err = &ValidationError{Field: field, Message: msg}
	}
}

func (v *validator) required(field, value string) {
	if err := util.RequireString(value, field); err != nil {
		v.fail(field, "obrigatório")
	}
}

func (v *validator) minLength(field, value string, min int) {
	if err := util.MinLength(value, field, min); err != nil {
		v.fail(field, "muito curto")
	}
}

func (v *validator) email(field, value string) {
	if err := util.ValidateEmail(value); err != nil {
		v.fail(field, err.Error())
	}
}

func (v *validator) filename(field, value string) {
	name := strings.TrimSpace(value)
	switch {
	case name == "":
		v.fail(field, "obrigatório")
	case name == "." || name == ".." || strings.ContainsAny(name, `/\`):
		v.fail(field, "nome de arquivo inválido")
	}
}

// distinctFilenames evita que dois anexos do mesmo pedido caiam no mesmo caminho.
func (v *validator) distinctFilenames(fields, values []string) {
	seen := make(map[string]bool, len(values))
	for i, value := range values {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		if seen[name] {
			v.fail(fields[i], "nome de arquivo repetido")
			return
		}
		seen[name] = true
	}
}

func (v *validator) dataURI(field, value string) *DataURI {
	uri, err := ParseDataURI(value)
	if err != nil {
		v.fail(field, err.Error())
		return nil
	}
	return uri
}

func (v *validator) Err() error {
	if v.err == nil {
		return nil
	}
	return v.err
}
