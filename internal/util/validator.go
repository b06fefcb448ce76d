package util

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email obrigatório")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("email inválido")
	}
	return nil
}

// RequireString garante string não vazia.
func RequireString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New(field + " obrigatório")
	}
	return nil
}

// MinLength exige quantidade mínima de caracteres após trim.
func MinLength(value, field string, min int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < min {
		return errors.New(field + " muito curto")
	}
	return nil
}
