package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
)

// ErrInvalidCredentials é devolvido para usuário ou senha incorretos.
var ErrInvalidCredentials = errors.New("credenciais inválidas")

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Hash gera um hash Argon2id (inclui os parâmetros dentro do próprio hash).
func Hash(password string) (string, error) {
	return argon2id.CreateHash(password, params)
}

// Verify compara a senha com o hash Argon2id (lendo parâmetros do próprio hash).
func Verify(password, encodedHash string) (bool, error) {
	return argon2id.ComparePasswordAndHash(password, encodedHash)
}

// AdminAuthenticator valida o operador único configurado no ambiente.
type AdminAuthenticator struct {
	username     string
	passwordHash string
	tokens       *JWTManager
}

// NewAdminAuthenticator cria o autenticador; hash vazio desabilita o login.
func NewAdminAuthenticator(username, passwordHash string, tokens *JWTManager) *AdminAuthenticator {
	return &AdminAuthenticator{username: username, passwordHash: passwordHash, tokens: tokens}
}

// Login confere as credenciais e emite um token de acesso.
func (a *AdminAuthenticator) Login(username, password string) (string, time.Time, error) {
	if a.username == "" || a.passwordHash == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 {
		return "", time.Time{}, ErrInvalidCredentials
	}
	ok, err := Verify(password, a.passwordHash)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.tokens.GenerateAccessToken(username)
}
