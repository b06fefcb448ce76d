package auth

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DatastoreScope  = "https://www.googleapis.com/auth/datastore"
	DefaultTokenURI = "https://oauth2.googleapis.com/token"

	jwtBearerGrant  = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	assertionTTL    = time.Hour
	expirySkew      = 60 * time.Second
	defaultTokenTTL = 3600
)

// ErrTokenExchange indica falha na troca da asserção por um access token.
var ErrTokenExchange = errors.New("auth: troca de token falhou")

// ServiceAccount reúne as credenciais de uma conta de serviço Google.
type ServiceAccount struct {
	ClientEmail string
	PrivateKey  string
	TokenURI    string
	Scope       string
}

// ServiceAccountTokenSource cunha e mantém em cache o access token da conta de serviço.
type ServiceAccountTokenSource struct {
	email      string
	key        *rsa.PrivateKey
	tokenURI   string
	scope      string
	httpClient *http.Client
	now        func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// NewServiceAccountTokenSource valida a chave PEM e prepara a fonte de tokens.
func NewServiceAccountTokenSource(sa ServiceAccount, httpClient *http.Client) (*ServiceAccountTokenSource, error) {
	if strings.TrimSpace(sa.ClientEmail) == "" {
		return nil, errors.New("auth: client email obrigatório")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(sa.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("auth: chave privada inválida: %w", err)
	}

	tokenURI := strings.TrimSpace(sa.TokenURI)
	if tokenURI == "" {
		tokenURI = DefaultTokenURI
	}
	scope := sa.Scope
	if scope == "" {
		scope = DatastoreScope
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	return &ServiceAccountTokenSource{
		email:      sa.ClientEmail,
		key:        key,
		tokenURI:   tokenURI,
		scope:      scope,
		httpClient: httpClient,
		now:        time.Now,
	}, nil
}

// Token devolve o token em cache ou cunha um novo quando expirado.
func (s *ServiceAccountTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Before(s.expiry) {
		return s.token, nil
	}

	assertion, err := s.assertion(now)
	if err != nil {
		return "", err
	}
	token, expiresIn, err := s.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	s.token = token
	s.expiry = now.Add(time.Duration(expiresIn)*time.Second - expirySkew)
	return s.token, nil
}

// Invalidate descarta o token em cache (por exemplo após um 401).
func (s *ServiceAccountTokenSource) Invalidate() {
	s.mu.Lock()
	s.token = ""
	s.expiry = time.Time{}
	s.mu.Unlock()
}

func (s *ServiceAccountTokenSource) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   s.email,
		"scope": s.scope,
		"aud":   s.tokenURI,
		"iat":   now.Unix(),
		"exp":   now.Add(assertionTTL).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("auth: assinatura da asserção: %w", err)
	}
	return signed, nil
}

type tokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (s *ServiceAccountTokenSource) exchange(ctx context.Context, assertion string) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}

	var payload tokenResponse
	_ = json.Unmarshal(raw, &payload)

	if resp.StatusCode >= 400 {
		msg := payload.ErrorDescription
		if msg == "" {
			msg = payload.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return "", 0, fmt.Errorf("%w: status %d: %s", ErrTokenExchange, resp.StatusCode, msg)
	}
	if payload.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: resposta sem access_token", ErrTokenExchange)
	}
	if payload.ExpiresIn <= 0 {
		payload.ExpiresIn = defaultTokenTTL
	}
	return payload.AccessToken, payload.ExpiresIn, nil
}
