package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	LogLevel        string
	LogFormat       string
	AllowOrigins    []string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	RecordBackend   string
	DBDSN           string
	RedisURL        string
	CacheTTL        time.Duration
	GitHub          GitHubConfig
	Firestore       FirestoreConfig
	Storage         StorageConfig
	Upload          UploadConfig
	Mail            MailConfig
	Notify          NotifyConfig
	Admin           AdminConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// GitHubConfig reúne credenciais e destino no GitHub (issues e contents).
type GitHubConfig struct {
	Token      string
	Owner      string
	Repo       string
	Branch     string
	APIBase    string
	UploadPath string
}

// FirestoreConfig descreve a conta de serviço usada na API REST do Firestore.
type FirestoreConfig struct {
	ProjectID   string
	ClientEmail string
	PrivateKey  string
	TokenURI    string
	APIBase     string
}

// StorageConfig define o provedor de anexos.
type StorageConfig struct {
	Provider     string
	S3Endpoint   string
	S3Region     string
	S3Bucket     string
	S3AccessKey  string
	S3SecretKey  string
	S3PublicURL  string
	GCSBucket    string
	GCSCredsJSON string
	GCSPublicURL string
	GCSEndpoint  string
}

// UploadConfig controla o laço de retentativa de upload.
type UploadConfig struct {
	MaxAttempts int
	BackoffStep time.Duration
	Timeout     time.Duration
}

// MailConfig habilita e-mails de confirmação via SMTP.
type MailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NotifyConfig configura alertas da equipe.
type NotifyConfig struct {
	SlackWebhookURL string
}

// AdminConfig protege as rotas de registros quando JWTSecret está presente.
type AdminConfig struct {
	JWTSecret    string
	AccessTTL    time.Duration
	Username     string
	PasswordHash string
}

// Enabled indica se as rotas administrativas exigem token.
func (a AdminConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	port, err := parseIntEnv("PORT", 8080)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(getEnv("LOG_FORMAT", "console")))

	cfg.AllowOrigins = splitList(getEnv("ALLOW_ORIGINS", "*"))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 2, Burst: 10}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	cfg.RecordBackend = strings.ToLower(strings.TrimSpace(getEnv("RECORD_BACKEND", "memory")))
	cfg.DBDSN = strings.TrimSpace(getEnv("DB_DSN", ""))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	if cfg.CacheTTL, err = parseDurationEnv("CACHE_TTL", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.GitHub = GitHubConfig{
		Token:      strings.TrimSpace(getEnv("GITHUB_TOKEN", "")),
		Owner:      strings.TrimSpace(getEnv("GITHUB_OWNER", "")),
		Repo:       strings.TrimSpace(getEnv("GITHUB_REPO", "")),
		Branch:     strings.TrimSpace(getEnv("GITHUB_BRANCH", "")),
		APIBase:    strings.TrimSpace(getEnv("GITHUB_API_BASE", "https://api.github.com")),
		UploadPath: strings.Trim(strings.TrimSpace(getEnv("GITHUB_UPLOAD_PATH", "uploads")), "/"),
	}

	cfg.Firestore = FirestoreConfig{
		ProjectID:   strings.TrimSpace(getEnv("FIRESTORE_PROJECT_ID", "")),
		ClientEmail: strings.TrimSpace(getEnv("FIRESTORE_CLIENT_EMAIL", "")),
		PrivateKey:  strings.ReplaceAll(getEnv("FIRESTORE_PRIVATE_KEY", ""), `\n`, "\n"),
		TokenURI:    strings.TrimSpace(getEnv("FIRESTORE_TOKEN_URI", "https://oauth2.googleapis.com/token")),
		APIBase:     strings.TrimSpace(getEnv("FIRESTORE_API_BASE", "https://firestore.googleapis.com/v1")),
	}
	if raw := strings.TrimSpace(getEnv("FIRESTORE_SA_JSON", "")); raw != "" {
		if err := cfg.Firestore.applyServiceAccountJSON([]byte(raw)); err != nil {
			return nil, err
		}
	}

	cfg.Storage = StorageConfig{
		Provider:     strings.ToLower(strings.TrimSpace(getEnv("ATTACHMENT_PROVIDER", "github"))),
		S3Endpoint:   strings.TrimSpace(getEnv("S3_ENDPOINT", "")),
		S3Region:     strings.TrimSpace(getEnv("S3_REGION", "us-east-1")),
		S3Bucket:     strings.TrimSpace(getEnv("S3_BUCKET", "")),
		S3AccessKey:  strings.TrimSpace(getEnv("S3_ACCESS_KEY", "")),
		S3SecretKey:  strings.TrimSpace(getEnv("S3_SECRET_KEY", "")),
		S3PublicURL:  strings.TrimSpace(getEnv("S3_PUBLIC_URL", "")),
		GCSBucket:    strings.TrimSpace(getEnv("GCS_BUCKET", "")),
		GCSCredsJSON: strings.TrimSpace(getEnv("GCS_CREDENTIALS_JSON", "")),
		GCSPublicURL: strings.TrimSpace(getEnv("GCS_PUBLIC_URL", "")),
		GCSEndpoint:  strings.TrimSpace(getEnv("GCS_ENDPOINT", "")),
	}

	maxAttempts, err := parseIntEnv("UPLOAD_MAX_ATTEMPTS", 4)
	if err != nil {
		return nil, err
	}
	if maxAttempts < 1 || maxAttempts > 10 {
		return nil, errors.New("UPLOAD_MAX_ATTEMPTS deve estar entre 1 e 10")
	}
	cfg.Upload.MaxAttempts = maxAttempts
	if cfg.Upload.BackoffStep, err = parseDurationEnv("UPLOAD_BACKOFF_STEP", 250*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.Upload.Timeout, err = parseDurationEnv("UPLOAD_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}

	smtpPort, err := parseIntEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.Mail = MailConfig{
		Host:     strings.TrimSpace(getEnv("SMTP_HOST", "")),
		Port:     smtpPort,
		Username: strings.TrimSpace(getEnv("SMTP_USERNAME", "")),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     strings.TrimSpace(getEnv("MAIL_FROM", "")),
	}
	cfg.Mail.Enabled = cfg.Mail.Host != "" && cfg.Mail.From != ""

	cfg.Notify.SlackWebhookURL = strings.TrimSpace(getEnv("SLACK_WEBHOOK_URL", ""))

	cfg.Admin = AdminConfig{
		JWTSecret:    strings.TrimSpace(getEnv("ADMIN_JWT_SECRET", "")),
		Username:     strings.TrimSpace(getEnv("ADMIN_USERNAME", "")),
		PasswordHash: strings.TrimSpace(getEnv("ADMIN_PASSWORD_HASH", "")),
	}
	if cfg.Admin.JWTSecret != "" && len(cfg.Admin.JWTSecret) < 32 {
		return nil, errors.New("ADMIN_JWT_SECRET deve ter pelo menos 32 caracteres")
	}
	if cfg.Admin.AccessTTL, err = parseDurationEnv("ADMIN_ACCESS_TTL", 15*time.Minute); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.RecordBackend {
	case "memory":
	case "github":
		if err := c.GitHub.validate(); err != nil {
			return err
		}
	case "firestore":
		if c.Firestore.ProjectID == "" {
			return errors.New("FIRESTORE_PROJECT_ID obrigatório")
		}
		if c.Firestore.ClientEmail == "" || c.Firestore.PrivateKey == "" {
			return errors.New("credenciais do Firestore obrigatórias")
		}
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("DB_DSN obrigatório")
		}
	default:
		return fmt.Errorf("RECORD_BACKEND %q não suportado", c.RecordBackend)
	}

	switch c.Storage.Provider {
	case "", "noop":
	case "github":
		if err := c.GitHub.validate(); err != nil {
			return err
		}
	case "s3":
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET obrigatório")
		}
	case "gcs":
		if c.Storage.GCSBucket == "" {
			return errors.New("GCS_BUCKET obrigatório")
		}
	default:
		return fmt.Errorf("ATTACHMENT_PROVIDER %q não suportado", c.Storage.Provider)
	}

	return nil
}

func (g GitHubConfig) validate() error {
	if g.Token == "" {
		return errors.New("GITHUB_TOKEN obrigatório")
	}
	if g.Owner == "" || g.Repo == "" {
		return errors.New("GITHUB_OWNER e GITHUB_REPO obrigatórios")
	}
	return nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
