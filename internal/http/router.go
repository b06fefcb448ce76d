package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pacuit/conferencia/internal/auth"
	"github.com/pacuit/conferencia/internal/conference"
	"github.com/pacuit/conferencia/internal/config"
	httpmiddleware "github.com/pacuit/conferencia/internal/http/middleware"
	"github.com/pacuit/conferencia/internal/metrics"
	"github.com/pacuit/conferencia/internal/records"
)

// RecordService é o subconjunto de records.Service usado pelas rotas de registros.
type RecordService interface {
	Create(ctx context.Context, collection string, data records.Record) (records.Record, error)
	Get(ctx context.Context, collection, id string) (records.Record, error)
	List(ctx context.Context, collection string) ([]records.Record, error)
	Update(ctx context.Context, collection, id string, patch records.Record) (records.Record, error)
	Delete(ctx context.Context, collection, id string) error
}

// FormService processa os formulários públicos.
type FormService interface {
	SubmitPaper(ctx context.Context, in conference.SubmissionInput) (*conference.SubmissionResult, error)
	ApplyIndividual(ctx context.Context, in conference.IndividualInput) (*conference.ApplicationResult, error)
	ApplyInstitutional(ctx context.Context, in conference.InstitutionalInput) (*conference.ApplicationResult, error)
}

// Check verifica uma dependência externa para /ready.
type Check func(ctx context.Context) error

// Dependencies reúne os serviços montados em main.
type Dependencies struct {
	Records  RecordService
	Forms    FormService
	Tokens   *auth.JWTManager
	Admin    *auth.AdminAuthenticator
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer
	Checks   map[string]Check
}

// Handler agrega dependências das rotas.
type Handler struct {
	records       RecordService
	forms         FormService
	admin         *auth.AdminAuthenticator
	checks        map[string]Check
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter configura chi com middlewares e rotas.
func NewRouter(cfg *config.Config, deps Dependencies) (http.Handler, error) {
	h := &Handler{
		records:       deps.Records,
		forms:         deps.Forms,
		admin:         deps.Admin,
		checks:        deps.Checks,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging(deps.Metrics))
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, CodeNotFound, "rota não encontrada")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, CodeValidation, "método não permitido")
	})

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Post("/auth/token", h.IssueToken)
		public.Post("/dummy/{slug}", h.Dummy)

		if h.forms != nil {
			public.Post("/submissions", h.CreateSubmission)
			public.Route("/memberships", func(m chi.Router) {
				m.Post("/individual", h.CreateIndividualMembership)
				m.Post("/institutional", h.CreateInstitutionalMembership)
			})
		}
	})

	if h.records != nil {
		r.Group(func(private chi.Router) {
			private.Use(httpmiddleware.RequireAdmin(deps.Tokens))
			private.Use(httpmiddleware.SubjectRateLimit(h.authLimiter))

			for _, collection := range []string{records.CollectionTasks, records.CollectionUsers} {
				private.Route("/"+collection, func(c chi.Router) {
					c.Get("/", h.listRecords(collection))
					c.Post("/", h.createRecord(collection))
					c.Get("/{id}", h.getRecord(collection))
					c.Put("/{id}", h.updateRecord(collection))
					c.Delete("/{id}", h.deleteRecord(collection))
				})
			}
		})
	}

	return r, nil
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready executa as verificações registradas (banco, cache).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		body := ErrorEnvelope{}
		for name, msg := range failures {
			body.Errors = append(body.Errors, ErrorBody{Code: CodeUnavailable, Message: msg, Field: name})
		}
		writeRaw(w, http.StatusServiceUnavailable, body)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}
