package conference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/pacuit/conferencia/internal/mail"
	"github.com/pacuit/conferencia/internal/notify"
	"github.com/pacuit/conferencia/internal/records"
	"github.com/pacuit/conferencia/internal/storage"
	"github.com/pacuit/conferencia/internal/util"
)

const (
	defaultUploadTimeout = 60 * time.Second
	sideEffectTimeout    = 10 * time.Second
)

// RecordCreator persiste a inscrição; records.Service satisfaz a interface.
type RecordCreator interface {
	Create(ctx context.Context, collection string, data records.Record) (records.Record, error)
}

// Service processa inscrições e envios de trabalho.
type Service struct {
	uploader      storage.Uploader
	records       RecordCreator
	mailer        mail.Mailer
	notifier      notify.Notifier
	uploadTimeout time.Duration
	now           func() time.Time
	logger        zerolog.Logger
}

// NewService monta o serviço; mailer e notifier nulos viram noop.
func NewService(uploader storage.Uploader, store RecordCreator, mailer mail.Mailer, notifier notify.Notifier, uploadTimeout time.Duration) *Service {
	if mailer == nil {
		mailer = mail.Noop{}
	}
	if notifier == nil {
		notifier = notify.Noop{}
	}
	if uploadTimeout <= 0 {
		uploadTimeout = defaultUploadTimeout
	}
	return &Service{
		uploader:      uploader,
		records:       store,
		mailer:        mailer,
		notifier:      notifier,
		uploadTimeout: uploadTimeout,
		now:           time.Now,
		logger:        log.With().Str("component", "conference").Logger(),
	}
}

type attachment struct {
	label string
	name  string
	uri   *DataURI
}

// SubmitPaper registra um trabalho com resumo e comprovante de pagamento.
func (s *Service) SubmitPaper(ctx context.Context, in SubmissionInput) (*SubmissionResult, error) {
	v := &validator{}
	v.required("fullName", in.FullName)
	v.email("email", in.Email)
	v.required("contactNumber", in.ContactNumber)
	v.required("institution", in.Institution)
	v.required("researchTitle", in.ResearchTitle)
	v.required("bionote", in.Bionote)
	v.required("keywords", in.Keywords)
	abstract := v.dataURI("abstractFileDataUri", in.AbstractFileDataURI)
	v.filename("abstractFileName", in.AbstractFileName)
	payment := v.dataURI("proofOfPaymentDataUri", in.ProofOfPaymentDataURI)
	v.filename("proofOfPaymentFileName", in.ProofOfPaymentFileName)
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	registrationID := util.NewApplicationID(submissionPrefix, now)

	uploads, err := s.uploadAll(ctx, registrationID, []attachment{
		{label: "abstract", name: strings.TrimSpace(in.AbstractFileName), uri: abstract},
		{label: "proof of payment", name: strings.TrimSpace(in.ProofOfPaymentFileName), uri: payment},
	})
	if err != nil {
		return nil, err
	}

	coAuthors := strings.TrimSpace(in.CoAuthors)
	if coAuthors == "" {
		coAuthors = "N/A"
	}
	_, err = s.records.Create(ctx, records.CollectionSubmissions, records.Record{
		"registration_id":               registrationID,
		"full_name":                     strings.TrimSpace(in.FullName),
		"email":                         strings.TrimSpace(in.Email),
		"contact_number":                strings.TrimSpace(in.ContactNumber),
		"institution":                   strings.TrimSpace(in.Institution),
		"research_title":                strings.TrimSpace(in.ResearchTitle),
		"bionote":                       in.Bionote,
		"co_authors":                    coAuthors,
		"keywords":                      strings.TrimSpace(in.Keywords),
		"status":                        statusPendingReview,
		"submitted_at":                  now.Format(time.RFC3339),
		"abstract_name":                 strings.TrimSpace(in.AbstractFileName),
		"abstract_html_url":             uploads[0].HTMLURL,
		"abstract_download_url":         uploads[0].DownloadURL,
		"proof_of_payment_name":         strings.TrimSpace(in.ProofOfPaymentFileName),
		"proof_of_payment_html_url":     uploads[1].HTMLURL,
		"proof_of_payment_download_url": uploads[1].DownloadURL,
	})
	if err != nil {
		return nil, fmt.Errorf("persistir submissão: %w", err)
	}

	msg, err := mail.SubmissionConfirmation(strings.TrimSpace(in.Email), strings.TrimSpace(in.FullName), registrationID, strings.TrimSpace(in.ResearchTitle))
	s.afterSubmit(ctx, registrationID, msg, err, notify.NewApplication("paper submission", registrationID, in.FullName, in.Email))

	return &SubmissionResult{RegistrationID: registrationID, Message: messageSubmission}, nil
}

// ApplyIndividual registra um pedido de filiação individual.
func (s *Service) ApplyIndividual(ctx context.Context, in IndividualInput) (*ApplicationResult, error) {
	v := &validator{}
	v.minLength("fullName", in.FullName, 2)
	v.email("email", in.Email)
	v.minLength("institution", in.Institution, 2)
	v.minLength("phone", in.Phone, 10)
	form := v.dataURI("applicationFormUri", in.ApplicationFormURI)
	v.filename("applicationFormName", in.ApplicationFormName)
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	applicationID := util.NewApplicationID(individualPrefix, now)

	uploads, err := s.uploadAll(ctx, applicationID, []attachment{
		{label: "Application Form", name: strings.TrimSpace(in.ApplicationFormName), uri: form},
	})
	if err != nil {
		return nil, err
	}

	_, err = s.records.Create(ctx, records.CollectionIndividualMemberships, records.Record{
		"applicationId": applicationID,
		"fullName":      strings.TrimSpace(in.FullName),
		"email":         strings.TrimSpace(in.Email),
		"institution":   strings.TrimSpace(in.Institution),
		"phone":         strings.TrimSpace(in.Phone),
		"status":        statusPending,
		"submittedAt":   now.Format(time.RFC3339),
		"document":      documentEntry("Application Form", uploads[0]),
	})
	if err != nil {
		return nil, fmt.Errorf("persistir filiação individual: %w", err)
	}

	msg, err := mail.IndividualConfirmation(strings.TrimSpace(in.Email), strings.TrimSpace(in.FullName), applicationID)
	s.afterSubmit(ctx, applicationID, msg, err, notify.NewApplication("individual membership", applicationID, in.FullName, in.Email))

	return &ApplicationResult{ApplicationID: applicationID, Message: messageIndividual}, nil
}

// ApplyInstitutional registra um pedido de filiação institucional com quatro documentos.
func (s *Service) ApplyInstitutional(ctx context.Context, in InstitutionalInput) (*ApplicationResult, error) {
	v := &validator{}
	v.minLength("institutionName", in.InstitutionName, 2)
	v.minLength("contactPerson", in.ContactPerson, 2)
	v.email("email", in.Email)
	v.minLength("contactNumber", in.ContactNumber, 10)
	letter := v.dataURI("letterOfIntentUri", in.LetterOfIntentURI)
	v.filename("letterOfIntentName", in.LetterOfIntentName)
	registration := v.dataURI("registrationUri", in.RegistrationURI)
	v.filename("registrationName", in.RegistrationName)
	faculty := v.dataURI("facultyListUri", in.FacultyListURI)
	v.filename("facultyListName", in.FacultyListName)
	form := v.dataURI("applicationFormUri", in.ApplicationFormURI)
	v.filename("applicationFormName", in.ApplicationFormName)
	v.distinctFilenames(
		[]string{"letterOfIntentName", "registrationName", "facultyListName", "applicationFormName"},
		[]string{in.LetterOfIntentName, in.RegistrationName, in.FacultyListName, in.ApplicationFormName},
	)
	if err := v.Err(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	applicationID := util.NewApplicationID(institutionalPrefix, now)

	attachments := []attachment{
		{label: "Letter of Intent", name: strings.TrimSpace(in.LetterOfIntentName), uri: letter},
		{label: "SEC/CDA Registration", name: strings.TrimSpace(in.RegistrationName), uri: registration},
		{label: "Faculty List", name: strings.TrimSpace(in.FacultyListName), uri: faculty},
		{label: "Application Form", name: strings.TrimSpace(in.ApplicationFormName), uri: form},
	}
	uploads, err := s.uploadAll(ctx, applicationID, attachments)
	if err != nil {
		return nil, err
	}

	documents := make([]map[string]any, 0, len(attachments))
	for i, a := range attachments {
		documents = append(documents, documentEntry(a.label, uploads[i]))
	}

	_, err = s.records.Create(ctx, records.CollectionInstitutionalMemberships, records.Record{
		"applicationId":   applicationID,
		"institutionName": strings.TrimSpace(in.InstitutionName),
		"contactPerson":   strings.TrimSpace(in.ContactPerson),
		"email":           strings.TrimSpace(in.Email),
		"contactNumber":   strings.TrimSpace(in.ContactNumber),
		"status":          statusPending,
		"submittedAt":     now.Format(time.RFC3339),
		"documents":       documents,
	})
	if err != nil {
		return nil, fmt.Errorf("persistir filiação institucional: %w", err)
	}

	msg, err := mail.InstitutionalConfirmation(strings.TrimSpace(in.Email), strings.TrimSpace(in.ContactPerson), strings.TrimSpace(in.InstitutionName), applicationID)
	s.afterSubmit(ctx, applicationID, msg, err, notify.NewApplication("institutional membership", applicationID, in.InstitutionName, in.Email))

	return &ApplicationResult{ApplicationID: applicationID, Message: messageInstitutional}, nil
}

// uploadAll envia os anexos em paralelo sob um único prazo; a primeira falha cancela os demais.
func (s *Service) uploadAll(ctx context.Context, namespace string, attachments []attachment) ([]*storage.UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	results := make([]*storage.UploadResult, len(attachments))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range attachments {
		i, a := i, a
		g.Go(func() error {
			res, err := s.uploader.Upload(gctx, storage.UploadInput{
				Namespace:   namespace,
				Filename:    a.name,
				Content:     a.uri.Payload,
				ContentType: a.uri.ContentType(),
			})
			if err != nil {
				return fmt.Errorf("upload de %s: %w", a.label, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("namespace", namespace).Msg("falha no upload de anexos")
		return nil, err
	}
	return results, nil
}

// afterSubmit envia confirmação e alerta; falhas são apenas registradas.
func (s *Service) afterSubmit(ctx context.Context, id string, msg mail.Message, renderErr error, alert notify.Message) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()

	if renderErr != nil {
		s.logger.Error().Err(renderErr).Str("id", id).Msg("falha ao montar e-mail de confirmação")
	} else if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("falha ao enviar e-mail de confirmação")
	}

	if err := s.notifier.Notify(ctx, alert); err != nil {
		s.logger.Warn().Err(err).Str("id", id).Msg("falha ao notificar equipe")
	}
}

func documentEntry(name string, res *storage.UploadResult) map[string]any {
	return map[string]any{
		"name":         name,
		"html_url":     res.HTMLURL,
		"download_url": res.DownloadURL,
	}
}
