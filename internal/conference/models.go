package conference

import (
	"errors"
	"fmt"
)

const (
	statusPendingReview = "Pending Review"
	statusPending       = "Pending"

	submissionPrefix    = "PACUIT2025"
	individualPrefix    = "PACUIT-INDIV"
	institutionalPrefix = "PACUIT-INST"

	messageSubmission    = "Registration successful. Please check your email for confirmation."
	messageIndividual    = "Application submitted successfully. A confirmation email has been sent."
	messageInstitutional = "Application submitted successfully."
)

// ErrValidation agrupa falhas de validação dos formulários.
var ErrValidation = errors.New("formulário inválido")

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

// SubmissionInput é o formulário de envio de trabalho.
type SubmissionInput struct {
	FullName               string `json:"fullName"`
	Email                  string `json:"email"`
	ContactNumber          string `json:"contactNumber"`
	Institution            string `json:"institution"`
	ResearchTitle          string `json:"researchTitle"`
	Bionote                string `json:"bionote"`
	CoAuthors              string `json:"coAuthors"`
	Keywords               string `json:"keywords"`
	AbstractFileDataURI    string `json:"abstractFileDataUri"`
	AbstractFileName       string `json:"abstractFileName"`
	ProofOfPaymentDataURI  string `json:"proofOfPaymentDataUri"`
	ProofOfPaymentFileName string `json:"proofOfPaymentFileName"`
}

// IndividualInput é o formulário de filiação individual.
type IndividualInput struct {
	FullName            string `json:"fullName"`
	Email               string `json:"email"`
	Institution         string `json:"institution"`
	Phone               string `json:"phone"`
	ApplicationFormURI  string `json:"applicationFormUri"`
	ApplicationFormName string `json:"applicationFormName"`
}

// InstitutionalInput é o formulário de filiação institucional.
type InstitutionalInput struct {
	InstitutionName     string `json:"institutionName"`
	ContactPerson       string `json:"contactPerson"`
	Email               string `json:"email"`
	ContactNumber       string `json:"contactNumber"`
	LetterOfIntentURI   string `json:"letterOfIntentUri"`
	LetterOfIntentName  string `json:"letterOfIntentName"`
	RegistrationURI     string `json:"registrationUri"`
	RegistrationName    string `json:"registrationName"`
	FacultyListURI      string `json:"facultyListUri"`
	FacultyListName     string `json:"facultyListName"`
	ApplicationFormURI  string `json:"applicationFormUri"`
	ApplicationFormName string `json:"applicationFormName"`
}

type SubmissionResult struct {
	RegistrationID string `json:"registrationId"`
	Message        string `json:"message"`
}

type ApplicationResult struct {
	ApplicationID string `json:"applicationId"`
	Message       string `json:"message"`
}
