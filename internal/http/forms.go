package http

import (
	"net/http"

	"github.com/pacuit/conferencia/internal/conference"
)

// CreateSubmission recebe o envio de trabalho com resumo e comprovante.
func (h *Handler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	var payload conference.SubmissionInput
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido")
		return
	}

	result, err := h.forms.SubmitPaper(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// CreateIndividualMembership recebe a filiação individual.
func (h *Handler) CreateIndividualMembership(w http.ResponseWriter, r *http.Request) {
	var payload conference.IndividualInput
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido")
		return
	}

	result, err := h.forms.ApplyIndividual(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}

// CreateInstitutionalMembership recebe a filiação institucional com quatro anexos.
func (h *Handler) CreateInstitutionalMembership(w http.ResponseWriter, r *http.Request) {
	var payload conference.InstitutionalInput
	if err := decodeJSON(w, r, &payload); err != nil {
		WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido")
		return
	}

	result, err := h.forms.ApplyInstitutional(r.Context(), payload)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, result)
}
