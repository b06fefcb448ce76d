package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pacuit/conferencia/internal/records"
)

func (h *Handler) listRecords(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := h.records.List(r.Context(), collection)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if list == nil {
			list = []records.Record{}
		}
		WriteJSON(w, http.StatusOK, list)
	}
}

func (h *Handler) createRecord(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload records.Record
		if err := decodeJSON(w, r, &payload); err != nil || payload == nil {
			WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido")
			return
		}

		rec, err := h.records.Create(r.Context(), collection, payload)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, rec)
	}
}

func (h *Handler) getRecord(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.records.Get(r.Context(), collection, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, rec)
	}
}

func (h *Handler) updateRecord(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload records.Record
		if err := decodeJSON(w, r, &payload); err != nil || payload == nil {
			WriteError(w, http.StatusBadRequest, CodeValidation, "JSON inválido")
			return
		}

		rec, err := h.records.Update(r.Context(), collection, chi.URLParam(r, "id"), payload)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, rec)
	}
}

func (h *Handler) deleteRecord(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.records.Delete(r.Context(), collection, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
	}
}
