package handlers

import (
	"errors"
	"net/http"

	"github.com/courtside/pickleball-league/display"
	"github.com/courtside/pickleball-league/middleware"
	"github.com/courtside/pickleball-league/services"
	"github.com/go-chi/chi/v5"
)

// DisplayHandler обслуживает админский пульт: запись "какая пара команд
// показывается на табло" на турнир и игровой день.
type DisplayHandler struct {
	displayService services.DisplayService
}

func NewDisplayHandler(ds services.DisplayService) *DisplayHandler {
	return &DisplayHandler{displayService: ds}
}

func (h *DisplayHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.SetSelectionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.DisplayDate = chi.URLParam(r, "date")

	var updatedBy *int
	if userID, err := middleware.GetUserIDFromContext(r.Context()); err == nil {
		updatedBy = &userID
	}

	selection, err := h.displayService.SetSelection(r.Context(), tournamentID, updatedBy, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"selection": selection}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DisplayHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	date, err := display.ParseDisplayDate(chi.URLParam(r, "date"))
	if err != nil {
		badRequestResponse(w, r, errors.New("date must be in YYYY-MM-DD format"))
		return
	}

	selection, err := h.displayService.GetSelection(r.Context(), tournamentID, date)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"selection": selection}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *DisplayHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	date, err := display.ParseDisplayDate(chi.URLParam(r, "date"))
	if err != nil {
		badRequestResponse(w, r, errors.New("date must be in YYYY-MM-DD format"))
		return
	}

	if err := h.displayService.ClearSelection(r.Context(), tournamentID, date); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
