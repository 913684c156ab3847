package handlers

import (
	"errors"
	"net/http"

	"github.com/courtside/pickleball-league/display"
	"github.com/go-chi/chi/v5"
)

// ScoreboardHandler даёт HTTP-доступ к состоянию табло: снимок для
// первой отрисовки и сигнал "ролик доигран" от плеера экрана.
type ScoreboardHandler struct {
	manager *display.Manager
}

func NewScoreboardHandler(manager *display.Manager) *ScoreboardHandler {
	return &ScoreboardHandler{manager: manager}
}

func (h *ScoreboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	tournamentID, date, err := scoreboardParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.manager.Snapshot(r.Context(), tournamentID, date)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"state": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// MediaEnded вызывается плеером табло, когда текущий видеоролик рекламной
// врезки доигран до конца. Сервер сам продвигает плейлист.
func (h *ScoreboardHandler) MediaEnded(w http.ResponseWriter, r *http.Request) {
	tournamentID, date, err := scoreboardParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.manager.VideoEnded(r.Context(), tournamentID, date); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func scoreboardParams(r *http.Request) (int, string, error) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return 0, "", err
	}

	date := chi.URLParam(r, "date")
	if _, err := display.ParseDisplayDate(date); err != nil {
		return 0, "", errors.New("date must be in YYYY-MM-DD format")
	}

	return tournamentID, date, nil
}
