package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtside/pickleball-league/models"
	"github.com/courtside/pickleball-league/services"
	"github.com/go-chi/chi/v5"
)

const maxMediaUploadSize = 100 << 20 // 100MB, рекламные ролики бывают тяжёлыми

type MediaHandler struct {
	mediaService services.MediaService
}

func NewMediaHandler(ms services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: ms}
}

// AddByURL регистрирует внешний URL как элемент рекламного плейлиста.
func (h *MediaHandler) AddByURL(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.AddMediaInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	item, err := h.mediaService.AddByURL(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"media_item": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Upload принимает multipart-форму с файлом "file" и полями
// type, title, rank.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxMediaUploadSize)
	if err := r.ParseMultipartForm(maxMediaUploadSize); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	rank := 0
	if rankStr := r.FormValue("rank"); rankStr != "" {
		rank, err = strconv.Atoi(rankStr)
		if err != nil {
			badRequestResponse(w, r, errors.New("rank must be an integer"))
			return
		}
	}

	upload := services.MediaUpload{
		Reader:      file,
		ContentType: contentType,
		Filename:    header.Filename,
		Title:       r.FormValue("title"),
		Rank:        rank,
		Type:        models.MediaType(r.FormValue("type")),
	}

	item, err := h.mediaService.Upload(r.Context(), tournamentID, upload)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"media_item": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	items, err := h.mediaService.List(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"media_items": items}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MediaHandler) UpdateRank(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "mediaID")
	if mediaID == "" {
		badRequestResponse(w, r, errors.New("missing mediaID in URL path"))
		return
	}

	var input struct {
		Rank int `json:"rank"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	item, err := h.mediaService.UpdateRank(r.Context(), mediaID, input.Rank)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"media_item": item}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	mediaID := chi.URLParam(r, "mediaID")
	if mediaID == "" {
		badRequestResponse(w, r, errors.New("missing mediaID in URL path"))
		return
	}

	if err := h.mediaService.Delete(r.Context(), mediaID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
