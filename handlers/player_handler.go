package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/courtside/pickleball-league/services"
)

const maxRegistrationFormSize = 15 << 20 // 15MB на форму с фото и документом

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// Register принимает multipart-форму регистрации игрока: текстовые поля
// плюс опциональные файлы "photo" и "document".
func (h *PlayerHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRegistrationFormSize)
	if err := r.ParseMultipartForm(maxRegistrationFormSize); err != nil {
		badRequestResponse(w, r, errors.New("invalid multipart form"))
		return
	}

	input := services.RegisterPlayerInput{
		FullName: r.FormValue("full_name"),
		Email:    r.FormValue("email"),
	}
	if v := r.FormValue("phone"); v != "" {
		input.Phone = &v
	}
	if v := r.FormValue("skill_level"); v != "" {
		input.SkillLevel = &v
	}
	if v := r.FormValue("division"); v != "" {
		input.Division = &v
	}

	photo, photoFile, err := formUpload(r, "photo")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if photoFile != nil {
		defer photoFile.Close()
	}

	document, documentFile, err := formUpload(r, "document")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if documentFile != nil {
		defer documentFile.Close()
	}

	player, err := h.playerService.Register(r.Context(), input, photo, document)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.GetByID(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.playerService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"players": players}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.Delete(r.Context(), playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// formUpload достаёт опциональный файл из multipart-формы. Отсутствие файла
// не ошибка, файл без Content-Type — ошибка.
func formUpload(r *http.Request, field string) (*services.PlayerUpload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		file.Close()
		return nil, nil, errors.New("content type required for uploaded file " + field)
	}

	return &services.PlayerUpload{
		Reader:      file,
		ContentType: contentType,
		Filename:    header.Filename,
	}, file, nil
}
