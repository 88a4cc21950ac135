package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/padel-americano/models"
	"github.com/Dosada05/padel-americano/services"
)

type ShareHandler struct {
	shareService services.ShareService
}

func NewShareHandler(shareService services.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// ShareTournament обрабатывает POST /share. Тело запроса — полный снапшот
// турнира; ответ следует контракту {success, shareId} / {success, error}.
func (h *ShareHandler) ShareTournament(w http.ResponseWriter, r *http.Request) {
	var snapshot models.Tournament
	if err := readJSON(w, r, &snapshot); err != nil {
		writeJSON(w, http.StatusBadRequest, jsonResponse{
			"success": false,
			"error":   err.Error(),
		}, nil)
		return
	}

	shareID, err := h.shareService.Share(r.Context(), &snapshot)
	if err != nil {
		var validationErr *services.SnapshotValidationError
		if errors.As(err, &validationErr) {
			writeJSON(w, http.StatusBadRequest, jsonResponse{
				"success": false,
				"error":   "tournament snapshot failed validation",
				"details": validationErr.Details,
			}, nil)
			return
		}
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrShareIDConflict) {
			status = http.StatusConflict
		}
		writeJSON(w, status, jsonResponse{
			"success": false,
			"error":   err.Error(),
		}, nil)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success": true,
		"shareId": shareID,
	}, nil)
}

// ShareStoredTournament обрабатывает POST /tournaments/{tournamentID}/share:
// публикует локально сохраненный турнир и записывает shareId обратно.
func (h *ShareHandler) ShareStoredTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID := chi.URLParam(r, "tournamentID")

	shareID, tournament, err := h.shareService.ShareByID(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{
		"success":    true,
		"shareId":    shareID,
		"tournament": tournament,
	}, nil)
}

// GetSharedTournament обрабатывает GET /share/{shareID}.
func (h *ShareHandler) GetSharedTournament(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareID")
	if !services.ValidShareID(shareID) {
		badRequestResponse(w, r, errors.New("share id must be 9 characters from [A-Za-z0-9_-]"))
		return
	}

	tournament, err := h.shareService.GetShared(r.Context(), shareID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil)
}
