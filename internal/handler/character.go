package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/service"
)

// CharacterHandler handles character lifecycle and view endpoints.
type CharacterHandler struct {
	characters *service.CharacterService
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(characters *service.CharacterService) *CharacterHandler {
	return &CharacterHandler{characters: characters}
}

// List handles GET /accounts/{accountID}/characters — the lobby view.
func (h *CharacterHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}

	result, err := h.characters.List(r.Context(), accountID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}

type createCharacterRequest struct {
	Name      string `json:"name"`
	ClassType int32  `json:"class_type"`
}

// Create handles POST /accounts/{accountID}/characters.
func (h *CharacterHandler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}

	var req createCharacterRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	result, err := h.characters.Create(r.Context(), accountID, req.Name, req.ClassType)
	if err != nil {
		RespondError(w, err)
		return
	}

	status := http.StatusCreated
	if result.Code != service.CreateCharacterSuccess {
		status = http.StatusOK
	}
	RespondJSON(w, status, result)
}

// Delete handles DELETE /accounts/{accountID}/characters/{characterID}.
// Deleting an absent character still returns 200.
func (h *CharacterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}
	characterID, err := uuid.Parse(chi.URLParam(r, "characterID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid character id"))
		return
	}

	if err := h.characters.Delete(r.Context(), accountID, characterID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Get handles GET /accounts/{accountID}/characters/{characterID} — the full
// state a node loads on world entry.
func (h *CharacterHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}
	characterID, err := uuid.Parse(chi.URLParam(r, "characterID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid character id"))
		return
	}

	view, err := h.characters.Get(r.Context(), accountID, characterID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, view)
}

// Save handles PUT /accounts/{accountID}/characters/{characterID}.
func (h *CharacterHandler) Save(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid account id"))
		return
	}
	characterID, err := uuid.Parse(chi.URLParam(r, "characterID"))
	if err != nil {
		RespondError(w, domain.ErrValidation("invalid character id"))
		return
	}

	var input service.SaveInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}
	input.CharacterID = characterID

	if err := h.characters.Save(r.Context(), accountID, input); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
