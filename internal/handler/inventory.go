package handler

import (
	"net/http"

	"github.com/murealm/platform/internal/domain"
	"github.com/murealm/platform/internal/service"
)

// InventoryHandler handles batched item persistence endpoints.
type InventoryHandler struct {
	inventory *service.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// Save handles POST /inventory/save — upsert a node's save batch.
func (h *InventoryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var batch service.SaveBatch
	if err := DecodeJSON(r, &batch); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.inventory.Save(r.Context(), batch); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Delete handles POST /inventory/delete — soft-delete discarded records.
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var batch service.DeleteBatch
	if err := DecodeJSON(r, &batch); err != nil {
		RespondError(w, domain.ErrValidation("invalid request body"))
		return
	}

	if err := h.inventory.Delete(r.Context(), batch); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
