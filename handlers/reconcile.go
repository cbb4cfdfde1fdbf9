package handlers

import (
	"net/http"

	"scenevault/services/reconcile"
)

// ReconcileHandler controls background availability checks.
type ReconcileHandler struct {
	Service *reconcile.Service
}

func NewReconcileHandler(service *reconcile.Service) *ReconcileHandler {
	return &ReconcileHandler{Service: service}
}

// Start kicks off a background check over the whole collection.
func (h *ReconcileHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Start(requestUser(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, h.Service.Status())
}

// Status reports progress of the running check and the last outcome.
func (h *ReconcileHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Service.Status())
}

// Cancel stops a running check between writes. Already-applied status
// updates stay.
func (h *ReconcileHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	cancelled := h.Service.Cancel()
	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": cancelled})
}

func (h *ReconcileHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
