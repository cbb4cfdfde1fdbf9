package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"scenevault/services/transfer"
)

const maxImportBytes = 32 << 20

type transferService interface {
	Export(userID string, format transfer.Format, ids []string) (transfer.Export, error)
	Import(userID string, data []byte, mode transfer.Mode) (transfer.ImportSummary, error)
}

var _ transferService = (*transfer.Service)(nil)

// TransferHandler serves collection export downloads and snapshot imports.
type TransferHandler struct {
	Service transferService
}

func NewTransferHandler(service transferService) *TransferHandler {
	return &TransferHandler{Service: service}
}

// Export streams the collection in the requested format. An optional ids
// query parameter (comma separated) narrows the export to a subset.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := transfer.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = transfer.FormatJSON
	}

	var ids []string
	if raw := strings.TrimSpace(r.URL.Query().Get("ids")); raw != "" {
		ids = strings.Split(raw, ",")
	}

	export, err := h.Service.Export(requestUser(r), format, ids)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.Write(export.Data)
}

// Import applies an exported snapshot. mode=merge adds alongside the current
// collection; mode=replace clears it first.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	mode := transfer.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = transfer.ModeMerge
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		http.Error(w, "read request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.Service.Import(requestUser(r), data, mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *TransferHandler) Options(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
