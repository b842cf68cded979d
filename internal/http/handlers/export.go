package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Exporter renders an owner's ledger as a workbook.
type Exporter interface {
	WorkbookFor(ctx context.Context, ownerID string) ([]byte, error)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler serves the XLSX download.
type ExportHandler struct {
	exporter Exporter
	guard    Middleware
	log      *zap.SugaredLogger
}

func NewExportHandler(exporter Exporter, guard Middleware, log *zap.SugaredLogger) *ExportHandler {
	return &ExportHandler{exporter: exporter, guard: guard, log: orNop(log)}
}

func (h *ExportHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/export.xlsx", h.guard(http.HandlerFunc(h.handle)))
}

func (h *ExportHandler) handle(w http.ResponseWriter, r *http.Request) {
	owner := ownerOf(r)
	body, err := h.exporter.WorkbookFor(r.Context(), owner)
	if err != nil {
		writeError(w, h.log, err, "user_id", owner)
		return
	}
	name := fmt.Sprintf("fincontrol-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
