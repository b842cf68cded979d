package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/fincontrol-be/internal/http/respond"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/models/dto"
)

// Advisor turns an expense list into advice text.
type Advisor interface {
	Advise(ctx context.Context, expenses []models.Expense) string
}

// AdviceHandler proxies the advisory model so clients never hold its key.
type AdviceHandler struct {
	advisor Advisor
	guard   Middleware
}

func NewAdviceHandler(advisor Advisor, guard Middleware) *AdviceHandler {
	return &AdviceHandler{advisor: advisor, guard: guard}
}

func (h *AdviceHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /api/advice", h.guard(http.HandlerFunc(h.handle)))
}

func (h *AdviceHandler) handle(w http.ResponseWriter, r *http.Request) {
	var req dto.AdviceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	advice := h.advisor.Advise(r.Context(), req.Expenses)
	respond.JSON(w, http.StatusOK, "ok", dto.AdviceResponse{Advice: advice})
}
