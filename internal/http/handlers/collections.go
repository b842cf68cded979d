package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hongminglow/fincontrol-be/internal/http/respond"
	"github.com/hongminglow/fincontrol-be/internal/middleware"
	"github.com/hongminglow/fincontrol-be/internal/models"
	"github.com/hongminglow/fincontrol-be/internal/storage"
)

// Middleware wraps a handler, typically with an auth check.
type Middleware func(http.Handler) http.Handler

// LedgerHandler serves the five owner-scoped collections.
type LedgerHandler struct {
	ledger storage.Ledger
	guard  Middleware
	log    *zap.SugaredLogger
}

// NewLedgerHandler constructs the handler. guard must place a principal in
// the request context.
func NewLedgerHandler(ledger storage.Ledger, guard Middleware, log *zap.SugaredLogger) *LedgerHandler {
	return &LedgerHandler{ledger: ledger, guard: guard, log: orNop(log)}
}

// Register attaches GET/PUT /api/{collection} and DELETE /api/{collection}/{id}.
func (h *LedgerHandler) Register(mux *http.ServeMux) {
	(&collection[models.Expense]{
		name: "expenses", coll: h.ledger.Expenses(), log: h.log,
		prepare: func(e models.Expense) models.Expense {
			e.ID = idOrNew(e.ID)
			if e.Type == "" {
				e.Type = models.DefaultExpenseType(e.Category)
			}
			return e
		},
	}).register(mux, h.guard)
	(&collection[models.Earning]{
		name: "earnings", coll: h.ledger.Earnings(), log: h.log,
		prepare: func(e models.Earning) models.Earning { e.ID = idOrNew(e.ID); return e },
	}).register(mux, h.guard)
	(&collection[models.OdometerEntry]{
		name: "odometer", coll: h.ledger.Odometer(), log: h.log,
		prepare: func(o models.OdometerEntry) models.OdometerEntry { o.ID = idOrNew(o.ID); return o },
	}).register(mux, h.guard)
	(&collection[models.CreditEntry]{
		name: "credits", coll: h.ledger.Credits(), log: h.log,
		prepare: func(c models.CreditEntry) models.CreditEntry { c.ID = idOrNew(c.ID); return c.Normalize() },
	}).register(mux, h.guard)
	(&collection[models.RecurringExpense]{
		name: "recurring", coll: h.ledger.Recurring(), log: h.log,
		prepare: func(r models.RecurringExpense) models.RecurringExpense { r.ID = idOrNew(r.ID); return r },
	}).register(mux, h.guard)
}

type collection[T models.Record] struct {
	name    string
	coll    storage.Collection[T]
	prepare func(T) T
	log     *zap.SugaredLogger
}

func (c *collection[T]) register(mux *http.ServeMux, guard Middleware) {
	path := "/api/" + c.name
	mux.Handle("GET "+path, guard(http.HandlerFunc(c.list)))
	mux.Handle("PUT "+path, guard(http.HandlerFunc(c.put)))
	mux.Handle("DELETE "+path+"/{id}", guard(http.HandlerFunc(c.delete)))
}

func (c *collection[T]) list(w http.ResponseWriter, r *http.Request) {
	owner := ownerOf(r)
	items, err := c.coll.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, c.log, err, "collection", c.name, "user_id", owner)
		return
	}
	if items == nil {
		items = []T{}
	}
	respond.JSON(w, http.StatusOK, "ok", items)
}

func (c *collection[T]) put(w http.ResponseWriter, r *http.Request) {
	var item T
	if err := respond.Decode(r, &item); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	item = c.prepare(item)
	if err := item.Validate(); err != nil {
		writeError(w, c.log, err)
		return
	}
	owner := ownerOf(r)
	saved, err := c.coll.Upsert(r.Context(), owner, item)
	if err != nil {
		writeError(w, c.log, err, "collection", c.name, "user_id", owner, "id", item.RecordID())
		return
	}
	respond.JSON(w, http.StatusOK, "saved", saved)
}

func (c *collection[T]) delete(w http.ResponseWriter, r *http.Request) {
	owner := ownerOf(r)
	id := r.PathValue("id")
	if err := c.coll.Delete(r.Context(), owner, id); err != nil {
		writeError(w, c.log, err, "collection", c.name, "user_id", owner, "id", id)
		return
	}
	respond.JSON(w, http.StatusOK, "deleted", nil)
}

func ownerOf(r *http.Request) string {
	p, _ := middleware.PrincipalFromContext(r.Context())
	return p.UserID
}

func idOrNew(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}
