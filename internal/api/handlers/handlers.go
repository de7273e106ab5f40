package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finease/finease-server/internal/api/middleware"
	"github.com/finease/finease-server/internal/auth"
	"github.com/finease/finease-server/internal/domain"
	"github.com/finease/finease-server/internal/finance"
	"github.com/finease/finease-server/internal/store"
	"github.com/rs/zerolog"
)

// TransactionsHandler handles the /finance-all endpoints.
type TransactionsHandler struct {
	service *finance.Service
	log     zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(service *finance.Service, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		service: service,
		log:     log,
	}
}

// List handles GET /finance-all. Sorting is driven by the sortBy and order
// query parameters; the filter is always the caller's own email. A
// client-supplied email parameter is ignored.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}

	query := r.URL.Query()
	opts := store.ListOptions{
		SortBy: store.SortField(query.Get("sortBy")),
		Order:  store.SortOrder(query.Get("order")),
	}

	transactions, err := h.service.List(r.Context(), principal.Email, opts)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list transactions")
		return
	}

	// Return a bare array for frontend compatibility.
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// Create handles POST /finance-all. Owner and createdAt are stamped
// server-side; the decoder drops them from the payload if present.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}

	var input domain.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDecodeError(w, err)
		return
	}

	id, err := h.service.Create(r.Context(), principal.Email, &input)
	if err != nil {
		h.writeServiceError(w, err, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"insertedId": id,
	})
}

// Get handles GET /finance-all/{id}. The response carries the record plus
// the sum of amount over the caller's records with the same category and
// type.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}

	detail, err := h.service.Get(r.Context(), principal.Email, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"result":      detail.Transaction,
		"totalAmount": detail.TotalAmount,
	})
}

// Update handles PUT /finance-all/{id} as a partial update.
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}

	var input domain.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDecodeError(w, err)
		return
	}

	modified, err := h.service.Update(r.Context(), principal.Email, id, &input)
	if err != nil {
		h.writeServiceError(w, err, "Failed to update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"modifiedCount": modified,
	})
}

// Delete handles DELETE /finance-all/{id}. Deleting an identifier that no
// longer exists succeeds with a zero count.
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}

	deleted, err := h.service.Delete(r.Context(), principal.Email, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"deletedCount": deleted,
	})
}

// Overview handles GET /overview: the caller's income/expense/balance
// summary.
func (h *TransactionsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Unauthorized access")
		return
	}

	overview, err := h.service.Summarize(r.Context(), principal.Email)
	if err != nil {
		h.writeServiceError(w, err, "Failed to compute overview")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"totalBalance": overview.TotalBalance,
		"totalIncome":  overview.TotalIncome,
		"totalExpense": overview.TotalExpense,
	})
}

// writeDecodeError answers 400 for any body that failed to decode, keeping
// the coercion message when there is one.
func writeDecodeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		middleware.WriteError(w, http.StatusBadRequest, ve.Message)
		return
	}
	middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
}

// writeServiceError maps service errors to status codes. Store failures
// surface their message to the caller.
func (h *TransactionsHandler) writeServiceError(w http.ResponseWriter, err error, logMsg string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		middleware.WriteError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, domain.ErrForbidden):
		middleware.WriteError(w, http.StatusForbidden, "Forbidden")
	default:
		h.log.Error().Err(err).Msg(logMsg)
		middleware.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}
