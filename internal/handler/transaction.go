package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stakebook/internal/ledger"
	"stakebook/internal/models"
)

// TransactionHandler handles transaction read and reversal endpoints.
type TransactionHandler struct {
	service *ledger.Service
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(service *ledger.Service) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// Get returns a transaction by ID.
// GET /api/v1/transactions/{id}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.service.GetTransaction(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, t)
}

// GetByReference returns a transaction by its idempotency reference.
// GET /api/v1/transactions/reference/{reference}
func (h *TransactionHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		BadRequest(w, "reference is required")
		return
	}

	t, err := h.service.GetTransactionByReference(r.Context(), reference)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, t)
}

// ListByWallet returns a wallet's transactions with optional filters.
// GET /api/v1/wallets/{id}/transactions?type=&status=&from=&to=&limit=&offset=
func (h *TransactionHandler) ListByWallet(w http.ResponseWriter, r *http.Request) {
	walletID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		BadRequest(w, err.Error())
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), walletID, filter)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, transactions)
}

// ReverseRequest carries the reason for a reversal.
type ReverseRequest struct {
	Reason string `json:"reason"`
}

// Reverse undoes a completed, reversible transaction.
// POST /api/v1/transactions/{id}/reverse
func (h *TransactionHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	result, err := h.service.Reverse(r.Context(), id, req.Reason)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

func parseFilter(r *http.Request) (models.TransactionFilter, error) {
	var filter models.TransactionFilter
	q := r.URL.Query()

	if v := q.Get("type"); v != "" {
		txType := models.TransactionType(v)
		filter.Type = &txType
	}
	if v := q.Get("status"); v != "" {
		status := models.TransactionStatus(v)
		filter.Status = &status
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.CreatedAfter = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, err
		}
		filter.CreatedBefore = &t
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Limit = limit
	}
	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return filter, err
		}
		filter.Offset = offset
	}

	return filter, nil
}
