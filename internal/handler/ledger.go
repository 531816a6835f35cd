package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stakebook/internal/ledger"
	"stakebook/internal/models"
)

// LedgerHandler handles balance-mutating endpoints.
type LedgerHandler struct {
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// EntryRequest represents a credit or debit request against one wallet.
type EntryRequest struct {
	Amount               string                 `json:"amount"`
	Currency             string                 `json:"currency"`
	Type                 models.TransactionType `json:"type"`
	Reference            string                 `json:"reference,omitempty"`
	Description          string                 `json:"description,omitempty"`
	Metadata             map[string]any         `json:"metadata,omitempty"`
	RelatedTransactionID *uuid.UUID             `json:"related_transaction_id,omitempty"`
	OrderID              *uuid.UUID             `json:"order_id,omitempty"`
}

func (req *EntryRequest) toParams(walletID uuid.UUID) (ledger.EntryParams, error) {
	amount, err := models.NewMoneyFromString(req.Amount, req.Currency)
	if err != nil {
		return ledger.EntryParams{}, err
	}
	return ledger.EntryParams{
		WalletID:             walletID,
		Amount:               amount,
		Type:                 req.Type,
		Reference:            req.Reference,
		Description:          req.Description,
		Metadata:             req.Metadata,
		RelatedTransactionID: req.RelatedTransactionID,
		OrderID:              req.OrderID,
	}, nil
}

// Credit adds funds to a wallet.
// POST /api/v1/wallets/{id}/credit
func (h *LedgerHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.applyEntry(w, r, h.service.Credit)
}

// Debit removes funds from a wallet.
// POST /api/v1/wallets/{id}/debit
func (h *LedgerHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.applyEntry(w, r, h.service.Debit)
}

func (h *LedgerHandler) applyEntry(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, params ledger.EntryParams) (*ledger.Result, error)) {
	walletID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		BadRequest(w, "invalid transaction type")
		return
	}

	params, err := req.toParams(walletID)
	if err != nil {
		DomainError(w, err)
		return
	}

	result, err := op(r.Context(), params)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

// CreditByOwner adds funds to an owner's wallet of one purpose, without the
// caller knowing the wallet id.
// POST /api/v1/owners/{id}/wallets/{type}/credit
func (h *LedgerHandler) CreditByOwner(w http.ResponseWriter, r *http.Request) {
	h.applyOwnerEntry(w, r, h.service.Credit)
}

// DebitByOwner removes funds from an owner's wallet of one purpose.
// POST /api/v1/owners/{id}/wallets/{type}/debit
func (h *LedgerHandler) DebitByOwner(w http.ResponseWriter, r *http.Request) {
	h.applyOwnerEntry(w, r, h.service.Debit)
}

func (h *LedgerHandler) applyOwnerEntry(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, params ledger.EntryParams) (*ledger.Result, error)) {
	ownerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	walletType := models.WalletType(chi.URLParam(r, "type"))
	if !walletType.Valid() {
		BadRequest(w, "invalid wallet type")
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if !req.Type.Valid() {
		BadRequest(w, "invalid transaction type")
		return
	}

	params, err := req.toParams(uuid.Nil)
	if err != nil {
		DomainError(w, err)
		return
	}
	params.OwnerID = ownerID
	params.WalletType = walletType

	result, err := op(r.Context(), params)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

// HoldRequest represents a lock or unlock request.
type HoldRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference,omitempty"`
	Description string `json:"description,omitempty"`
}

// Lock moves available funds into the locked balance.
// POST /api/v1/wallets/{id}/lock
func (h *LedgerHandler) Lock(w http.ResponseWriter, r *http.Request) {
	h.applyHold(w, r, h.service.LockFunds)
}

// Unlock releases locked funds back to the available balance.
// POST /api/v1/wallets/{id}/unlock
func (h *LedgerHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	h.applyHold(w, r, h.service.UnlockFunds)
}

func (h *LedgerHandler) applyHold(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, walletID uuid.UUID, amount models.Money, reference, description string) (*ledger.Result, error)) {
	walletID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req HoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	amount, err := models.NewMoneyFromString(req.Amount, req.Currency)
	if err != nil {
		DomainError(w, err)
		return
	}

	result, err := op(r.Context(), walletID, amount, req.Reference, req.Description)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}

// TransferRequest represents a two-leg transfer between wallets.
type TransferRequest struct {
	FromWalletID uuid.UUID      `json:"from_wallet_id"`
	ToWalletID   uuid.UUID      `json:"to_wallet_id"`
	Amount       string         `json:"amount"`
	Currency     string         `json:"currency"`
	Reference    string         `json:"reference,omitempty"`
	Description  string         `json:"description,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	OrderID      *uuid.UUID     `json:"order_id,omitempty"`
}

// Transfer moves funds between two wallets, all-or-nothing.
// POST /api/v1/transfers
func (h *LedgerHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}
	if req.FromWalletID == uuid.Nil || req.ToWalletID == uuid.Nil {
		BadRequest(w, "from_wallet_id and to_wallet_id are required")
		return
	}

	amount, err := models.NewMoneyFromString(req.Amount, req.Currency)
	if err != nil {
		DomainError(w, err)
		return
	}

	result, err := h.service.Transfer(r.Context(), ledger.TransferParams{
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Amount:       amount,
		Reference:    req.Reference,
		Description:  req.Description,
		Metadata:     req.Metadata,
		OrderID:      req.OrderID,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, result)
}
