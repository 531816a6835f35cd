package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stakebook/internal/ledger"
	"stakebook/internal/models"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	service *ledger.Service
}

// NewWalletHandler creates a new wallet handler.
func NewWalletHandler(service *ledger.Service) *WalletHandler {
	return &WalletHandler{service: service}
}

// CreateWalletRequest represents a wallet creation request.
type CreateWalletRequest struct {
	OwnerID    uuid.UUID         `json:"owner_id"`
	WalletType models.WalletType `json:"wallet_type"`
	Currency   string            `json:"currency"`
}

// Create creates a new wallet.
// POST /api/v1/wallets
func (h *WalletHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	if req.OwnerID == uuid.Nil {
		BadRequest(w, "owner_id is required")
		return
	}
	if !req.WalletType.Valid() {
		BadRequest(w, "invalid wallet_type")
		return
	}

	wallet, err := h.service.CreateWallet(r.Context(), models.NewWalletParams{
		OwnerID:    req.OwnerID,
		WalletType: req.WalletType,
		Currency:   req.Currency,
	})
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusCreated, wallet)
}

// Get returns a wallet by ID.
// GET /api/v1/wallets/{id}
func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, wallet)
}

// ListByOwner returns all wallets for an owner.
// GET /api/v1/owners/{id}/wallets
func (h *WalletHandler) ListByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	wallets, err := h.service.GetWalletsByOwner(r.Context(), ownerID)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, wallets)
}

// GetByOwnerAndType returns the owner's wallet for one purpose.
// GET /api/v1/owners/{id}/wallets/{type}
func (h *WalletHandler) GetByOwnerAndType(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	walletType := models.WalletType(chi.URLParam(r, "type"))
	if !walletType.Valid() {
		BadRequest(w, "invalid wallet type")
		return
	}

	wallet, err := h.service.GetWalletByOwnerAndType(r.Context(), ownerID, walletType)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, wallet)
}

// WalletBalanceResponse represents a wallet's balance state.
type WalletBalanceResponse struct {
	WalletID  uuid.UUID `json:"wallet_id"`
	Currency  string    `json:"currency"`
	Balance   string    `json:"balance"`
	Locked    string    `json:"locked"`
	Available string    `json:"available"`
	IsActive  bool      `json:"is_active"`
}

// GetBalance returns the wallet's balance breakdown.
// GET /api/v1/wallets/{id}/balance
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	resp := WalletBalanceResponse{
		WalletID:  wallet.ID,
		Currency:  wallet.Currency,
		Balance:   wallet.Balance.Amount.String(),
		Locked:    wallet.LockedBalance.Amount.String(),
		Available: wallet.AvailableBalance().Amount.String(),
		IsActive:  wallet.IsActive,
	}

	JSON(w, http.StatusOK, resp)
}

// GetTotals returns aggregate ledger activity for a wallet.
// GET /api/v1/wallets/{id}/totals
func (h *WalletHandler) GetTotals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	totals, err := h.service.WalletTotals(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}

	JSON(w, http.StatusOK, totals)
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		BadRequest(w, "invalid "+param)
		return uuid.Nil, false
	}
	return id, true
}
