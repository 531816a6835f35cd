package handler

import (
	"github.com/go-chi/chi/v5"

	"stakebook/internal/ledger"
)

// Routes builds the API v1 route tree over one ledger service.
func Routes(service *ledger.Service) chi.Router {
	walletHandler := NewWalletHandler(service)
	ledgerHandler := NewLedgerHandler(service)
	transactionHandler := NewTransactionHandler(service)

	r := chi.NewRouter()

	r.Route("/wallets", func(r chi.Router) {
		r.Post("/", walletHandler.Create)
		r.Get("/{id}", walletHandler.Get)
		r.Get("/{id}/balance", walletHandler.GetBalance)
		r.Get("/{id}/totals", walletHandler.GetTotals)
		r.Get("/{id}/transactions", transactionHandler.ListByWallet)

		r.Post("/{id}/credit", ledgerHandler.Credit)
		r.Post("/{id}/debit", ledgerHandler.Debit)
		r.Post("/{id}/lock", ledgerHandler.Lock)
		r.Post("/{id}/unlock", ledgerHandler.Unlock)
	})

	r.Get("/owners/{id}/wallets", walletHandler.ListByOwner)
	r.Get("/owners/{id}/wallets/{type}", walletHandler.GetByOwnerAndType)
	r.Post("/owners/{id}/wallets/{type}/credit", ledgerHandler.CreditByOwner)
	r.Post("/owners/{id}/wallets/{type}/debit", ledgerHandler.DebitByOwner)

	r.Post("/transfers", ledgerHandler.Transfer)

	r.Route("/transactions", func(r chi.Router) {
		r.Get("/{id}", transactionHandler.Get)
		r.Get("/reference/{reference}", transactionHandler.GetByReference)
		r.Post("/{id}/reverse", transactionHandler.Reverse)
	})

	return r
}
