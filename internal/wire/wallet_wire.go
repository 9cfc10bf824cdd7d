package wire

import (
	"travel-booking/internal/adaptor"
	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireWallet(r chi.Router, walletHandler *adaptor.WalletHandler, repo *repository.Repository, log *zap.Logger) {
	r.Group(func(r chi.Router) {
		r.Use(authenticated(repo, log))

		r.Get("/api/wallet", walletHandler.GetWallet)
		r.Get("/api/wallet/transactions", walletHandler.GetTransactions)
		r.Post("/api/wallet/referral-code", walletHandler.GenerateReferralCode)

		// ==================== STAFF ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(entity.PermManageWallets, log))
			r.Post("/api/admin/wallets/{userId}/credit", walletHandler.AdminCredit)
			r.Post("/api/admin/wallets/{userId}/debit", walletHandler.AdminDebit)
			r.Put("/api/admin/wallets/{userId}/freeze", walletHandler.SetFrozen)
		})
	})
}
