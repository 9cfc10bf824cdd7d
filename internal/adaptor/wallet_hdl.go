package adaptor

import (
	"net/http"

	"travel-booking/internal/dto/request"
	"travel-booking/internal/usecase"
	"travel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type WalletHandler struct {
	service usecase.WalletService
	log     *zap.Logger
}

func NewWalletHandler(service usecase.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		log:     log.With(zap.String("handler", "wallet")),
	}
}

// GetWallet handles GET /api/wallet
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "get wallet")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// GetTransactions handles GET /api/wallet/transactions
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	txns, err := h.service.GetTransactions(r.Context(), userID.String(), paginationFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get wallet transactions")
		return
	}

	utils.ResponseSuccess(w, "success", txns)
}

// GenerateReferralCode handles POST /api/wallet/referral-code
func (h *WalletHandler) GenerateReferralCode(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	code, err := h.service.GenerateReferralCode(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "generate referral code")
		return
	}

	utils.ResponseSuccess(w, "success", code)
}

// ==================== STAFF ====================

// AdminCredit handles POST /api/admin/wallets/{userId}/credit
func (h *WalletHandler) AdminCredit(w http.ResponseWriter, r *http.Request) {
	var req request.WalletAdjustRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wallet, err := h.service.AdminCredit(r.Context(), chi.URLParam(r, "userId"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "admin credit")
		return
	}

	utils.ResponseSuccess(w, "Wallet credited", wallet)
}

// AdminDebit handles POST /api/admin/wallets/{userId}/debit
func (h *WalletHandler) AdminDebit(w http.ResponseWriter, r *http.Request) {
	var req request.WalletAdjustRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wallet, err := h.service.AdminDebit(r.Context(), chi.URLParam(r, "userId"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "admin debit")
		return
	}

	utils.ResponseSuccess(w, "Wallet debited", wallet)
}

// SetFrozen handles PUT /api/admin/wallets/{userId}/freeze
func (h *WalletHandler) SetFrozen(w http.ResponseWriter, r *http.Request) {
	var req request.WalletFreezeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	wallet, err := h.service.SetFrozen(r.Context(), chi.URLParam(r, "userId"), *req.Frozen)
	if err != nil {
		handleServiceError(w, h.log, err, "set wallet frozen")
		return
	}

	utils.ResponseSuccess(w, "Wallet updated", wallet)
}
