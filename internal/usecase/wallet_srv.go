package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/request"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type WalletService interface {
	// Customer
	GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error)
	GetTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.WalletTransactionResponse], error)
	GenerateReferralCode(ctx context.Context, userID string) (*response.ReferralCodeResponse, error)

	// Ledger procedures
	CreditReferral(ctx context.Context, referrerCode string, referredUserID, bookingID uuid.UUID) (bool, error)
	ApplyWalletCredit(ctx context.Context, userID, bookingID uuid.UUID, amount int64) (bool, error)
	ExpireCredits(ctx context.Context) (*ExpiryResult, error)

	// Staff
	AdminCredit(ctx context.Context, userID string, req *request.WalletAdjustRequest) (*response.WalletResponse, error)
	AdminDebit(ctx context.Context, userID string, req *request.WalletAdjustRequest) (*response.WalletResponse, error)
	SetFrozen(ctx context.Context, userID string, frozen bool) (*response.WalletResponse, error)
}

// ExpiryResult counts what one credit-expiry run removed.
type ExpiryResult struct {
	Credits int   `json:"credits_expired"`
	Wallets int   `json:"wallets_touched"`
	Amount  int64 `json:"amount_expired"`
}

type walletService struct {
	repo   *repository.Repository
	ledger *ledger
	cfg    utils.WalletConfig
	now    func() time.Time
	log    *zap.Logger
}

const referralCodeAttempts = 5

func NewWalletService(repo *repository.Repository, cfg utils.WalletConfig, now func() time.Time, log *zap.Logger) WalletService {
	log = log.With(zap.String("service", "wallet"))
	return &walletService{
		repo:   repo,
		ledger: &ledger{cfg: cfg, now: now, log: log},
		cfg:    cfg,
		now:    now,
		log:    log,
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID string) (*response.WalletResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	wallet, err := s.repo.Wallet.FindByUserID(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to get wallet", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("get wallet: %w", err)
	}
	if wallet == nil {
		resp := response.EmptyWallet(userID)
		return &resp, nil
	}

	resp := response.WalletToResponse(wallet)
	return &resp, nil
}

func (s *walletService) GetTransactions(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.WalletTransactionResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	txns, err := s.repo.WalletTxn.FindByUserID(ctx, userUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get wallet transactions", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("get wallet transactions: %w", err)
	}
	total, err := s.repo.WalletTxn.CountByUserID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("count wallet transactions: %w", err)
	}

	items := make([]response.WalletTransactionResponse, 0, len(txns))
	for _, t := range txns {
		items = append(items, response.WalletTransactionToResponse(t))
	}
	return response.NewPaginatedResponse(items, req.CurrentPage(), req.Limit(), total), nil
}

// GenerateReferralCode returns the user's existing code or mints one.
func (s *walletService) GenerateReferralCode(ctx context.Context, userID string) (*response.ReferralCodeResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	code, err := s.ensureReferralCode(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	count, earned, err := s.repo.Referral.EarningStats(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("get referral stats: %w", err)
	}

	return &response.ReferralCodeResponse{
		Code:              code.Code,
		ReferralCount:     count,
		TotalEarned:       earned,
		RewardPerReferral: s.cfg.ReferralReward,
	}, nil
}

func (s *walletService) ensureReferralCode(ctx context.Context, userID uuid.UUID) (*entity.ReferralCode, error) {
	existing, err := s.repo.Referral.FindCodeByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find referral code: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		code := &entity.ReferralCode{
			UserID:    userID,
			Code:      utils.GenerateReferralCode(user.Username),
			IsActive:  true,
			CreatedAt: s.now(),
		}
		created, err := s.repo.Referral.CreateCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("create referral code: %w", err)
		}
		if created {
			s.log.Info("Referral code issued", zap.String("user_id", userID.String()), zap.String("code", code.Code))
			return code, nil
		}

		// either a concurrent request issued one for this user or the code collided
		existing, err := s.repo.Referral.FindCodeByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("find referral code: %w", err)
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("could not mint a unique referral code after %d attempts", referralCodeAttempts)
}

func (s *walletService) CreditReferral(ctx context.Context, referrerCode string, referredUserID, bookingID uuid.UUID) (bool, error) {
	var credited bool
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booking, err := tx.Booking.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return nil
		}
		credited, err = s.ledger.creditReferral(ctx, tx, referrerCode, referredUserID, booking)
		return err
	})
	if err != nil {
		s.log.Error("Failed to credit referral", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return false, fmt.Errorf("credit referral: %w", err)
	}
	return credited, nil
}

// ApplyWalletCredit fails closed: any unmet precondition returns false and
// leaves both the wallet and the booking untouched.
func (s *walletService) ApplyWalletCredit(ctx context.Context, userID, bookingID uuid.UUID, amount int64) (bool, error) {
	err := s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		booking, err := tx.Booking.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if booking == nil {
			return ErrBookingNotFound
		}
		if booking.UserID != userID {
			return ErrForbidden
		}
		if booking.BookingStatus != entity.BookingStatusInitiated && booking.BookingStatus != entity.BookingStatusPending {
			return ErrInvalidTransition
		}
		return s.ledger.applyToBooking(ctx, tx, booking, amount)
	})
	switch {
	case err == nil:
		return true, nil
	case ledgerPrecondition(err), errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidTransition):
		s.log.Info("Wallet credit not applied",
			zap.String("user_id", userID.String()),
			zap.String("booking_id", bookingID.String()),
			zap.Int64("amount", amount),
			zap.String("reason", err.Error()),
		)
		return false, nil
	default:
		return false, err
	}
}

// ExpireCredits removes the unspent part of every credit lot whose validity
// has passed, in one transaction. Frozen wallets are left alone.
func (s *walletService) ExpireCredits(ctx context.Context) (*ExpiryResult, error) {
	now := s.now()
	userIDs, err := s.repo.WalletTxn.FindUsersWithExpiredCredits(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("find expired credits: %w", err)
	}

	result := &ExpiryResult{}
	if len(userIDs) == 0 {
		return result, nil
	}

	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		// wallet rows are locked before their lots, same order as debits
		for _, userID := range userIDs {
			wallet, err := tx.Wallet.FindByUserIDForUpdate(ctx, userID)
			if err != nil {
				return err
			}
			if wallet == nil || wallet.IsFrozen {
				continue
			}

			expired, amount, err := s.expireWalletLots(ctx, tx, wallet, now)
			if err != nil {
				return err
			}
			if expired > 0 {
				result.Credits += expired
				result.Wallets++
				result.Amount += amount
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to expire wallet credits", zap.Error(err))
		return nil, fmt.Errorf("expire wallet credits: %w", err)
	}

	s.log.Info("Wallet credits expired",
		zap.Int("credits", result.Credits),
		zap.Int("wallets", result.Wallets),
		zap.Int64("amount", result.Amount),
	)
	return result, nil
}

func (s *walletService) expireWalletLots(ctx context.Context, tx *repository.Repository, wallet *entity.Wallet, now time.Time) (int, int64, error) {
	lots, err := tx.WalletTxn.FindOpenCreditsForUpdate(ctx, wallet.ID)
	if err != nil {
		return 0, 0, err
	}

	var (
		count int
		total int64
	)
	for _, lot := range lots {
		if lot.ExpiresAt == nil || lot.ExpiresAt.After(now) {
			continue
		}
		amount := min(lot.Remaining, wallet.Balance)
		if err := tx.WalletTxn.MarkExpired(ctx, lot.ID, now); err != nil {
			return 0, 0, err
		}
		count++
		if amount <= 0 {
			continue
		}

		wallet.Balance -= amount
		wallet.TotalSpent += amount
		wallet.UpdatedAt = now
		total += amount

		err := tx.WalletTxn.Create(ctx, &entity.WalletTransaction{
			BaseSimple:  entity.BaseSimple{ID: uuid.New(), CreatedAt: now},
			WalletID:    wallet.ID,
			UserID:      wallet.UserID,
			Amount:      -amount,
			Type:        entity.TxnCreditExpired,
			Description: fmt.Sprintf("Unused %s credit from %s expired", lot.Type, lot.CreatedAt.Format(time.DateOnly)),
			BookingID:   lot.BookingID,
		})
		if err != nil {
			return 0, 0, err
		}
	}

	if total > 0 {
		if !wallet.Consistent() {
			return 0, 0, fmt.Errorf("wallet %s would become inconsistent", wallet.ID)
		}
		if err := tx.Wallet.UpdateTotals(ctx, wallet); err != nil {
			return 0, 0, err
		}
	}
	return count, total, nil
}

func (s *walletService) AdminCredit(ctx context.Context, userID string, req *request.WalletAdjustRequest) (*response.WalletResponse, error) {
	return s.adjust(ctx, userID, req, entity.TxnAdminCredit)
}

func (s *walletService) AdminDebit(ctx context.Context, userID string, req *request.WalletAdjustRequest) (*response.WalletResponse, error) {
	return s.adjust(ctx, userID, req, entity.TxnAdminDebit)
}

func (s *walletService) adjust(ctx context.Context, userID string, req *request.WalletAdjustRequest, typ entity.WalletTransactionType) (*response.WalletResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Wallet adjustment validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var wallet *entity.Wallet
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		wallet, err = tx.Wallet.GetOrCreateForUpdate(ctx, userUUID)
		if err != nil {
			return err
		}
		if typ.IsCredit() {
			_, err = s.ledger.credit(ctx, tx, wallet, req.Amount, typ, req.Description, nil)
		} else {
			_, err = s.ledger.debit(ctx, tx, wallet, req.Amount, typ, req.Description, nil)
		}
		return err
	})
	if err != nil {
		if ledgerPrecondition(err) {
			return nil, err
		}
		s.log.Error("Failed to adjust wallet", zap.Error(err), zap.String("user_id", userID), zap.String("type", string(typ)))
		return nil, fmt.Errorf("adjust wallet: %w", err)
	}

	resp := response.WalletToResponse(wallet)
	return &resp, nil
}

func (s *walletService) SetFrozen(ctx context.Context, userID string, frozen bool) (*response.WalletResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	user, err := s.repo.User.FindByID(ctx, userUUID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	var wallet *entity.Wallet
	err = s.repo.WithTx(ctx, func(tx *repository.Repository) error {
		wallet, err = tx.Wallet.GetOrCreateForUpdate(ctx, userUUID)
		if err != nil {
			return err
		}
		if err := tx.Wallet.SetFrozen(ctx, userUUID, frozen); err != nil {
			return err
		}
		wallet.IsFrozen = frozen
		return nil
	})
	if err != nil {
		s.log.Error("Failed to set wallet frozen", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("set wallet frozen: %w", err)
	}

	s.log.Info("Wallet freeze toggled", zap.String("user_id", userID), zap.Bool("frozen", frozen))
	resp := response.WalletToResponse(wallet)
	return &resp, nil
}
