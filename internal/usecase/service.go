package usecase

import (
	"time"

	"travel-booking/internal/data/repository"
	"travel-booking/pkg/notify"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	User      UserService
	Trip      TripService
	Booking   BookingService
	Wallet    WalletService
	Review    ReviewService
	Broadcast BroadcastService
	Job       JobService
}

// NewService wires every usecase. now is the clock used for all business
// time; pass time.Now in production.
func NewService(repo *repository.Repository, config *utils.Config, sender notify.Sender, now func() time.Time, log *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	loc := config.App.Location()

	msg := &messenger{
		repo:   repo,
		sender: sender,
		now:    now,
		log:    log.With(zap.String("service", "messenger")),
	}

	booking := NewBookingService(repo, config, msg, now, log)
	wallet := NewWalletService(repo, config.Wallet, now, log)

	return &Service{
		Auth:      NewAuthService(repo, config, now, log),
		User:      NewUserService(repo.User, repo.Session, now, log),
		Trip:      NewTripService(repo, loc, now, log),
		Booking:   booking,
		Wallet:    wallet,
		Review:    NewReviewService(repo, loc, now, log),
		Broadcast: NewBroadcastService(repo, now, log),
		Job:       NewJobService(repo, booking, wallet, msg, loc, now, log),
	}
}
