package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/notify"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job names, shared by the HTTP routes and the CLI.
const (
	JobExpireBookings      = "expire-bookings"
	JobExpireWalletCredits = "expire-wallet-credits"
	JobBalanceReminders    = "balance-reminders"
	JobTripReminders       = "trip-reminders"
	JobSendBroadcasts      = "send-broadcasts"
	JobCleanSessions       = "clean-sessions"
)

var JobNames = []string{
	JobExpireBookings,
	JobExpireWalletCredits,
	JobBalanceReminders,
	JobTripReminders,
	JobSendBroadcasts,
	JobCleanSessions,
}

var ErrUnknownJob = errors.New("unknown job")

// Reminder windows, in calendar days relative to today.
const (
	balanceReminderLead = 5
	tripReminderLead    = 7
	tripEveLead         = 1
	reviewRequestLag    = 2
)

const (
	broadcastBatchSize   = 500
	broadcastConcurrency = 5
)

type JobService interface {
	Run(ctx context.Context, name string) (*response.JobSummary, error)
	ExpireBookings(ctx context.Context) (*response.JobSummary, error)
	ExpireWalletCredits(ctx context.Context) (*response.JobSummary, error)
	BalanceReminders(ctx context.Context) (*response.JobSummary, error)
	TripReminders(ctx context.Context) (*response.JobSummary, error)
	SendBroadcasts(ctx context.Context) (*response.JobSummary, error)
	CleanSessions(ctx context.Context) (*response.JobSummary, error)
}

type jobService struct {
	repo      *repository.Repository
	booking   BookingService
	wallet    WalletService
	messenger *messenger
	loc       *time.Location
	now       func() time.Time
	log       *zap.Logger
}

func NewJobService(
	repo *repository.Repository,
	booking BookingService,
	wallet WalletService,
	msg *messenger,
	loc *time.Location,
	now func() time.Time,
	log *zap.Logger,
) JobService {
	if loc == nil {
		loc = time.UTC
	}
	return &jobService{
		repo:      repo,
		booking:   booking,
		wallet:    wallet,
		messenger: msg,
		loc:       loc,
		now:       now,
		log:       log.With(zap.String("service", "job")),
	}
}

func (s *jobService) Run(ctx context.Context, name string) (*response.JobSummary, error) {
	switch name {
	case JobExpireBookings:
		return s.ExpireBookings(ctx)
	case JobExpireWalletCredits:
		return s.ExpireWalletCredits(ctx)
	case JobBalanceReminders:
		return s.BalanceReminders(ctx)
	case JobTripReminders:
		return s.TripReminders(ctx)
	case JobSendBroadcasts:
		return s.SendBroadcasts(ctx)
	case JobCleanSessions:
		return s.CleanSessions(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
}

// CleanSessions purges sessions that ended more than the retention period ago.
func (s *jobService) CleanSessions(ctx context.Context) (*response.JobSummary, error) {
	n, err := s.repo.Session.CleanExpiredSessions(ctx, s.now().Add(-entity.SessionRetention))
	if err != nil {
		s.log.Error("Session cleanup run failed", zap.Error(err))
		return nil, err
	}
	return &response.JobSummary{Job: JobCleanSessions, Processed: int(n)}, nil
}

func (s *jobService) ExpireBookings(ctx context.Context) (*response.JobSummary, error) {
	expired, err := s.booking.ExpireAbandoned(ctx)
	if err != nil {
		s.log.Error("Booking expiry run failed", zap.Error(err))
		return nil, err
	}
	summary := &response.JobSummary{Job: JobExpireBookings, Processed: len(expired)}
	for _, e := range expired {
		summary.CreditForfeited += e.WalletCreditApplied
	}
	return summary, nil
}

func (s *jobService) ExpireWalletCredits(ctx context.Context) (*response.JobSummary, error) {
	result, err := s.wallet.ExpireCredits(ctx)
	if err != nil {
		s.log.Error("Credit expiry run failed", zap.Error(err))
		return nil, err
	}
	return &response.JobSummary{Job: JobExpireWalletCredits, Processed: result.Credits}, nil
}

// BalanceReminders nudges travelers who still owe money five days before
// their batch departs.
func (s *jobService) BalanceReminders(ctx context.Context) (*response.JobSummary, error) {
	summary := &response.JobSummary{Job: JobBalanceReminders}
	today := s.today()

	candidates, err := s.repo.Booking.FindConfirmedStartingOn(ctx, today.AddDate(0, 0, balanceReminderLead))
	if err != nil {
		s.log.Error("Failed to load balance reminder candidates", zap.Error(err))
		return nil, fmt.Errorf("load balance reminders: %w", err)
	}

	s.remind(ctx, summary, candidates, entity.ReminderBalance5Days, func(c *entity.ReminderCandidate) string {
		return notify.BalanceReminder(c.User.Username, c.Booking.BookingCode, c.TripName, c.StartDate, c.Booking.BalanceDue())
	})

	s.logSummary(summary)
	return summary, nil
}

// TripReminders covers the week-before and day-before reminders and the
// review request sent two days after a batch ends.
func (s *jobService) TripReminders(ctx context.Context) (*response.JobSummary, error) {
	summary := &response.JobSummary{Job: JobTripReminders}
	today := s.today()

	for _, lead := range []struct {
		days int
		kind entity.ReminderType
	}{
		{tripReminderLead, entity.ReminderTrip7Days},
		{tripEveLead, entity.ReminderTrip1Day},
	} {
		candidates, err := s.repo.Booking.FindConfirmedStartingOn(ctx, today.AddDate(0, 0, lead.days))
		if err != nil {
			s.log.Error("Failed to load trip reminder candidates", zap.Error(err), zap.String("kind", string(lead.kind)))
			return nil, fmt.Errorf("load %s reminders: %w", lead.kind, err)
		}

		days := lead.days
		s.remind(ctx, summary, candidates, lead.kind, func(c *entity.ReminderCandidate) string {
			return notify.TripReminder(c.User.Username, c.Booking.BookingCode, c.TripName, c.StartDate, days)
		})
	}

	ended, err := s.repo.Booking.FindConfirmedEndedOn(ctx, today.AddDate(0, 0, -reviewRequestLag))
	if err != nil {
		s.log.Error("Failed to load review request candidates", zap.Error(err))
		return nil, fmt.Errorf("load review requests: %w", err)
	}
	s.remind(ctx, summary, ended, entity.ReminderReviewRequest, func(c *entity.ReminderCandidate) string {
		return notify.ReviewRequest(c.User.Username, c.TripName)
	})

	s.logSummary(summary)
	return summary, nil
}

// SendBroadcasts drains queued broadcast messages. Each message is sent
// independently; a rejected phone number only counts as an error.
func (s *jobService) SendBroadcasts(ctx context.Context) (*response.JobSummary, error) {
	queued, err := s.repo.MessageLog.FindQueued(ctx, entity.MessageTypeBroadcast, broadcastBatchSize)
	if err != nil {
		s.log.Error("Failed to load queued broadcasts", zap.Error(err))
		return nil, fmt.Errorf("load queued broadcasts: %w", err)
	}

	var sent, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(broadcastConcurrency)
	for _, msg := range queued {
		g.Go(func() error {
			if err := s.messenger.resend(ctx, msg); err != nil {
				failed.Add(1)
				return nil
			}
			sent.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	summary := &response.JobSummary{
		Job:       JobSendBroadcasts,
		Processed: len(queued),
		Sent:      int(sent.Load()),
		Errors:    int(failed.Load()),
	}
	s.logSummary(summary)
	return summary, nil
}

// ==================== HELPER METHODS ====================

// remind sends one reminder kind to every eligible candidate. The dedup
// marker is claimed before sending and released again if the send fails,
// so the next run retries instead of skipping.
func (s *jobService) remind(
	ctx context.Context,
	summary *response.JobSummary,
	candidates []*entity.ReminderCandidate,
	kind entity.ReminderType,
	render func(c *entity.ReminderCandidate) string,
) {
	for _, c := range candidates {
		summary.Processed++

		if !c.User.CanReceiveWhatsApp() {
			summary.Skipped++
			continue
		}
		due := c.Booking.BalanceDue()
		if kind.BalanceSpecific() && due <= 0 {
			summary.Skipped++
			continue
		}

		claimed, err := s.repo.Reminder.Claim(ctx, c.Booking.ID, kind, due)
		if err != nil {
			s.log.Warn("Failed to claim reminder",
				zap.Error(err),
				zap.String("booking_id", c.Booking.ID.String()),
				zap.String("kind", string(kind)),
			)
			summary.Errors++
			continue
		}
		if !claimed {
			summary.Skipped++
			continue
		}

		bookingID := c.Booking.ID
		if err := s.messenger.deliver(ctx, &c.User, &bookingID, string(kind), render(c)); err != nil {
			summary.Errors++
			if err := s.repo.Reminder.Release(ctx, bookingID, kind); err != nil {
				s.log.Warn("Failed to release reminder marker",
					zap.Error(err),
					zap.String("booking_id", bookingID.String()),
					zap.String("kind", string(kind)),
				)
			}
			continue
		}
		summary.Sent++
	}
}

func (s *jobService) today() time.Time {
	return truncateDay(s.now().In(s.loc))
}

func (s *jobService) logSummary(summary *response.JobSummary) {
	s.log.Info("Job finished",
		zap.String("job", summary.Job),
		zap.Int("processed", summary.Processed),
		zap.Int("sent", summary.Sent),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", summary.Errors),
	)
}
