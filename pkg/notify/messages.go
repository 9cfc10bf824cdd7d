package notify

import (
	"fmt"
	"time"
)

const dateLayout = "02 Jan 2006"

func rupees(amount int64) string {
	return fmt.Sprintf("Rs. %d", amount)
}

func BookingConfirmation(name, bookingCode, tripName string, start time.Time, travelers int, balanceDue int64) string {
	msg := fmt.Sprintf("Hi %s, your booking %s for %s departing %s is confirmed for %d traveler(s).",
		name, bookingCode, tripName, start.Format(dateLayout), travelers)
	if balanceDue > 0 {
		msg += fmt.Sprintf(" Balance due before departure: %s.", rupees(balanceDue))
	}
	return msg
}

func TripReminder(name, bookingCode, tripName string, start time.Time, daysLeft int) string {
	when := fmt.Sprintf("in %d days", daysLeft)
	if daysLeft == 1 {
		when = "tomorrow"
	}
	return fmt.Sprintf("Hi %s, your trip %s (booking %s) starts %s on %s. Pack your bags!",
		name, tripName, bookingCode, when, start.Format(dateLayout))
}

func BalanceReminder(name, bookingCode, tripName string, start time.Time, balanceDue int64) string {
	return fmt.Sprintf("Hi %s, a balance of %s is pending on booking %s for %s departing %s. Please pay via UPI and share the reference.",
		name, rupees(balanceDue), bookingCode, tripName, start.Format(dateLayout))
}

func ReviewRequest(name, tripName string) string {
	return fmt.Sprintf("Hi %s, welcome back from %s! We would love to hear how it went. Leave a review on your bookings page.",
		name, tripName)
}
