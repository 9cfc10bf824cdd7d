package entity

type User struct {
	Base
	Username      string  `db:"username"`
	Email         string  `db:"email"`
	PasswordHash  string  `db:"password"`
	Phone         *string `db:"phone"`
	Role          Role    `db:"role"`
	WhatsAppOptIn bool    `db:"whatsapp_opt_in"`
	ReferredBy    *string `db:"referred_by"` // referral code used at signup
	IsActive      bool    `db:"is_active"`
}

// CanReceiveWhatsApp reports whether outbound messages may be sent to the user.
func (u *User) CanReceiveWhatsApp() bool {
	return u != nil && u.IsActive && u.WhatsAppOptIn && u.Phone != nil && *u.Phone != ""
}
