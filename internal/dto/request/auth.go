package request

type RegisterRequest struct {
	Username      string  `json:"username" validate:"required,min=3,max=50"`
	Email         string  `json:"email" validate:"required,email"`
	Password      string  `json:"password" validate:"required,min=6"`
	Phone         *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	WhatsAppOptIn bool    `json:"whatsapp_opt_in"`
	ReferralCode  *string `json:"referral_code,omitempty" validate:"omitempty,min=4,max=20"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type UpdateProfileRequest struct {
	Phone         *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	WhatsAppOptIn *bool   `json:"whatsapp_opt_in,omitempty"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=super_admin admin operations_manager finance_manager support_staff content_manager user"`
}
