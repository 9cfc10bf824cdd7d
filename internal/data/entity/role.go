package entity

type Role string

const (
	RoleSuperAdmin        Role = "super_admin"
	RoleAdmin             Role = "admin"
	RoleOperationsManager Role = "operations_manager"
	RoleFinanceManager    Role = "finance_manager"
	RoleSupportStaff      Role = "support_staff"
	RoleContentManager    Role = "content_manager"
	RoleUser              Role = "user"
)

type Permission string

const (
	PermVerifyPayments Permission = "verify_payments"
	PermProcessRefund  Permission = "process_refund"
	PermManageBookings Permission = "manage_bookings"
	PermViewBookings   Permission = "view_bookings"
	PermManageBatches  Permission = "manage_batches"
	PermManageTrips    Permission = "manage_trips"
	PermManageWallets  Permission = "manage_wallets"
	PermManageRoles    Permission = "manage_roles"
	PermManageUsers    Permission = "manage_users"
	PermManageContent  Permission = "manage_content"
	PermViewReports    Permission = "view_reports"
)

var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermVerifyPayments, PermProcessRefund, PermManageBookings, PermViewBookings,
		PermManageBatches, PermManageTrips, PermManageWallets, PermManageUsers,
		PermManageContent, PermViewReports,
	},
	RoleOperationsManager: {
		PermManageBookings, PermViewBookings, PermManageBatches, PermManageTrips, PermViewReports,
	},
	RoleFinanceManager: {
		PermVerifyPayments, PermProcessRefund, PermViewBookings, PermManageWallets, PermViewReports,
	},
	RoleSupportStaff: {
		PermViewBookings,
	},
	RoleContentManager: {
		PermManageContent,
	},
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	if r == RoleSuperAdmin || r == RoleUser {
		return true
	}
	_, ok := rolePermissions[r]
	return ok
}

func (r Role) IsStaff() bool {
	return r.Valid() && r != RoleUser
}

// Has reports whether the role grants p. super_admin holds every permission.
func (r Role) Has(p Permission) bool {
	if r == RoleSuperAdmin {
		return true
	}
	for _, granted := range rolePermissions[r] {
		if granted == p {
			return true
		}
	}
	return false
}
